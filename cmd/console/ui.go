package main

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pocketpet/pocketpet/internal/queue"
	"github.com/pocketpet/pocketpet/internal/sim"
	"github.com/pocketpet/pocketpet/pkg/world"
)

const placeholderText = "Type a command, e.g. 👋 …"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	game      *world.Game
	events    *queue.EventQueue
	performer *performer

	viewport viewport.Model
	textarea textarea.Model
	ready    bool
	width    int
	height   int

	transcript []string
}

type replyMsg struct {
	input string
	reply string
}

type eventMsg struct {
	text string
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(game *world.Game, events *queue.EventQueue, p *performer) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = placeholderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	vp := viewport.New(50, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		game:      game,
		events:    events,
		performer: p,
		textarea:  ta,
		viewport:  vp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForEvent())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 4
		m.viewport.Height = m.height - 5
		m.textarea.SetWidth(m.width - 6)
		m.ready = true
		m.writeTranscript()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.transcript = append(m.transcript, userStyle.Render("You: ")+input)
			m.writeTranscript()
			return m, m.performCommand(input)
		}

	case replyMsg:
		m.transcript = append(m.transcript, botStyle.Render(msg.reply))
		m.writeTranscript()

	case eventMsg:
		if msg.text != "" {
			m.transcript = append(m.transcript, eventStyle.Render(msg.text))
			m.writeTranscript()
		}
		return m, m.waitForEvent()
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		" "+titleStyle.Render("POCKET PET"),
		m.viewport.View(),
		separatorStyle.Render(strings.Repeat("─", max(m.width-4, 1))),
		m.textarea.View(),
	)
}

func (m *ConsoleUI) writeTranscript() {
	width := m.viewport.Width - 2
	if width < 10 {
		width = 10
	}
	var content strings.Builder
	for _, line := range m.transcript {
		content.WriteString(wordwrap.String(line, width) + "\n\n")
	}
	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m ConsoleUI) performCommand(input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return replyMsg{input: input, reply: m.performer.perform(ctx, input)}
	}
}

// waitForEvent polls the durable event queue so simulation events show up in
// the transcript as they happen.
func (m ConsoleUI) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		event, err := m.events.BlockingPop(ctx, time.Second)
		if err != nil || event == nil {
			return eventMsg{}
		}
		_, text, err := sim.RenderEvent(ctx, m.game, *event)
		if err != nil {
			return eventMsg{}
		}
		return eventMsg{text: text}
	}
}
