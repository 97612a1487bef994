package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pocketpet/pocketpet/internal/config"
	"github.com/pocketpet/pocketpet/internal/queue"
	"github.com/pocketpet/pocketpet/internal/sim"
	"github.com/pocketpet/pocketpet/internal/storage"
	"github.com/pocketpet/pocketpet/pkg/world"
)

// consoleChat is the chat the console plays in.
const consoleChat = "console"

func main() {
	cfg := config.Load()
	// The full-screen UI owns the terminal, so logging is discarded.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := storage.NewClient(cfg.RedisURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create store client: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to Redis. Is it running?\n")
		os.Exit(1)
	}

	game := world.NewGame(client.Redis(), log, world.Options{
		Debug:        true,
		TickInterval: cfg.TickInterval,
	})
	events := queue.NewEventQueue(client.Redis())

	if _, err := game.GetSpaceByChat(ctx, consoleChat); errors.Is(err, world.ErrNotFound) {
		if _, err := game.CreateSpace(ctx, consoleChat); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create space: %v\n", err)
			os.Exit(1)
		}
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load space: %v\n", err)
		os.Exit(1)
	}

	// The console runs its own scheduler so the simulation advances without
	// the bot process.
	simCtx, simCancel := context.WithCancel(context.Background())
	defer simCancel()
	go func() {
		_ = sim.NewScheduler(game, log).Run(simCtx)
	}()

	p := tea.NewProgram(NewConsoleUI(game, events, newPerformer(game, consoleChat)),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
