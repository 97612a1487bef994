package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketpet/pocketpet/internal/queue"
	"github.com/pocketpet/pocketpet/pkg/world"
)

// dispatcherTimeout bounds a single blocking pop so shutdown is noticed.
const dispatcherTimeout = 5 * time.Second

// Messenger delivers rendered event text to a chat.
type Messenger interface {
	Send(ctx context.Context, chat, text string) error
}

// LogMessenger writes outgoing messages to the log. It stands in for a chat
// transport during development and in the console.
type LogMessenger struct {
	Logger *slog.Logger
}

func (m *LogMessenger) Send(ctx context.Context, chat, text string) error {
	m.Logger.Info("Outgoing message", "chat", chat, "text", text)
	return nil
}

// renderFunc renders an event into chat text.
type renderFunc func(ctx context.Context, game *world.Game, space *world.Space) (string, error)

// renderers maps each event type to its renderer. The table is static; no
// runtime introspection.
var renderers = map[string]renderFunc{
	world.EventPetHungry: func(ctx context.Context, game *world.Game, space *world.Space) (string, error) {
		pet, err := space.GetPet(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("🍽️ %s %s is hungry. Why not give it something to eat?", pet, pet.Name), nil
	},
	world.EventPetDirty: func(ctx context.Context, game *world.Game, space *world.Space) (string, error) {
		pet, err := space.GetPet(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("💩 %s %s is all dirty. Maybe a bath with 🧽 would help?", pet, pet.Name), nil
	},
	world.EventExplainTouch: func(ctx context.Context, game *world.Game, space *world.Space) (string, error) {
		return "✨ A new egg has appeared. You can touch it with 👋.", nil
	},
	world.EventExplainGather: func(ctx context.Context, game *world.Game, space *world.Space) (string, error) {
		pet, err := space.GetPet(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(
			"🐣 %s %s hatched! You can gather veggies from the meadow with 🧺.", pet, pet.Name), nil
	},
	world.EventExplainFeed: func(ctx context.Context, game *world.Game, space *world.Space) (string, error) {
		pet, err := space.GetPet(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("🥕 Nice haul! You can feed %s %s with 🥕.", pet, pet.Name), nil
	},
	world.EventExplainCraft: func(ctx context.Context, game *world.Game, space *world.Space) (string, error) {
		return "😊 Well fed! You can craft tools and furniture with 🔨, starting with a trusty 🪓.", nil
	},
	world.EventExplainBasics: func(ctx context.Context, game *world.Game, space *world.Space) (string, error) {
		return "🪓 Great work! These are the basics. Have fun exploring!", nil
	},
	world.EventVisitGhost: func(ctx context.Context, game *world.Game, space *world.Space) (string, error) {
		return "👻 A ghost is visiting. You can talk to it with 👻.", nil
	},
}

// Dispatcher consumes the durable event queue and delivers each event to its
// chat. A single consumer preserves delivery order.
type Dispatcher struct {
	game      *world.Game
	queue     *queue.EventQueue
	messenger Messenger
	logger    *slog.Logger
}

func NewDispatcher(game *world.Game, events *queue.EventQueue, messenger Messenger, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{game: game, queue: events, messenger: messenger, logger: logger}
}

// Run consumes events until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("Dispatcher starting")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Dispatcher shutting down")
			return nil
		default:
		}

		event, err := d.queue.BlockingPop(ctx, dispatcherTimeout)
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Info("Dispatcher shutting down")
				return nil
			}
			d.logger.Error("Failed to pop event", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if event == nil {
			continue
		}

		if err := d.dispatch(ctx, *event); err != nil {
			d.logger.Error("Failed to dispatch event",
				"type", event.Type, "space_id", event.SpaceID, "error", err)
		}
	}
}

// dispatch renders a single event and delivers it to the space's chat.
func (d *Dispatcher) dispatch(ctx context.Context, event world.Event) error {
	chat, text, err := RenderEvent(ctx, d.game, event)
	if err != nil {
		return err
	}
	if text == "" {
		d.logger.Warn("Dropping unknown event", "type", event.Type, "space_id", event.SpaceID)
		return nil
	}
	return d.messenger.Send(ctx, chat, text)
}

// RenderEvent renders an event into chat text, returning the target chat.
// Unknown event types yield empty text.
func RenderEvent(ctx context.Context, game *world.Game, event world.Event) (chat, text string, err error) {
	render, ok := renderers[event.Type]
	if !ok {
		return "", "", nil
	}
	space, err := game.GetSpace(ctx, event.SpaceID)
	if err != nil {
		return "", "", err
	}
	text, err = render(ctx, game, space)
	if err != nil {
		return "", "", err
	}
	return space.Chat, text, nil
}
