package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/pocketpet/pocketpet/pkg/world"
)

// schedulerPoll is how often the scheduler checks for due ticks. It is much
// shorter than a tick so restarts do not delay the simulation noticeably.
const schedulerPoll = time.Minute

// Scheduler drives the simulation clock: it periodically catches every space
// up to the present tick and then continues its stories. A failure in one
// space never halts the others.
type Scheduler struct {
	game   *world.Game
	logger *slog.Logger
	poll   time.Duration
}

func NewScheduler(game *world.Game, logger *slog.Logger) *Scheduler {
	return &Scheduler{game: game, logger: logger, poll: schedulerPoll}
}

// Run ticks all spaces until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler starting")
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		s.tickAll(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

// tickAll catches every space up to the current simulation time.
func (s *Scheduler) tickAll(ctx context.Context) {
	spaces, err := s.game.GetSpaces(ctx)
	if err != nil {
		s.logger.Error("Failed to list spaces", "error", err)
		return
	}
	for _, space := range spaces {
		if err := s.tickSpace(ctx, space); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("Failed to tick space", "space_id", space.ID, "error", err)
		}
	}
}

// tickSpace applies all due ticks to a single space, one at a time, then
// continues its stories. Applying ticks individually keeps a long-offline
// space from blocking others for the whole catch-up.
func (s *Scheduler) tickSpace(ctx context.Context, space *world.Space) error {
	now := s.game.Now()
	for space.Time < now {
		if err := space.Tick(ctx, space.Time); err != nil {
			return err
		}
		refreshed, err := space.Refresh(ctx)
		if err != nil {
			return err
		}
		space = refreshed
	}
	return space.TellStories(ctx)
}
