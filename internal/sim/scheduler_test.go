package sim

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickSpaceCatchesUp(t *testing.T) {
	game, rdb := newSimTest(t)
	ctx := context.Background()
	space, err := game.CreateSpace(ctx, "chat-1")
	require.NoError(t, err)

	// Rewind the space a few ticks, as if the process had been down.
	require.NoError(t, rdb.HSet(ctx, space.ID, "time", strconv.Itoa(space.Time-3)).Err())
	space, err = game.GetSpace(ctx, space.ID)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scheduler := NewScheduler(game, logger)
	require.NoError(t, scheduler.tickSpace(ctx, space))

	caught, err := game.GetSpace(ctx, space.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Now(), caught.Time)

	pet, err := caught.GetPet(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, pet.Dirt)
}

func TestTickSpaceTellsStories(t *testing.T) {
	game, _ := newSimTest(t)
	ctx := context.Background()
	space, err := game.CreateSpace(ctx, "chat-1")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scheduler := NewScheduler(game, logger)
	require.NoError(t, scheduler.tickSpace(ctx, space))

	// The tutorial kicked off even though no tick was due.
	stories, err := space.GetStories(ctx)
	require.NoError(t, err)
	chapters := make([]string, len(stories))
	for i, story := range stories {
		chapters[i] = story.Chapter()
	}
	assert.Contains(t, chapters, "touch")
}
