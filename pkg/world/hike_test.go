package world

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestHike(t *testing.T, game *Game) (*Space, *Hike) {
	t.Helper()
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, ToolCompass))
	hike, err := space.Hike(ctx)
	require.NoError(t, err)
	return space, hike
}

// padDirections extends a path to a full move by walking back and forth at
// its end.
func padDirections(directions []string) []string {
	reverse := map[string]string{"➡️": "⬅️", "⬇️": "⬆️", "⬅️": "➡️", "⬆️": "⬇️"}
	last := directions[len(directions)-1]
	padding := []string{reverse[last], last}
	for i := 0; len(directions) < HikeRadius; i++ {
		directions = append(directions, padding[i%2])
	}
	return directions
}

func TestHikeGenerate(t *testing.T) {
	game := newTestGame(t)
	_, hike := startTestHike(t, game)

	require.Len(t, hike.tiles, HikeRadius*2+1)
	origins, destinations := 0, 0
	for y, row := range hike.tiles {
		require.Len(t, row, HikeRadius*2+1)
		for x, tile := range row {
			inDisc := abs(HikeRadius-x)+abs(HikeRadius-y) <= HikeRadius
			if !inDisc {
				assert.Empty(t, tile)
				continue
			}
			assert.NotEmpty(t, tile)
			switch tile {
			case TileOrigin:
				origins++
			case TileDestination:
				destinations++
			}
		}
	}
	assert.Equal(t, 1, origins)
	assert.Equal(t, 1, destinations)
	// The origin is the tile nearest to the trail head, i.e. the center.
	assert.Equal(t, TileOrigin, hike.tiles[HikeRadius][HikeRadius])
	// A full trail supply places a bonus resource.
	assert.NotEmpty(t, hike.resource)
}

func TestHikeMove(t *testing.T) {
	game := newTestGame(t)
	_, hike := startTestHike(t, game)

	path, err := hike.FindPath(TileGrass)
	require.NoError(t, err)
	directions := padDirections(path)

	move, err := hike.Move(context.Background(), directions)
	require.NoError(t, err)
	require.Len(t, move, HikeRadius)
	assert.Equal(t, TileGrass, move[0].Tile)
	assert.False(t, hike.Finished())
}

func TestHikeMoveDestination(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space, hike := startTestHike(t, game)

	path, err := hike.FindPath(hike.resource)
	require.NoError(t, err)
	_, err = hike.Move(ctx, padDirections(path))
	require.NoError(t, err)

	path, err = hike.FindPath(TileDestination)
	require.NoError(t, err)
	_, err = hike.Move(ctx, padDirections(path))
	require.NoError(t, err)

	assert.True(t, hike.Finished())
	require.Len(t, hike.Gathered(), 1)

	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, hike.Gathered(), space.Items)
	assert.Zero(t, space.TrailSupply)
}

func TestHikeMoveDestinationEmptyTrailSupply(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space, hike := startTestHike(t, game)

	path, err := hike.FindPath(hike.resource)
	require.NoError(t, err)
	_, err = hike.Move(ctx, padDirections(path))
	require.NoError(t, err)
	path, err = hike.FindPath(TileDestination)
	require.NoError(t, err)
	_, err = hike.Move(ctx, padDirections(path))
	require.NoError(t, err)

	// The supply is spent, so the next hike has nothing extra to gather.
	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	second, err := space.Hike(ctx)
	require.NoError(t, err)
	assert.Empty(t, second.resource)

	path, err = second.FindPath(TileDestination)
	require.NoError(t, err)
	_, err = second.Move(ctx, padDirections(path))
	require.NoError(t, err)

	assert.True(t, second.Finished())
	assert.Empty(t, second.Gathered())
	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, space.Items, 1)
	assert.Zero(t, space.TrailSupply)
}

func TestHikeMoveDestinationMissingCompass(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space, hike := startTestHike(t, game)

	path, err := hike.FindPath(hike.resource)
	require.NoError(t, err)
	_, err = hike.Move(ctx, padDirections(path))
	require.NoError(t, err)

	// The compass is gone by the time the destination is reached, so the
	// gathered resource cannot be recorded.
	require.NoError(t, game.rdb.HSet(ctx, space.ID, "tools", "👋 ✏️ 🧺 🔨 🧽").Err())

	path, err = hike.FindPath(TileDestination)
	require.NoError(t, err)
	_, err = hike.Move(ctx, padDirections(path))
	assert.ErrorIs(t, err, ErrMissingTool)

	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, space.Items)
	assert.Equal(t, TrailSupplyMax, space.TrailSupply)
}

func TestHikeMoveBadDirections(t *testing.T) {
	game := newTestGame(t)
	_, hike := startTestHike(t, game)
	ctx := context.Background()

	_, err := hike.Move(ctx, nil)
	assert.ErrorIs(t, err, ErrBadMoveLength)

	_, err = hike.Move(ctx, []string{"➡️", "➡️", "➡️", "🌀"})
	assert.ErrorIs(t, err, ErrBadDirection)
}

func TestHikeMoveFinished(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	_, hike := startTestHike(t, game)

	path, err := hike.FindPath(TileDestination)
	require.NoError(t, err)
	_, err = hike.Move(ctx, padDirections(path))
	require.NoError(t, err)
	require.True(t, hike.Finished())

	_, err = hike.Move(ctx, []string{"➡️", "⬅️", "➡️", "⬅️"})
	assert.ErrorIs(t, err, ErrHikeFinished)
}

func TestHikeFindPathUnreachable(t *testing.T) {
	game := newTestGame(t)
	_, hike := startTestHike(t, game)

	_, err := hike.FindPath("🌋")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestHikeText(t *testing.T) {
	game := newTestGame(t)
	_, hike := startTestHike(t, game)

	text := hike.Text(false)
	// Only origin and destination start revealed.
	assert.Contains(t, text, TileOrigin)
	assert.Contains(t, text, TileDestination)
	assert.Contains(t, text, TileHidden)
	assert.NotContains(t, text, "🌲")

	revealed := hike.Text(true)
	assert.True(t, strings.Contains(revealed, "🌲") || strings.Contains(revealed, "🌳"))
}
