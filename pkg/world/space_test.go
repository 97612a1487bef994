package world

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvents(t *testing.T, game *Game) []Event {
	t.Helper()
	lines, err := game.rdb.LRange(context.Background(), EventsKey, 0, -1).Result()
	require.NoError(t, err)
	events := make([]Event, len(lines))
	for i, line := range lines {
		event, err := DecodeEvent(line)
		require.NoError(t, err)
		events[i] = event
	}
	return events
}

func TestObtainKeepsInventoriesSorted(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)

	require.NoError(t, space.Obtain(ctx, "🪵", "🥕", "🪨", "🪡"))

	space, err := space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🥕", "🪨", "🪵"}, space.Items)
	assert.Equal(t, []string{"👋", "✏️", "🧺", "🔨", "🪡", "🧽"}, space.Tools)
}

func TestObtainUnknownItem(t *testing.T) {
	game := newTestGame(t)
	space := createTestSpace(t, game)

	err := space.Obtain(context.Background(), "🦖")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestObtainDebugDisabled(t *testing.T) {
	game := newTestGame(t)
	game.debug = false
	space := createTestSpace(t, game)

	err := space.Obtain(context.Background(), "🪨")
	assert.ErrorIs(t, err, ErrDebugDisabled)
}

func TestGather(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)

	gathered, err := space.Gather(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🥕", "🪨"}, gathered)

	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🥕", "🪨"}, space.Items)
	assert.Zero(t, space.MeadowVegetableGrowth)

	// Nothing regrows without a tick.
	gathered, err = space.Gather(ctx)
	require.NoError(t, err)
	assert.Empty(t, gathered)

	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🥕", "🪨"}, space.Items)
}

func TestChopWood(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, ToolAxe))

	wood, err := space.ChopWood(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🪵"}, wood)

	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Zero(t, space.WoodsGrowth)

	wood, err = space.ChopWood(ctx)
	require.NoError(t, err)
	assert.Empty(t, wood)
}

func TestChopWoodMissingAxe(t *testing.T) {
	game := newTestGame(t)
	space := createTestSpace(t, game)

	_, err := space.ChopWood(context.Background())
	assert.ErrorIs(t, err, ErrMissingTool)
}

func TestCraftTool(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, "🪨", "🪵"))

	item, err := space.Craft(ctx, "🪓")
	require.NoError(t, err)
	assert.Nil(t, item)

	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🪵"}, space.Items)
	assert.Contains(t, space.Tools, "🪓")
}

func TestCraftInsufficientResources(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, "🪵"))

	_, err := space.Craft(ctx, "🪓")
	assert.ErrorIs(t, err, ErrInsufficientResources)

	// The inventory is untouched by the failed craft.
	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🪵"}, space.Items)
}

func TestCraftUnknownBlueprint(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, "🪵", "🪵", "🪵", "🪵", "🪵"))

	// The needle blueprint is taught by the ghost, not known initially.
	_, err := space.Craft(ctx, "🪡")
	assert.ErrorIs(t, err, ErrUnknownBlueprint)
}

func TestCraftSequentialRace(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, "🪨"))

	_, err := space.Craft(ctx, "🪓")
	require.NoError(t, err)

	// The material is spent; a second identical craft loses.
	_, err = space.Craft(ctx, "🪓")
	assert.ErrorIs(t, err, ErrInsufficientResources)
}

func TestCraftConcurrentRace(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, "🪨"))

	// Two crafts race for the last rock. The optimistic transaction lets
	// exactly one commit; the other retries against the fresh state and
	// comes up empty-handed.
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := space.Craft(ctx, "🪓")
			errs <- err
		}()
	}
	failed := 0
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			assert.ErrorIs(t, err, ErrInsufficientResources)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	space, err := space.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, space.Items)
	assert.Equal(t, []string{"👋", "✏️", "🧺", "🪓", "🔨", "🧽"}, space.Tools)
}

func TestCraftFurniture(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, "🪨", "🪨", "🪵", "🪵", "🪵", "🪵"))

	item, err := space.Craft(ctx, "📺")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "📺", item.Type())

	furniture, err := space.GetFurniture(ctx)
	require.NoError(t, err)
	require.Len(t, furniture, 1)
	assert.Equal(t, item.ID(), furniture[0].ID())

	television, ok := furniture[0].(*Television)
	require.True(t, ok)
	assert.NotEmpty(t, television.Show)
}

func TestSew(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, ToolNeedle, "🧶", "🧶", "🧶", "🧶"))

	require.NoError(t, space.Sew(ctx, "🎀"))

	space, err := space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🎀"}, space.Items)
}

func TestSewUnknownPattern(t *testing.T) {
	game := newTestGame(t)
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(context.Background(), ToolNeedle))

	err := space.Sew(context.Background(), "🎩")
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

func TestSewMissingNeedle(t *testing.T) {
	game := newTestGame(t)
	space := createTestSpace(t, game)

	err := space.Sew(context.Background(), "🎀")
	assert.ErrorIs(t, err, ErrMissingTool)
}

func TestTick(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	_, err := space.Gather(ctx)
	require.NoError(t, err)

	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	require.NoError(t, space.Tick(ctx, space.Time))

	ticked, err := space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, space.Time+1, ticked.Time)
	assert.Equal(t, 1, ticked.MeadowVegetableGrowth)

	pet, err := ticked.GetPet(ctx)
	require.NoError(t, err)
	assert.Equal(t, initialPetNutrition-1, pet.Nutrition)
	assert.Equal(t, 1, pet.Dirt)
	assert.Equal(t, 1, pet.Fur)
}

func TestTickIdempotent(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)

	require.NoError(t, space.Tick(ctx, space.Time))
	// A repeated tick for the same time is a no-op.
	require.NoError(t, space.Tick(ctx, space.Time))

	ticked, err := space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, space.Time+1, ticked.Time)
}

func TestTickPetHungryEvent(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, game.rdb.HSet(ctx, space.PetID, "nutrition", "1").Err())

	require.NoError(t, space.Tick(ctx, space.Time))
	events := readEvents(t, game)
	require.Len(t, events, 1)
	assert.Equal(t, EventPetHungry, events[0].Type)
	assert.Equal(t, space.ID, events[0].SpaceID)

	// The event fires only on the crossing, not while nutrition stays at
	// zero.
	space, err := space.Refresh(ctx)
	require.NoError(t, err)
	require.NoError(t, space.Tick(ctx, space.Time))
	assert.Len(t, readEvents(t, game), 1)
}

func TestTickPetDirtyEvent(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, game.rdb.HSet(ctx, space.PetID, "dirt", strconv.Itoa(DirtMax-1)).Err())

	require.NoError(t, space.Tick(ctx, space.Time))
	events := readEvents(t, game)
	require.Len(t, events, 1)
	assert.Equal(t, EventPetDirty, events[0].Type)

	space, err := space.Refresh(ctx)
	require.NoError(t, err)
	require.NoError(t, space.Tick(ctx, space.Time))
	assert.Len(t, readEvents(t, game), 1)
}

func TestHikeMissingCompass(t *testing.T) {
	game := newTestGame(t)
	space := createTestSpace(t, game)

	_, err := space.Hike(context.Background())
	assert.ErrorIs(t, err, ErrMissingTool)
}
