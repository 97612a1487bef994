package world

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTouchHatches(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	pet, err := space.GetPet(ctx)
	require.NoError(t, err)
	require.False(t, pet.Hatched)

	require.NoError(t, pet.Touch(ctx))

	pet, err = space.GetPet(ctx)
	require.NoError(t, err)
	assert.True(t, pet.Hatched)
}

func TestFeed(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, "🥕"))
	pet, err := space.GetPet(ctx)
	require.NoError(t, err)

	require.NoError(t, pet.Feed(ctx, "🥕"))

	pet, err = space.GetPet(ctx)
	require.NoError(t, err)
	assert.Equal(t, NutritionMax, pet.Nutrition)
	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, space.Items)
}

func TestFeedPetFull(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, "🥕"))
	require.NoError(t, game.rdb.HSet(ctx, space.PetID, "nutrition", strconv.Itoa(NutritionMax)).Err())
	pet, err := space.GetPet(ctx)
	require.NoError(t, err)

	err = pet.Feed(ctx, "🥕")
	assert.ErrorIs(t, err, ErrPetFull)

	// The vegetable is not spent.
	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🥕"}, space.Items)
}

func TestFeedInsufficientResources(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	pet, err := space.GetPet(ctx)
	require.NoError(t, err)

	err = pet.Feed(ctx, "🥕")
	assert.ErrorIs(t, err, ErrInsufficientResources)
}

func TestFeedUnknownFood(t *testing.T) {
	game := newTestGame(t)
	space := createTestSpace(t, game)
	pet, err := space.GetPet(context.Background())
	require.NoError(t, err)

	err = pet.Feed(context.Background(), "🪨")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestWash(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, game.rdb.HSet(ctx, space.PetID, "dirt", "12").Err())
	pet, err := space.GetPet(ctx)
	require.NoError(t, err)

	require.NoError(t, pet.Wash(ctx))

	pet, err = space.GetPet(ctx)
	require.NoError(t, err)
	assert.Zero(t, pet.Dirt)

	assert.ErrorIs(t, pet.Wash(ctx), ErrPetClean)
}

func TestDress(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, "🎀", "🧢"))
	pet, err := space.GetPet(ctx)
	require.NoError(t, err)

	require.NoError(t, pet.Dress(ctx, "🎀"))

	pet, err = space.GetPet(ctx)
	require.NoError(t, err)
	assert.Equal(t, "🎀", pet.Clothing)
	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🧢"}, space.Items)

	// Changing clothes returns the worn item to the inventory.
	require.NoError(t, pet.Dress(ctx, "🧢"))

	pet, err = space.GetPet(ctx)
	require.NoError(t, err)
	assert.Equal(t, "🧢", pet.Clothing)
	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🎀"}, space.Items)

	// Undress.
	require.NoError(t, pet.Dress(ctx, ""))

	pet, err = space.GetPet(ctx)
	require.NoError(t, err)
	assert.Empty(t, pet.Clothing)
	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🧢", "🎀"}, space.Items)
}

func TestDressInsufficientResources(t *testing.T) {
	game := newTestGame(t)
	space := createTestSpace(t, game)
	pet, err := space.GetPet(context.Background())
	require.NoError(t, err)

	err = pet.Dress(context.Background(), "🎀")
	assert.ErrorIs(t, err, ErrInsufficientResources)
}

func TestShear(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	require.NoError(t, space.Obtain(ctx, ToolScissors))
	require.NoError(t, game.rdb.HSet(ctx, space.PetID, "fur", strconv.Itoa(FurMax)).Err())
	pet, err := space.GetPet(ctx)
	require.NoError(t, err)

	wool, err := pet.Shear(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🧶"}, wool)

	pet, err = space.GetPet(ctx)
	require.NoError(t, err)
	assert.Zero(t, pet.Fur)
	space, err = space.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"🧶"}, space.Items)

	// Fur has to regrow before the next shearing.
	wool, err = pet.Shear(ctx)
	require.NoError(t, err)
	assert.Empty(t, wool)
}

func TestShearMissingScissors(t *testing.T) {
	game := newTestGame(t)
	space := createTestSpace(t, game)
	pet, err := space.GetPet(context.Background())
	require.NoError(t, err)

	_, err = pet.Shear(context.Background())
	assert.ErrorIs(t, err, ErrMissingTool)
}

func TestChangeName(t *testing.T) {
	game := newTestGame(t)
	ctx := context.Background()
	space := createTestSpace(t, game)
	pet, err := space.GetPet(ctx)
	require.NoError(t, err)

	require.NoError(t, pet.ChangeName(ctx, "  Waldo  "))

	pet, err = space.GetPet(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Waldo", pet.Name)

	assert.ErrorIs(t, pet.ChangeName(ctx, "   "), ErrBlankName)
}
