package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketpet/pocketpet/pkg/world"
)

func newTestQueue(t *testing.T) *EventQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	return NewEventQueue(rdb)
}

func TestEventQueue(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	first := world.Event{Type: world.EventPetHungry, SpaceID: "Space:a"}
	second := world.Event{Type: world.EventPetDirty, SpaceID: "Space:a"}
	require.NoError(t, q.Push(ctx, first))
	require.NoError(t, q.Push(ctx, second))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	// FIFO order.
	event, err := q.BlockingPop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, first, *event)

	event, err = q.BlockingPop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, second, *event)
}

func TestEventQueueBlockingPopTimeout(t *testing.T) {
	q := newTestQueue(t)

	event, err := q.BlockingPop(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, event)
}
