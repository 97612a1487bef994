package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pocketpet/pocketpet/pkg/world"
)

// EventQueue manages the durable queue of simulation events awaiting chat
// delivery. Events survive process restarts; an event is removed only once a
// consumer has popped it.
type EventQueue struct {
	rdb *redis.Client
}

func NewEventQueue(rdb *redis.Client) *EventQueue {
	return &EventQueue{rdb: rdb}
}

// Push adds an event to the end of the queue.
func (q *EventQueue) Push(ctx context.Context, event world.Event) error {
	data, err := event.Encode()
	if err != nil {
		return err
	}
	if err := q.rdb.RPush(ctx, world.EventsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue event: %w", err)
	}
	return nil
}

// BlockingPop blocks until an event is available, then removes and returns
// it. If the timeout elapses with the queue empty, a nil event and nil error
// are returned so callers can check for shutdown.
func (q *EventQueue) BlockingPop(ctx context.Context, timeout time.Duration) (*world.Event, error) {
	result, err := q.rdb.BLPop(ctx, timeout, world.EventsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue event: %w", err)
	}

	// BLPop returns [key, value].
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}
	event, err := world.DecodeEvent(result[1])
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Depth returns the number of queued events.
func (q *EventQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.rdb.LLen(ctx, world.EventsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
