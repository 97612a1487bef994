package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Atomic runs fn as an optimistic transaction over the watched keys.
//
// fn must re-read every value it depends on through the supplied
// transaction handle, validate against those fresh values and queue its
// writes with Tx.TxPipelined. If any watched key changes before the commit,
// the whole read-validate-write cycle is retried with fresh state. The loop
// is unbounded: a conflict means a legitimate concurrent mutation, not a
// failure. Validation errors returned by fn abort without committing and
// propagate unchanged.
func Atomic(ctx context.Context, rdb *redis.Client, fn func(tx *redis.Tx) error, keys ...string) error {
	for {
		err := rdb.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
}
