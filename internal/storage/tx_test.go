package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	return rdb
}

func TestAtomicCommit(t *testing.T) {
	rdb := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, "counter", "1", 0).Err())

	err := Atomic(ctx, rdb, func(tx *redis.Tx) error {
		value, err := tx.Get(ctx, "counter").Int()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, "counter", value+1, 0)
			return nil
		})
		return err
	}, "counter")
	require.NoError(t, err)

	value, err := rdb.Get(ctx, "counter").Int()
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestAtomicAbortOnValidationError(t *testing.T) {
	rdb := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, "counter", "1", 0).Err())
	sentinel := errors.New("not allowed")

	err := Atomic(ctx, rdb, func(tx *redis.Tx) error {
		return sentinel
	}, "counter")
	assert.ErrorIs(t, err, sentinel)

	value, err := rdb.Get(ctx, "counter").Int()
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

func TestAtomicRetriesOnConflict(t *testing.T) {
	rdb := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, "counter", "1", 0).Err())

	attempts := 0
	err := Atomic(ctx, rdb, func(tx *redis.Tx) error {
		attempts++
		value, err := tx.Get(ctx, "counter").Int()
		if err != nil {
			return err
		}
		if attempts == 1 {
			// A concurrent writer touches the watched key, forcing a retry.
			require.NoError(t, rdb.Set(ctx, "counter", "10", 0).Err())
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, "counter", value+1, 0)
			return nil
		})
		return err
	}, "counter")
	require.NoError(t, err)

	assert.Equal(t, 2, attempts)
	value, err := rdb.Get(ctx, "counter").Int()
	require.NoError(t, err)
	assert.Equal(t, 11, value)
}
