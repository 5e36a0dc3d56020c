package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Seen(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}
func (brokenStore) MarkSeen(context.Context, string) error { return errors.New("redis down") }

func materialEvent(id string) *Event {
	return &Event{ID: id, Type: "fashion.material.created", AggregateID: "mat_1"}
}

func TestMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryIdempotencyStore(time.Minute)
	store.now = func() time.Time { return now }

	seen, err := store.Seen(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkSeen(ctx, "e1"))
	seen, _ = store.Seen(ctx, "e1")
	assert.True(t, seen)

	now = now.Add(2 * time.Minute)
	seen, _ = store.Seen(ctx, "e1")
	assert.False(t, seen)
	assert.Empty(t, store.seen)
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisIdempotencyStore(client, "revalidate:seen:", time.Hour)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkSeen(ctx, "e1"))
	seen, err = store.Seen(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, time.Hour, mr.TTL("revalidate:seen:e1"))

	mr.FastForward(2 * time.Hour)
	seen, err = store.Seen(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisIdempotencyStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	store := NewRedisIdempotencyStore(client, "revalidate:seen:", time.Hour)
	_, err := store.Seen(context.Background(), "e1")
	assert.ErrorContains(t, err, "idempotency lookup e1")
}

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Hour)

	calls := 0
	h := IdempotentHandler(store, func(context.Context, *Event) error {
		calls++
		return nil
	}, discardLogger())

	require.NoError(t, h(ctx, materialEvent("e1")))
	require.NoError(t, h(ctx, materialEvent("e1")))
	require.NoError(t, h(ctx, materialEvent("e2")))
	assert.Equal(t, 2, calls)
}

func TestIdempotentHandler_FailureIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Hour)

	fail := true
	calls := 0
	h := IdempotentHandler(store, func(context.Context, *Event) error {
		calls++
		if fail {
			return errors.New("storefront unavailable")
		}
		return nil
	}, discardLogger())

	require.Error(t, h(ctx, materialEvent("e1")))
	fail = false
	require.NoError(t, h(ctx, materialEvent("e1")))
	assert.Equal(t, 2, calls)

	seen, _ := store.Seen(ctx, "e1")
	assert.True(t, seen)
}

func TestIdempotentHandler_StoreOutageStillHandles(t *testing.T) {
	calls := 0
	h := IdempotentHandler(brokenStore{}, func(context.Context, *Event) error {
		calls++
		return nil
	}, discardLogger())

	require.NoError(t, h(context.Background(), materialEvent("e1")))
	require.NoError(t, h(context.Background(), materialEvent("e1")))
	assert.Equal(t, 2, calls)
}
