package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers which event IDs have been handled.
type IdempotencyStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkSeen(ctx context.Context, eventID string) error
}

// IdempotentHandler skips events whose ID is already in store. IDs are only
// recorded after next succeeds, and a store outage lets events through
// rather than dropping them.
func IdempotentHandler(store IdempotencyStore, next Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, event *Event) error {
		seen, err := store.Seen(ctx, event.ID)
		if err != nil {
			logger.WarnContext(ctx, "idempotency lookup failed",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()),
			)
		}
		if seen {
			duplicatesTotal.WithLabelValues(event.Type).Inc()
			logger.DebugContext(ctx, "skipping duplicate event", slog.String("event_id", event.ID))
			return nil
		}

		if err := next(ctx, event); err != nil {
			return err
		}

		if err := store.MarkSeen(ctx, event.ID); err != nil {
			logger.WarnContext(ctx, "idempotency record failed",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
}

// RedisIdempotencyStore shares seen IDs between consumer instances.
type RedisIdempotencyStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisIdempotencyStore stores IDs under prefix+id for ttl.
func NewRedisIdempotencyStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisIdempotencyStore) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency lookup %s: %w", eventID, err)
	}
	return n == 1, nil
}

func (s *RedisIdempotencyStore) MarkSeen(ctx context.Context, eventID string) error {
	if err := s.client.Set(ctx, s.prefix+eventID, time.Now().Unix(), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency record %s: %w", eventID, err)
	}
	return nil
}

// MemoryIdempotencyStore is a process-local store for tests and single
// instance setups. Entries older than ttl are treated as unseen.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryIdempotencyStore creates an empty store.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (s *MemoryIdempotencyStore) Seen(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.seen[eventID]
	if ok && s.now().Sub(at) > s.ttl {
		delete(s.seen, eventID)
		return false, nil
	}
	return ok, nil
}

func (s *MemoryIdempotencyStore) MarkSeen(_ context.Context, eventID string) error {
	s.mu.Lock()
	s.seen[eventID] = s.now()
	s.mu.Unlock()
	return nil
}
