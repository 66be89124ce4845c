package middleware

import (
	"context"
	"time"

	"github.com/charlesng35/authflow/internal/storage"
)

// RateStore coordinates rate limiting counters for a specific key.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// storeRateStore implements RateStore over any storage backend.
type storeRateStore struct {
	store storage.Store
}

// NewRateStore wraps a storage backend (memory, database or redis) in a RateStore.
func NewRateStore(store storage.Store) RateStore {
	if store == nil {
		return nil
	}
	return &storeRateStore{store: store}
}

func (s *storeRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	count, ttl, err := s.store.IncrementWithTTL(ctx, "ratelimit:"+key, window)
	return int(count), ttl, err
}
