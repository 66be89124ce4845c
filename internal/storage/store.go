package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotInitialised is returned when a store method is invoked on a nil receiver.
var ErrNotInitialised = errors.New("storage: store not initialised")

// Store is the key-value contract shared by the database, redis and memory backends.
// A ttl <= 0 passed to Set stores the value without expiry.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
