package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is the key/value backend behind ListCache.
type Store interface {
	// Get returns the value stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Incr atomically increments the integer counter at key, creating it at
	// zero first when absent, and returns the new value. Counters never expire.
	Incr(ctx context.Context, key string) (int64, error)

	// GetInt returns the counter at key, or 0 when it does not exist.
	GetInt(ctx context.Context, key string) (int64, error)
}
