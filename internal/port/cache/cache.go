// Package cache defines the port interface for the analytics read cache.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for TTL-bounded key-value caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
