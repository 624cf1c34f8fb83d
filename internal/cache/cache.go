package cache

import (
	"context"
	"time"
)

// Cache is a process-wide key-value store with per-entry TTL. Implementations
// must treat corrupt entries as misses, never as errors.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Flush(ctx context.Context) error
}
