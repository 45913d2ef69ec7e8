// Package cache stores rendered diagrams so unchanged graphs are not laid
// out again.
//
// Keys are content addresses: [RenderKey] hashes the DOT source together
// with the output format, so an entry never goes stale and a changed graph
// simply misses. Three implementations are provided:
//
//   - [FileCache]: one file per entry under a directory (CLI)
//   - [RedisCache]: entries in redis under a key prefix (shared servers)
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Cache failures never fail a render. [GetOrCompute] treats a read error as
// a miss and ignores write errors.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// GetOrCompute returns the cached entry for key, or calls compute and stores
// its result. hit reports whether the entry came from the cache.
func GetOrCompute(ctx context.Context, c Cache, key string, ttl time.Duration, compute func() ([]byte, error)) (data []byte, hit bool, err error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}

	data, err = compute()
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, false, nil
}
