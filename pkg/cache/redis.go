package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in redis under a key prefix, using redis
// expiry for ttl.
type RedisCache struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedisCache creates a cache on its own client. Close closes the client.
func NewRedisCache(opts *redis.Options, prefix string) *RedisCache {
	return &RedisCache{client: redis.NewClient(opts), prefix: prefix, owned: true}
}

// NewRedisCacheFromClient creates a cache on an existing client. Close leaves
// the client open.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

func (c *RedisCache) Close() error {
	if c.owned {
		return c.client.Close()
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
