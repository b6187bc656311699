package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rowdybard/banterbox/pkg/types"
)

var (
	_ types.Cache = (*RedisCache)(nil)
	_ types.Cache = (*EmptyCache)(nil)
)

// RedisCache implements types.Cache on a redis client. Used to memoize
// advisory classifier judgments for a short window.
type RedisCache struct {
	cli       redis.UniversalClient
	keyPrefix string
}

func NewRedisCache(cli redis.UniversalClient, keyPrefix string) *RedisCache {
	return &RedisCache{cli: cli, keyPrefix: keyPrefix}
}

func (c *RedisCache) key(k string) string {
	if c.keyPrefix == "" {
		return k
	}
	return c.keyPrefix + ":" + k
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.cli.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *RedisCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.cli.SetEx(ctx, c.key(key), value, expiresAt).Err()
}

func (c *RedisCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.cli.Expire(ctx, c.key(key), expiration).Err()
}

// EmptyCache is the fallback when redis is not configured. Get always
// misses, writes are dropped.
type EmptyCache struct{}

func (c *EmptyCache) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (c *EmptyCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return nil
}

func (c *EmptyCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
