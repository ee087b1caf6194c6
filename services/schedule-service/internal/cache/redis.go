package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewRedisCache(rdb *redis.Client, logger *slog.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed, treating as miss", "key", key, "err", err)
		}
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed, dropping entry", "key", key, "err", err)
	}
}

// Invalidate clears every key in the kind's namespace via SCAN. The pattern
// match covers both the plain page/limit keys and the serialized-args keys.
func (c *RedisCache) Invalidate(ctx context.Context, kind string) {
	iter := c.rdb.Scan(ctx, 0, kind+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			c.deleteKeys(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache invalidation scan failed", "kind", kind, "err", err)
		return
	}
	if len(keys) > 0 {
		c.deleteKeys(ctx, keys)
	}
}

func (c *RedisCache) deleteKeys(ctx context.Context, keys []string) {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation delete failed", "err", err)
	}
}
