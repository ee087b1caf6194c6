package redisx

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/clinicbook/clinicbook/libs/config"
)

// OpenFromEnv builds a client from REDIS_ADDR / REDIS_PASSWORD / REDIS_DB.
// Returns nil when REDIS_ADDR is unset so callers can fall back to in-memory
// implementations.
func OpenFromEnv() *redis.Client {
	addr := config.String("REDIS_ADDR", "")
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0),
	})
}

func ReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if rdb == nil {
			return errors.New("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
}
