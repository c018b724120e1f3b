package utils

import (
	"context"
	"fmt"
	"time"

	"vendora/config"

	"github.com/go-redis/redis/v8"
)

// NewCacheClient builds the Redis client used for short-lived caches
// (availability lookups). Constructed once in main and injected; there is no
// package-level client.
func NewCacheClient(cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}
