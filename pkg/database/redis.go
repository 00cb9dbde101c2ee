package database

import (
	"context"
	"fmt"
	"time"

	"task-manager-api/configs"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis returns nil when REDIS_HOST is unset; callers then run without
// token revocation.
func ConnectRedis(ctx context.Context, cfg configs.Config) (*redis.Client, error) {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}
