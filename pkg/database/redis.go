package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"tugas-go/configs"
)

// ConnectRedis returns a pinged client. The caller decides whether a
// failure is fatal; for the task cache it is not.
func ConnectRedis(ctx context.Context, cfg configs.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	return client, nil
}
