// Package redis opens the shared Redis client used for refresh tokens,
// rate limits and the transcript cache.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/viralscript/viralscript/internal/config"
)

func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := HealthCheck(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	slog.Info("connected to Redis", "addr", cfg.Addr(), "db", cfg.DB)
	return client, nil
}

// HealthCheck backs the "redis" readiness probe.
func HealthCheck(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}
