package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/fog-offload.net/internal/config"
	"gitlab.com/fog-offload.net/internal/core/ports/primary"
)

// Connect opens a client and pings it, retrying a bounded number of times
func Connect(ctx context.Context, cfg *config.RedisConfig, logger primary.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			logger.Info("Connected to Redis", "addr", cfg.Url)
			return client, nil
		}
		logger.Warn("Failed to connect to Redis, retrying", "addr", cfg.Url, "attempt", i, "error", err)
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(cfg.ConnectRetryDelay):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Url, err)
}
