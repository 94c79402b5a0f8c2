package resultcache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
)

const resultKeyPrefix = "result:"

var _ secondary.ResultCache = (*ResultCache)(nil)

// ResultCache stores task results in Redis with a per-key expiration
type ResultCache struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewResultCache creates a Redis-backed result cache
func NewResultCache(redisClient *redis.Client, logger primary.Logger) *ResultCache {
	return &ResultCache{
		redisClient: redisClient,
		logger:      logger,
	}
}

func (c *ResultCache) key(fingerprint string) string {
	return resultKeyPrefix + fingerprint
}

// Get returns the cached result, found=false when absent or expired
func (c *ResultCache) Get(ctx context.Context, fingerprint string) (string, bool, error) {
	result, err := c.redisClient.Get(ctx, c.key(fingerprint)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached result: %w", err)
	}
	return result, true, nil
}

// Set stores a result that Redis expires after ttl
func (c *ResultCache) Set(ctx context.Context, fingerprint string, result string, ttl time.Duration) error {
	if err := c.redisClient.Set(ctx, c.key(fingerprint), result, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}
