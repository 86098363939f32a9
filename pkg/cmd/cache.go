package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/campaigner/pkg/cache"
)

// NewCache connects to Redis, or keeps entries in process memory when
// redisURL is empty.
func NewCache(ctx context.Context, redisURL string, logger *slog.Logger) (*cache.Cache, error) {
	if redisURL == "" {
		logger.InfoContext(ctx, "REDIS_URL not set, using in-memory cache")

		return cache.New(cache.NewMemoryStore(), logger), nil
	}

	store, err := cache.NewRedisStore(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return cache.New(store, logger), nil
}
