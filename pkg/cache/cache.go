// Package cache provides a best-effort read-through cache for service results.
// Cache failures are logged and never surface to callers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrMiss is returned by a Store when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key/value backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DelPattern removes every key matching a glob pattern such as "user:1:*".
	DelPattern(ctx context.Context, pattern string) error
	Ping(ctx context.Context) error
	Close() error
}

// Cache stores JSON values in a Store.
type Cache struct {
	store  Store
	logger *slog.Logger
}

// New wraps store.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{store: store, logger: logger.With("module", "cache")}
}

// Get decodes the cached value of key into out. It reports false on a miss or
// on any backend or decoding error.
func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	data, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return false
	}

	if err != nil {
		c.logger.WarnContext(ctx, "Cache get error", "key", key, "error", err)

		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.WarnContext(ctx, "Cache decode error", "key", key, "error", err)

		return false
	}

	return true
}

// Set stores value under key for ttl. A zero ttl never expires.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "Cache encode error", "key", key, "error", err)

		return
	}

	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.WarnContext(ctx, "Cache set error", "key", key, "error", err)
	}
}

// Del removes keys.
func (c *Cache) Del(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	if err := c.store.Del(ctx, keys...); err != nil {
		c.logger.WarnContext(ctx, "Cache delete error", "keys", keys, "error", err)
	}
}

// DelPattern removes every key matching pattern.
func (c *Cache) DelPattern(ctx context.Context, pattern string) {
	if err := c.store.DelPattern(ctx, pattern); err != nil {
		c.logger.WarnContext(ctx, "Cache delete pattern error", "pattern", pattern, "error", err)
	}
}

// InvalidateUserResource drops the user's cached entries of one resource.
func (c *Cache) InvalidateUserResource(ctx context.Context, userID int64, resource string) {
	c.DelPattern(ctx, fmt.Sprintf("user:%d:%s*", userID, resource))
}

// Ping checks the backend.
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Wrap returns the cached value of key, or calls fn and caches its result.
// Errors from fn are returned and not cached.
func Wrap[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	result, err := fn(ctx)
	if err != nil {
		return result, err
	}

	c.Set(ctx, key, result, ttl)

	return result, nil
}

// UserKey builds "user:{id}:{resource}" or "user:{id}:{resource}:{resourceID}".
func UserKey(userID int64, resource string, resourceID ...string) string {
	if len(resourceID) > 0 && resourceID[0] != "" {
		return fmt.Sprintf("user:%d:%s:%s", userID, resource, resourceID[0])
	}

	return fmt.Sprintf("user:%d:%s", userID, resource)
}

// ResourceKey builds "{resource}:{id}".
func ResourceKey(resource, id string) string {
	return resource + ":" + id
}
