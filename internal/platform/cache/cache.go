// Package cache provides an optional Redis-backed read cache for hot
// lookups. When no Redis client is configured every operation is a no-op,
// so callers never need to branch on cache availability.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultTTL is used when callers pass a zero TTL to SetJSON.
const DefaultTTL = 5 * time.Minute

// Cache wraps a Redis client with JSON serialization. A nil inner client
// disables caching entirely. Cache failures are logged and swallowed;
// the database remains the source of truth.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
}

// New returns a Cache backed by client. Pass nil to disable caching.
func New(client *redis.Client, logger zerolog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// Enabled reports whether a Redis client is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON fetches key and unmarshals its value into dest. It returns
// false on a miss, on a disabled cache, or on any Redis error.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if !c.Enabled() {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		c.client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores value under key with the given TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Invalidate removes the given keys. Mutating operations call this so
// stale reads never outlive the TTL window after a write.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidate failed")
	}
}
