package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Cache stores JSON-encoded results in Redis.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// New connects lazily to the Redis server at addr.
func New(addr string, logger *zap.Logger) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:        addr,
			DialTimeout: 2 * time.Second,
			MaxRetries:  -1,
		}),
		logger: logger,
	}
}

// Close releases the Redis connections.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Memoize returns the cached result stored under key, or calls fn and caches
// its result for ttl. A nil cache or a non-positive ttl disables caching.
// Redis errors are logged and never fail the call.
func Memoize[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if c == nil || ttl <= 0 {
		return fn()
	}

	var result T

	// Try fetching from cache
	cachedData, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(cachedData, &result); jsonErr == nil {
			c.logger.Debug("cache hit", zap.String("key", key))
			return result, nil
		}
	case err != redis.Nil:
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	result, err = fn()
	if err != nil {
		return result, err
	}

	cacheData, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return result, nil
	}
	if err := c.client.Set(ctx, key, cacheData, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}
