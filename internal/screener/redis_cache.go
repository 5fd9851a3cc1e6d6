package screener

import (
	"context"
	"time"

	"github.com/oraclewow/oracle-backend/pkg/logger"
	"github.com/oraclewow/oracle-backend/pkg/redis"
)

// RedisCache is the shared Cache implementation for deployments where
// several instances serve one dashboard. Redis expires entries natively,
// so PurgeExpired has nothing to do.
type RedisCache struct {
	cache  *redis.Cache
	logger *logger.Logger
}

// NewRedisCache creates a Redis-backed quote cache.
func NewRedisCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{
		cache:  redis.NewCache(client, ttl),
		logger: log,
	}
}

// Get returns the cached quote when present and fresh.
func (c *RedisCache) Get(ctx context.Context, symbol string) (*Quote, bool) {
	var quote Quote
	found, err := c.cache.Get(ctx, redis.QuoteKey(symbol), &quote)
	if err != nil {
		// A corrupt entry is a miss, not a failure of the screening batch
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Quote cache read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &quote, true
}

// Set stores a quote under its symbol key.
func (c *RedisCache) Set(ctx context.Context, symbol string, quote *Quote) {
	if err := c.cache.Set(ctx, redis.QuoteKey(symbol), quote); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Quote cache write failed")
	}
}

// PurgeExpired is a no-op: Redis handles TTL expiry itself.
func (c *RedisCache) PurgeExpired(ctx context.Context) int {
	return 0
}
