package screener

import (
	"context"
	"sync"
	"time"

	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// Cache stores normalized quotes by symbol for the freshness window.
// Get must treat "never cached" and "expired" identically: both are misses.
type Cache interface {
	Get(ctx context.Context, symbol string) (*Quote, bool)
	Set(ctx context.Context, symbol string, quote *Quote)
	// PurgeExpired drops stale entries and returns how many were removed.
	// It is hygiene only; Get already filters by age.
	PurgeExpired(ctx context.Context) int
}

// cacheEntry pairs a quote with its insertion time.
type cacheEntry struct {
	quote      Quote
	insertedAt time.Time
}

// MemoryCache is the in-process Cache implementation.
// Expiry is lazy: stale entries are skipped by Get and removed by the
// scheduled PurgeExpired pass.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	logger  *logger.Logger
}

// NewMemoryCache creates an in-memory quote cache.
func NewMemoryCache(ttl time.Duration, log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		logger:  log,
	}
}

// Get returns the cached quote when the entry is younger than the TTL.
func (c *MemoryCache) Get(ctx context.Context, symbol string) (*Quote, bool) {
	c.mu.RLock()
	entry, ok := c.entries[symbol]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(entry.insertedAt) > c.ttl {
		// Stale entries are indistinguishable from misses
		return nil, false
	}

	quote := entry.quote
	return &quote, true
}

// Set stores a quote with the current timestamp. Always overwrites;
// entries are idempotent snapshots, so last-write-wins is fine.
func (c *MemoryCache) Set(ctx context.Context, symbol string, quote *Quote) {
	c.mu.Lock()
	c.entries[symbol] = cacheEntry{quote: *quote, insertedAt: time.Now()}
	c.mu.Unlock()
}

// PurgeExpired removes entries older than the TTL.
func (c *MemoryCache) PurgeExpired(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	count := 0
	for symbol, entry := range c.entries {
		if now.Sub(entry.insertedAt) > c.ttl {
			delete(c.entries, symbol)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Purged expired quotes from cache")
	}

	return count
}

// Len returns the number of entries, fresh or stale.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics for the dashboard.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{Total: len(c.entries)}
	now := time.Now()
	for _, entry := range c.entries {
		if now.Sub(entry.insertedAt) > c.ttl {
			stats.Stale++
		}
	}
	stats.Fresh = stats.Total - stats.Stale

	return stats
}

// CacheStats summarizes cache occupancy.
type CacheStats struct {
	Total int `json:"total"`
	Fresh int `json:"fresh"`
	Stale int `json:"stale"`
}
