package marketdata

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/pkg/logger"
	"github.com/wonny/alphalens/pkg/redis"
)

// CachedSource wraps a PriceSource with an explicit keyed cache: an
// in-memory tier and an optional Redis tier. Entries expire after ttl and
// can be invalidated by key or by ticker. Empty results are never cached.
// ⭐ SSOT: 가격 조회 캐싱은 이 구조체에서만
type CachedSource struct {
	source contracts.PriceSource
	remote *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry

	hits       atomic.Int64
	remoteHits atomic.Int64
	misses     atomic.Int64
}

type cacheEntry struct {
	series   contracts.PriceSeries
	storedAt time.Time
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalCount int   `json:"total_count"`
	FreshCount int   `json:"fresh_count"`
	StaleCount int   `json:"stale_count"`
	Hits       int64 `json:"hits"`
	RemoteHits int64 `json:"remote_hits"`
	Misses     int64 `json:"misses"`
}

// NewCachedSource creates a cached source. remote may be nil; a ttl <= 0
// disables caching.
func NewCachedSource(source contracts.PriceSource, remote *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedSource {
	return &CachedSource{
		source:  source,
		remote:  remote,
		ttl:     ttl,
		logger:  log,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Key identifies a fetch of ticker over [start, end]
func Key(ticker string, start, end time.Time) string {
	return redis.PricesKey(contracts.NormalizeTicker(ticker), contracts.Day(start), contracts.Day(end))
}

// FetchPrices serves from the local tier, then Redis, then the source
func (c *CachedSource) FetchPrices(ctx context.Context, ticker string, start, end time.Time) (contracts.PriceSeries, error) {
	if c.ttl <= 0 {
		return c.source.FetchPrices(ctx, ticker, start, end)
	}

	key := Key(ticker, start, end)

	if series, ok := c.getLocal(key); ok {
		c.hits.Add(1)
		return series, nil
	}

	if c.remote != nil {
		var series contracts.PriceSeries
		found, err := c.remote.Get(ctx, key, &series)
		if err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Remote cache read failed")
		}
		if found && !series.Empty() {
			c.remoteHits.Add(1)
			c.setLocal(key, series)
			return series, nil
		}
	}

	c.misses.Add(1)
	series, err := c.source.FetchPrices(ctx, ticker, start, end)
	if err != nil {
		return contracts.PriceSeries{}, err
	}
	if series.Empty() {
		return series, nil
	}

	c.setLocal(key, series)
	if c.remote != nil {
		if err := c.remote.Set(ctx, key, series, c.ttl); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Remote cache write failed")
		}
	}

	return series, nil
}

func (c *CachedSource) getLocal(key string) (contracts.PriceSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		return contracts.PriceSeries{}, false
	}
	return e.series, true
}

func (c *CachedSource) setLocal(key string, series contracts.PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{series: series, storedAt: c.now()}
}

// Invalidate drops one key from both tiers
func (c *CachedSource) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.remote != nil {
		return c.remote.Delete(ctx, key)
	}
	return nil
}

// InvalidateTicker drops every cached range of ticker and returns the number
// of entries removed from the local tier
func (c *CachedSource) InvalidateTicker(ctx context.Context, ticker string) (int, error) {
	ticker = contracts.NormalizeTicker(ticker)
	prefix := redis.PricesTickerPrefix(ticker)

	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if c.remote != nil {
		if _, err := c.remote.DeleteByPrefix(ctx, prefix); err != nil {
			return removed, err
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"removed": removed,
	}).Info("Invalidated cached prices")

	return removed, nil
}

// Purge clears the local tier
func (c *CachedSource) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	c.logger.Info("Cleared price cache")
}

// CleanStale removes expired entries from the local tier
func (c *CachedSource) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned stale prices from cache")
	}
	return count
}

// Len returns the number of local entries
func (c *CachedSource) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Stats returns cache statistics
func (c *CachedSource) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{
		TotalCount: len(c.entries),
		Hits:       c.hits.Load(),
		RemoteHits: c.remoteHits.Load(),
		Misses:     c.misses.Load(),
	}

	now := c.now()
	for _, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			stats.StaleCount++
		}
	}
	stats.FreshCount = stats.TotalCount - stats.StaleCount

	return stats
}
