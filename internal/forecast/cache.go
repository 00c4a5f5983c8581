package forecast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"agro-advisory/internal/models"
	"agro-advisory/pkg/metrics"
)

// CachedProvider wraps a Provider with a TTL cache so repeated advisory
// requests for the same district reuse one upstream fetch. Failed
// fetches are not cached, so transient provider errors retry on the
// next request.
type CachedProvider struct {
	inner   Provider
	clock   clockwork.Clock
	metrics *metrics.Collector

	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	forecast  []models.DailyForecast
	fetchedAt time.Time
}

// NewCachedProvider creates a cache decorator around a forecast
// provider.
func NewCachedProvider(inner Provider, ttl time.Duration, maxEntries int, clock clockwork.Clock, metricsCollector *metrics.Collector) *CachedProvider {
	return &CachedProvider{
		inner:      inner,
		clock:      clock,
		metrics:    metricsCollector,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]cacheEntry),
	}
}

// Forecast returns a cached forecast when fresh, fetching otherwise.
func (c *CachedProvider) Forecast(ctx context.Context, lat, lon float64, days int) ([]models.DailyForecast, error) {
	key := fmt.Sprintf("%.4f,%.4f,%d", lat, lon, days)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.clock.Since(entry.fetchedAt) < c.ttl {
		c.mu.Unlock()
		c.metrics.ForecastCacheHits.Inc()
		return entry.forecast, nil
	}
	c.mu.Unlock()

	c.metrics.ForecastCacheMisses.Inc()

	forecast, err := c.inner.Forecast(ctx, lat, lon, days)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictExpired()
		// Still full after dropping expired entries: drop everything
		// rather than grow without bound. The district registry is
		// small, so this is a rare reset, not a thrash.
		if len(c.entries) >= c.maxEntries {
			c.entries = make(map[string]cacheEntry)
		}
	}

	c.entries[key] = cacheEntry{
		forecast:  forecast,
		fetchedAt: c.clock.Now(),
	}

	return forecast, nil
}

// evictExpired removes entries past their TTL. Caller holds the lock.
func (c *CachedProvider) evictExpired() {
	for key, entry := range c.entries {
		if c.clock.Since(entry.fetchedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
}
