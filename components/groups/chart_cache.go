package groups

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// DefaultChartCacheSize bounds a ChartCache built without an explicit size.
const DefaultChartCacheSize = 128

// ChartCache keeps rendered charts for a TTL. Concurrent misses on one key
// share a single render, and the entry closest to expiry is evicted once the
// cache is full.
type ChartCache struct {
	ttl   time.Duration
	limit int
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]chartEntry
	hits    uint64
	misses  uint64

	flight singleflight.Group
}

type chartEntry struct {
	html    string
	expires time.Time
}

// ChartCacheStats reports cache effectiveness.
type ChartCacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// NewChartCache builds a cache holding up to DefaultChartCacheSize charts.
// A non-positive TTL disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return NewBoundedChartCache(ttl, DefaultChartCacheSize)
}

// NewBoundedChartCache builds a cache holding at most limit charts.
func NewBoundedChartCache(ttl time.Duration, limit int) *ChartCache {
	if limit <= 0 {
		limit = DefaultChartCacheSize
	}
	return &ChartCache{
		ttl:     ttl,
		limit:   limit,
		now:     time.Now,
		entries: make(map[string]chartEntry),
	}
}

// GetOrRender returns the cached chart for key or renders it. Failed renders
// are not stored.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	if html, ok := c.lookup(key); ok {
		return html, nil
	}
	v, err, _ := c.flight.Do(key, func() (any, error) {
		html, err := render()
		if err != nil {
			return "", err
		}
		c.store(key, html)
		return html, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Purge drops every entry. Reloading the dataset calls it.
func (c *ChartCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Stats returns a snapshot of the cache counters.
func (c *ChartCache) Stats() ChartCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChartCacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

func (c *ChartCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if ok && c.now().Before(entry.expires) {
		c.hits++
		return entry.html, true
	}
	if ok {
		delete(c.entries, key)
	}
	c.misses++
	return "", false
}

func (c *ChartCache) store(key, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.limit {
		c.evict(now)
	}
	c.entries[key] = chartEntry{html: html, expires: now.Add(c.ttl)}
}

// evict removes expired entries, or the one expiring soonest when none have.
func (c *ChartCache) evict(now time.Time) {
	var (
		victim string
		oldest time.Time
	)
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
			continue
		}
		if victim == "" || entry.expires.Before(oldest) {
			victim, oldest = key, entry.expires
		}
	}
	if len(c.entries) >= c.limit && victim != "" {
		delete(c.entries, victim)
	}
}

// rowsHash fingerprints the charted rows for the cache key.
func rowsHash(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "invalid"
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:12])
}
