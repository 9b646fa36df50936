// Package reqcache is the Request Cache (spec §4.7): key-by-query
// caching of a full Recommendation with TTL, backed by
// golang.org/x/sync/singleflight so concurrent identical requests
// collapse into a single computation. Hit/miss counters back the
// /cache/stats endpoint (spec §9's supplemented cache diagnostics).
package reqcache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pricerecommender/models"
)

// DefaultTTL is CACHE_TTL's default per spec §7.
const DefaultTTL = 3600 * time.Second

type entry struct {
	value     models.Recommendation
	expiresAt time.Time
}

// Cache is safe for concurrent use. Reads are lock-free past the
// initial map lookup; writes are serialized per key via singleflight.
type Cache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]entry
	group singleflight.Group

	hits   uint64
	misses uint64
}

// New builds a Cache with the given TTL. ttl <= 0 falls back to
// DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, items: make(map[string]entry)}
}

// GetOrCompute returns the cached Recommendation for key if present
// and unexpired. Otherwise it invokes compute, publishing the result
// to all callers racing on the same key so only one computation runs —
// the single-flight property in spec §4.7/§5.
func (c *Cache) GetOrCompute(key string, compute func() (models.Recommendation, error)) (models.Recommendation, error) {
	if rec, ok := c.lookup(key); ok {
		c.recordHit()
		return rec, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check: another goroutine may have populated the entry
		// while this one was queued behind the singleflight lock.
		if rec, ok := c.lookup(key); ok {
			return rec, nil
		}

		rec, err := compute()
		if err != nil {
			return models.Recommendation{}, err
		}

		c.mu.Lock()
		c.items[key] = entry{value: rec, expiresAt: time.Now().Add(c.ttl)}
		c.mu.Unlock()

		return rec, nil
	})

	c.recordMiss()
	if err != nil {
		return models.Recommendation{}, err
	}
	return result.(models.Recommendation), nil
}

func (c *Cache) lookup(key string) (models.Recommendation, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return models.Recommendation{}, false
	}
	return e.value, true
}

// Clear evicts every entry and returns the number cleared.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = make(map[string]entry)
	return n
}

// Stats is the /cache/stats wire shape.
type Stats struct {
	Size   int
	Hits   uint64
	Misses uint64
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	size := len(c.items)
	c.mu.RUnlock()

	return Stats{
		Size:   size,
		Hits:   loadCounter(&c.hits),
		Misses: loadCounter(&c.misses),
	}
}

func (c *Cache) recordHit()  { addCounter(&c.hits, 1) }
func (c *Cache) recordMiss() { addCounter(&c.misses, 1) }
