package landsearch

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
	"github.com/couchcryptid/fire-detection-etl/internal/observability"
)

// CachedLookup wraps a RegionLookup with an in-memory LRU cache. Detections
// from the same satellite pass cluster tightly, so neighboring coordinates
// repeat often.
type CachedLookup struct {
	inner   domain.RegionLookup
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedLookup creates a cache decorator around a region lookup.
func NewCachedLookup(inner domain.RegionLookup, maxEntries int, metrics *observability.Metrics) *CachedLookup {
	return &CachedLookup{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedLookup) ReverseLookup(ctx context.Context, lat, lon float64) (domain.RegionResult, error) {
	// Two decimal places ≈ 1km grid, matching the nominal MODIS pixel size.
	key := fmt.Sprintf("%.2f,%.2f", lat, lon)
	if result, ok := c.cache.get(key); ok {
		c.metrics.RegionCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.RegionCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ReverseLookup(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if result.State != "" || result.PlaceName != "" {
		c.cache.put(key, result)
	}
	return result, nil
}

// lruCache is a simple thread-safe LRU cache for RegionResults.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.RegionResult
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.RegionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.RegionResult{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.RegionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
