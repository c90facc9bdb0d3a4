// Package failure tracks consecutive revalidation failures per cache entry
// identifier, feeding the back-off delay the async revalidator applies
// before retrying a flaky origin.
package failure

import (
	"math"
	"sync"

	"github.com/segmentio/agecache"
)

const defaultMaxSize = 1000

// Cache is a bounded mapping from identifier to consecutive-failure count,
// per spec.md §4.12. Overflow eviction and per-key mutation both delegate to
// github.com/segmentio/agecache's LRU-with-age store, so the entry evicted
// under capacity pressure is whichever agecache's own recency/age policy
// picks rather than a hand-tracked oldest-creation-instant scan.
type Cache struct {
	mu    sync.Mutex
	inner *agecache.Cache
}

// New returns a Cache bounded at maxSize entries (default 1000 when
// maxSize <= 0).
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &Cache{
		inner: agecache.New(agecache.Config{
			Capacity: maxSize,
			// No expiry: a failure count is evicted only by capacity
			// pressure or an explicit Reset, never by age alone.
			Expiry: 0,
		}),
	}
}

// GetCount returns the current failure count for id, or 0 if unknown.
func (c *Cache) GetCount(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.inner.Get(id)
	if !ok {
		return 0
	}
	return v.(int)
}

// Reset clears the failure count for id, called after a successful
// revalidation.
func (c *Cache) Reset(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Delete(id)
}

// Increment bumps id's failure count by one, saturating at math.MaxInt32,
// and returns the new count.
func (c *Cache) Increment(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	if v, ok := c.inner.Get(id); ok {
		count = v.(int)
	}
	if count < math.MaxInt32 {
		count++
	}
	c.inner.Set(id, count)
	return count
}

// Len reports the number of tracked identifiers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}
