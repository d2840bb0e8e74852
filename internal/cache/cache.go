// Package cache memoizes idempotent engine reads for a bounded window so the
// pollers don't hammer the endpoint with redundant listings. Entries are
// keyed per resource class; the action dispatcher invalidates a class
// immediately after mutating it so the next poll reflects reality instead of
// serving a stale entry for the rest of its TTL.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// Cache is a small TTL cache. It carries its own lock and is never acquired
// while the state store's lock is held. Concurrent fetches of the same
// expired key may both run the fetch; fetches are idempotent listings, so
// single-flight is deliberately not provided.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	hits    uint64
	misses  uint64

	now func() time.Time // test seam
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// GetOrFetch returns the cached value for key when it is younger than ttl,
// otherwise runs fetch and stores the result. A failed fetch caches nothing.
func GetOrFetch[T any](c *Cache, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.expired(c.now()) {
		if value, ok := e.value.(T); ok {
			c.hits++
			c.mu.Unlock()
			return value, nil
		}
	}
	c.misses++
	c.mu.Unlock()

	value, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
	return value, nil
}

// Invalidate evicts every entry whose key starts with prefix. An empty
// prefix clears the whole cache.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prefix == "" {
		clear(c.entries)
		return
	}
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Sweep drops expired entries and returns how many were removed. The slow
// poller calls this periodically so abandoned keys don't accumulate.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats returns hit/miss counters for the debug footer.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len reports the live entry count, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
