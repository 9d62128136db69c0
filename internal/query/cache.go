// Package query coordinates the backend calls: keyed TTL caching, the
// coverage → install-slots dependency gate, one-shot mutations, and the
// health poll. It is the only layer that decides when a network request is
// actually issued.
package query

import (
	"strings"
	"sync"
	"time"
)

// entry is one cached response with its fetch time.
type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache maps request keys to values with time-based staleness. Each key also
// carries a version counter so a response computed for superseded parameters
// can be recognized and discarded (last-writer-by-key, not by time).
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	versions map[string]uint64
	now      func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]entry),
		versions: make(map[string]uint64),
		now:      time.Now,
	}
}

// Get returns the cached value for key when it is still fresh under ttl.
func (c *Cache) Get(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

// Begin marks the start of a fetch for key and returns a version token. A
// later Begin for the same key supersedes this one.
func (c *Cache) Begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key]++
	return c.versions[key]
}

// Complete stores value under key only when token is still the current
// version. Returns false when the response was superseded and dropped.
func (c *Cache) Complete(key string, token uint64, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[key] != token {
		return false
	}
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
	return true
}

// Put stores value under key unconditionally.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key]++
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
}

// Invalidate drops a single key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.versions[key]++
}

// InvalidatePrefix drops every key with the given prefix. Checkout uses this
// to flush all install-slot entries after a slot is consumed.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			c.versions[k]++
		}
	}
}
