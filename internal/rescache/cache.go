// Package rescache is the process-lifetime response cache. Instances are
// constructed and injected explicitly; there is no package-level store.
// Concurrent requests for the same key may race to populate an entry —
// last writer wins, which is safe because cached values are idempotent
// functions of their key.
package rescache

import (
	"strings"
	"sync"
	"time"
)

// DefaultSweepThreshold is the entry count above which Put sweeps expired
// entries. Sweeping is opportunistic, never timer-driven.
const DefaultSweepThreshold = 256

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// expired reports whether the entry is logically absent at now. An entry
// is valid iff now - storedAt < ttl, strictly.
func (e entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// Cache is a thread-safe key→value store with per-entry TTL.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	threshold int
	now       func() time.Time
}

// New creates a cache that sweeps when the entry count exceeds threshold;
// a non-positive threshold uses DefaultSweepThreshold.
func New(threshold int) *Cache {
	if threshold <= 0 {
		threshold = DefaultSweepThreshold
	}
	return &Cache{
		entries:   make(map[string]entry),
		threshold: threshold,
		now:       time.Now,
	}
}

// Key builds a composite cache key from an entity identifier and its
// parameter set. There is no prefix invalidation; callers clearing one
// entity must delete the exact composite keys.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Get returns the value stored under key while it is still live.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expired(c.now()) {
		return nil, false
	}
	return e.value, true
}

// Put stores a value unconditionally, overwriting any previous entry, and
// opportunistically sweeps expired entries when the store has grown past
// the threshold.
func (c *Cache) Put(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
	if len(c.entries) > c.threshold {
		c.sweepLocked()
	}
}

// Delete removes the exact key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Sweep removes every entry that is expired at call time.
func (c *Cache) Sweep() {
	c.mu.Lock()
	c.sweepLocked()
	c.mu.Unlock()
}

// Len returns the number of physically present entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}
