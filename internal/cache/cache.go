// Package cache provides the time-bucketed caches used by the data-access
// services. A Cache is an explicit object: build one per process and hand it
// to the services that share it.
package cache

import (
	"sync"
	"time"

	"github.com/IgorGrieder/linkhub/internal/infrastructure/metrics"
)

type entry[V any] struct {
	value      V
	capturedAt time.Time
}

// Cache maps a key to a value and its capture time. An entry older than ttl
// is never returned.
type Cache[V any] struct {
	name string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]entry[V]
}

func New[V any](name string, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		name:    name,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

// WithClock replaces the time source. Tests use it to age entries.
func (c *Cache[V]) WithClock(now func() time.Time) *Cache[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func (c *Cache[V]) TTL() time.Duration { return c.ttl }

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		metrics.CacheLookupsTotal.WithLabelValues(c.name, "miss").Inc()
		return zero, false
	}
	if c.now().Sub(e.capturedAt) >= c.ttl {
		delete(c.entries, key)
		metrics.CacheLookupsTotal.WithLabelValues(c.name, "expired").Inc()
		return zero, false
	}
	metrics.CacheLookupsTotal.WithLabelValues(c.name, "hit").Inc()
	return e.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.SetMany([]string{key}, value)
}

// SetMany stores the same value under several aliases with one capture time.
func (c *Cache[V]) SetMany(keys []string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	at := c.now()
	for _, k := range keys {
		if k == "" {
			continue
		}
		c.entries[k] = entry[V]{value: value, capturedAt: at}
	}
}

// Update rewrites a live entry in place, keeping its capture time. It reports
// whether the key was present and fresh.
func (c *Cache[V]) Update(key string, fn func(V) V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.capturedAt) >= c.ttl {
		return false
	}
	e.value = fn(e.value)
	c.entries[key] = e
	return true
}

func (c *Cache[V]) Delete(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
}

// DeleteFunc drops every entry for which match returns true, expired or not,
// and returns how many were removed.
func (c *Cache[V]) DeleteFunc(match func(key string, v V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if match(k, e.value) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// CleanExpired sweeps entries past the ttl and returns how many were removed.
func (c *Cache[V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.capturedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
