// Package memory provides a small TTL key-value cache used to mirror
// terminal task results for operational lookups. It is not the results
// cache of record; the scheduler owns that.
package memory

import (
	"sync"
	"time"
)

const (
	DefaultMaxSize = 1000
	DefaultTTL     = time.Hour
)

// Cache is a mutex-guarded map with per-key expiry. Expired entries are
// dropped lazily on Get and eagerly by CleanupExpired.
type Cache struct {
	entries map[string]entry
	maxSize int
	mu      sync.Mutex
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Stats describes cache occupancy.
type Stats struct {
	Size         int     `json:"cache_size"`
	MaxSize      int     `json:"max_size"`
	UsagePercent float64 `json:"usage_percent"`
}

func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		entries: make(map[string]entry),
		maxSize: maxSize,
	}
}

// Set stores a value under key for ttl. A non-positive ttl falls back to
// DefaultTTL. Returns false for an empty key or a full cache.
func (c *Cache) Set(key string, value any, ttl time.Duration) bool {
	if key == "" {
		return false
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		return false
	}
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return true
}

// Get returns the value for key if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Delete removes a key, reporting whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// CleanupExpired removes expired entries, returning how many were dropped.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// GetStats reports occupancy after purging expired entries.
func (c *Cache) GetStats() Stats {
	c.CleanupExpired()

	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:         len(c.entries),
		MaxSize:      c.maxSize,
		UsagePercent: float64(len(c.entries)) / float64(c.maxSize) * 100,
	}
}
