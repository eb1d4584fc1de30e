package catalog

import (
	"sync"
	"time"
)

// responseCache is a small in-memory TTL cache for proxy responses,
// keyed by request path. Catalog metadata changes slowly, so a few
// hours of staleness is acceptable and saves the proxy's rate budget.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	body    []byte
	expires time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached body for key, or nil if absent or expired.
// Expired entries are removed on access.
func (c *responseCache) Get(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(entry.expires) {
		delete(c.entries, key)
		return nil
	}
	return entry.body
}

// Set stores body under key for the configured TTL. A zero TTL
// disables caching entirely.
func (c *responseCache) Set(key string, body []byte) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistically drop expired entries so the map doesn't grow
	// without bound across long daemon uptimes.
	if len(c.entries) > 256 {
		now := time.Now()
		for k, e := range c.entries {
			if now.After(e.expires) {
				delete(c.entries, k)
			}
		}
	}

	c.entries[key] = cacheEntry{
		body:    body,
		expires: time.Now().Add(c.ttl),
	}
}

// Len reports the number of live entries, expired or not.
func (c *responseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
