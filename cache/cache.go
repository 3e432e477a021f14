// ABOUTME: In-memory cache with TTL-based expiration
// ABOUTME: Thread-safe map with lazy expiry and a periodic sweep goroutine

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	data      interface{}
	expiresAt time.Time
}

type Cache struct {
	mu    sync.RWMutex
	store map[string]entry
	ttl   time.Duration
}

// New creates a cache whose entries default to the given TTL.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		store: make(map[string]entry),
		ttl:   ttl,
	}
	go c.sweep()
	return c
}

// Get returns a live entry, expiring it lazily if its TTL has passed.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}
	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.store[key] = entry{data: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes an entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// Flush removes every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.store = make(map[string]entry)
	c.mu.Unlock()
}

// sweep drops expired entries once a minute so abandoned keys do not
// accumulate between reads.
func (c *Cache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, e := range c.store {
			if now.After(e.expiresAt) {
				delete(c.store, key)
			}
		}
		c.mu.Unlock()
	}
}
