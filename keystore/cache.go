package keystore

import (
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Cache is a simple in-memory TTL cache keyed by string.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[T]
	ttl     time.Duration
	now     func() time.Time
}

func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]cacheEntry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *Cache[T]) fresh(e cacheEntry[T]) bool {
	return c.now().Sub(e.fetchedAt) < c.ttl
}

// GetOrFetch returns a cached value or calls fetch to populate it.
func (c *Cache[T]) GetOrFetch(key string, fetch func() (T, error)) (T, error) {
	c.mu.RLock()
	if e, ok := c.entries[key]; ok && c.fresh(e) {
		c.mu.RUnlock()
		return e.value, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if e, ok := c.entries[key]; ok && c.fresh(e) {
		return e.value, nil
	}

	val, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	c.entries[key] = cacheEntry[T]{value: val, fetchedAt: c.now()}
	return val, nil
}

func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge drops every entry and returns how many were held.
func (c *Cache[T]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	clear(c.entries)
	return n
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
