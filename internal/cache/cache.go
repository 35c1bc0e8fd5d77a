package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a small in-memory store whose entries expire after a fixed TTL.
// The provider keeps its session crumb here.
type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New creates a cache holding at most size entries, each living for ttl
func New[V any](size int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		lru: expirable.NewLRU[string, V](size, nil, ttl),
	}
}

// Set adds an item to the cache, replacing any previous value and its expiration
func (c *Cache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Get retrieves an item from the cache by key
// The second return value indicates whether a live entry was found
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Delete removes an item from the cache
func (c *Cache[V]) Delete(key string) {
	c.lru.Remove(key)
}

// Len returns the number of stored items
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
