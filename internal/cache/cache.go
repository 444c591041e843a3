// Package cache wraps hashicorp's expirable LRU for the render cache.
// Entries expire on a short TTL; mutations purge explicitly so an unlock
// state transition is never served stale.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New creates a TTL cache holding at most size entries.
func New[V any](size int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		lru: expirable.NewLRU[string, V](size, nil, ttl),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *Cache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

func (c *Cache[V]) Delete(key string) {
	c.lru.Remove(key)
}

// Purge drops every entry. Called from the content-mutation hooks.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}

func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
