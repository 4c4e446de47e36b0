// Package cache holds short-lived, per-category memoization on top of
// go-cache. Values are wrapped with the time they were stored.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Entry is a cached value together with the time it was stored.
type Entry[T any] struct {
	Key      string
	Value    T
	StoredAt time.Time
}

// Cache memoizes values of one feature category for a fixed TTL.
// Expiry is checked when an entry is read. Caches built with New never sweep
// in the background; NewSweeping also drops expired entries periodically.
type Cache[T any] struct {
	name  string
	ttl   time.Duration
	store *gocache.Cache
}

// New creates a Cache whose entries are treated as absent once older than ttl.
func New[T any](name string, ttl time.Duration) *Cache[T] {
	// A zero cleanup interval keeps go-cache from starting its janitor.
	return &Cache[T]{
		name:  name,
		ttl:   ttl,
		store: gocache.New(ttl, 0),
	}
}

// NewSweeping creates a Cache that also removes expired entries every sweep.
// Use it when keys are unbounded and may never be read again.
func NewSweeping[T any](name string, ttl, sweep time.Duration) *Cache[T] {
	return &Cache[T]{
		name:  name,
		ttl:   ttl,
		store: gocache.New(ttl, sweep),
	}
}

// Get returns the value stored under key if it has not expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	entry, ok := c.Entry(key)
	return entry.Value, ok
}

// Entry returns the full entry stored under key if it has not expired.
func (c *Cache[T]) Entry(key string) (Entry[T], bool) {
	v, found := c.store.Get(key)
	if !found {
		return Entry[T]{}, false
	}
	entry, ok := v.(Entry[T])
	if !ok {
		return Entry[T]{}, false
	}
	return entry, true
}

// Put stores value under key, replacing any previous entry.
func (c *Cache[T]) Put(key string, value T) {
	c.store.Set(key, Entry[T]{
		Key:      key,
		Value:    value,
		StoredAt: time.Now(),
	}, gocache.DefaultExpiration)
}

// Len returns the number of stored entries, including expired ones not yet read.
func (c *Cache[T]) Len() int {
	return c.store.ItemCount()
}

// TTL returns the lifetime of an entry.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// Name returns the feature category of the cache.
func (c *Cache[T]) Name() string {
	return c.name
}
