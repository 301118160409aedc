// Package cache is a small per-key TTL cache with single-flight loading.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// TTL caches one value per key for a fixed duration. Concurrent misses for the
// same key share a single load. Failed loads are not cached.
type TTL[V any] struct {
	ttl  time.Duration
	load func(ctx context.Context, key string) (V, error)
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[V]
	group   singleflight.Group
}

func NewTTL[V any](ttl time.Duration, load func(ctx context.Context, key string) (V, error)) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		load:    load,
		now:     time.Now,
		entries: map[string]entry[V]{},
	}
}

// WithClock replaces the clock used for expiry.
func (c *TTL[V]) WithClock(now func() time.Time) *TTL[V] {
	if now != nil {
		c.now = now
	}
	return c
}

func (c *TTL[V]) Get(ctx context.Context, key string) (V, error) {
	if v, ok := c.fresh(key); ok {
		return v, nil
	}
	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.fresh(key); ok {
			return v, nil
		}
		v, err := c.load(ctx, key)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.entries[key] = entry[V]{value: v, fetchedAt: c.now()}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *TTL[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *TTL[V]) fresh(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetchedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}
