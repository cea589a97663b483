package cache

import (
	"context"
	"sync"
	"time"
)

// TTLCache is a small in-memory key/value store whose entries expire.
// It is process-local; every instance of the agent keeps its own copy.
type TTLCache[V any] struct {
	mu   sync.Mutex
	data map[string]entry[V]
	now  func() time.Time
}

type entry[V any] struct {
	value  V
	expiry time.Time
}

// NewTTLCache creates a new empty TTL cache.
func NewTTLCache[V any]() *TTLCache[V] {
	return &TTLCache[V]{
		data: make(map[string]entry[V]),
		now:  time.Now,
	}
}

// Get returns the value stored under key when it has not expired.
// Expired entries are pruned on access.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.get(key)
}

// Set stores value under key for ttl and prunes expired entries.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prune()
	c.data[key] = entry[V]{value: value, expiry: c.now().Add(ttl)}
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Failed loads are not cached.
func (c *TTLCache[V]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	c.Set(key, value, ttl)

	return value, nil
}

func (c *TTLCache[V]) get(key string) (V, bool) {
	var zero V

	e, ok := c.data[key]
	if !ok {
		return zero, false
	}

	if c.now().After(e.expiry) {
		delete(c.data, key)
		return zero, false
	}

	return e.value, true
}

func (c *TTLCache[V]) prune() {
	now := c.now()

	for key, e := range c.data {
		if now.After(e.expiry) {
			delete(c.data, key)
		}
	}
}
