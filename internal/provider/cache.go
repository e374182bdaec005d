package provider

import (
	"sync"

	"github.com/mhmtszr/concurrent-swiss-map"
)

// RunCache memoizes successful lookups for the duration of one run.
// Entries are written once and never replaced. Concurrent callers asking
// for the same key share a single fetch; failed fetches are not stored.
type RunCache[V any] struct {
	values *csmap.CsMap[string, V]
	locks  *csmap.CsMap[string, *sync.Mutex]
}

// NewRunCache creates an empty cache.
func NewRunCache[V any]() *RunCache[V] {
	return &RunCache[V]{
		values: csmap.Create[string, V](),
		locks:  csmap.Create[string, *sync.Mutex](),
	}
}

// Get returns the cached value for key.
func (c *RunCache[V]) Get(key string) (V, bool) {
	return c.values.Load(key)
}

// Do returns the cached value for key, calling fetch to fill it on a miss.
func (c *RunCache[V]) Do(key string, fetch func() (V, error)) (V, error) {
	if v, ok := c.values.Load(key); ok {
		return v, nil
	}

	c.locks.SetIfAbsent(key, &sync.Mutex{})
	mu, _ := c.locks.Load(key)
	mu.Lock()
	defer mu.Unlock()

	if v, ok := c.values.Load(key); ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	c.values.SetIfAbsent(key, v)
	return v, nil
}

// Len returns the number of cached values.
func (c *RunCache[V]) Len() int {
	return c.values.Count()
}
