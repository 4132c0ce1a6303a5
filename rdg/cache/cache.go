// Package cache implements the UID-keyed, reference-counted, deferred-eviction resource
// cache described for buffers, textures, samplers, shader modules, meshes, and materials.
// Every kind gets its own Cache[T] instance; sampler deduplication is layered on top via
// SamplerKey.
package cache

import (
	"sync"

	"github.com/Carmen-Shannon/rdg-forge/rdg/uid"
)

// Loader constructs a resource on a cache miss. It is invoked at most once per UID until the
// entry is evicted.
type Loader[T any] func() (T, error)

type entry[T any] struct {
	handle    T
	refCount  int
	countdown int
}

// Cache is a UID-keyed, reference-counted cache for one resource kind. The zero value is not
// usable; construct with New.
//
// Entries are not evicted the moment their reference count drops to the cache's own internal
// hold — clean_cache() tick-based eviction gives transient zero-referee gaps (a resource
// released this frame and immediately reacquired next frame) a grace window before the
// underlying GPU resource is actually destroyed.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[uid.UID]*entry[T]
}

// New creates an empty cache for one resource kind.
func New[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[uid.UID]*entry[T])}
}

// Load returns the cached handle for id, invoking loader on a miss. The second return value
// reports whether the loader ran (a cold load) as opposed to a cache hit. Every successful
// Load increments the entry's reference count; callers must pair it with Release once the
// handle is no longer held.
//
// Parameters:
//   - id: the resource's UID (see package uid)
//   - loader: invoked only on a miss
//
// Returns:
//   - the resource handle
//   - wasNew: true if loader was invoked
//   - error: propagated from loader, if any
func (c *Cache[T]) Load(id uid.UID, loader Loader[T]) (T, bool, error) {
	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		e.refCount++
		e.countdown = 0
		h := e.handle
		c.mu.Unlock()
		return h, false, nil
	}
	c.mu.Unlock()

	handle, err := loader()
	if err != nil {
		var zero T
		return zero, true, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		// Lost the race with a concurrent Load for the same id; keep the winner's handle.
		e.refCount++
		e.countdown = 0
		return e.handle, false, nil
	}
	c.entries[id] = &entry[T]{handle: handle, refCount: 1, countdown: 0}
	return handle, true, nil
}

// Release decrements id's reference count. It does not evict the entry immediately — eviction
// only happens during Clean, on the deferred-countdown schedule.
func (c *Cache[T]) Release(id uid.UID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok && e.refCount > 0 {
		e.refCount--
	}
}

// Peek returns the cached handle for id without affecting its reference count, for read-only
// inspection (e.g. the graph looking up an already-resident resource by its devirtualization
// id). The second return value reports whether id is present.
func (c *Cache[T]) Peek(id uid.UID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	return e.handle, true
}

// Clean runs one eviction tick: every entry with a reference count at or below the
// cache-plus-one-outstanding-handle threshold (<=1, since the cache's own map entry is not
// itself counted as a reference here) has its countdown decremented; once an entry's
// countdown passes -5 it is removed and release is invoked on its handle so backend resources
// can be freed.
func (c *Cache[T]) Clean(release func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if e.refCount <= 1 {
			e.countdown--
		} else {
			e.countdown = 0
		}
		if e.countdown < -5 {
			delete(c.entries, id)
			if release != nil {
				release(e.handle)
			}
		}
	}
}

// Len reports the number of resident entries, for tests and diagnostics.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
