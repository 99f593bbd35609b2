package cache

import (
	"container/list"
	"sync"
)

// Cache maps keys to host objects, keeping the most recently used ones.
// When a Put or Obtain takes it past its soft limit, entries are
// released from the least recently used end until three quarters of the
// limit remain. The entry being inserted is always kept.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	limit   int
	order   *list.List // front is most recently used
	items   map[K]*list.Element
	release func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

type item[K comparable, V any] struct {
	key   K
	value V
}

// New creates a cache holding about limit entries; 0 means unlimited.
// release, if not nil, is called for every value that leaves the cache
// through trimming, replacement, Remove or Purge. It runs with the cache
// locked and must not call back into the cache.
func New[K comparable, V any](limit int, release func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		limit:   limit,
		order:   list.New(),
		items:   make(map[K]*list.Element),
		release: release,
	}
}

// Get returns the value for key and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.hits++
		c.order.MoveToFront(e)
		return e.Value.(*item[K, V]).value, true
	}
	c.misses++
	var zero V
	return zero, false
}

// Put stores value under key. A previous value for key is released.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		it := e.Value.(*item[K, V])
		c.free(it)
		it.value = value
		c.order.MoveToFront(e)
		return
	}
	c.insert(key, value)
}

// Obtain returns the value for key, calling create on a miss. create
// runs under the lock, so concurrent callers never create one key twice.
// A failed creation is not cached.
func (c *Cache[K, V]) Obtain(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.hits++
		c.order.MoveToFront(e)
		return e.Value.(*item[K, V]).value, nil
	}
	c.misses++

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.insert(key, value)
	return value, nil
}

// insert adds a new front entry and trims. Caller must hold c.mu.
func (c *Cache[K, V]) insert(key K, value V) {
	c.items[key] = c.order.PushFront(&item[K, V]{key: key, value: value})
	if c.limit <= 0 || c.order.Len() <= c.limit {
		return
	}
	target := max(c.limit*3/4, 1)
	for c.order.Len() > target {
		it := c.order.Remove(c.order.Back()).(*item[K, V])
		delete(c.items, it.key)
		c.free(it)
		c.evictions++
	}
}

// free releases one value. Caller must hold c.mu.
func (c *Cache[K, V]) free(it *item[K, V]) {
	if c.release != nil {
		c.release(it.key, it.value)
	}
}

// Remove releases the entry for key and reports whether it existed.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(e)
	delete(c.items, key)
	c.free(e.Value.(*item[K, V]))
	return true
}

// Purge releases every entry, least recently used first.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for e := c.order.Back(); e != nil; e = e.Prev() {
		c.free(e.Value.(*item[K, V]))
	}
	c.order.Init()
	clear(c.items)
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// Limit returns the soft limit.
func (c *Cache[K, V]) Limit() int { return c.limit }

// Stats returns a snapshot of the counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       c.order.Len(),
		Limit:     c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Limit is the soft limit.
	Limit int
	// Hits and Misses count lookups through Get and Obtain.
	Hits   uint64
	Misses uint64
	// HitRate is Hits over all lookups, 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries trimmed by the soft limit.
	Evictions uint64
}
