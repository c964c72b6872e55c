// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import "sync"

// Cache is a thread-safe LRU cache with a hard entry limit.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*lruNode[K, V]
	lru     lruList[K, V]
	limit   int
	onEvict func(K, V)

	hits   uint64
	misses uint64
	evicts uint64
}

// New creates a cache holding at most limit entries. A limit of 0 or less
// means unlimited. onEvict, if non-nil, is called for every entry that
// leaves the cache, with the cache lock held.
func New[K comparable, V any](limit int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*lruNode[K, V]),
		limit:   limit,
		onEvict: onEvict,
	}
}

// GetOrCreate returns the cached value for key, or calls create and caches
// its result. create runs under the cache lock, so concurrent callers never
// build the same key twice. A create error is returned and nothing is cached.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.entries[key]; ok {
		c.hits++
		c.lru.MoveToFront(node)
		return node.value, nil
	}
	c.misses++

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = c.lru.PushFront(key, value)
	c.evictOverflow()
	return value, nil
}

// Clear removes every entry, calling the eviction callback for each.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for node := c.lru.Back(); node != nil; node = c.lru.Back() {
		c.removeNode(node)
	}
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evicts,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// evictOverflow drops least recently used entries beyond the limit.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictOverflow() {
	if c.limit <= 0 {
		return
	}
	for len(c.entries) > c.limit {
		c.removeNode(c.lru.Back())
		c.evicts++
	}
}

// removeNode drops node and runs the eviction callback.
// Caller must hold c.mu.
func (c *Cache[K, V]) removeNode(node *lruNode[K, V]) {
	c.lru.Remove(node)
	delete(c.entries, node.key)
	if c.onEvict != nil {
		c.onEvict(node.key, node.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}
