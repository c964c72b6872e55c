// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a bounded LRU cache for objects that own external
// resources, such as compiled GPU pipelines.
//
// Evicted and cleared entries are handed to an eviction callback so
// the owner can release what the value holds:
//
//	c := cache.New[key, *pipeline](32, func(_ key, p *pipeline) { p.destroy() })
//	p, err := c.GetOrCreate(k, compile)
//
// Thread safety: Cache is safe for concurrent use and must not be copied
// after creation.
package cache
