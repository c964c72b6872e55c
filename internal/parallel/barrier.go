// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// Barrier is a reusable group barrier for a fixed number of parties.
//
// Every party calls Wait once per phase; the last arrival releases the rest
// and starts the next generation. Writes made before Wait are visible to
// every party after Wait returns.
//
// A barrier can be broken by a party that failed. Broken barriers release all
// waiters and every later Wait returns false immediately, so a failed thread
// never leaves its siblings blocked.
type Barrier struct {
	_ cpu.CacheLinePad

	mu   sync.Mutex
	cond *sync.Cond

	parties    int
	arrived    int
	generation uint64
	broken     bool

	_ cpu.CacheLinePad
}

// NewBarrier creates a barrier for the given number of parties.
// A barrier with fewer than one party is treated as having one.
func NewBarrier(parties int) *Barrier {
	b := &Barrier{parties: max(parties, 1)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have arrived at the current generation.
// It returns false if the barrier is or becomes broken before release.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		return false
	}

	gen := b.generation
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return true
	}

	for gen == b.generation && !b.broken {
		b.cond.Wait()
	}
	return gen != b.generation
}

// Break marks the barrier broken and releases every waiter.
func (b *Barrier) Break() {
	b.mu.Lock()
	b.broken = true
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Broken reports whether Break has been called.
func (b *Barrier) Broken() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broken
}

// Parties returns the number of parties the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}
