// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "sync"

// Scratch is the group-local tile of a Tiled work-group: the group's pixels
// plus the halo needed by the mask, Width x Height cells.
//
// A Scratch belongs to exactly one executing group. It is taken from a
// ScratchPool when the group starts and handed back when it finishes; nothing
// may hold on to it afterwards.
type Scratch struct {
	Width  int
	Height int
	Cells  []float64
}

// Index returns the cell index of tile coordinate (tx, ty), or -1 when the
// coordinate lies outside the tile.
func (s *Scratch) Index(tx, ty int) int {
	if tx < 0 || tx >= s.Width || ty < 0 || ty >= s.Height {
		return -1
	}
	return ty*s.Width + tx
}

// Reset zeroes every cell.
func (s *Scratch) Reset() {
	clear(s.Cells)
}

// ScratchPool recycles Scratch tiles by size.
//
// Every group of a launch uses the same tile size, so a launch touches one
// sync.Pool and steady-state launches allocate no scratch at all.
//
// Thread safety: ScratchPool is safe for concurrent use.
type ScratchPool struct {
	pools sync.Map // tileSize -> *sync.Pool
}

// NewScratchPool creates an empty pool.
func NewScratchPool() *ScratchPool {
	return &ScratchPool{}
}

// Get returns a zeroed tile of the given size, or nil for a non-positive size.
func (p *ScratchPool) Get(width, height int) *Scratch {
	if width <= 0 || height <= 0 {
		return nil
	}
	s := p.poolFor(width, height).Get().(*Scratch)
	s.Reset()
	return s
}

// Put hands a tile back to the pool. A nil tile is ignored.
func (p *ScratchPool) Put(s *Scratch) {
	if s == nil {
		return
	}
	if pool, ok := p.pools.Load(tileSize{s.Width, s.Height}); ok {
		pool.(*sync.Pool).Put(s)
	}
}

// tileSize keys the per-size pools.
type tileSize struct {
	width, height int
}

func (p *ScratchPool) poolFor(width, height int) *sync.Pool {
	key := tileSize{width, height}
	if pool, ok := p.pools.Load(key); ok {
		return pool.(*sync.Pool)
	}
	fresh := &sync.Pool{
		New: func() any {
			return &Scratch{
				Width:  width,
				Height: height,
				Cells:  make([]float64, width*height),
			}
		},
	}
	actual, _ := p.pools.LoadOrStore(key, fresh)
	return actual.(*sync.Pool)
}
