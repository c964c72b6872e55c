// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"fmt"

	"github.com/gogpu/boxblur/internal/parallel"
)

// Tiled is the shared-scratch box blur.
//
// Each group copies its LocalWidth x LocalHeight pixels plus Left/Right
// columns and Up/Down rows of halo into a Scratch tile, then every thread
// averages its window from the tile. Tile coordinates are offset by
// (Left, Up) from the group's first pixel.
type Tiled struct {
	args  Args
	pool  *ScratchPool
	tileW int
	tileH int
}

// NewTiled binds args to a Tiled kernel. Scratch tiles come from pool;
// a nil pool gets a private one.
func NewTiled(args Args, pool *ScratchPool) (*Tiled, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	if pool == nil {
		pool = NewScratchPool()
	}
	return &Tiled{
		args:  args,
		pool:  pool,
		tileW: args.LocalWidth + args.Left + args.Right,
		tileH: args.LocalHeight + args.Up + args.Down,
	}, nil
}

// Name returns "tiled".
func (k *Tiled) Name() string { return "tiled" }

// TileSize returns the scratch tile dimensions.
func (k *Tiled) TileSize() (w, h int) { return k.tileW, k.tileH }

// Group returns the load and compute stages for group (gx, gy).
// The scratch tile is owned by the group until release is called.
func (k *Tiled) Group(gx, gy int) ([]parallel.Stage, func()) {
	tile := k.pool.Get(k.tileW, k.tileH)
	originX := gx*k.args.LocalWidth - k.args.Left
	originY := gy*k.args.LocalHeight - k.args.Up

	load := func(lx, ly int) error {
		k.load(tile, originX, originY, lx, ly)
		return nil
	}
	compute := func(lx, ly int) error {
		return k.compute(tile, originX, originY, gx, gy, lx, ly)
	}
	release := func() {
		k.pool.Put(tile)
	}
	return []parallel.Stage{load, compute}, release
}

// load copies this thread's share of the tile. Threads stride through the
// tile by the group size, so every cell is written by exactly one thread.
// Cells outside the grid are left at zero and never read by compute.
func (k *Tiled) load(tile *Scratch, originX, originY, lx, ly int) {
	a := &k.args
	stride := a.LocalWidth * a.LocalHeight
	for c := ly*a.LocalWidth + lx; c < len(tile.Cells); c += stride {
		sx := originX + c%tile.Width
		sy := originY + c/tile.Width
		if !a.inBounds(sx, sy) {
			continue
		}
		tile.Cells[c] = a.Src[sy*a.Width+sx]
	}
}

func (k *Tiled) compute(tile *Scratch, originX, originY, gx, gy, lx, ly int) error {
	a := &k.args
	x, y := a.globalCoord(gx, gy, lx, ly)
	if !a.inBounds(x, y) {
		return nil
	}
	x0, y0, x1, y1 := a.window(x, y)

	var sum float64
	for yy := y0; yy <= y1; yy++ {
		for xx := x0; xx <= x1; xx++ {
			c := tile.Index(xx-originX, yy-originY)
			if c < 0 {
				return fmt.Errorf("%w: window cell (%d,%d) outside tile", ErrBadArgs, xx, yy)
			}
			sum += float64(tile.Cells[c])
		}
	}
	a.Dst[y*a.Width+x] = mean(sum, x0, y0, x1, y1)
	return nil
}
