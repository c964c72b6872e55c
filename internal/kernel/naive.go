// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "github.com/gogpu/boxblur/internal/parallel"

// Naive is the uncached box blur: every thread reads its whole window
// straight from Src. Threads share nothing, so there is no barrier.
type Naive struct {
	args Args
}

// NewNaive binds args to a Naive kernel.
func NewNaive(args Args) (*Naive, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	return &Naive{args: args}, nil
}

// Name returns "naive".
func (k *Naive) Name() string { return "naive" }

// Group returns the single compute stage for group (gx, gy).
func (k *Naive) Group(gx, gy int) ([]parallel.Stage, func()) {
	compute := func(lx, ly int) error {
		k.compute(gx, gy, lx, ly)
		return nil
	}
	return []parallel.Stage{compute}, func() {}
}

func (k *Naive) compute(gx, gy, lx, ly int) {
	a := &k.args
	x, y := a.globalCoord(gx, gy, lx, ly)
	if !a.inBounds(x, y) {
		return
	}
	x0, y0, x1, y1 := a.window(x, y)

	var sum float64
	for yy := y0; yy <= y1; yy++ {
		row := yy * a.Width
		for xx := x0; xx <= x1; xx++ {
			sum += float64(a.Src[row+xx])
		}
	}
	a.Dst[y*a.Width+x] = mean(sum, x0, y0, x1, y1)
}
