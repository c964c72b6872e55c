// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package kernel implements the box-blur stencil kernels executed by the
// software launcher.
//
// A kernel is described per work-group as a list of parallel.Stage values.
// The Tiled kernel has two stages (cooperative halo load, then compute)
// separated by the group barrier; the Naive kernel has a single stage.
//
// Both kernels clip the averaging window to the grid and divide by the number
// of in-bounds samples. Windows are summed row by row, left to right, into a
// float64 accumulator, so the two kernels produce bit-identical results.
package kernel

import (
	"errors"
	"fmt"

	"github.com/gogpu/boxblur/internal/parallel"
)

// ErrBadArgs is returned when kernel arguments are inconsistent.
var ErrBadArgs = errors.New("kernel: invalid arguments")

// Args are the arguments bound to a kernel for one launch.
type Args struct {
	// Src is the read-only input grid, row-major.
	Src []float64

	// Dst receives the output. Each cell is written by exactly one thread.
	Dst []float64

	// Width and Height are the grid dimensions.
	Width, Height int

	// Left, Up, Right, Down are the mask radii.
	Left, Up, Right, Down int

	// LocalWidth and LocalHeight are the group shape.
	LocalWidth, LocalHeight int

	// GroupsX and GroupsY are the launch grid. Together with the group shape
	// they must cover the grid exactly.
	GroupsX, GroupsY int
}

// Validate checks buffer sizes and geometry.
func (a *Args) Validate() error {
	switch {
	case a.Width <= 0 || a.Height <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrBadArgs, a.Width, a.Height)
	case len(a.Src) != a.Width*a.Height:
		return fmt.Errorf("%w: src has %d samples, want %d", ErrBadArgs, len(a.Src), a.Width*a.Height)
	case len(a.Dst) != a.Width*a.Height:
		return fmt.Errorf("%w: dst has %d samples, want %d", ErrBadArgs, len(a.Dst), a.Width*a.Height)
	case a.Left < 0 || a.Up < 0 || a.Right < 0 || a.Down < 0:
		return fmt.Errorf("%w: negative mask radius", ErrBadArgs)
	case a.LocalWidth <= 0 || a.LocalHeight <= 0:
		return fmt.Errorf("%w: group shape %dx%d", ErrBadArgs, a.LocalWidth, a.LocalHeight)
	case a.GroupsX*a.LocalWidth != a.Width || a.GroupsY*a.LocalHeight != a.Height:
		return fmt.Errorf("%w: %dx%d groups of %dx%d do not cover grid %dx%d", ErrBadArgs,
			a.GroupsX, a.GroupsY, a.LocalWidth, a.LocalHeight, a.Width, a.Height)
	}
	return nil
}

// Kernel builds the stages that one work-group executes.
type Kernel interface {
	// Name returns the kernel name.
	Name() string

	// Group returns the stages for group (gx, gy) and a release function
	// that must be called once the group has finished.
	Group(gx, gy int) (stages []parallel.Stage, release func())
}

// window returns the in-bounds window [x0,x1] x [y0,y1] around (x, y).
func (a *Args) window(x, y int) (x0, y0, x1, y1 int) {
	x0 = max(x-a.Left, 0)
	y0 = max(y-a.Up, 0)
	x1 = min(x+a.Right, a.Width-1)
	y1 = min(y+a.Down, a.Height-1)
	return x0, y0, x1, y1
}

// globalCoord maps a thread to its pixel.
func (a *Args) globalCoord(gx, gy, lx, ly int) (x, y int) {
	return gx*a.LocalWidth + lx, gy*a.LocalHeight + ly
}

// inBounds reports whether (x, y) addresses a grid cell.
func (a *Args) inBounds(x, y int) bool {
	return x >= 0 && x < a.Width && y >= 0 && y < a.Height
}

// mean divides a window sum by its in-bounds sample count.
func mean(sum float64, x0, y0, x1, y1 int) float64 {
	count := (x1 - x0 + 1) * (y1 - y0 + 1)
	return sum / float64(count)
}
