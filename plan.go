// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

// scratchCellBytes is the size of one tile cell in device workgroup memory
// (f32). Budgets are counted in device cells on every launcher.
const scratchCellBytes = 4

// GroupShape is the number of threads per work-group on each axis.
type GroupShape struct {
	LocalWidth  int
	LocalHeight int
}

// GroupShapeFromArray builds a shape from the [localWidth, localHeight] layout.
func GroupShapeFromArray(a [2]int) GroupShape {
	return GroupShape{LocalWidth: a[0], LocalHeight: a[1]}
}

// Threads returns LocalWidth*LocalHeight.
func (s GroupShape) Threads() int { return s.LocalWidth * s.LocalHeight }

// LaunchGrid is the 2D grid of work-groups for one kernel invocation.
// It is derived by Plan and lives only for the duration of a launch.
type LaunchGrid struct {
	GroupsX     int
	GroupsY     int
	LocalWidth  int
	LocalHeight int
}

// Groups returns the total number of work-groups.
func (lg LaunchGrid) Groups() int { return lg.GroupsX * lg.GroupsY }

// Threads returns the number of threads in one work-group.
func (lg LaunchGrid) Threads() int { return lg.LocalWidth * lg.LocalHeight }

// GlobalWidth returns the number of threads along X across all groups.
func (lg LaunchGrid) GlobalWidth() int { return lg.GroupsX * lg.LocalWidth }

// GlobalHeight returns the number of threads along Y across all groups.
func (lg LaunchGrid) GlobalHeight() int { return lg.GroupsY * lg.LocalHeight }

// TileSize returns the dimensions of the halo-extended scratch tile a Tiled
// group needs for the given mask.
func (lg LaunchGrid) TileSize(m Mask) (w, h int) {
	return lg.LocalWidth + m.Left + m.Right, lg.LocalHeight + m.Up + m.Down
}

// Plan maps a width x height grid onto work-groups of the given shape.
//
// The groups must tile the grid exactly, so both dimensions have to be
// divisible by the corresponding local size. Non-divisible sizes are a
// *ConfigError rather than being padded.
func Plan(width, height int, shape GroupShape) (LaunchGrid, error) {
	if err := validateDims(width, height); err != nil {
		return LaunchGrid{}, err
	}
	if shape.LocalWidth <= 0 {
		return LaunchGrid{}, configErrorf("plan", "localWidth", shape.LocalWidth, "must be positive")
	}
	if shape.LocalHeight <= 0 {
		return LaunchGrid{}, configErrorf("plan", "localHeight", shape.LocalHeight, "must be positive")
	}
	if width%shape.LocalWidth != 0 {
		return LaunchGrid{}, configErrorf("plan", "localWidth", shape.LocalWidth, "does not divide grid width %d", width)
	}
	if height%shape.LocalHeight != 0 {
		return LaunchGrid{}, configErrorf("plan", "localHeight", shape.LocalHeight, "does not divide grid height %d", height)
	}
	return LaunchGrid{
		GroupsX:     width / shape.LocalWidth,
		GroupsY:     height / shape.LocalHeight,
		LocalWidth:  shape.LocalWidth,
		LocalHeight: shape.LocalHeight,
	}, nil
}

// Planner validates a launch against a device budget before planning it.
// Zero limits are treated as unlimited.
type Planner struct {
	// MaxGroupThreads caps LocalWidth*LocalHeight.
	MaxGroupThreads int

	// MaxScratchBytes caps the group scratch used by the Tiled kernel.
	MaxScratchBytes int
}

// Plan validates grid and mask, plans the launch grid, and checks the
// thread and scratch budget for the chosen variant.
func (p Planner) Plan(g *Grid, m Mask, shape GroupShape, v Variant) (LaunchGrid, error) {
	if err := g.Validate(); err != nil {
		return LaunchGrid{}, err
	}
	if err := m.Validate(g); err != nil {
		return LaunchGrid{}, err
	}
	if !v.Valid() {
		return LaunchGrid{}, variantError("plan", v)
	}
	lg, err := Plan(g.Width, g.Height, shape)
	if err != nil {
		return LaunchGrid{}, err
	}
	if p.MaxGroupThreads > 0 && lg.Threads() > p.MaxGroupThreads {
		return LaunchGrid{}, configErrorf("plan", "groupThreads", lg.Threads(), "exceeds device limit of %d threads per group", p.MaxGroupThreads)
	}
	if v == Tiled && p.MaxScratchBytes > 0 {
		tw, th := lg.TileSize(m)
		if bytes := tw * th * scratchCellBytes; bytes > p.MaxScratchBytes {
			return LaunchGrid{}, configErrorf("plan", "scratchBytes", bytes, "exceeds device limit of %d bytes per group", p.MaxScratchBytes)
		}
	}
	return lg, nil
}
