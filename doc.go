// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package boxblur computes a box blur (sliding-window average) over a
// single-channel intensity grid using a data-parallel work-group model.
//
// # Overview
//
// The grid is partitioned into work-groups of LocalWidth x LocalHeight
// threads. Two kernels are provided:
//
//   - Tiled: each group stages its tile plus a halo border into group-local
//     scratch, waits on a group barrier, then every thread averages its window
//     from the scratch copy.
//   - Naive: one thread per pixel reads its window straight from the grid.
//
// Both kernels clip the window at grid edges and divide by the number of
// in-bounds samples actually summed, so a uniform field stays uniform all the
// way to the border.
//
// # Quick Start
//
//	grid, _ := boxblur.NewGridFromInt32(4, 4, samples)
//	out, err := boxblur.RunBoxBlur(grid,
//	    boxblur.UniformMask(1),
//	    boxblur.GroupShape{LocalWidth: 2, LocalHeight: 2},
//	    boxblur.Tiled)
//
// # Launchers
//
// Work is executed by a Launcher. The default software launcher emulates
// work-groups on a goroutine worker pool. Importing the gpu package registers
// a WebGPU launcher that runs the same kernels as WGSL compute shaders:
//
//	import _ "github.com/gogpu/boxblur/gpu"
//
// # Errors
//
// Configuration problems (mask radii too large, group shape not dividing the
// grid) are reported as *ConfigError before anything is launched. Backend
// failures are reported as *ComputeError and kernel compilation failures as
// *BuildError. A failed launch never returns partial output.
package boxblur
