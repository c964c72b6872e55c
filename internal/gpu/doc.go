// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu implements the box-blur launcher on a WebGPU compute device.
//
// The kernels are WGSL templates specialized per group shape and tile size,
// compiled to SPIR-V with naga and run through wgpu/hal on Vulkan. The tiled
// kernel stages its tile plus halo in var<workgroup> memory and separates
// the load and compute phases with workgroupBarrier.
//
// Builds with the nogpu tag exclude this package entirely.
package gpu
