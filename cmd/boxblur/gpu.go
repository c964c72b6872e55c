// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package main

import (
	"github.com/gogpu/boxblur"
	gpuimpl "github.com/gogpu/boxblur/internal/gpu"
)

// registerGPU opens a GPU device and registers its launcher.
func registerGPU() error {
	return boxblur.RegisterLauncher(gpuimpl.New())
}
