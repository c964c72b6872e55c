// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu registers the WebGPU box-blur launcher.
//
// Import this package to run boxblur.RunBoxBlur on a GPU. The launcher uses
// wgpu/hal compute pipelines on Vulkan. If no device can be opened the
// registration is skipped with a warning and RunBoxBlur keeps using the
// software launcher.
//
// Usage:
//
//	import _ "github.com/gogpu/boxblur/gpu" // enable GPU launches
package gpu

import (
	"github.com/gogpu/boxblur"
	gpuimpl "github.com/gogpu/boxblur/internal/gpu"
	"github.com/gogpu/gpucontext"
)

func init() {
	if err := boxblur.RegisterLauncher(gpuimpl.New()); err != nil {
		boxblur.Logger().Warn("GPU launcher not available", "err", err)
	}
}

// Available reports whether the GPU launcher is registered.
func Available() bool {
	l := boxblur.RegisteredLauncher()
	return l != nil && l.Name() == "wgpu"
}

// SetDeviceProvider makes the GPU launcher use a device shared by the host
// application (e.g., gogpu) instead of its own.
//
// The provider should also implement gpucontext.HalProvider for direct HAL
// access. It is a no-op when the GPU launcher is not registered.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return boxblur.SetLauncherDeviceProvider(provider)
}
