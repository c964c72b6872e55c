// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"errors"
	"sync"
)

// Limits is the per-group budget a launcher can execute.
// Zero fields mean unlimited.
type Limits struct {
	// MaxGroupThreads caps LocalWidth*LocalHeight.
	MaxGroupThreads int

	// MaxScratchBytes caps the Tiled kernel's group scratch.
	MaxScratchBytes int
}

// LaunchRequest is everything a launcher needs for one kernel invocation.
// Src is read-only for the duration of the launch; Dst has the same length
// and is fully written by a successful launch.
type LaunchRequest struct {
	// ID identifies the launch in logs and errors.
	ID string

	Variant Variant
	Grid    LaunchGrid
	Mask    Mask

	Width  int
	Height int
	Src    []float64
	Dst    []float64
}

// Launcher executes a planned box-blur launch on some compute backend.
//
// Launch blocks until every work-group has finished. It either fills Dst
// completely and returns nil, or returns an error; callers discard Dst on
// error.
//
// Implementations are provided by the software launcher in this package and
// by backend packages such as gpu:
//
//	import _ "github.com/gogpu/boxblur/gpu" // registers the WebGPU launcher
type Launcher interface {
	// Name returns the backend name (e.g., "software", "wgpu").
	Name() string

	// Init acquires backend resources. Called once during registration.
	Init() error

	// Close releases backend resources.
	Close()

	// Limits reports the per-group budget of the backend.
	Limits() Limits

	// Launch runs the kernel selected by req.Variant over req.Grid.
	Launch(req *LaunchRequest) error
}

// DeviceProviderAware is implemented by launchers that can adopt a GPU
// device owned by the host application instead of creating their own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	launcherMu sync.RWMutex
	launcher   Launcher
)

// RegisterLauncher installs l as the launcher used by RunBoxBlur.
//
// Only one launcher can be registered; a later registration replaces and
// closes the previous one. l.Init is called first and, if it fails, nothing
// is registered and the error is returned.
func RegisterLauncher(l Launcher) error {
	if l == nil {
		return errors.New("boxblur: launcher must not be nil")
	}
	if err := l.Init(); err != nil {
		return err
	}
	propagateLogger(l, Logger())

	launcherMu.Lock()
	old := launcher
	launcher = l
	launcherMu.Unlock()
	if old != nil && old != l {
		old.Close()
	}
	Logger().Info("boxblur: launcher registered", "launcher", l.Name())
	return nil
}

// RegisteredLauncher returns the registered launcher, or nil if none.
func RegisteredLauncher() Launcher {
	launcherMu.RLock()
	l := launcher
	launcherMu.RUnlock()
	return l
}

// UnregisterLauncher removes and closes the registered launcher, if any.
// RunBoxBlur falls back to the software launcher afterwards.
func UnregisterLauncher() {
	launcherMu.Lock()
	old := launcher
	launcher = nil
	launcherMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// SetLauncherDeviceProvider hands a host GPU device to the registered
// launcher. It is a no-op when no launcher is registered or the launcher
// cannot share devices.
func SetLauncherDeviceProvider(provider any) error {
	l := RegisteredLauncher()
	if l == nil {
		return nil
	}
	if dpa, ok := l.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
