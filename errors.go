// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"errors"
	"fmt"
)

// Sentinel errors for the boxblur package.
var (
	// ErrNilGrid is returned when a nil grid is passed to an operation.
	ErrNilGrid = errors.New("boxblur: nil grid")

	// ErrPipelineClosed is returned by Run after Close has been called.
	ErrPipelineClosed = errors.New("boxblur: pipeline closed")

	// ErrUnknownVariant is returned for a kernel variant other than Tiled or Naive.
	ErrUnknownVariant = errors.New("boxblur: unknown kernel variant")
)

// ConfigError reports an invalid grid, mask, or group shape.
// It is always detected before launch and is never silently corrected.
type ConfigError struct {
	// Op is the operation that rejected the configuration ("plan", "mask", ...).
	Op string

	// Param names the offending parameter.
	Param string

	// Value is the rejected value.
	Value int

	// Reason describes the violated constraint.
	Reason string

	// Err is the sentinel behind the rejection (ErrNilGrid,
	// ErrUnknownVariant), or nil.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("boxblur: %s: invalid %s=%d: %s", e.Op, e.Param, e.Value, e.Reason)
	}
	if e.Reason == "" {
		return fmt.Sprintf("boxblur: %s: %s: %v", e.Op, e.Param, e.Err)
	}
	return fmt.Sprintf("boxblur: %s: %s: %v: %s", e.Op, e.Param, e.Err, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ComputeError reports a failure of the compute backend while launching or
// running a kernel. The wrapped error carries the backend's diagnostic.
type ComputeError struct {
	// Op is the backend step that failed ("launch", "init", ...).
	Op string

	// Backend is the launcher name.
	Backend string

	// LaunchID identifies the launch in log output.
	LaunchID string

	// Err is the underlying failure.
	Err error
}

func (e *ComputeError) Error() string {
	if e.LaunchID == "" {
		return fmt.Sprintf("boxblur: %s: %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("boxblur: %s: %s (launch %s): %v", e.Backend, e.Op, e.LaunchID, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

// BuildError reports that kernel source failed to compile. Log holds the
// compiler diagnostics when the compiler produced any.
type BuildError struct {
	Kernel string
	Log    string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Log == "" {
		return fmt.Sprintf("boxblur: build %s: %v", e.Kernel, e.Err)
	}
	return fmt.Sprintf("boxblur: build %s: %v\n%s", e.Kernel, e.Err, e.Log)
}

func (e *BuildError) Unwrap() error { return e.Err }

// nilGridError reports a nil grid passed to op.
func nilGridError(op string) *ConfigError {
	return &ConfigError{Op: op, Param: "grid", Err: ErrNilGrid}
}

// variantError reports a variant other than Tiled or Naive.
func variantError(op string, v Variant) *ConfigError {
	return &ConfigError{Op: op, Param: "variant", Value: int(v), Err: ErrUnknownVariant}
}

// configErrorf is shorthand for constructing a *ConfigError.
func configErrorf(op, param string, value int, format string, args ...any) *ConfigError {
	return &ConfigError{
		Op:     op,
		Param:  param,
		Value:  value,
		Reason: fmt.Sprintf(format, args...),
	}
}
