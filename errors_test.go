// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigErrorMessage(t *testing.T) {
	err := configErrorf("plan", "localWidth", 4, "does not divide grid width %d", 10)
	want := "boxblur: plan: invalid localWidth=4: does not divide grid width 10"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestConfigErrorWrapsSentinel(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		is   error
		want string
	}{
		{nilGridError("mask"), ErrNilGrid, "boxblur: mask: grid: boxblur: nil grid"},
		{variantError("plan", Variant(3)), ErrUnknownVariant, "boxblur: plan: variant: boxblur: unknown kernel variant"},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.is) {
			t.Errorf("%v does not wrap %v", tt.err, tt.is)
		}
		if tt.err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
		}
	}

	_, err := ParseVariant("shared")
	var ce *ConfigError
	if !errors.As(err, &ce) || !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("ParseVariant err = %v, want *ConfigError wrapping ErrUnknownVariant", err)
	}
}

func TestComputeErrorUnwrap(t *testing.T) {
	cause := errors.New("device lost")
	err := &ComputeError{Op: "launch", Backend: "wgpu", LaunchID: "abc", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("ComputeError should unwrap to its cause")
	}
	for _, s := range []string{"wgpu", "launch", "abc", "device lost"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("Error() = %q, missing %q", err.Error(), s)
		}
	}

	noID := &ComputeError{Op: "init", Backend: "software", Err: cause}
	if strings.Contains(noID.Error(), "launch ") {
		t.Errorf("Error() without id = %q", noID.Error())
	}
}

func TestBuildError(t *testing.T) {
	cause := errors.New("unknown identifier")
	err := &BuildError{Kernel: "tiled", Log: "line 3: tile", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("BuildError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "line 3: tile") {
		t.Errorf("Error() = %q, missing build log", err.Error())
	}
	short := &BuildError{Kernel: "naive", Err: cause}
	if strings.Contains(short.Error(), "\n") {
		t.Errorf("Error() without log = %q", short.Error())
	}
}
