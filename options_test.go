// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import "testing"

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.launcher != nil {
		t.Error("default launcher should be nil")
	}
	if o.workers != 0 || o.teamMode != TeamLockstep {
		t.Errorf("defaults = %+v", o)
	}
}

func TestOptionsApply(t *testing.T) {
	m := &mockLauncher{name: "opt"}
	o := defaultOptions()
	for _, opt := range []Option{
		WithLauncher(m),
		WithWorkers(3),
		WithTeamMode(TeamConcurrent),
		WithMaxGroupThreads(64),
		WithMaxScratchBytes(4096),
	} {
		opt(&o)
	}
	if o.launcher != m || o.workers != 3 || o.teamMode != TeamConcurrent ||
		o.maxGroupThreads != 64 || o.maxScratchBytes != 4096 {
		t.Errorf("options = %+v", o)
	}
}

func TestNewOwnsSoftwareLauncher(t *testing.T) {
	p := New(WithWorkers(2), WithTeamMode(TeamConcurrent))
	defer p.Close()

	s, ok := p.Launcher().(*SoftwareLauncher)
	if !ok {
		t.Fatalf("Launcher() = %T, want *SoftwareLauncher", p.Launcher())
	}
	if s.Mode() != TeamConcurrent {
		t.Errorf("Mode = %v, want concurrent", s.Mode())
	}
}

func TestTighter(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{0, 0, 0},
		{0, 8, 8},
		{8, 0, 8},
		{8, 4, 4},
		{4, 8, 4},
		{-1, 8, 8},
	}
	for _, tt := range tests {
		if got := tighter(tt.a, tt.b); got != tt.want {
			t.Errorf("tighter(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
