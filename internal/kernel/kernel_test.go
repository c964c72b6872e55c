// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/boxblur/internal/parallel"
	"github.com/google/go-cmp/cmp"
)

// bruteForce is the clipped-window mean with the same summation order as
// the kernels, so results compare exactly.
func bruteForce(a Args) []float64 {
	out := make([]float64, a.Width*a.Height)
	for y := range a.Height {
		for x := range a.Width {
			x0, y0, x1, y1 := a.window(x, y)
			var sum float64
			for yy := y0; yy <= y1; yy++ {
				for xx := x0; xx <= x1; xx++ {
					sum += a.Src[yy*a.Width+xx]
				}
			}
			out[y*a.Width+x] = sum / float64((x1-x0+1)*(y1-y0+1))
		}
	}
	return out
}

// runKernel executes every group of k sequentially.
func runKernel(t *testing.T, k Kernel, a Args, mode parallel.TeamMode) {
	t.Helper()
	team := parallel.Team{Width: a.LocalWidth, Height: a.LocalHeight, Mode: mode}
	groupsX := a.Width / a.LocalWidth
	groupsY := a.Height / a.LocalHeight
	err := parallel.DispatchGroups(nil, groupsX, groupsY, func(gx, gy int) error {
		stages, release := k.Group(gx, gy)
		defer release()
		return team.Run(stages...)
	})
	if err != nil {
		t.Fatalf("%s: %v", k.Name(), err)
	}
}

func sequence(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i)
	}
	return s
}

func randomSamples(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(rng.IntN(256))
	}
	return s
}

type kernelCase struct {
	name                  string
	w, h                  int
	left, up, right, down int
	lw, lh                int
}

var kernelCases = []kernelCase{
	{"4x4 r1 2x2", 4, 4, 1, 1, 1, 1, 2, 2},
	{"identity", 8, 4, 0, 0, 0, 0, 4, 2},
	{"asymmetric", 12, 8, 2, 0, 1, 3, 4, 4},
	{"halo wider than group", 16, 16, 3, 3, 3, 3, 2, 2},
	{"single group", 6, 6, 2, 2, 2, 2, 6, 6},
	{"one thread groups", 5, 3, 1, 2, 1, 0, 1, 1},
	{"mask spans grid", 4, 4, 3, 3, 3, 3, 2, 4},
}

func (c kernelCase) args(src []float64) Args {
	return Args{
		Src: src, Dst: make([]float64, len(src)),
		Width: c.w, Height: c.h,
		Left: c.left, Up: c.up, Right: c.right, Down: c.down,
		LocalWidth: c.lw, LocalHeight: c.lh,
		GroupsX: c.w / c.lw, GroupsY: c.h / c.lh,
	}
}

func TestKernelsMatchBruteForce(t *testing.T) {
	modes := []parallel.TeamMode{parallel.TeamLockstep, parallel.TeamConcurrent}
	for _, c := range kernelCases {
		t.Run(c.name, func(t *testing.T) {
			src := randomSamples(c.w*c.h, uint64(c.w*31+c.h))
			want := bruteForce(c.args(src))

			for _, mode := range modes {
				ta := c.args(src)
				tiled, err := NewTiled(ta, nil)
				if err != nil {
					t.Fatal(err)
				}
				runKernel(t, tiled, ta, mode)
				if diff := cmp.Diff(want, ta.Dst); diff != "" {
					t.Errorf("tiled/%v mismatch (-want +got):\n%s", mode, diff)
				}

				na := c.args(src)
				naive, err := NewNaive(na)
				if err != nil {
					t.Fatal(err)
				}
				runKernel(t, naive, na, mode)
				if diff := cmp.Diff(ta.Dst, na.Dst); diff != "" {
					t.Errorf("naive/%v differs from tiled (-tiled +naive):\n%s", mode, diff)
				}
			}
		})
	}
}

func TestKernelScenario4x4(t *testing.T) {
	a := kernelCases[0].args(sequence(16))
	k, err := NewTiled(a, nil)
	if err != nil {
		t.Fatal(err)
	}
	runKernel(t, k, a, parallel.TeamLockstep)

	if got := a.Dst[1*4+1]; got != 5 {
		t.Errorf("(1,1) = %v, want 5", got)
	}
	if got := a.Dst[0]; got != 2.5 {
		t.Errorf("(0,0) = %v, want 2.5", got)
	}
	// (3,3) window {10,11,14,15}
	if got := a.Dst[15]; got != 12.5 {
		t.Errorf("(3,3) = %v, want 12.5", got)
	}
}

func TestKernelDoesNotWriteSrc(t *testing.T) {
	src := sequence(64)
	orig := append([]float64(nil), src...)
	c := kernelCase{"", 8, 8, 1, 1, 1, 1, 4, 4}

	for _, mk := range []func(Args) (Kernel, error){
		func(a Args) (Kernel, error) { return NewTiled(a, nil) },
		func(a Args) (Kernel, error) { return NewNaive(a) },
	} {
		a := c.args(src)
		k, err := mk(a)
		if err != nil {
			t.Fatal(err)
		}
		runKernel(t, k, a, parallel.TeamConcurrent)
	}
	if diff := cmp.Diff(orig, src); diff != "" {
		t.Errorf("src modified (-orig +now):\n%s", diff)
	}
}

func TestTiledTileSize(t *testing.T) {
	a := kernelCase{"", 8, 8, 1, 2, 3, 0, 4, 2}.args(make([]float64, 64))
	k, err := NewTiled(a, nil)
	if err != nil {
		t.Fatal(err)
	}
	w, h := k.TileSize()
	if w != 8 || h != 4 {
		t.Errorf("TileSize = %dx%d, want 8x4", w, h)
	}
}

func TestArgsValidate(t *testing.T) {
	good := kernelCase{"", 4, 4, 1, 1, 1, 1, 2, 2}.args(make([]float64, 16))
	tests := []struct {
		name   string
		mutate func(*Args)
	}{
		{"zero width", func(a *Args) { a.Width = 0 }},
		{"short src", func(a *Args) { a.Src = a.Src[:15] }},
		{"short dst", func(a *Args) { a.Dst = nil }},
		{"negative radius", func(a *Args) { a.Down = -1 }},
		{"zero group", func(a *Args) { a.LocalHeight = 0 }},
		{"too few groups", func(a *Args) { a.GroupsX = 1 }},
		{"too many rows", func(a *Args) { a.GroupsY = 3 }},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid args rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := good
			tt.mutate(&a)
			if _, err := NewTiled(a, nil); !errors.Is(err, ErrBadArgs) {
				t.Errorf("NewTiled err = %v, want ErrBadArgs", err)
			}
			if _, err := NewNaive(a); !errors.Is(err, ErrBadArgs) {
				t.Errorf("NewNaive err = %v, want ErrBadArgs", err)
			}
		})
	}
}

func BenchmarkTiled(b *testing.B) {
	benchmarkKernel(b, func(a Args) (Kernel, error) { return NewTiled(a, NewScratchPool()) })
}

func BenchmarkNaive(b *testing.B) {
	benchmarkKernel(b, func(a Args) (Kernel, error) { return NewNaive(a) })
}

func benchmarkKernel(b *testing.B, mk func(Args) (Kernel, error)) {
	const w, h = 256, 256
	a := kernelCase{"", w, h, 2, 2, 2, 2, 16, 16}.args(randomSamples(w*h, 1))
	k, err := mk(a)
	if err != nil {
		b.Fatal(err)
	}
	pool := parallel.NewWorkerPool(0)
	defer pool.Close()
	team := parallel.Team{Width: 16, Height: 16}

	b.ResetTimer()
	for range b.N {
		_ = parallel.DispatchGroups(pool, w/16, h/16, func(gx, gy int) error {
			stages, release := k.Group(gx, gy)
			defer release()
			return team.Run(stages...)
		})
	}
}
