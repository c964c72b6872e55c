// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if g.Width != 3 || g.Height != 2 || len(g.Samples) != 6 {
		t.Errorf("NewGrid(3,2) = %dx%d with %d samples", g.Width, g.Height, len(g.Samples))
	}

	for _, dims := range [][2]int{{0, 2}, {2, 0}, {-1, 4}} {
		_, err := NewGrid(dims[0], dims[1])
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("NewGrid(%d,%d) err = %v, want *ConfigError", dims[0], dims[1], err)
		}
	}
}

func TestNewGridFromSamplesNoCopy(t *testing.T) {
	samples := []float64{1, 2, 3, 4}
	g, err := NewGridFromSamples(2, 2, samples)
	if err != nil {
		t.Fatal(err)
	}
	samples[0] = 9
	if g.At(0, 0) != 9 {
		t.Error("NewGridFromSamples should wrap, not copy")
	}

	if _, err := NewGridFromSamples(2, 3, samples); err == nil {
		t.Error("length mismatch should fail")
	}
}

func TestNewGridFromIntegers(t *testing.T) {
	g32, err := NewGridFromInt32(2, 2, []int32{-1, 0, 7, 300})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{-1, 0, 7, 300}, g32.Samples); diff != "" {
		t.Errorf("int32 samples (-want +got):\n%s", diff)
	}

	g8, err := NewGridFromUint8(2, 1, []uint8{0, 255})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0, 255}, g8.Samples); diff != "" {
		t.Errorf("uint8 samples (-want +got):\n%s", diff)
	}

	if _, err := NewGridFromInt32(2, 2, []int32{1}); err == nil {
		t.Error("short int32 input should fail")
	}
	if _, err := NewGridFromUint8(3, 1, []uint8{1}); err == nil {
		t.Error("short uint8 input should fail")
	}
}

func TestGridReadback(t *testing.T) {
	g, err := NewGridFromSamples(6, 1, []float64{-0.5, 0.4, 2.5, 3.5, 254.6, 400})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{-1, 0, 3, 4, 255, 400}, g.Int32s()); diff != "" {
		t.Errorf("Int32s (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint8{0, 0, 3, 4, 255, 255}, g.Uint8s()); diff != "" {
		t.Errorf("Uint8s (-want +got):\n%s", diff)
	}
}

func TestGridAtSet(t *testing.T) {
	g, _ := NewGrid(3, 3)
	g.Set(1, 2, 5)
	g.Set(3, 0, 7)  // ignored
	g.Set(-1, 0, 7) // ignored

	if g.At(1, 2) != 5 {
		t.Errorf("At(1,2) = %v, want 5", g.At(1, 2))
	}
	if g.At(3, 0) != 0 || g.At(0, -1) != 0 {
		t.Error("out-of-range At should return 0")
	}
	var sum float64
	for _, v := range g.Samples {
		sum += v
	}
	if sum != 5 {
		t.Errorf("out-of-range Set modified the grid, sum = %v", sum)
	}
}

func TestGridClone(t *testing.T) {
	g, _ := NewGridFromInt32(2, 2, []int32{1, 2, 3, 4})
	c := g.Clone()
	c.Set(0, 0, 100)
	if g.At(0, 0) != 1 {
		t.Error("Clone shares samples with the original")
	}
}

func TestGridValidate(t *testing.T) {
	var nilGrid *Grid
	if !errors.Is(nilGrid.Validate(), ErrNilGrid) {
		t.Error("nil grid should return ErrNilGrid")
	}
	bad := &Grid{Width: 2, Height: 2, Samples: make([]float64, 3)}
	var ce *ConfigError
	if !errors.As(bad.Validate(), &ce) || ce.Param != "samples" {
		t.Errorf("bad grid Validate = %v", bad.Validate())
	}
}

func TestGridDense(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	g, err := GridFromDense(m)
	if err != nil {
		t.Fatal(err)
	}
	if g.Width != 3 || g.Height != 2 {
		t.Fatalf("GridFromDense dims = %dx%d, want 3x2", g.Width, g.Height)
	}
	if g.At(2, 1) != 6 {
		t.Errorf("At(2,1) = %v, want 6", g.At(2, 1))
	}
	if !mat.Equal(m, g.Dense()) {
		t.Error("Dense() does not round-trip GridFromDense")
	}

	if _, err := GridFromDense(nil); !errors.Is(err, ErrNilGrid) {
		t.Errorf("GridFromDense(nil) = %v, want ErrNilGrid", err)
	}
}

func TestInt32RoundTripIsExact(t *testing.T) {
	in := []int32{math.MinInt32, math.MaxInt32, 1<<24 + 1, -(1<<24 + 1), 123456789, -2147483647}
	g, err := NewGridFromInt32(3, 2, in)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, g.Int32s()); diff != "" {
		t.Errorf("Int32s (-want +got):\n%s", diff)
	}
}

func TestInt32sClampsToRange(t *testing.T) {
	g, err := NewGridFromSamples(4, 1, []float64{3e9, -3e9, 2147483647.4, -2147483648.6})
	if err != nil {
		t.Fatal(err)
	}
	want := []int32{math.MaxInt32, math.MinInt32, math.MaxInt32, math.MinInt32}
	if diff := cmp.Diff(want, g.Int32s()); diff != "" {
		t.Errorf("Int32s (-want +got):\n%s", diff)
	}
}
