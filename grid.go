// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Grid is a row-major 2D grid of scalar intensity samples.
//
// Samples are stored as float64, which holds every int32 exactly and
// represents averages such as 2.5. Integer pixel representations are
// converted on the way in (NewGridFromInt32, NewGridFromUint8) and on the way
// out (Int32s, Uint8s).
type Grid struct {
	// Width is the number of columns.
	Width int

	// Height is the number of rows.
	Height int

	// Samples holds Width*Height values, row by row.
	Samples []float64
}

// NewGrid allocates a zero-filled grid.
func NewGrid(width, height int) (*Grid, error) {
	if err := validateDims(width, height); err != nil {
		return nil, err
	}
	return &Grid{
		Width:   width,
		Height:  height,
		Samples: make([]float64, width*height),
	}, nil
}

// NewGridFromSamples wraps samples in a grid without copying.
func NewGridFromSamples(width, height int, samples []float64) (*Grid, error) {
	g := &Grid{Width: width, Height: height, Samples: samples}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGridFromInt32 builds a grid from 32-bit integer samples.
func NewGridFromInt32(width, height int, samples []int32) (*Grid, error) {
	if err := validateDims(width, height); err != nil {
		return nil, err
	}
	if len(samples) != width*height {
		return nil, configErrorf("grid", "samples", len(samples), "want %d samples for %dx%d", width*height, width, height)
	}
	g := &Grid{Width: width, Height: height, Samples: make([]float64, len(samples))}
	for i, v := range samples {
		g.Samples[i] = float64(v)
	}
	return g, nil
}

// NewGridFromUint8 builds a grid from unsigned byte samples.
func NewGridFromUint8(width, height int, samples []uint8) (*Grid, error) {
	if err := validateDims(width, height); err != nil {
		return nil, err
	}
	if len(samples) != width*height {
		return nil, configErrorf("grid", "samples", len(samples), "want %d samples for %dx%d", width*height, width, height)
	}
	g := &Grid{Width: width, Height: height, Samples: make([]float64, len(samples))}
	for i, v := range samples {
		g.Samples[i] = float64(v)
	}
	return g, nil
}

// GridFromDense copies a gonum matrix into a grid. Rows map to grid rows.
func GridFromDense(m *mat.Dense) (*Grid, error) {
	if m == nil {
		return nil, nilGridError("grid")
	}
	rows, cols := m.Dims()
	g, err := NewGrid(cols, rows)
	if err != nil {
		return nil, err
	}
	for y := range rows {
		for x := range cols {
			g.Samples[y*cols+x] = m.At(y, x)
		}
	}
	return g, nil
}

// Dense returns the grid as a Height x Width gonum matrix.
func (g *Grid) Dense() *mat.Dense {
	data := make([]float64, len(g.Samples))
	copy(data, g.Samples)
	return mat.NewDense(g.Height, g.Width, data)
}

// Validate checks the grid invariant len(Samples) == Width*Height.
func (g *Grid) Validate() error {
	if g == nil {
		return nilGridError("grid")
	}
	if err := validateDims(g.Width, g.Height); err != nil {
		return err
	}
	if len(g.Samples) != g.Width*g.Height {
		return configErrorf("grid", "samples", len(g.Samples), "want %d samples for %dx%d", g.Width*g.Height, g.Width, g.Height)
	}
	return nil
}

// At returns the sample at column x, row y. Out-of-range coordinates return 0.
func (g *Grid) At(x, y int) float64 {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return 0
	}
	return g.Samples[y*g.Width+x]
}

// Set stores v at column x, row y. Out-of-range coordinates are ignored.
func (g *Grid) Set(x, y int, v float64) {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return
	}
	g.Samples[y*g.Width+x] = v
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	samples := make([]float64, len(g.Samples))
	copy(samples, g.Samples)
	return &Grid{Width: g.Width, Height: g.Height, Samples: samples}
}

// Int32s returns the samples rounded to the nearest integer, halves rounded
// away from zero, and clamped to the int32 range.
func (g *Grid) Int32s() []int32 {
	out := make([]int32, len(g.Samples))
	for i, v := range g.Samples {
		r := math.Round(v)
		switch {
		case r < math.MinInt32:
			r = math.MinInt32
		case r > math.MaxInt32:
			r = math.MaxInt32
		}
		out[i] = int32(r)
	}
	return out
}

// Uint8s returns the samples rounded to the nearest integer and clamped to [0, 255].
func (g *Grid) Uint8s() []uint8 {
	out := make([]uint8, len(g.Samples))
	for i, v := range g.Samples {
		r := math.Round(v)
		switch {
		case r < 0:
			r = 0
		case r > 255:
			r = 255
		}
		out[i] = uint8(r)
	}
	return out
}

func validateDims(width, height int) error {
	if width <= 0 {
		return configErrorf("grid", "width", width, "must be positive")
	}
	if height <= 0 {
		return configErrorf("grid", "height", height, "must be positive")
	}
	return nil
}
