// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

// Mask describes the averaging window around a pixel by its four radii.
// A pixel at (x, y) averages columns x-Left..x+Right and rows y-Up..y+Down.
type Mask struct {
	Left  int
	Up    int
	Right int
	Down  int
}

// UniformMask returns a mask with the same radius on all four sides.
func UniformMask(r int) Mask {
	return Mask{Left: r, Up: r, Right: r, Down: r}
}

// MaskFromArray builds a mask from the [left, up, right, down] layout
// used by kernel parameter buffers.
func MaskFromArray(a [4]int) Mask {
	return Mask{Left: a[0], Up: a[1], Right: a[2], Down: a[3]}
}

// Array returns the radii in [left, up, right, down] order.
func (m Mask) Array() [4]int {
	return [4]int{m.Left, m.Up, m.Right, m.Down}
}

// Width returns the window width, Left+Right+1.
func (m Mask) Width() int { return m.Left + m.Right + 1 }

// Height returns the window height, Up+Down+1.
func (m Mask) Height() int { return m.Up + m.Down + 1 }

// Area returns the nominal window area. Edge pixels may average fewer samples.
func (m Mask) Area() int { return m.Width() * m.Height() }

// IsIdentity reports whether every radius is zero.
func (m Mask) IsIdentity() bool {
	return m == Mask{}
}

// Validate checks that every radius is non-negative and smaller than the
// grid dimension on its axis.
func (m Mask) Validate(g *Grid) error {
	if g == nil {
		return nilGridError("mask")
	}
	checks := []struct {
		name   string
		radius int
		limit  int
	}{
		{"left", m.Left, g.Width},
		{"up", m.Up, g.Height},
		{"right", m.Right, g.Width},
		{"down", m.Down, g.Height},
	}
	for _, c := range checks {
		if c.radius < 0 {
			return configErrorf("mask", c.name, c.radius, "radius must be non-negative")
		}
		if c.radius >= c.limit {
			return configErrorf("mask", c.name, c.radius, "radius must be smaller than grid dimension %d", c.limit)
		}
	}
	return nil
}
