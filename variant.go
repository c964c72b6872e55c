// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"fmt"
	"strings"
)

// Variant selects the stencil kernel.
type Variant int

const (
	// Tiled caches each group's tile plus halo in group scratch.
	Tiled Variant = iota

	// Naive reads every window directly from the grid.
	Naive
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case Tiled:
		return "tiled"
	case Naive:
		return "naive"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == Tiled || v == Naive
}

// ParseVariant parses "tiled" or "naive" (case-insensitive).
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tiled":
		return Tiled, nil
	case "naive":
		return Naive, nil
	default:
		return 0, &ConfigError{Op: "variant", Param: "variant", Reason: fmt.Sprintf("%q is not tiled or naive", s), Err: ErrUnknownVariant}
	}
}
