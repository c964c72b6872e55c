// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"errors"
	"testing"
)

func TestVariantString(t *testing.T) {
	tests := []struct {
		v    Variant
		want string
	}{
		{Tiled, "tiled"},
		{Naive, "naive"},
		{Variant(3), "Variant(3)"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseVariant(t *testing.T) {
	for in, want := range map[string]Variant{"tiled": Tiled, "NAIVE": Naive, " Tiled ": Tiled} {
		got, err := ParseVariant(in)
		if err != nil || got != want {
			t.Errorf("ParseVariant(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseVariant("shared"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("ParseVariant(shared) err = %v, want ErrUnknownVariant", err)
	}
}
