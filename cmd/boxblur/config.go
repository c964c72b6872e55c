// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/boxblur"
)

type config struct {
	mask    boxblur.Mask
	shape   boxblur.GroupShape
	variant boxblur.Variant
	team    boxblur.TeamMode
}

func parseConfig(mask, group, variant, team string) (config, error) {
	var cfg config
	var err error
	if cfg.mask, err = parseMask(mask); err != nil {
		return cfg, fmt.Errorf("-mask: %w", err)
	}
	w, h, err := parseSize(group)
	if err != nil {
		return cfg, fmt.Errorf("-group: %w", err)
	}
	cfg.shape = boxblur.GroupShape{LocalWidth: w, LocalHeight: h}
	if cfg.variant, err = boxblur.ParseVariant(variant); err != nil {
		return cfg, fmt.Errorf("-variant: %w", err)
	}
	if cfg.team, err = parseTeam(team); err != nil {
		return cfg, fmt.Errorf("-team: %w", err)
	}
	return cfg, nil
}

// parseMask accepts a single radius or four comma-separated radii in the
// order left,up,right,down.
func parseMask(s string) (boxblur.Mask, error) {
	parts := strings.Split(s, ",")
	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return boxblur.Mask{}, fmt.Errorf("bad radius %q", p)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return boxblur.UniformMask(vals[0]), nil
	case 4:
		return boxblur.MaskFromArray([4]int{vals[0], vals[1], vals[2], vals[3]}), nil
	default:
		return boxblur.Mask{}, fmt.Errorf("want 1 or 4 radii, got %d", len(vals))
	}
}

// parseSize parses "WxH".
func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("want WxH, got %q", s)
	}
	if w, err = strconv.Atoi(ws); err != nil {
		return 0, 0, fmt.Errorf("bad width %q", ws)
	}
	if h, err = strconv.Atoi(hs); err != nil {
		return 0, 0, fmt.Errorf("bad height %q", hs)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size must be positive, got %dx%d", w, h)
	}
	return w, h, nil
}

func parseTeam(s string) (boxblur.TeamMode, error) {
	switch strings.ToLower(s) {
	case "lockstep":
		return boxblur.TeamLockstep, nil
	case "concurrent":
		return boxblur.TeamConcurrent, nil
	default:
		return 0, fmt.Errorf("unknown team mode %q", s)
	}
}
