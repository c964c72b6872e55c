// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Pipeline plans and launches box blurs on one launcher.
//
// A Pipeline created without WithLauncher owns a private software launcher
// and closes it in Close. Pipelines are safe for concurrent use; launches
// from different goroutines run independently.
type Pipeline struct {
	launcher Launcher
	owned    bool
	planner  Planner

	initOnce sync.Once
	initErr  error

	mu     sync.RWMutex
	closed bool
}

// New creates a Pipeline.
//
// Example:
//
//	p := boxblur.New(boxblur.WithWorkers(8))
//	defer p.Close()
//	out, err := p.Run(grid, boxblur.UniformMask(1), boxblur.GroupShape{LocalWidth: 8, LocalHeight: 8}, boxblur.Tiled)
func New(opts ...Option) *Pipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pipeline{launcher: o.launcher}
	if p.launcher == nil {
		p.launcher = NewSoftwareLauncher(o.workers, o.teamMode)
		p.owned = true
	}
	p.planner = Planner{
		MaxGroupThreads: tighter(p.launcher.Limits().MaxGroupThreads, o.maxGroupThreads),
		MaxScratchBytes: tighter(p.launcher.Limits().MaxScratchBytes, o.maxScratchBytes),
	}
	return p
}

// tighter returns the smaller positive limit; zero means unlimited.
func tighter(a, b int) int {
	switch {
	case a <= 0:
		return b
	case b <= 0:
		return a
	default:
		return min(a, b)
	}
}

// Launcher returns the launcher the pipeline runs on.
func (p *Pipeline) Launcher() Launcher { return p.launcher }

// Planner returns the budget the pipeline plans against.
func (p *Pipeline) Planner() Planner { return p.planner }

// Run blurs g with mask m using groups of the given shape and kernel
// variant v, and returns a new grid of the same size.
//
// g is never modified. Invalid configurations return a *ConfigError before
// anything is launched. A failing launch returns a *ComputeError (or a
// *BuildError when the kernel did not compile) and no output.
func (p *Pipeline) Run(g *Grid, m Mask, shape GroupShape, v Variant) (*Grid, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrPipelineClosed
	}

	lg, err := p.planner.Plan(g, m, shape, v)
	if err != nil {
		return nil, err
	}

	p.initOnce.Do(func() {
		if p.owned {
			p.initErr = p.launcher.Init()
		}
	})
	if p.initErr != nil {
		return nil, &ComputeError{Op: "init", Backend: p.launcher.Name(), Err: p.initErr}
	}

	return launch(p.launcher, g, m, lg, v)
}

// Close releases the pipeline's own launcher. Run returns ErrPipelineClosed
// afterwards. Close is idempotent.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.owned {
		p.launcher.Close()
	}
}

// launch binds a fresh output buffer and runs one planned launch.
func launch(l Launcher, g *Grid, m Mask, lg LaunchGrid, v Variant) (*Grid, error) {
	req := &LaunchRequest{
		ID:      uuid.NewString(),
		Variant: v,
		Grid:    lg,
		Mask:    m,
		Width:   g.Width,
		Height:  g.Height,
		Src:     g.Samples,
		Dst:     make([]float64, len(g.Samples)),
	}

	Logger().Debug("boxblur: launch",
		"id", req.ID,
		"launcher", l.Name(),
		"variant", v.String(),
		"grid", [2]int{g.Width, g.Height},
		"groups", [2]int{lg.GroupsX, lg.GroupsY},
		"local", [2]int{lg.LocalWidth, lg.LocalHeight},
		"mask", m.Array())

	if err := l.Launch(req); err != nil {
		return nil, launchError(l, req.ID, err)
	}
	return &Grid{Width: g.Width, Height: g.Height, Samples: req.Dst}, nil
}

// launchError passes typed errors through and wraps everything else in a
// *ComputeError carrying the launch id.
func launchError(l Launcher, id string, err error) error {
	var be *BuildError
	if errors.As(err, &be) {
		return err
	}
	var ce *ComputeError
	if errors.As(err, &ce) {
		if ce.LaunchID == "" {
			ce.LaunchID = id
		}
		return ce
	}
	var cfg *ConfigError
	if errors.As(err, &cfg) {
		return err
	}
	return &ComputeError{Op: "launch", Backend: l.Name(), LaunchID: id, Err: err}
}

var (
	defaultOnce     sync.Once
	defaultSoftware *SoftwareLauncher
)

// defaultLauncher returns the registered launcher or the shared software
// launcher.
func defaultLauncher() Launcher {
	if l := RegisteredLauncher(); l != nil {
		return l
	}
	defaultOnce.Do(func() {
		defaultSoftware = NewSoftwareLauncher(0, TeamLockstep)
		_ = defaultSoftware.Init()
	})
	return defaultSoftware
}

// RunBoxBlur blurs g with mask m on the registered launcher, or on a shared
// software launcher when none is registered. See Pipeline.Run.
//
// Example:
//
//	g, _ := boxblur.NewGridFromInt32(4, 4, []int32{
//	    0, 1, 2, 3,
//	    4, 5, 6, 7,
//	    8, 9, 10, 11,
//	    12, 13, 14, 15,
//	})
//	out, err := boxblur.RunBoxBlur(g, boxblur.UniformMask(1),
//	    boxblur.GroupShape{LocalWidth: 2, LocalHeight: 2}, boxblur.Tiled)
//	// out.At(1, 1) == 5, out.At(0, 0) == 2.5
func RunBoxBlur(g *Grid, m Mask, shape GroupShape, v Variant) (*Grid, error) {
	l := defaultLauncher()
	planner := Planner{
		MaxGroupThreads: l.Limits().MaxGroupThreads,
		MaxScratchBytes: l.Limits().MaxScratchBytes,
	}
	lg, err := planner.Plan(g, m, shape, v)
	if err != nil {
		return nil, err
	}
	return launch(l, g, m, lg, v)
}
