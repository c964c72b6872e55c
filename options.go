// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

// Option configures a Pipeline during creation.
//
// Example:
//
//	// Software launcher, 4 workers, goroutine-per-thread groups
//	p := boxblur.New(boxblur.WithWorkers(4), boxblur.WithTeamMode(boxblur.TeamConcurrent))
//
//	// Custom launcher (dependency injection)
//	p := boxblur.New(boxblur.WithLauncher(myLauncher))
type Option func(*pipelineOptions)

type pipelineOptions struct {
	launcher        Launcher
	workers         int
	teamMode        TeamMode
	maxGroupThreads int
	maxScratchBytes int
}

func defaultOptions() pipelineOptions {
	return pipelineOptions{
		workers:  0, // GOMAXPROCS
		teamMode: TeamLockstep,
	}
}

// WithLauncher runs the pipeline on l instead of a private software
// launcher. The pipeline calls l.Init once and never closes l.
func WithLauncher(l Launcher) Option {
	return func(o *pipelineOptions) {
		o.launcher = l
	}
}

// WithWorkers sets the number of software worker goroutines.
// n <= 0 uses GOMAXPROCS. Ignored with WithLauncher.
func WithWorkers(n int) Option {
	return func(o *pipelineOptions) {
		o.workers = n
	}
}

// WithTeamMode selects how the software launcher schedules the threads of
// a work-group. Ignored with WithLauncher.
func WithTeamMode(m TeamMode) Option {
	return func(o *pipelineOptions) {
		o.teamMode = m
	}
}

// WithMaxGroupThreads caps threads per group below the launcher's own limit.
// Zero keeps the launcher's limit.
func WithMaxGroupThreads(n int) Option {
	return func(o *pipelineOptions) {
		o.maxGroupThreads = n
	}
}

// WithMaxScratchBytes caps the Tiled scratch size below the launcher's own
// limit. Zero keeps the launcher's limit.
func WithMaxScratchBytes(n int) Option {
	return func(o *pipelineOptions) {
		o.maxScratchBytes = n
	}
}
