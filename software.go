// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"sync"

	"github.com/gogpu/boxblur/internal/kernel"
	"github.com/gogpu/boxblur/internal/parallel"
)

// TeamMode selects how the threads of one software work-group are scheduled.
type TeamMode = parallel.TeamMode

const (
	// TeamLockstep runs each kernel stage for all threads of a group before
	// the next stage. This is the default and the fastest on CPUs.
	TeamLockstep = parallel.TeamLockstep

	// TeamConcurrent runs every thread of a group as its own goroutine and
	// synchronizes stages on a real barrier.
	TeamConcurrent = parallel.TeamConcurrent
)

// Software limits mirror a typical OpenCL CPU device.
const (
	softwareMaxGroupThreads = 1024
	softwareMaxScratchBytes = 64 << 10
)

// SoftwareLauncher runs the kernels on the CPU. Work-groups are tasks on a
// goroutine worker pool; the threads of a group are run by a parallel.Team.
type SoftwareLauncher struct {
	mu      sync.Mutex
	workers int
	mode    TeamMode
	pool    *parallel.WorkerPool
	scratch *kernel.ScratchPool
}

var _ Launcher = (*SoftwareLauncher)(nil)

// NewSoftwareLauncher creates a CPU launcher. workers <= 0 uses GOMAXPROCS.
func NewSoftwareLauncher(workers int, mode TeamMode) *SoftwareLauncher {
	return &SoftwareLauncher{
		workers: workers,
		mode:    mode,
		scratch: kernel.NewScratchPool(),
	}
}

// Name returns "software".
func (s *SoftwareLauncher) Name() string { return "software" }

// Init starts the worker pool. Calling Init on a running launcher is a no-op.
func (s *SoftwareLauncher) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool == nil {
		s.pool = parallel.NewWorkerPool(s.workers)
	}
	return nil
}

// Close stops the worker pool.
func (s *SoftwareLauncher) Close() {
	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.mu.Unlock()
	if pool != nil {
		pool.Close()
	}
}

// Limits reports the software per-group budget.
func (s *SoftwareLauncher) Limits() Limits {
	return Limits{
		MaxGroupThreads: softwareMaxGroupThreads,
		MaxScratchBytes: softwareMaxScratchBytes,
	}
}

// Mode returns the team scheduling mode.
func (s *SoftwareLauncher) Mode() TeamMode { return s.mode }

// Launch runs req on the worker pool and blocks until all groups finish.
func (s *SoftwareLauncher) Launch(req *LaunchRequest) error {
	s.mu.Lock()
	pool := s.pool
	s.mu.Unlock()
	if pool == nil {
		if err := s.Init(); err != nil {
			return err
		}
		s.mu.Lock()
		pool = s.pool
		s.mu.Unlock()
	}

	k, err := s.bind(req)
	if err != nil {
		return err
	}

	team := parallel.Team{
		Width:  req.Grid.LocalWidth,
		Height: req.Grid.LocalHeight,
		Mode:   s.mode,
	}
	Logger().Debug("boxblur: software launch",
		"id", req.ID,
		"kernel", k.Name(),
		"groups", req.Grid.Groups(),
		"threads", team.Size(),
		"mode", s.mode.String())

	return parallel.DispatchGroups(pool, req.Grid.GroupsX, req.Grid.GroupsY, func(gx, gy int) error {
		stages, release := k.Group(gx, gy)
		defer release()
		return team.Run(stages...)
	})
}

// bind creates the kernel selected by req.Variant with req's buffers.
func (s *SoftwareLauncher) bind(req *LaunchRequest) (kernel.Kernel, error) {
	args := kernel.Args{
		Src:         req.Src,
		Dst:         req.Dst,
		Width:       req.Width,
		Height:      req.Height,
		Left:        req.Mask.Left,
		Up:          req.Mask.Up,
		Right:       req.Mask.Right,
		Down:        req.Mask.Down,
		LocalWidth:  req.Grid.LocalWidth,
		LocalHeight: req.Grid.LocalHeight,
		GroupsX:     req.Grid.GroupsX,
		GroupsY:     req.Grid.GroupsY,
	}
	switch req.Variant {
	case Tiled:
		return kernel.NewTiled(args, s.scratch)
	case Naive:
		return kernel.NewNaive(args)
	default:
		return nil, variantError("launch", req.Variant)
	}
}
