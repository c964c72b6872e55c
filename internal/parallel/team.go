// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrBarrierBroken is returned by a thread that was released from a group
// barrier because a sibling thread failed.
var ErrBarrierBroken = errors.New("parallel: group barrier broken")

// ErrThreadPanic wraps a panic recovered from a kernel thread or group.
var ErrThreadPanic = errors.New("parallel: kernel panic")

// TeamMode selects how the threads of a work-group are scheduled.
type TeamMode int

const (
	// TeamLockstep runs each stage for every thread before starting the next
	// stage. The stage boundary acts as the group barrier.
	TeamLockstep TeamMode = iota

	// TeamConcurrent runs one goroutine per thread and separates stages with
	// a Barrier.
	TeamConcurrent
)

// String returns the mode name.
func (m TeamMode) String() string {
	switch m {
	case TeamLockstep:
		return "lockstep"
	case TeamConcurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("TeamMode(%d)", int(m))
	}
}

// Stage is one barrier-delimited phase of a kernel. It is called once per
// thread with the thread's local coordinates.
type Stage func(lx, ly int) error

// Team executes the threads of one work-group.
type Team struct {
	Width  int
	Height int
	Mode   TeamMode
}

// Size returns the number of threads in the team.
func (t Team) Size() int { return t.Width * t.Height }

// Run executes the stages in order for every thread of the team. No thread
// starts stage i+1 before every thread has finished stage i.
func (t Team) Run(stages ...Stage) error {
	if t.Width <= 0 || t.Height <= 0 || len(stages) == 0 {
		return nil
	}
	if t.Mode == TeamConcurrent && t.Size() > 1 {
		return t.runConcurrent(stages)
	}
	return t.runLockstep(stages)
}

func (t Team) runLockstep(stages []Stage) error {
	for _, stage := range stages {
		for ly := range t.Height {
			for lx := range t.Width {
				if err := stage(lx, ly); err != nil {
					return fmt.Errorf("thread (%d,%d): %w", lx, ly, err)
				}
			}
		}
	}
	return nil
}

func (t Team) runConcurrent(stages []Stage) error {
	n := t.Size()
	barrier := NewBarrier(n)
	errs := make([]error, n)

	var g errgroup.Group
	for id := range n {
		lx, ly := id%t.Width, id/t.Width
		g.Go(func() error {
			for i, stage := range stages {
				if i > 0 && !barrier.Wait() {
					errs[id] = ErrBarrierBroken
					return errs[id]
				}
				if err := callStage(stage, lx, ly); err != nil {
					errs[id] = fmt.Errorf("thread (%d,%d): %w", lx, ly, err)
					barrier.Break()
					return errs[id]
				}
			}
			return nil
		})
	}
	if g.Wait() == nil {
		return nil
	}

	// Report the thread that actually failed, not a sibling released
	// from the broken barrier.
	for _, err := range errs {
		if err != nil && !errors.Is(err, ErrBarrierBroken) {
			return err
		}
	}
	return ErrBarrierBroken
}

// callStage runs one thread's stage, turning a panic into an error.
func callStage(stage Stage, lx, ly int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrThreadPanic, r)
		}
	}()
	return stage(lx, ly)
}
