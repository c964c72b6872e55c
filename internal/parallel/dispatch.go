// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import "fmt"

// GroupFunc executes one work-group identified by its group coordinates.
type GroupFunc func(gx, gy int) error

// DispatchGroups runs fn for every group of a groupsX x groupsY launch and
// blocks until all groups have finished.
//
// Groups are independent and may run in any order. A panic inside a group
// is recovered and reported as an error wrapping ErrThreadPanic. When several
// groups fail, the error of the first failing group in row-major order is
// returned. With a nil pool the groups run sequentially on the caller.
func DispatchGroups(pool *WorkerPool, groupsX, groupsY int, fn GroupFunc) error {
	if groupsX <= 0 || groupsY <= 0 {
		return nil
	}
	n := groupsX * groupsY
	errs := make([]error, n)

	if pool == nil {
		for i := range n {
			errs[i] = runGroup(fn, i%groupsX, i/groupsX)
		}
		return firstGroupError(errs, groupsX)
	}

	tasks := make([]func(), n)
	for i := range n {
		gx, gy := i%groupsX, i/groupsX
		tasks[i] = func() {
			errs[i] = runGroup(fn, gx, gy)
		}
	}
	if err := pool.Run(tasks); err != nil {
		return err
	}
	return firstGroupError(errs, groupsX)
}

func runGroup(fn GroupFunc, gx, gy int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrThreadPanic, r)
		}
	}()
	return fn(gx, gy)
}

func firstGroupError(errs []error, groupsX int) error {
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("group (%d,%d): %w", i%groupsX, i/groupsX, err)
		}
	}
	return nil
}
