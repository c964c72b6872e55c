// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel emulates the work-group execution model of a compute
// device on goroutines.
//
// A launch is a 2D grid of independent work-groups. Groups are submitted as
// tasks to a WorkerPool and may run in any order or concurrently. The threads
// inside one group are run by a Team, either in lockstep (one stage at a time
// for every thread) or as concurrent goroutines separated by a Barrier.
//
// Thread safety: WorkerPool and Barrier are safe for concurrent use.
// Team values are immutable and may be shared.
package parallel

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Run when the pool shut down before every
// task could be executed.
var ErrPoolClosed = errors.New("parallel: worker pool closed")

// WorkerPool runs group tasks on a fixed set of goroutines.
//
// Each worker owns a queue. Tasks are spread over the queues round-robin and
// an idle worker steals from its siblings, so a launch whose groups take
// uneven time still keeps every worker busy.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queues holds one task queue per worker.
	queues []chan func()

	// done is closed by Close to stop the workers.
	done chan struct{}

	// wg tracks running workers.
	wg sync.WaitGroup

	// running is false once Close has been called.
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// A few slots per worker hide submission latency.
	depth := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), depth)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

// worker is the main loop of one worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case task := <-own:
			task()
			continue
		default:
		}

		if task := p.steal(id); task != nil {
			task()
			continue
		}

		select {
		case <-p.done:
			p.drain(own)
			return
		case task := <-own:
			task()
		}
	}
}

// drain runs whatever is left in a queue after shutdown was requested.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case task := <-queue:
			task()
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue, or returns nil.
func (p *WorkerPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case task := <-p.queues[i]:
			return task
		default:
		}
	}
	return nil
}

// Run submits every task and blocks until all of them have finished.
//
// If the pool is closed before or during submission, the tasks that could
// not be queued are skipped and ErrPoolClosed is returned once the queued
// ones have completed.
func (p *WorkerPool) Run(tasks []func()) error {
	if len(tasks) == 0 {
		return nil
	}
	if !p.running.Load() {
		return ErrPoolClosed
	}

	var (
		pending sync.WaitGroup
		skipped atomic.Int64
	)
	pending.Add(len(tasks))

	for i, task := range tasks {
		wrapped := func() {
			defer pending.Done()
			task()
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			skipped.Add(1)
			pending.Done()
		}
	}

	pending.Wait()
	if skipped.Load() > 0 {
		return ErrPoolClosed
	}
	return nil
}

// Close stops accepting work, lets queued tasks finish and stops the workers.
// Close is safe to call multiple times, but must not race with Run.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
