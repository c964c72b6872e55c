// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBarrier_SingleParty(t *testing.T) {
	b := NewBarrier(0)
	if b.Parties() != 1 {
		t.Fatalf("Parties() = %d, want 1", b.Parties())
	}
	for range 3 {
		if !b.Wait() {
			t.Fatal("Wait on a one-party barrier should pass")
		}
	}
}

func TestBarrier_NoneLeavesEarly(t *testing.T) {
	const parties = 8
	const rounds = 50
	b := NewBarrier(parties)

	var arrived [rounds]atomic.Int32
	var wg sync.WaitGroup
	var failed atomic.Bool

	for range parties {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range rounds {
				arrived[r].Add(1)
				if !b.Wait() {
					failed.Store(true)
					return
				}
				if n := arrived[r].Load(); n != parties {
					failed.Store(true)
				}
			}
		}()
	}
	wg.Wait()

	if failed.Load() {
		t.Error("a party passed the barrier before every party arrived")
	}
}

func TestBarrier_BreakReleasesWaiters(t *testing.T) {
	b := NewBarrier(3)

	results := make(chan bool, 2)
	for range 2 {
		go func() { results <- b.Wait() }()
	}

	time.Sleep(10 * time.Millisecond)
	b.Break()

	for range 2 {
		select {
		case ok := <-results:
			if ok {
				t.Error("Wait returned true on a broken barrier")
			}
		case <-time.After(time.Second):
			t.Fatal("waiter not released by Break")
		}
	}

	if !b.Broken() {
		t.Error("Broken() = false after Break")
	}
	if b.Wait() {
		t.Error("Wait after Break should return false immediately")
	}
}
