// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
)

// mockLauncher records calls and fails Launch with launchErr when set.
type mockLauncher struct {
	mu        sync.Mutex
	name      string
	initErr   error
	launchErr error
	limits    Limits
	inits     int
	closed    int
	launches  int
	lastReq   *LaunchRequest
	logger    *slog.Logger
	provider  any
	scribble  bool // write garbage into Dst before failing
}

func (m *mockLauncher) Name() string { return m.name }

func (m *mockLauncher) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inits++
	return m.initErr
}

func (m *mockLauncher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
}

func (m *mockLauncher) Limits() Limits { return m.limits }

func (m *mockLauncher) Launch(req *LaunchRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.launches++
	m.lastReq = req
	if m.scribble {
		for i := range req.Dst {
			req.Dst[i] = -1
		}
	}
	return m.launchErr
}

func (m *mockLauncher) SetLogger(l *slog.Logger) { m.logger = l }

func (m *mockLauncher) SetDeviceProvider(p any) error {
	m.provider = p
	return nil
}

// resetLauncher removes any registered launcher without closing it.
func resetLauncher() {
	launcherMu.Lock()
	launcher = nil
	launcherMu.Unlock()
}

func TestRegisterLauncher(t *testing.T) {
	t.Cleanup(resetLauncher)
	resetLauncher()

	first := &mockLauncher{name: "first"}
	if err := RegisterLauncher(first); err != nil {
		t.Fatalf("RegisterLauncher() = %v", err)
	}
	if first.inits != 1 {
		t.Errorf("Init called %d times, want 1", first.inits)
	}
	if RegisteredLauncher() != first {
		t.Error("RegisteredLauncher() did not return the registered launcher")
	}

	second := &mockLauncher{name: "second"}
	if err := RegisterLauncher(second); err != nil {
		t.Fatalf("RegisterLauncher() = %v", err)
	}
	if first.closed != 1 {
		t.Errorf("replaced launcher closed %d times, want 1", first.closed)
	}
	if RegisteredLauncher() != second {
		t.Error("second registration did not replace the first")
	}
}

func TestRegisterLauncherInitError(t *testing.T) {
	t.Cleanup(resetLauncher)
	resetLauncher()

	errInit := errors.New("no device")
	err := RegisterLauncher(&mockLauncher{name: "broken", initErr: errInit})
	if !errors.Is(err, errInit) {
		t.Fatalf("RegisterLauncher() = %v, want %v", err, errInit)
	}
	if RegisteredLauncher() != nil {
		t.Error("launcher with failing Init must not be registered")
	}
}

func TestRegisterLauncherNil(t *testing.T) {
	if err := RegisterLauncher(nil); err == nil {
		t.Error("RegisterLauncher(nil) should fail")
	}
}

func TestUnregisterLauncher(t *testing.T) {
	t.Cleanup(resetLauncher)
	resetLauncher()

	m := &mockLauncher{name: "gone"}
	if err := RegisterLauncher(m); err != nil {
		t.Fatal(err)
	}
	UnregisterLauncher()
	if RegisteredLauncher() != nil {
		t.Error("launcher still registered after UnregisterLauncher")
	}
	if m.closed != 1 {
		t.Errorf("Close called %d times, want 1", m.closed)
	}
	UnregisterLauncher() // no-op
}

func TestSetLauncherDeviceProvider(t *testing.T) {
	t.Cleanup(resetLauncher)
	resetLauncher()

	if err := SetLauncherDeviceProvider("device"); err != nil {
		t.Errorf("without launcher: %v", err)
	}

	m := &mockLauncher{name: "shared"}
	if err := RegisterLauncher(m); err != nil {
		t.Fatal(err)
	}
	if err := SetLauncherDeviceProvider("device"); err != nil {
		t.Fatal(err)
	}
	if m.provider != "device" {
		t.Errorf("provider = %v, want device", m.provider)
	}
}
