// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package boxblur

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for boxblur and its launchers.
// By default, boxblur produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by boxblur:
//   - [slog.LevelDebug]: plan and launch geometry, buffer sizes
//   - [slog.LevelInfo]: launcher registration, GPU adapter selection
//   - [slog.LevelWarn]: GPU unavailable, resource release errors
//
// Example:
//
//	boxblur.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	if lc := RegisteredLauncher(); lc != nil {
		propagateLogger(lc, l)
	}
}

// Logger returns the current logger. Backend packages call this to share
// the same configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by launchers that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to a launcher that implements
// loggerSetter.
func propagateLogger(l Launcher, lg *slog.Logger) {
	if ls, ok := l.(loggerSetter); ok {
		ls.SetLogger(lg)
	}
}
