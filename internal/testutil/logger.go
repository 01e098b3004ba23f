// Package testutil provides shared helpers for tests.
package testutil

import (
	"log/slog"
	"testing"
)

// NewTestLogger returns a debug-level slog.Logger routed through t.Log, so
// pipeline diagnostics from a test run surface only on failure or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tLogWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// tLogWriter adapts testing.TB to io.Writer for slog handlers.
type tLogWriter struct {
	t testing.TB
}

func (w tLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
