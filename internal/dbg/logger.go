package dbg

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Drops everything. Enabled is false, so log calls never build their records.
type silent struct{}

func (silent) Enabled(context.Context, slog.Level) bool  { return false }
func (silent) Handle(context.Context, slog.Record) error { return nil }
func (s silent) WithAttrs([]slog.Attr) slog.Handler      { return s }
func (s silent) WithGroup(string) slog.Handler           { return s }

var quiet = slog.New(silent{})

var current atomic.Pointer[slog.Logger]

// Route geometry logs to l, or silence them again with nil. Hull and
// triangulation sizes log at debug level. Skipped relaxation, unclosed merge
// groups and folded clusters log as warnings.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = quiet
	}
	current.Store(l)
}

func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return quiet
}
