package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record; Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger installs the logger used by the pipeline. By default nothing is
// logged. Pass nil to restore the silent default. Safe for concurrent use.
//
// Levels:
//   - [slog.LevelDebug]: sample sizes, seeds, cluster counts
//   - [slog.LevelInfo]: palette and paint summaries
//   - [slog.LevelWarn]: separations that failed to trace
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
