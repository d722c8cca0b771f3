package logging

import (
	"log/slog"
	"sync/atomic"
)

var traceOn atomic.Bool

// SetTrace switches per-frame trace logging on or off.
func SetTrace(on bool) {
	traceOn.Store(on)
}

// TraceEnabled reports whether trace logging is on.
func TraceEnabled() bool {
	return traceOn.Load()
}

// Trace logs at DEBUG on logger, but only while tracing is on.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if traceOn.Load() {
		logger.Debug(msg, args...)
	}
}

// TraceDefault is Trace on the default logger.
func TraceDefault(msg string, args ...any) {
	Trace(slog.Default(), msg, args...)
}
