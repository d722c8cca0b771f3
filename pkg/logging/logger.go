package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"poimap/pkg/config"
)

// RequestLogger receives one line per HTTP request. It discards output until
// Init has run.
var RequestLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Init sets up the server logger (file, console, capture) as the slog default
// and the request logger (file only). The previous run's files are kept as
// .old. The returned func closes the log files.
func Init(cfg *config.LogConfig) (func(), error) {
	rotatePaths(cfg.Server.Path, cfg.Requests.Path)
	SetTrace(cfg.Trace)

	// 1. Server: file at the configured level, console and capture at INFO+
	serverFile, err := openLog(cfg.Server.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open server log: %w", err)
	}
	level := ParseLevel(cfg.Server.Level)
	server := fanout{
		slog.NewTextHandler(serverFile, &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}),
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: max(level, slog.LevelInfo)}),
		slog.NewTextHandler(GlobalLogCapture, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}

	// 2. Requests
	requestFile, err := openLog(cfg.Requests.Path)
	if err != nil {
		serverFile.Close()
		return nil, fmt.Errorf("failed to open request log: %w", err)
	}

	slog.SetDefault(slog.New(server))
	RequestLogger = slog.New(slog.NewTextHandler(requestFile, &slog.HandlerOptions{Level: ParseLevel(cfg.Requests.Level)}))

	return func() {
		if err := errors.Join(serverFile.Close(), requestFile.Close()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log files: %v\n", err)
		}
	}, nil
}

// ParseLevel maps a config level name to a slog.Level, defaulting to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG", "TRACE":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// nolint:gocritic // slog.Handler takes the record by value
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// rotatePaths renames existing log files to <path>.old, replacing older ones.
func rotatePaths(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		old := p + ".old"
		_ = os.Remove(old)
		_ = os.Rename(p, old)
	}
}
