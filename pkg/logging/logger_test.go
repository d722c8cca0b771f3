package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"poimap/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")

	// A previous run's log must be rotated to .old
	if err := os.WriteFile(serverLog, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.LogConfig{
		Server: config.LogSettings{
			Path:  serverLog,
			Level: "DEBUG",
		},
		Requests: config.LogSettings{
			Path:  requestLog,
			Level: "INFO",
		},
	}

	prev := slog.Default()
	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() {
		cleanup()
		slog.SetDefault(prev)
	}()

	if _, err := os.Stat(serverLog); os.IsNotExist(err) {
		t.Error("Server log file not created")
	}
	if _, err := os.Stat(requestLog); os.IsNotExist(err) {
		t.Error("Request log file not created")
	}
	old, err := os.ReadFile(serverLog + ".old")
	if err != nil || !strings.Contains(string(old), "previous run") {
		t.Errorf("expected rotated .old file, err=%v", err)
	}

	if RequestLogger == nil {
		t.Error("RequestLogger was not initialized")
	}

	slog.Info("engine ready", "points", 3)
	if !strings.Contains(GlobalLogCapture.Last(), "engine ready") {
		t.Errorf("capture writer missed the last line: %q", GlobalLogCapture.Last())
	}
	slog.Debug("per-frame detail")
	if strings.Contains(GlobalLogCapture.Last(), "per-frame detail") {
		t.Error("capture must only keep INFO and above")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"trace", slog.LevelDebug},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogCapture(t *testing.T) {
	c := NewLogCapture(3)
	if c.Last() != "" || len(c.Recent(5)) != 0 {
		t.Fatal("expected empty capture")
	}

	_, _ = c.Write([]byte("one\n"))
	_, _ = c.Write([]byte("two\nthree\n"))
	if got := c.Recent(0); strings.Join(got, ",") != "one,two,three" {
		t.Errorf("Recent(0) = %v", got)
	}

	_, _ = c.Write([]byte("four\n"))
	if c.Last() != "four" {
		t.Errorf("Last() = %q, want four", c.Last())
	}
	if got := c.Recent(2); strings.Join(got, ",") != "three,four" {
		t.Errorf("Recent(2) = %v", got)
	}
	if got := c.Recent(10); strings.Join(got, ",") != "two,three,four" {
		t.Errorf("Recent(10) = %v", got)
	}
}

func TestTrace(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	defer SetTrace(false)

	SetTrace(false)
	Trace(logger, "hidden")
	SetTrace(true)
	Trace(logger, "shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("trace logged while disabled")
	}
	if !strings.Contains(buf.String(), "shown") || !TraceEnabled() {
		t.Error("trace not logged while enabled")
	}
}
