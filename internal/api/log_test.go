package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"poimap/pkg/logging"
)

func TestFormatLogLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "UpdateLine",
			input: `time=2026-01-18T06:50:46.074+01:00 level=DEBUG msg="LOD: update" zoom=9 regime=score-bin markers=12 dots=30 created=2 attached=3 detached=1`,
			want:  "06:50:46 LOD: update (attached=3, created=2, detached=1, dots=30, markers=12, regime=score-bin, zoom=9)",
		},
		{
			name:  "LongValuesDropped",
			input: `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Session: created" id=0f8fad5b-d9cb-469f-a165-70867728950e zoom=5 ops="7 "`,
			want:  "06:50:46 Session: created (ops=7, zoom=5)",
		},
		{
			name:  "NoMessage",
			input: `just some text`,
			want:  "just some text",
		},
		{
			name:  "NoTime",
			input: `level=WARN msg=hello`,
			want:  "hello",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatLogLine(tt.input); got != tt.want {
				t.Errorf("formatLogLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleRecentLog(t *testing.T) {
	_, _ = logging.GlobalLogCapture.Write([]byte(`time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Catalog: built" points=42` + "\n"))
	_, _ = logging.GlobalLogCapture.Write([]byte(`time=2026-01-18T06:50:47.000+01:00 level=INFO msg="Server listening"` + "\n"))

	rec := httptest.NewRecorder()
	handleRecentLog(rec, httptest.NewRequest(http.MethodGet, "/api/log/recent?n=2", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Logs []string `json:"logs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"06:50:46 Catalog: built (points=42)", "06:50:47 Server listening"}
	if len(body.Logs) != 2 || body.Logs[0] != want[0] || body.Logs[1] != want[1] {
		t.Errorf("logs = %q, want %q", body.Logs, want)
	}

	rec = httptest.NewRecorder()
	handleRecentLog(rec, httptest.NewRequest(http.MethodGet, "/api/log/recent?n=zero", http.NoBody))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad n, got %d", rec.Code)
	}
}
