package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"poimap/pkg/logging"
)

// maxParamLen drops attributes whose value would swamp the status line
// (session IDs, popup HTML).
const maxParamLen = 20

// Regex to capture key=value or key="value with spaces"
var logRegex = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// handleLatestLog returns the last captured server log line in short form.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	line := logging.GlobalLogCapture.Last()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"log": formatLogLine(line)}); err != nil {
		slog.Error("Failed to write log response", "error", err)
	}
}

// handleRecentLog returns up to ?n= captured lines (default 20), oldest first.
func handleRecentLog(w http.ResponseWriter, r *http.Request) {
	n := 20
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	raw := logging.GlobalLogCapture.Recent(n)
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = formatLogLine(l)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"logs": lines}); err != nil {
		slog.Error("Failed to write log response", "error", err)
	}
}

// formatLogLine turns a slog text line into "HH:MM:SS msg (k=v, ...)".
// The level is dropped and attributes are sorted.
func formatLogLine(raw string) string {
	matches := logRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var msg, clock string
	var params []string
	for _, m := range matches {
		key, val := m[1], m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch {
		case key == "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				clock = t.Format("15:04:05")
			}
		case key == "level":
		case key == "msg":
			msg = val
		case len(val) <= maxParamLen:
			params = append(params, key+"="+val)
		}
	}
	if msg == "" {
		return raw
	}

	sort.Strings(params)
	out := msg
	if clock != "" {
		out = clock + " " + msg
	}
	if len(params) > 0 {
		out += " (" + strings.Join(params, ", ") + ")"
	}
	return out
}
