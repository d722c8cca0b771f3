package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"poimap/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts the session handler and a shutdownFunc for graceful shutdown.
func NewServer(addr string, sessions *SessionHandler, shutdown func()) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewMux(sessions, shutdown),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewMux registers every route.
func NewMux(sessions *SessionHandler, shutdown func()) *http.ServeMux {
	mux := http.NewServeMux()

	// 1. Health and Version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Logs Endpoint
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)
	mux.HandleFunc("GET /api/log/recent", handleRecentLog)

	// 3. Session Endpoints
	mux.HandleFunc("POST /api/sessions", sessions.HandleCreate)
	mux.HandleFunc("DELETE /api/sessions/{id}", sessions.HandleDelete)
	mux.HandleFunc("POST /api/sessions/{id}/viewport", sessions.HandleViewport)
	mux.HandleFunc("GET /api/sessions/{id}/categories", sessions.HandleGetCategories)
	mux.HandleFunc("POST /api/sessions/{id}/categories", sessions.HandleSetCategories)
	mux.HandleFunc("POST /api/sessions/{id}/featured", sessions.HandleFeatured)
	mux.HandleFunc("POST /api/sessions/{id}/click", sessions.HandleClick)
	mux.HandleFunc("GET /api/sessions/{id}/render", sessions.HandleRender)
	mux.HandleFunc("GET /api/sessions/{id}/ws", sessions.HandleStream)

	// 4. Shutdown Endpoint
	if shutdown != nil {
		mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Graceful shutdown initiated via API")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("Shutting down...")); err != nil {
				slog.Error("Failed to write shutdown response", "error", err)
			}
			// Call shutdown in a goroutine to allow response to flush
			go func() {
				time.Sleep(100 * time.Millisecond)
				shutdown()
			}()
		})
	}

	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body := map[string]string{"version": version.Version}
	if rev := version.Revision(); rev != "" {
		body["revision"] = rev
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
