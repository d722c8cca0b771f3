package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/paulmach/orb/geojson"

	"poimap/pkg/map/render"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
	streamPongWait     = 2 * streamPingInterval
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// StreamMessage is one websocket frame. The first frame is a snapshot of the
// attached handles; every later frame carries the ops of one update. A client
// that falls behind receives a fresh snapshot and must replace its state.
type StreamMessage struct {
	Type     string                     `json:"type"`
	Snapshot *geojson.FeatureCollection `json:"snapshot,omitempty"`
	Ops      []render.Op                `json:"ops,omitempty"`
}

// HandleStream handles GET /api/sessions/{id}/ws
func (h *SessionHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	ops, cancel := s.Subscribe()
	defer func() { cancel() }()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		slog.Warn("Stream: upgrade failed", "session", s.ID, "error", err)
		return
	}
	defer conn.Close()

	// 1. Reader: we only care about pongs and the close frame.
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// 2. Initial snapshot
	if err := writeStream(conn, StreamMessage{Type: "snapshot", Snapshot: s.Snapshot()}); err != nil {
		slog.Debug("Stream: snapshot write failed", "session", s.ID, "error", err)
		return
	}

	// 3. Forward op batches until either side goes away
	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()
	for {
		select {
		case batch, open := <-ops:
			if !open {
				if s.Closed() {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
						time.Now().Add(streamWriteTimeout))
					return
				}
				// Dropped for lagging: resubscribe and resync from a snapshot.
				ops, cancel = s.Subscribe()
				if err := writeStream(conn, StreamMessage{Type: "snapshot", Snapshot: s.Snapshot()}); err != nil {
					slog.Debug("Stream: resync write failed", "session", s.ID, "error", err)
					return
				}
				slog.Info("Stream: resynced lagging client", "session", s.ID)
				continue
			}
			if err := writeStream(conn, StreamMessage{Type: "ops", Ops: batch}); err != nil {
				slog.Debug("Stream: write failed", "session", s.ID, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeStream(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
