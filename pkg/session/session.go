package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"

	"poimap/pkg/map/lod"
	"poimap/pkg/map/render"
	"poimap/pkg/map/viewport"
)

// subscriberBuffer is the number of op batches a subscriber may lag behind
// before it is dropped.
const subscriberBuffer = 16

// Session is one client's map: a view, an engine and its render ops.
// All engine access goes through Do, which runs one operation at a time.
type Session struct {
	ID      string
	Created time.Time

	mu     sync.Mutex
	view   *viewport.Mercator
	rec    *render.Recorder
	engine *lod.Engine
	closed bool

	subMu      sync.Mutex
	subs       map[int]chan []render.Op
	nextID     int
	lastAccess time.Time
}

// Do runs fn with exclusive access to the engine and view, then returns and
// publishes the render ops it produced.
func (s *Session) Do(fn func(e *lod.Engine, v *viewport.Mercator)) []render.Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	fn(s.engine, s.view)
	ops := s.rec.Drain()
	if len(ops) > 0 {
		s.publish(ops)
	}
	return ops
}

// SetView applies a client viewport.
func (s *Session) SetView(v View) []render.Op {
	return s.Do(func(_ *lod.Engine, mv *viewport.Mercator) {
		mv.SetViewport(v.Width, v.Height, v.Center, v.Zoom)
	})
}

// View returns the current viewport.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := s.view.Size()
	return View{Width: w, Height: h, Center: s.view.Center(), Zoom: s.view.Zoom()}
}

// Click simulates a click on an attached handle. It reports false when the
// handle is not attached.
func (s *Session) Click(kind render.Kind, name string) ([]render.Op, bool) {
	var ok bool
	ops := s.Do(func(_ *lod.Engine, _ *viewport.Mercator) {
		ok = s.rec.Click(kind, name)
	})
	return ops, ok
}

// Snapshot exports the attached handles as GeoJSON.
func (s *Session) Snapshot() *geojson.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.FeatureCollection()
}

// Subscribe returns a channel receiving every op batch produced from now on.
// The channel is closed by cancel, when the session closes, or when the
// subscriber falls subscriberBuffer batches behind. In the last case Closed
// reports false and the subscriber should resubscribe and take a Snapshot.
func (s *Session) Subscribe() (<-chan []render.Op, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan []render.Op, subscriberBuffer)
	if s.subs == nil {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) touch(now time.Time) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.lastAccess = now
}

// idleSince reports whether the session was last used before cutoff and has
// no live subscribers.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs) == 0 && s.lastAccess.Before(cutoff)
}

func (s *Session) publish(ops []render.Op) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ops:
		default:
			delete(s.subs, id)
			close(ch)
			slog.Warn("Session: subscriber lagging, unsubscribed", "session", s.ID, "subscriber", id, "ops", len(ops))
		}
	}
}

func (s *Session) close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.engine.Detach()
		s.rec.Drain()
	}
	s.mu.Unlock()

	s.subMu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.subs = nil
	s.subMu.Unlock()
}
