package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"poimap/pkg/catalog"
	"poimap/pkg/config"
	"poimap/pkg/map/lod"
	"poimap/pkg/map/render"
	"poimap/pkg/map/viewport"
	"poimap/pkg/map/zoom"
	"poimap/pkg/store"
	"poimap/pkg/visibility"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// cleanupInterval is how often Get() triggers lazy eviction of idle sessions.
const cleanupInterval = 100

// View is the client's viewport.
type View struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Center orb.Point `json:"center"`
	Zoom   int       `json:"zoom"`
}

// Manager owns the live map sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	getCalls int

	cat    *catalog.Catalog
	st     store.StateStore
	cfg    config.MapConfig
	policy *zoom.Policy
}

// NewManager creates a session manager over a shared catalog and settings store.
func NewManager(cat *catalog.Catalog, st store.StateStore, cfg *config.MapConfig) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cat:      cat,
		st:       st,
		cfg:      *cfg,
		policy:   zoom.FromConfig(cfg),
	}
}

// SetIdleTTL sets how long a session without requests or subscribers lives.
// Zero disables eviction.
func (m *Manager) SetIdleTTL(ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttl = ttl
}

// Create starts a session with the given view and renders its first frame.
func (m *Manager) Create(ctx context.Context, v View) (*Session, []render.Op) {
	filter := visibility.NewFilter(m.cat.Featured(), m.st, m.cat.Glyphs())
	filter.Load(ctx)

	view := viewport.NewMercator(m.cfg.MinZoom, m.cfg.MaxZoom)
	view.SetViewport(v.Width, v.Height, v.Center, v.Zoom)

	rec := render.NewRecorder()
	now := time.Now()
	s := &Session{
		ID:         uuid.New().String(),
		Created:    now,
		lastAccess: now,
		view:       view,
		rec:        rec,
		engine:     lod.NewEngine(m.cat, filter, m.policy, view, view, rec, lod.OptionsFromConfig(&m.cfg)),
		subs:       make(map[int]chan []render.Op),
	}

	ops := s.Do(func(e *lod.Engine, _ *viewport.Mercator) { e.Attach() })

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("Session: created", "id", s.ID, "zoom", view.Zoom(), "ops", len(ops))
	return s, ops
}

// Get returns the session with the given ID and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	m.getCalls++
	var idle []*Session
	if m.getCalls%cleanupInterval == 0 {
		idle = m.evictLocked(time.Now())
	}
	s, ok := m.sessions[id]
	if ok {
		s.touch(time.Now())
	}
	m.mu.Unlock()

	closeAll(idle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// CloseIdle closes every session idle for longer than the TTL at now and
// returns how many were closed.
func (m *Manager) CloseIdle(now time.Time) int {
	m.mu.Lock()
	idle := m.evictLocked(now)
	m.mu.Unlock()

	closeAll(idle)
	return len(idle)
}

func (m *Manager) evictLocked(now time.Time) []*Session {
	if m.ttl <= 0 {
		return nil
	}
	cutoff := now.Add(-m.ttl)
	var idle []*Session
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			delete(m.sessions, id)
			idle = append(idle, s)
		}
	}
	return idle
}

func closeAll(sessions []*Session) {
	for _, s := range sessions {
		s.close()
		slog.Info("Session: evicted idle session", "id", s.ID)
	}
}

// Close detaches and forgets a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.close()
	slog.Info("Session: closed", "id", id)
	return nil
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	for _, id := range m.IDs() {
		_ = m.Close(id)
	}
}

// IDs returns the sorted IDs of the live sessions.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
