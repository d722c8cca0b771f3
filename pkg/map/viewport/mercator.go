package viewport

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb"
)

const (
	// TileSize is the pixel width of the world at zoom 0.
	TileSize = 256
	// MaxLatitude is the Web Mercator latitude limit.
	MaxLatitude = 85.0511287798
)

// Fly is a recorded FlyTo request.
type Fly struct {
	Center   orb.Point     `json:"center"`
	Zoom     int           `json:"zoom"`
	Duration time.Duration `json:"duration"`
}

// Mercator is an in-process Web Mercator view. It implements Provider and
// Navigator and backs headless sessions and tests.
type Mercator struct {
	mu        sync.Mutex
	center    orb.Point
	zoom      int
	minZoom   int
	maxZoom   int
	width     float64
	height    float64
	lastFly   *Fly
	listeners map[int]func()
	nextID    int
}

// NewMercator creates a view centred on 0,0 at minZoom with a zero size.
func NewMercator(minZoom, maxZoom int) *Mercator {
	if maxZoom < minZoom {
		maxZoom = minZoom
	}
	return &Mercator{
		zoom:      minZoom,
		minZoom:   minZoom,
		maxZoom:   maxZoom,
		listeners: make(map[int]func()),
	}
}

// Project converts a position to pixel coordinates at zoom.
func (m *Mercator) Project(pos orb.Point, zoom int) orb.Point {
	return Project(pos, zoom)
}

// Project is the Web Mercator projection used by Mercator.
func Project(pos orb.Point, zoom int) orb.Point {
	scale := TileSize * math.Exp2(float64(zoom))
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, pos.Lat()))
	sin := math.Sin(lat * math.Pi / 180)

	x := scale * (pos.Lon()/360 + 0.5)
	y := scale * (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi))
	return orb.Point{x, y}
}

// Zoom returns the current zoom.
func (m *Mercator) Zoom() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom
}

// MinZoom returns the lowest allowed zoom.
func (m *Mercator) MinZoom() int {
	return m.minZoom
}

// MaxZoom returns the highest allowed zoom.
func (m *Mercator) MaxZoom() int {
	return m.maxZoom
}

// Center returns the current centre.
func (m *Mercator) Center() orb.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center
}

// Size returns the viewport size in pixels.
func (m *Mercator) Size() (width, height float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

// PixelBounds returns the visible pixel box around the projected centre.
func (m *Mercator) PixelBounds() orb.Bound {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := Project(m.center, m.zoom)
	hw, hh := m.width/2, m.height/2
	return orb.Bound{
		Min: orb.Point{c.X() - hw, c.Y() - hh},
		Max: orb.Point{c.X() + hw, c.Y() + hh},
	}
}

// SetView moves the view without animation. Zoom is clamped to the allowed range.
func (m *Mercator) SetView(center orb.Point, zoom int) {
	m.mu.Lock()
	m.center = center
	m.zoom = m.clamp(zoom)
	m.mu.Unlock()
	m.notify()
}

// Resize sets the viewport size in pixels. Negative sizes are treated as zero.
func (m *Mercator) Resize(width, height float64) {
	m.mu.Lock()
	m.width = math.Max(0, width)
	m.height = math.Max(0, height)
	m.mu.Unlock()
	m.notify()
}

// SetViewport applies size, centre and zoom together and notifies listeners
// once, so no frame is rendered with the new size at the old position.
func (m *Mercator) SetViewport(width, height float64, center orb.Point, zoom int) {
	m.mu.Lock()
	m.width = math.Max(0, width)
	m.height = math.Max(0, height)
	m.center = center
	m.zoom = m.clamp(zoom)
	m.mu.Unlock()
	m.notify()
}

// FlyTo jumps to the target and records the request. The animation itself is
// left to the client.
func (m *Mercator) FlyTo(center orb.Point, zoom int, d time.Duration) {
	m.mu.Lock()
	m.center = center
	m.zoom = m.clamp(zoom)
	m.lastFly = &Fly{Center: center, Zoom: m.zoom, Duration: d}
	m.mu.Unlock()
	m.notify()
}

// LastFly returns the most recent FlyTo request, if any.
func (m *Mercator) LastFly() (Fly, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastFly == nil {
		return Fly{}, false
	}
	return *m.lastFly, true
}

// OnChange registers fn. Listeners run in registration order.
func (m *Mercator) OnChange(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Mercator) clamp(z int) int {
	if z < m.minZoom {
		return m.minZoom
	}
	if z > m.maxZoom {
		return m.maxZoom
	}
	return z
}

func (m *Mercator) notify() {
	m.mu.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), len(ids))
	for i, id := range ids {
		fns[i] = m.listeners[id]
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
