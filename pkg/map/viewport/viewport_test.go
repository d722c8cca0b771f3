package viewport

import (
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name  string
		pos   orb.Point
		zoom  int
		wantX float64
		wantY float64
	}{
		{"Origin_Z0", orb.Point{0, 0}, 0, 128, 128},
		{"Origin_Z1", orb.Point{0, 0}, 1, 256, 256},
		{"DateLineWest", orb.Point{-180, 0}, 0, 0, 128},
		{"DateLineEast", orb.Point{180, 0}, 2, 1024, 512},
		{"NorthLimit", orb.Point{0, 90}, 0, 128, 0},
		{"SouthLimit", orb.Point{0, -90}, 0, 128, 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.pos, tt.zoom)
			assert.InDelta(t, tt.wantX, got.X(), 1e-6)
			assert.InDelta(t, tt.wantY, got.Y(), 1e-3)
		})
	}
}

func TestProject_NorthIsUp(t *testing.T) {
	tokyo := Project(orb.Point{139.69, 35.68}, 5)
	osaka := Project(orb.Point{135.50, 34.69}, 5)
	assert.Greater(t, tokyo.X(), osaka.X())
	assert.Less(t, tokyo.Y(), osaka.Y())
}

func TestMercator_View(t *testing.T) {
	m := NewMercator(2, 19)
	assert.Equal(t, 2, m.Zoom())
	assert.Equal(t, 2, m.MinZoom())
	assert.Equal(t, 19, m.MaxZoom())

	calls := 0
	cancel := m.OnChange(func() { calls++ })

	m.Resize(800, 600)
	m.SetView(orb.Point{0, 0}, 1)
	assert.Equal(t, 2, m.Zoom(), "zoom clamped to min")
	m.SetView(orb.Point{0, 0}, 25)
	assert.Equal(t, 19, m.Zoom(), "zoom clamped to max")

	m.SetView(orb.Point{0, 0}, 3)
	b := m.PixelBounds()
	assert.InDelta(t, 1024-400, b.Min.X(), 1e-9)
	assert.InDelta(t, 1024+400, b.Max.X(), 1e-9)
	assert.InDelta(t, 1024-300, b.Min.Y(), 1e-9)
	assert.InDelta(t, 1024+300, b.Max.Y(), 1e-9)
	assert.Equal(t, 4, calls)

	cancel()
	m.Resize(10, 10)
	assert.Equal(t, 4, calls)

	m.Resize(-5, 20)
	w, h := m.Size()
	assert.Equal(t, 0.0, w)
	assert.Equal(t, 20.0, h)
}

func TestMercator_FlyTo(t *testing.T) {
	m := NewMercator(2, 18)
	_, ok := m.LastFly()
	assert.False(t, ok)

	notified := false
	m.OnChange(func() { notified = true })

	target := orb.Point{138.73, 35.36}
	m.FlyTo(target, 20, 500*time.Millisecond)

	fly, ok := m.LastFly()
	assert.True(t, ok)
	assert.Equal(t, target, fly.Center)
	assert.Equal(t, 18, fly.Zoom)
	assert.Equal(t, 500*time.Millisecond, fly.Duration)
	assert.Equal(t, target, m.Center())
	assert.Equal(t, 18, m.Zoom())
	assert.True(t, notified)
}

func TestMercator_ListenerOrder(t *testing.T) {
	m := NewMercator(0, 10)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		m.OnChange(func() { order = append(order, i) })
	}
	m.Resize(1, 1)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestMercator_SetViewportNotifiesOnce(t *testing.T) {
	m := NewMercator(2, 19)
	calls := 0
	var seen orb.Bound
	m.OnChange(func() {
		calls++
		seen = m.PixelBounds()
	})

	m.SetViewport(4000, 3000, orb.Point{139.7, 35.68}, 25)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 19, m.Zoom())
	w, h := m.Size()
	assert.Equal(t, 4000.0, w)
	assert.Equal(t, 3000.0, h)
	assert.InDelta(t, 4000, seen.Max.X()-seen.Min.X(), 1e-6)

	m.SetViewport(-1, 10, orb.Point{0, 0}, 0)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, m.Zoom())
	w, _ = m.Size()
	assert.Equal(t, 0.0, w)
}

func TestCuller(t *testing.T) {
	m := NewMercator(0, 19)
	m.Resize(200, 100)
	m.SetView(orb.Point{0, 0}, 0)
	// Bounds at z0: x 28..228, y 78..178. Padded by 10: x 18..238.
	c := NewCuller(m, 10)

	tests := []struct {
		name string
		pos  orb.Point
		want bool
	}{
		{"Centre", orb.Point{0, 0}, true},
		{"InsidePadding", orb.Point{-150, 0}, true}, // x ~= 21.3
		{"OutsidePadding", orb.Point{-175, 0}, false},
		{"NaNLat", orb.Point{0, math.NaN()}, false},
		{"InfLon", orb.Point{math.Inf(1), 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := c.Visible(tt.pos)
			assert.Equal(t, tt.want, got)
		})
	}

	px, ok := c.Visible(orb.Point{0, 0})
	assert.True(t, ok)
	assert.InDelta(t, 128, px.X(), 1e-9)
}

func TestCuller_DegenerateBounds(t *testing.T) {
	m := NewMercator(0, 19)
	c := NewCuller(m, 80)

	_, ok := c.Visible(orb.Point{0, 0})
	assert.False(t, ok, "zero-size viewport shows nothing")

	m.Resize(100, 0)
	_, ok = c.Visible(orb.Point{0, 0})
	assert.False(t, ok)
}

func TestFrame_Snapshot(t *testing.T) {
	m := NewMercator(0, 19)
	m.Resize(100, 100)
	m.SetView(orb.Point{0, 0}, 4)

	f := NewCuller(m, 0).Frame()
	m.SetView(orb.Point{90, 0}, 6)

	assert.Equal(t, 4, f.Zoom())
	_, ok := f.Visible(orb.Point{0, 0})
	assert.True(t, ok, "frame keeps the bounds it was taken with")
}
