package viewport

import (
	"math"

	"github.com/paulmach/orb"
)

// Culler tests projected positions against the padded pixel bounds.
type Culler struct {
	view    Provider
	padding float64
}

// NewCuller creates a culler that expands the view by padding pixels on every side.
func NewCuller(view Provider, padding float64) *Culler {
	return &Culler{view: view, padding: math.Max(0, padding)}
}

// Frame snapshots the current zoom and padded bounds.
func (c *Culler) Frame() Frame {
	b := c.view.PixelBounds()
	return Frame{
		view:  c.view,
		zoom:  c.view.Zoom(),
		bound: b.Pad(c.padding),
		empty: !(b.Max.X() > b.Min.X() && b.Max.Y() > b.Min.Y()),
	}
}

// Visible is a one-off check against the current frame.
func (c *Culler) Visible(pos orb.Point) (orb.Point, bool) {
	return c.Frame().Visible(pos)
}

// Frame is the culling region for one update.
type Frame struct {
	view  Provider
	zoom  int
	bound orb.Bound
	empty bool
}

// Zoom returns the zoom the frame was taken at.
func (f Frame) Zoom() int {
	return f.zoom
}

// Bound returns the padded pixel region.
func (f Frame) Bound() orb.Bound {
	return f.bound
}

// Visible projects pos and reports whether it lies in the padded region.
// A viewport without area shows nothing. Non-finite positions are never visible.
func (f Frame) Visible(pos orb.Point) (orb.Point, bool) {
	if f.empty || !finite(pos) {
		return orb.Point{}, false
	}
	px := f.view.Project(pos, f.zoom)
	if !finite(px) {
		return px, false
	}
	return px, f.bound.Contains(px)
}

func finite(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
