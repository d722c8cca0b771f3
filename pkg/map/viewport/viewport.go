package viewport

import (
	"time"

	"github.com/paulmach/orb"
)

// Provider supplies the current map view. Positions are orb.Point{lon, lat};
// pixel coordinates are plane coordinates at the given zoom.
type Provider interface {
	Zoom() int
	MinZoom() int
	PixelBounds() orb.Bound
	Project(pos orb.Point, zoom int) orb.Point
	// OnChange registers fn to run after pan, zoom or resize settles.
	OnChange(fn func()) (cancel func())
}

// Navigator moves the view, typically with an animation.
type Navigator interface {
	FlyTo(center orb.Point, zoom int, d time.Duration)
}
