package render

import (
	"fmt"

	"github.com/paulmach/orb"

	"poimap/pkg/model"
)

// Kind distinguishes the two render pools.
type Kind int

const (
	// Marker is a full interactive marker with glyph and popup.
	Marker Kind = iota
	// Dot is a lightweight circle indicator.
	Dot
)

func (k Kind) String() string {
	if k == Dot {
		return "dot"
	}
	return "marker"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes "marker" or "dot".
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "marker":
		*k = Marker
	case "dot":
		*k = Dot
	default:
		return fmt.Errorf("unknown render kind %q", b)
	}
	return nil
}

// Style is the visual state of a handle. Marker fields and dot fields are
// disjoint; unused ones stay zero.
type Style struct {
	Glyph model.Glyph `json:"glyph,omitempty"`
	Class string      `json:"class,omitempty"`

	Radius      float64 `json:"radius,omitempty"`
	Color       string  `json:"color,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	FillColor   string  `json:"fill_color,omitempty"`
	FillOpacity float64 `json:"fill_opacity,omitempty"`
}

// DotStyle is the fixed appearance of every dot.
var DotStyle = Style{
	Radius:      6,
	Color:       "#1f2937",
	Weight:      1,
	FillColor:   "#0ea5e9",
	FillOpacity: 0.9,
}

// Marker style classes.
const (
	ClassBase = "emoji-marker"
	ClassTop  = "emoji-marker--top"
	ClassGold = "emoji-marker--rank-gold"
)

// Handle is one rendering object, reused across updates.
type Handle interface {
	Name() string
	Kind() Kind
	SetPosition(pos orb.Point)
	SetStyle(s Style)
	// OnClick sets the click behaviour.
	OnClick(fn func())
}

// Layer is the set of handles currently shown for one Kind.
type Layer interface {
	Attach(h Handle)
	Detach(h Handle)
	Has(h Handle) bool
}

// Backend creates handles and exposes the two layers.
type Backend interface {
	NewMarker(name string, pos orb.Point, style Style, popup string) Handle
	NewDot(name string, pos orb.Point, style Style) Handle
	Layer(k Kind) Layer
}
