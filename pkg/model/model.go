package model

import (
	"math"

	"github.com/paulmach/orb"
)

// Glyph is the category tag of a point. The default tables use emoji.
type Glyph string

// DefaultGlyph is assigned to points that match no keyword.
const DefaultGlyph Glyph = "📍"

// Point is a named point of interest. It is treated as immutable once the
// catalog has assigned its glyph and score.
type Point struct {
	Name  string  `json:"name"` // Primary Key
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Glyph Glyph   `json:"glyph"`

	// Display attributes, inert for selection
	Type string `json:"type"` // e.g. "Tempel", "Burg"
	City string `json:"city"`
	Desc string `json:"desc"`
	URL  string `json:"url,omitempty"` // resolved external link

	// Scorer Data
	Score        float64 `json:"score"`         // 0..100, fixed for the session
	ScoreDetails string  `json:"score_details"` // Explainer for debug
}

// Position returns the point as an orb.Point (lon, lat).
func (p *Point) Position() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// HasValidPosition reports whether both coordinates are finite and in range.
func (p *Point) HasValidPosition() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// FeaturedSet is the curated, ranked list of highlighted point names.
// A nil *FeaturedSet behaves as an empty set.
type FeaturedSet struct {
	names []string
	rank  map[string]int
}

// NewFeaturedSet builds a set from names in rank order. Repeated names keep
// their first (best) rank.
func NewFeaturedSet(names []string) *FeaturedSet {
	fs := &FeaturedSet{rank: make(map[string]int, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := fs.rank[n]; dup {
			continue
		}
		fs.rank[n] = len(fs.names)
		fs.names = append(fs.names, n)
	}
	return fs
}

// Rank returns the zero-based rank of name.
func (fs *FeaturedSet) Rank(name string) (int, bool) {
	if fs == nil {
		return 0, false
	}
	r, ok := fs.rank[name]
	return r, ok
}

// Contains reports membership in O(1).
func (fs *FeaturedSet) Contains(name string) bool {
	_, ok := fs.Rank(name)
	return ok
}

// Names returns the featured names in rank order.
func (fs *FeaturedSet) Names() []string {
	if fs == nil {
		return nil
	}
	out := make([]string, len(fs.names))
	copy(out, fs.names)
	return out
}

// Len returns the number of featured names.
func (fs *FeaturedSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.names)
}
