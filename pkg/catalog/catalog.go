package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"poimap/pkg/model"
	"poimap/pkg/scorer"
)

// Rejection describes a source record that did not make it into the catalog.
type Rejection struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// LoadReport summarises a Build.
type LoadReport struct {
	Accepted int         `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
}

// Options configure Build.
type Options struct {
	Rules     *scorer.Rules
	Overrides map[string]float64
	Links     map[string]string
}

// Catalog is the immutable, scored point set for a session.
type Catalog struct {
	points   []*model.Point
	byName   map[string]*model.Point
	featured *model.FeaturedSet
	glyphs   []model.Glyph
}

// Build validates, glyphs, links and scores the entries of src.
// Invalid records are skipped and reported; duplicate names fail the build.
func Build(src *Source, opts Options) (*Catalog, *LoadReport, error) {
	report := &LoadReport{}
	report.Rejected = append(report.Rejected, src.Skipped...)

	rules := opts.Rules
	if rules == nil {
		rules = scorer.DefaultRules()
	}
	featured := model.NewFeaturedSet(src.Featured)
	if limit := rules.FeaturedCapacity(); featured.Len() > limit {
		names := featured.Names()
		slog.Warn("Catalog: featured list longer than the featured score tier, extra names dropped",
			"featured", len(names), "kept", limit, "dropped", strings.Join(names[limit:], ", "))
		featured = model.NewFeaturedSet(names[:limit])
	}
	sc := scorer.NewScorer(rules, featured, opts.Overrides)

	c := &Catalog{
		points:   make([]*model.Point, 0, len(src.Points)),
		byName:   make(map[string]*model.Point, len(src.Points)),
		featured: featured,
	}

	var dups []string
	present := make(map[model.Glyph]bool)
	for i := range src.Points {
		e := &src.Points[i]
		name := strings.TrimSpace(e.Name)

		// 1. Validate
		if name == "" {
			report.Rejected = append(report.Rejected, Rejection{Index: i, Reason: "empty name"})
			continue
		}
		p := &model.Point{
			Name: name,
			Lat:  e.Lat,
			Lon:  e.Lon,
			Type: e.Type,
			City: e.City,
			Desc: e.Desc,
		}
		if e.MissingPosition {
			report.Rejected = append(report.Rejected, Rejection{Index: i, Name: name, Reason: "missing position"})
			continue
		}
		if !p.HasValidPosition() {
			report.Rejected = append(report.Rejected, Rejection{
				Index:  i,
				Name:   name,
				Reason: fmt.Sprintf("invalid position lat=%v lon=%v", e.Lat, e.Lon),
			})
			continue
		}
		if _, exists := c.byName[name]; exists {
			dups = append(dups, name)
			continue
		}

		// 2. Enrich
		p.Glyph = AssignGlyph(e.Glyph, e.Type, name)
		p.URL = ResolveURL(e.URL, name, opts.Links)
		sc.Calculate(p)

		c.points = append(c.points, p)
		c.byName[name] = p
		present[p.Glyph] = true
	}

	if len(dups) > 0 {
		return nil, report, fmt.Errorf("%w: %s", ErrDuplicateName, strings.Join(dups, ", "))
	}

	for _, r := range report.Rejected {
		slog.Warn("Catalog: point rejected", "index", r.Index, "name", r.Name, "reason", r.Reason, "err", ErrInvalidPoint)
	}
	for _, n := range featured.Names() {
		if _, ok := c.byName[n]; !ok {
			slog.Debug("Catalog: featured name not in catalog", "name", n)
		}
	}
	for n := range opts.Overrides {
		if _, ok := c.byName[n]; !ok {
			slog.Debug("Catalog: importance override for unknown name ignored", "name", n)
		}
	}

	c.glyphs = LegendOrder(present)
	report.Accepted = len(c.points)
	slog.Info("Catalog: built", "points", report.Accepted, "rejected", len(report.Rejected), "featured", featured.Len())
	return c, report, nil
}

// Points returns the points in source order. The slice must not be modified.
func (c *Catalog) Points() []*model.Point {
	return c.points
}

// Get looks up a point by name.
func (c *Catalog) Get(name string) (*model.Point, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Len returns the number of accepted points.
func (c *Catalog) Len() int {
	return len(c.points)
}

// Featured returns the curated set.
func (c *Catalog) Featured() *model.FeaturedSet {
	return c.featured
}

// Glyphs returns the glyphs present in the catalog in legend order.
func (c *Catalog) Glyphs() []model.Glyph {
	out := make([]model.Glyph, len(c.glyphs))
	copy(out, c.glyphs)
	return out
}

// ByScore returns the points sorted by score descending, ties by name.
func (c *Catalog) ByScore() []*model.Point {
	out := make([]*model.Point, len(c.points))
	copy(out, c.points)
	SortByScore(out)
	return out
}

// SortByScore orders points by score descending, then name ascending.
func SortByScore(pts []*model.Point) {
	sort.SliceStable(pts, func(i, j int) bool {
		if pts[i].Score != pts[j].Score {
			return pts[i].Score > pts[j].Score
		}
		return pts[i].Name < pts[j].Name
	})
}
