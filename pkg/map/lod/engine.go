package lod

import (
	"context"
	"log/slog"

	"poimap/pkg/catalog"
	"poimap/pkg/logging"
	"poimap/pkg/map/binning"
	"poimap/pkg/map/render"
	"poimap/pkg/map/viewport"
	"poimap/pkg/map/zoom"
	"poimap/pkg/model"
	"poimap/pkg/visibility"

	"github.com/paulmach/orb"
)

// Stats describes one update cycle.
type Stats struct {
	Zoom     int         `json:"zoom"`
	Regime   zoom.Regime `json:"-"`
	Mode     string      `json:"regime"`
	Markers  int         `json:"markers"`
	Dots     int         `json:"dots"`
	Created  int         `json:"created"`
	Attached int         `json:"attached"`
	Detached int         `json:"detached"`
}

// Category is a legend entry.
type Category struct {
	Glyph   model.Glyph `json:"glyph"`
	Label   string      `json:"label"`
	Visible bool        `json:"visible"`
}

// Engine selects which points are drawn as markers or dots for the current
// view and reconciles the render layers against that selection.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	cat     *catalog.Catalog
	ranked  []*model.Point
	filter  *visibility.Filter
	policy  *zoom.Policy
	view    viewport.Provider
	nav     viewport.Navigator
	backend render.Backend
	culler  *viewport.Culler
	opts    Options

	markers *pool
	dots    *pool
	cancel  func()
	last    Stats
}

// NewEngine wires an engine. nav may be nil, which disables click navigation.
func NewEngine(cat *catalog.Catalog, filter *visibility.Filter, policy *zoom.Policy, view viewport.Provider, nav viewport.Navigator, backend render.Backend, opts Options) *Engine {
	if opts.Popup == nil {
		opts.Popup = catalog.PopupHTML
	}
	return &Engine{
		cat:     cat,
		ranked:  cat.ByScore(),
		filter:  filter,
		policy:  policy,
		view:    view,
		nav:     nav,
		backend: backend,
		culler:  viewport.NewCuller(view, opts.Padding),
		opts:    opts,
		markers: newPool(render.Marker, backend.Layer(render.Marker)),
		dots:    newPool(render.Dot, backend.Layer(render.Dot)),
	}
}

// Attach subscribes to view changes and renders the first frame.
func (e *Engine) Attach() Stats {
	if e.cancel == nil {
		e.cancel = e.view.OnChange(func() { e.Update() })
	}
	return e.Update()
}

// Detach unsubscribes and removes every handle from both layers.
func (e *Engine) Detach() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.markers.detachExcept(nil)
	e.dots.detachExcept(nil)
}

type wanted struct {
	kind  render.Kind
	point *model.Point
}

// Update recomputes the desired set and applies the difference to the layers.
// Calling it again without a state change creates and attaches nothing.
func (e *Engine) Update() Stats {
	frame := e.culler.Frame()
	z := frame.Zoom()
	regime := e.policy.Regime(z, e.view.MinZoom())

	// 1. Logical selection over all filtered points, best first
	filtered := make([]*model.Point, 0, len(e.ranked))
	for _, p := range e.ranked {
		if e.filter.Passes(p) {
			filtered = append(filtered, p)
		}
	}

	// 2. Desired kinds for points that survive the cull
	desired := e.selectKinds(regime, z, frame, filtered)

	keepMarkers := make(map[string]bool)
	keepDots := make(map[string]bool)
	for _, w := range desired {
		if w.kind == render.Marker {
			keepMarkers[w.point.Name] = true
		} else {
			keepDots[w.point.Name] = true
		}
	}

	// 3. Detach first so a name never sits in both layers
	stats := Stats{Zoom: z, Regime: regime, Mode: regime.String()}
	stats.Detached += e.markers.detachExcept(keepMarkers)
	stats.Detached += e.dots.detachExcept(keepDots)

	// 4. Ensure desired handles exist, are current and attached
	for _, w := range desired {
		created, attached := e.ensure(w)
		if created {
			stats.Created++
		}
		if attached {
			stats.Attached++
		}
	}
	stats.Markers = len(keepMarkers)
	stats.Dots = len(keepDots)

	slog.Debug("LOD: update",
		"zoom", z,
		"regime", stats.Mode,
		"markers", stats.Markers,
		"dots", stats.Dots,
		"created", stats.Created,
		"attached", stats.Attached,
		"detached", stats.Detached)

	e.last = stats
	return stats
}

func (e *Engine) selectKinds(regime zoom.Regime, z int, frame viewport.Frame, filtered []*model.Point) []wanted {
	var out []wanted
	visible := func(p *model.Point) (orb.Point, bool) {
		if !p.HasValidPosition() {
			return orb.Point{}, false
		}
		return frame.Visible(p.Position())
	}

	switch regime {
	case zoom.SingleTop:
		if len(filtered) > 0 {
			if _, ok := visible(filtered[0]); ok {
				out = append(out, wanted{render.Marker, filtered[0]})
			}
		}

	case zoom.TopMarkers:
		for i, p := range filtered {
			if _, ok := visible(p); !ok {
				continue
			}
			kind := render.Dot
			if i < e.opts.TopMarkers {
				kind = render.Marker
			}
			out = append(out, wanted{kind, p})
		}

	case zoom.FullMarkers:
		for _, p := range filtered {
			if _, ok := visible(p); ok {
				out = append(out, wanted{render.Marker, p})
			}
		}

	default:
		threshold := e.policy.ScoreThreshold(z)
		cands := make([]binning.Candidate, 0, len(filtered))
		top := make(map[string]bool, e.opts.FeaturedMarkers)
		for i, p := range filtered {
			if i < e.opts.FeaturedMarkers {
				top[p.Name] = true
			}
			if px, ok := visible(p); ok {
				cands = append(cands, binning.Candidate{Point: p, Pixel: px})
			}
		}
		reps := binning.Representatives(e.policy.BinSize(z), cands)
		for _, c := range cands {
			kind := render.Dot
			if top[c.Point.Name] || (reps[c.Point.Name] && c.Point.Score >= threshold) {
				kind = render.Marker
			}
			out = append(out, wanted{kind, c.Point})
		}
	}

	logging.TraceDefault("LOD: selection", "regime", regime.String(), "filtered", len(filtered), "desired", len(out))
	return out
}

func (e *Engine) ensure(w wanted) (created, attached bool) {
	p := w.point
	pl := e.dots
	style := render.DotStyle
	if w.kind == render.Marker {
		pl = e.markers
		style = e.markerStyle(p)
	}

	h, ok := pl.get(p.Name)
	if !ok {
		if w.kind == render.Marker {
			h = e.backend.NewMarker(p.Name, p.Position(), style, e.opts.Popup(p))
		} else {
			h = e.backend.NewDot(p.Name, p.Position(), style)
		}
		e.bindClick(h, p, w.kind)
		pl.put(h)
		created = true
	} else {
		h.SetPosition(p.Position())
		h.SetStyle(style)
	}
	return created, pl.attach(h)
}

func (e *Engine) markerStyle(p *model.Point) render.Style {
	s := render.Style{Glyph: p.Glyph, Class: render.ClassBase}
	if !e.filter.FeaturedVisible() {
		return s
	}
	rank, ok := e.cat.Featured().Rank(p.Name)
	switch {
	case !ok:
	case rank == 0:
		s.Class += " " + render.ClassTop
	case rank < 10:
		s.Class += " " + render.ClassGold
	}
	return s
}

// SetCategoryVisible toggles a category and re-renders.
func (e *Engine) SetCategoryVisible(ctx context.Context, g model.Glyph, v bool) Stats {
	e.filter.SetCategoryVisible(ctx, g, v)
	return e.Update()
}

// SetAllCategoriesVisible toggles every category and re-renders.
func (e *Engine) SetAllCategoriesVisible(ctx context.Context, v bool) Stats {
	e.filter.SetAllCategoriesVisible(ctx, v)
	return e.Update()
}

// SetFeaturedVisible toggles the featured override and re-renders.
func (e *Engine) SetFeaturedVisible(ctx context.Context, v bool) Stats {
	e.filter.SetFeaturedVisible(ctx, v)
	return e.Update()
}

// Categories returns the legend entries in display order.
func (e *Engine) Categories() []Category {
	cats := e.filter.Categories()
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = Category{Glyph: c.Glyph, Label: catalog.Label(c.Glyph), Visible: c.Visible}
	}
	return out
}

// CategoryVisible returns the toggle for g.
func (e *Engine) CategoryVisible(g model.Glyph) bool {
	return e.filter.CategoryVisible(g)
}

// FeaturedVisible returns the featured override toggle.
func (e *Engine) FeaturedVisible() bool {
	return e.filter.FeaturedVisible()
}

// ActiveMarkers returns the sorted names of attached markers.
func (e *Engine) ActiveMarkers() []string {
	return e.markers.activeNames()
}

// ActiveDots returns the sorted names of attached dots.
func (e *Engine) ActiveDots() []string {
	return e.dots.activeNames()
}

// PoolSizes returns how many marker and dot handles exist, attached or not.
func (e *Engine) PoolSizes() (markers, dots int) {
	return e.markers.size(), e.dots.size()
}

// LastStats returns the stats of the most recent update.
func (e *Engine) LastStats() Stats {
	return e.last
}
