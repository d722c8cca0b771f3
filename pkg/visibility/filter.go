package visibility

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"poimap/pkg/config"
	"poimap/pkg/model"
	"poimap/pkg/store"
)

// Filter decides which points are eligible for display from per-category
// toggles and the featured override.
type Filter struct {
	mu           sync.RWMutex
	st           store.StateStore
	featured     *model.FeaturedSet
	present      []model.Glyph
	known        map[model.Glyph]bool
	visible      map[model.Glyph]bool
	showFeatured bool
}

// NewFilter creates a filter over the given glyphs with every category visible
// and the featured override on. st may be nil, which disables persistence.
func NewFilter(featured *model.FeaturedSet, st store.StateStore, present []model.Glyph) *Filter {
	f := &Filter{
		st:           st,
		featured:     featured,
		present:      append([]model.Glyph(nil), present...),
		known:        make(map[model.Glyph]bool, len(present)),
		visible:      make(map[model.Glyph]bool, len(present)),
		showFeatured: true,
	}
	for _, g := range present {
		f.known[g] = true
		f.visible[g] = true
	}
	return f
}

// Load restores persisted settings. Unknown glyphs are ignored and malformed
// values fall back to the defaults.
func (f *Filter) Load(ctx context.Context) {
	if f.st == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if raw, ok := f.st.GetState(ctx, config.KeyCategoryVisibility); ok && raw != "" {
		var saved map[string]bool
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			slog.Warn("Visibility: ignoring malformed category settings", "error", err)
		} else {
			for g, v := range saved {
				if f.known[model.Glyph(g)] {
					f.visible[model.Glyph(g)] = v
				}
			}
		}
	}

	if raw, ok := f.st.GetState(ctx, config.KeyShowFeatured); ok {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true":
			f.showFeatured = true
		case "0", "false":
			f.showFeatured = false
		default:
			slog.Warn("Visibility: ignoring malformed featured setting", "value", raw)
		}
	}
}

// Passes reports whether p may be displayed.
func (f *Filter) Passes(p *model.Point) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.categoryVisible(p.Glyph) {
		return true
	}
	return f.showFeatured && f.featured.Contains(p.Name)
}

// CategoryVisible returns the toggle for g. Glyphs outside the catalog count as visible.
func (f *Filter) CategoryVisible(g model.Glyph) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.categoryVisible(g)
}

func (f *Filter) categoryVisible(g model.Glyph) bool {
	v, ok := f.visible[g]
	return !ok || v
}

// FeaturedVisible returns the featured override toggle.
func (f *Filter) FeaturedVisible() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.showFeatured
}

// Categories returns the known glyphs in legend order with their toggles.
func (f *Filter) Categories() []Category {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Category, len(f.present))
	for i, g := range f.present {
		out[i] = Category{Glyph: g, Visible: f.visible[g]}
	}
	return out
}

// Category is a glyph and its toggle state.
type Category struct {
	Glyph   model.Glyph `json:"glyph"`
	Visible bool        `json:"visible"`
}

// SetCategoryVisible toggles one category. It reports whether anything changed.
func (f *Filter) SetCategoryVisible(ctx context.Context, g model.Glyph, v bool) bool {
	f.mu.Lock()
	if !f.known[g] || f.visible[g] == v {
		f.mu.Unlock()
		return false
	}
	f.visible[g] = v
	raw := f.encodeLocked()
	f.mu.Unlock()

	f.persist(ctx, config.KeyCategoryVisibility, raw)
	return true
}

// SetAllCategoriesVisible sets every category at once.
func (f *Filter) SetAllCategoriesVisible(ctx context.Context, v bool) bool {
	f.mu.Lock()
	changed := false
	for _, g := range f.present {
		if f.visible[g] != v {
			f.visible[g] = v
			changed = true
		}
	}
	if !changed {
		f.mu.Unlock()
		return false
	}
	raw := f.encodeLocked()
	f.mu.Unlock()

	f.persist(ctx, config.KeyCategoryVisibility, raw)
	return true
}

// SetFeaturedVisible toggles the featured override.
func (f *Filter) SetFeaturedVisible(ctx context.Context, v bool) bool {
	f.mu.Lock()
	if f.showFeatured == v {
		f.mu.Unlock()
		return false
	}
	f.showFeatured = v
	f.mu.Unlock()

	f.persist(ctx, config.KeyShowFeatured, strconv.FormatBool(v))
	return true
}

func (f *Filter) encodeLocked() string {
	out := make(map[string]bool, len(f.present))
	for _, g := range f.present {
		out[string(g)] = f.visible[g]
	}
	// A map of string to bool always marshals.
	data, _ := json.Marshal(out)
	return string(data)
}

func (f *Filter) persist(ctx context.Context, key, val string) {
	if f.st == nil {
		return
	}
	if err := f.st.SetState(ctx, key, val); err != nil {
		slog.Warn("Visibility: failed to persist setting", "key", key, "error", err)
	}
}
