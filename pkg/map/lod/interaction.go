package lod

import (
	"poimap/pkg/map/render"
	"poimap/pkg/model"
)

// bindClick attaches the zoom-toward behaviour. It runs once, at creation.
func (e *Engine) bindClick(h render.Handle, p *model.Point, kind render.Kind) {
	h.OnClick(func() { e.zoomToward(p, kind) })
}

// zoomToward centres the view on p, zooming in by two levels but at least to
// the minimum target zoom for the handle kind.
func (e *Engine) zoomToward(p *model.Point, kind render.Kind) {
	if e.nav == nil {
		return
	}
	target := e.opts.MarkerClickZoom
	if kind == render.Dot {
		target = e.opts.DotClickZoom
	}
	target = max(e.view.Zoom()+2, target)
	e.nav.FlyTo(p.Position(), target, e.opts.FlyDuration)
}
