package lod

import (
	"time"

	"poimap/pkg/catalog"
	"poimap/pkg/config"
	"poimap/pkg/model"
)

// Options tune the engine. Zero values are not defaulted; use DefaultOptions.
type Options struct {
	Padding         float64       // pixels added on every side before culling
	TopMarkers      int           // markers in the top-N + dots regime
	FeaturedMarkers int           // always-on markers in the score+bin regime
	MarkerClickZoom int           // minimum target zoom when a marker is clicked
	DotClickZoom    int           // minimum target zoom when a dot is clicked
	FlyDuration     time.Duration // click animation length
	Popup           func(p *model.Point) string
}

// DefaultOptions returns the options for the compiled-in map settings.
func DefaultOptions() Options {
	return OptionsFromConfig(&config.DefaultConfig().Map)
}

// OptionsFromConfig maps the map section of the config to engine options.
func OptionsFromConfig(cfg *config.MapConfig) Options {
	return Options{
		Padding:         cfg.PaddingPx,
		TopMarkers:      cfg.TopMarkers,
		FeaturedMarkers: cfg.FeaturedMarkers,
		MarkerClickZoom: cfg.MarkerClickZoom,
		DotClickZoom:    cfg.DotClickZoom,
		FlyDuration:     time.Duration(cfg.FlyDuration),
		Popup:           catalog.PopupHTML,
	}
}
