package zoom

import (
	"sort"

	"poimap/pkg/config"
)

// NoBinning is the bin size returned once every point may be shown.
const NoBinning = 0

// Regime is one of the mutually exclusive rendering strategies.
type Regime int

const (
	// SingleTop renders only the highest scoring point.
	SingleTop Regime = iota
	// TopMarkers renders the top few as markers and everything else as dots.
	TopMarkers
	// FullMarkers renders every point as a marker.
	FullMarkers
	// ScoreBin mixes featured markers, thresholded markers and dots.
	ScoreBin
)

func (r Regime) String() string {
	switch r {
	case SingleTop:
		return "single-top"
	case TopMarkers:
		return "top-markers"
	case FullMarkers:
		return "full-markers"
	case ScoreBin:
		return "score-bin"
	default:
		return "unknown"
	}
}

// Policy maps integer zoom levels to thresholds, bin sizes and regimes.
type Policy struct {
	FullDetailZoom int
	Thresholds     []config.ZoomStep
	BinSizes       []config.ZoomStep
}

// FromConfig builds a Policy from map settings. The step tables are copied and sorted.
func FromConfig(cfg *config.MapConfig) *Policy {
	p := &Policy{
		FullDetailZoom: cfg.FullDetailZoom,
		Thresholds:     append([]config.ZoomStep(nil), cfg.Thresholds...),
		BinSizes:       append([]config.ZoomStep(nil), cfg.BinSizes...),
	}
	sortSteps(p.Thresholds)
	sortSteps(p.BinSizes)
	return p
}

// Default returns the policy built from the compiled-in map settings.
func Default() *Policy {
	return FromConfig(&config.DefaultConfig().Map)
}

// ScoreThreshold returns the minimum score for a thresholded marker at z.
// It never increases with z and is 0 from FullDetailZoom on.
func (p *Policy) ScoreThreshold(z int) float64 {
	if z >= p.FullDetailZoom {
		return 0
	}
	return lookup(p.Thresholds, z, 0)
}

// BinSize returns the grid cell size in pixels at z, or NoBinning.
func (p *Policy) BinSize(z int) float64 {
	if z >= p.FullDetailZoom {
		return NoBinning
	}
	return lookup(p.BinSizes, z, NoBinning)
}

// Regime selects the rendering strategy at z for a map whose minimum zoom is minZoom.
func (p *Policy) Regime(z, minZoom int) Regime {
	switch {
	case z <= minZoom+1:
		return SingleTop
	case z == minZoom+2:
		return TopMarkers
	case p.BinSize(z) == NoBinning:
		return FullMarkers
	default:
		return ScoreBin
	}
}

// lookup returns the value of the first step covering z. Zooms past the last
// step keep its value; an empty table yields def.
func lookup(steps []config.ZoomStep, z int, def float64) float64 {
	if len(steps) == 0 {
		return def
	}
	for _, s := range steps {
		if z <= s.MaxZoom {
			return s.Value
		}
	}
	return steps[len(steps)-1].Value
}

func sortSteps(steps []config.ZoomStep) {
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].MaxZoom < steps[j].MaxZoom })
}
