package binning

import (
	"math"

	"github.com/paulmach/orb"

	"poimap/pkg/model"
)

// Candidate is a point with its projected pixel position.
type Candidate struct {
	Point *model.Point
	Pixel orb.Point
}

// Cell identifies a grid cell.
type Cell struct {
	X, Y int64
}

// CellOf returns the cell containing px for the given cell size.
func CellOf(px orb.Point, size float64) Cell {
	return Cell{
		X: int64(math.Floor(px.X() / size)),
		Y: int64(math.Floor(px.Y() / size)),
	}
}

// Representatives returns the names of the candidates that win their cell:
// highest score, ties broken by the lexically smaller name. A size <= 0 makes
// every candidate a representative.
func Representatives(size float64, cands []Candidate) map[string]bool {
	out := make(map[string]bool, len(cands))
	if size <= 0 {
		for _, c := range cands {
			out[c.Point.Name] = true
		}
		return out
	}

	best := make(map[Cell]*model.Point)
	for _, c := range cands {
		cell := CellOf(c.Pixel, size)
		cur, ok := best[cell]
		if !ok || beats(c.Point, cur) {
			best[cell] = c.Point
		}
	}
	for _, p := range best {
		out[p.Name] = true
	}
	return out
}

func beats(a, b *model.Point) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Name < b.Name
}
