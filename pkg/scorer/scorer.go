package scorer

import (
	"fmt"
	"math"
	"strings"

	"poimap/pkg/model"
)

// Score bounds.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Scorer computes the static importance of a point. It only reads its tables.
type Scorer struct {
	rules     *Rules
	featured  *model.FeaturedSet
	overrides map[string]float64
}

// NewScorer creates a new Scorer. rules may be nil (defaults); overrides may
// reference names that are not in the catalog, those entries are never consulted.
func NewScorer(rules *Rules, featured *model.FeaturedSet, overrides map[string]float64) *Scorer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Scorer{
		rules:     rules,
		featured:  featured,
		overrides: overrides,
	}
}

// Score returns the importance of p in [MinScore, MaxScore].
func (s *Scorer) Score(p *model.Point) float64 {
	score, _ := s.Evaluate(p)
	return score
}

// Calculate updates the Score and ScoreDetails fields of the point.
func (s *Scorer) Calculate(p *model.Point) {
	score, logs := s.Evaluate(p)
	p.Score = score
	p.ScoreDetails = strings.Join(logs, "\n")
}

// Evaluate returns the score together with a human-readable trail.
func (s *Scorer) Evaluate(p *model.Point) (score float64, logs []string) {
	score = s.rules.Baseline
	logs = append(logs, fmt.Sprintf("Baseline: %.0f", score))

	// 1. Featured tier (distinct, strictly descending by rank)
	if rank, ok := s.featured.Rank(p.Name); ok {
		score = s.rules.FeaturedTop - float64(rank)*s.rules.FeaturedStep
		logs = append(logs, fmt.Sprintf("Featured rank %d: %.0f", rank, score))
	} else {
		// 2. Type rules (first match wins)
		t := strings.ToLower(p.Type)
		for _, r := range s.rules.TypeRules {
			if r.Matches(t) {
				score, logs = boost(score, r.Score, "Type", logs)
				break
			}
		}

		// 3. Name rules (independent, each may raise)
		n := strings.ToLower(p.Name)
		for _, r := range s.rules.NameRules {
			if r.Matches(n) {
				score, logs = boost(score, r.Score, "Name", logs)
			}
		}
	}

	// 4. Exact-name override beats everything
	if ov, ok := s.overrides[p.Name]; ok {
		score = ov
		logs = append(logs, fmt.Sprintf("Override: %.0f", ov))
	}

	clamped := math.Max(MinScore, math.Min(MaxScore, score))
	if clamped != score {
		logs = append(logs, fmt.Sprintf("Clamped: %.0f -> %.0f", score, clamped))
	}
	return clamped, logs
}

// boost raises score to v and never lowers it.
func boost(score, v float64, group string, logs []string) (float64, []string) {
	if v <= score {
		return score, logs
	}
	return v, append(logs, fmt.Sprintf("%s boost: %.0f", group, v))
}
