package scorer

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule raises the score to Score when any keyword is a substring of the
// matched text (lowercased).
type Rule struct {
	Keywords []string `yaml:"keywords"`
	Score    float64  `yaml:"score"`
}

// Matches reports whether any keyword occurs in text. text must be lowercase.
func (r Rule) Matches(text string) bool {
	if text == "" {
		return false
	}
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Rules holds the importance tables.
type Rules struct {
	Baseline     float64 `yaml:"baseline"`
	FeaturedTop  float64 `yaml:"featured_top"`  // score of featured rank 0
	FeaturedStep float64 `yaml:"featured_step"` // decrement per rank
	// TypeRules are tried in order against the point type; the first match wins.
	TypeRules []Rule `yaml:"type_rules"`
	// NameRules are all tried against the point name; each match may raise the score.
	NameRules []Rule `yaml:"name_rules"`
}

// DefaultRules returns the compiled-in tables.
func DefaultRules() *Rules {
	return &Rules{
		Baseline:     10,
		FeaturedTop:  100,
		FeaturedStep: 3,
		TypeRules: []Rule{
			{Keywords: []string{"unesco"}, Score: 90},
			{Keywords: []string{"vulkan", "berg", "volcano", "mountain"}, Score: 75},
			{Keywords: []string{"burg", "schloss", "castle"}, Score: 70},
			{Keywords: []string{"tempel", "schrein", "pagode", "temple", "shrine", "pagoda"}, Score: 65},
			{Keywords: []string{"nationalpark", "natur", "see", "schlucht", "nature", "lake", "gorge"}, Score: 60},
			{Keywords: []string{"garten", "park", "garden"}, Score: 55},
			{Keywords: []string{"viertel", "altstadt", "district", "old town"}, Score: 50},
			{Keywords: []string{"museum", "aquarium"}, Score: 45},
			{Keywords: []string{"onsen"}, Score: 40},
		},
		NameRules: []Rule{
			{Keywords: []string{"fuji"}, Score: 99},
			{Keywords: []string{"skytree", "tokyo tower"}, Score: 85},
			{Keywords: []string{"miyajima", "itsukushima"}, Score: 92},
			{Keywords: []string{"himeji"}, Score: 89},
			{Keywords: []string{"daibutsu", "buddha"}, Score: 80},
		},
	}
}

// LoadRules reads rule tables from a YAML file. Missing sections keep their defaults.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scorer rules: %w", err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse scorer rules: %w", err)
	}
	rules.normalize()
	return rules, nil
}

// FeaturedCapacity is the number of featured ranks that still score strictly
// above the baseline, each with its own value.
func (r *Rules) FeaturedCapacity() int {
	if r.FeaturedTop <= r.Baseline {
		return 0
	}
	if r.FeaturedStep <= 0 {
		return 1
	}
	return int(math.Ceil((r.FeaturedTop - r.Baseline) / r.FeaturedStep))
}

func (r *Rules) normalize() {
	for _, group := range [][]Rule{r.TypeRules, r.NameRules} {
		for i := range group {
			for j, kw := range group[i].Keywords {
				group[i].Keywords[j] = strings.ToLower(kw)
			}
		}
	}
}

// LoadOverrides reads an exact-name -> score table from YAML.
func LoadOverrides(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read importance overrides: %w", err)
	}

	var overrides map[string]float64
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse importance overrides: %w", err)
	}
	return overrides, nil
}
