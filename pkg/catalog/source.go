package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

// Entry is one raw catalog record as found in a source file.
type Entry struct {
	Name  string  `yaml:"name" json:"name"`
	Lat   float64 `yaml:"lat" json:"lat"`
	Lon   float64 `yaml:"lon" json:"lon"`
	Glyph string  `yaml:"emoji,omitempty" json:"emoji,omitempty"`
	Type  string  `yaml:"type,omitempty" json:"type,omitempty"`
	City  string  `yaml:"city,omitempty" json:"city,omitempty"`
	Desc  string  `yaml:"desc,omitempty" json:"desc,omitempty"`
	URL   string  `yaml:"url,omitempty" json:"url,omitempty"`

	// MissingPosition is set by the decoder when lat or lon is absent.
	MissingPosition bool `yaml:"-" json:"-"`
}

// UnmarshalYAML decodes an entry and records whether both coordinates were
// present, so a record without lat/lon is not mistaken for 0,0.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	type plain Entry
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	var pos struct {
		Lat *float64 `yaml:"lat"`
		Lon *float64 `yaml:"lon"`
	}
	if err := node.Decode(&pos); err != nil {
		return err
	}
	*e = Entry(p)
	e.MissingPosition = pos.Lat == nil || pos.Lon == nil
	return nil
}

// Source is the parsed content of a catalog file.
type Source struct {
	Featured []string `yaml:"featured"`
	Points   []Entry  `yaml:"points"`

	// Skipped holds records the reader could not turn into an Entry.
	Skipped []Rejection `yaml:"-"`
}

// LoadFile reads a catalog from disk, picking the reader by file extension.
func LoadFile(path string) (*Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		return ParseYAML(data)
	case ".geojson":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		return ParseGeoJSON(data)
	case ".shp":
		return readShapefile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseYAML decodes the native catalog format. JSON input is accepted too.
func ParseYAML(data []byte) (*Source, error) {
	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &src, nil
}

// ParseGeoJSON decodes a FeatureCollection of Point features. The featured
// list is derived from the optional "featured_rank" property: 1 is the best
// rank, 0 or a missing value means not featured.
func ParseGeoJSON(data []byte) (*Source, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geojson catalog: %w", err)
	}

	src := &Source{}
	var ranked []rankedName
	for i, f := range fc.Features {
		name := f.Properties.MustString("name", "")
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			src.Skipped = append(src.Skipped, Rejection{
				Index:  i,
				Name:   name,
				Reason: fmt.Sprintf("unsupported geometry %T", f.Geometry),
			})
			continue
		}

		glyph := f.Properties.MustString("emoji", "")
		if glyph == "" {
			glyph = f.Properties.MustString("glyph", "")
		}
		src.Points = append(src.Points, Entry{
			Name:  name,
			Lat:   pt.Lat(),
			Lon:   pt.Lon(),
			Glyph: glyph,
			Type:  f.Properties.MustString("type", ""),
			City:  f.Properties.MustString("city", ""),
			Desc:  f.Properties.MustString("desc", ""),
			URL:   f.Properties.MustString("url", ""),
		})

		if r := f.Properties.MustFloat64("featured_rank", 0); r > 0 {
			ranked = append(ranked, rankedName{rank: r, name: name})
		}
	}
	src.Featured = sortRanked(ranked)
	return src, nil
}

// readShapefile reads point shapes with NAME/TYPE/CITY/EMOJI/DESC/URL/RANK
// attributes. Field names are matched case-insensitively. RANK follows the
// featured_rank convention of ParseGeoJSON.
func readShapefile(path string) (*Source, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shape.Close()

	fields := shape.Fields()
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[strings.ToLower(strings.TrimSpace(f.String()))] = i
	}
	attr := func(n int, field string) string {
		i, ok := index[field]
		if !ok {
			return ""
		}
		return strings.TrimSpace(strings.Trim(shape.ReadAttribute(n, i), "\x00"))
	}

	src := &Source{}
	var ranked []rankedName
	for shape.Next() {
		n, p := shape.Shape()
		name := attr(n, "name")

		pt, ok := p.(*shp.Point)
		if !ok {
			src.Skipped = append(src.Skipped, Rejection{
				Index:  n,
				Name:   name,
				Reason: fmt.Sprintf("unsupported shape %T", p),
			})
			continue
		}

		src.Points = append(src.Points, Entry{
			Name:  name,
			Lat:   pt.Y,
			Lon:   pt.X,
			Glyph: attr(n, "emoji"),
			Type:  attr(n, "type"),
			City:  attr(n, "city"),
			Desc:  attr(n, "desc"),
			URL:   attr(n, "url"),
		})

		if r := attr(n, "rank"); r != "" {
			var v float64
			if _, err := fmt.Sscanf(r, "%g", &v); err == nil && v > 0 {
				ranked = append(ranked, rankedName{rank: v, name: name})
			}
		}
	}
	if err := shape.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shapes: %w", err)
	}

	src.Featured = sortRanked(ranked)
	return src, nil
}

type rankedName struct {
	rank float64
	name string
}

func sortRanked(r []rankedName) []string {
	if len(r) == 0 {
		return nil
	}
	sort.SliceStable(r, func(i, j int) bool { return r[i].rank < r[j].rank })
	out := make([]string, len(r))
	for i := range r {
		out[i] = r[i].name
	}
	return out
}
