package catalog

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poimap/pkg/model"
	"poimap/pkg/scorer"
)

func TestBuild(t *testing.T) {
	src := &Source{
		Featured: []string{"Fushimi Inari", "Osaka Castle"},
		Points: []Entry{
			{Name: "Fushimi Inari", Lat: 34.967, Lon: 135.772, Type: "Shrine", City: "Kyoto"},
			{Name: "Osaka Castle", Lat: 34.839, Lon: 134.694, Type: "Castle"},
			{Name: "Shibuya Crossing", Lat: 35.659, Lon: 139.700, Type: "Crossing", URL: "https://example.com/shibuya"},
			{Name: "  ", Lat: 1, Lon: 1},
			{Name: "Broken", Lat: math.NaN(), Lon: 10},
			{Name: "Far North", Lat: 95, Lon: 10},
			{Name: "Somewhere", Lat: 35, Lon: 135, Glyph: "🦌"},
		},
	}

	cat, report, err := Build(src, Options{Links: map[string]string{"Osaka Castle": "https://example.com/osaka"}})
	require.NoError(t, err)

	assert.Equal(t, 4, cat.Len())
	assert.Equal(t, 4, report.Accepted)
	assert.Len(t, report.Rejected, 3)

	inari, ok := cat.Get("Fushimi Inari")
	require.True(t, ok)
	assert.Equal(t, model.Glyph("⛩️"), inari.Glyph)
	assert.Equal(t, 100.0, inari.Score)

	osaka, _ := cat.Get("Osaka Castle")
	assert.Equal(t, 97.0, osaka.Score)
	assert.Equal(t, "https://example.com/osaka", osaka.URL)

	shibuya, _ := cat.Get("Shibuya Crossing")
	assert.Equal(t, model.Glyph("🚦"), shibuya.Glyph)
	assert.Equal(t, "https://example.com/shibuya", shibuya.URL)

	some, _ := cat.Get("Somewhere")
	assert.Equal(t, model.Glyph("🦌"), some.Glyph)

	assert.Equal(t, []model.Glyph{"⛩️", "🏯", "🚦", "🦌"}, cat.Glyphs())
	assert.True(t, cat.Featured().Contains("Osaka Castle"))

	byScore := cat.ByScore()
	assert.Equal(t, "Fushimi Inari", byScore[0].Name)
	assert.Equal(t, "Osaka Castle", byScore[1].Name)
}

func TestBuild_DuplicateName(t *testing.T) {
	src := &Source{Points: []Entry{
		{Name: "A", Lat: 1, Lon: 1},
		{Name: "A", Lat: 2, Lon: 2},
	}}
	_, _, err := Build(src, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateName))
	assert.Contains(t, err.Error(), "A")
}

func TestBuild_EmptySource(t *testing.T) {
	cat, report, err := Build(&Source{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
	assert.Equal(t, 0, report.Accepted)
	assert.Empty(t, cat.Glyphs())
}

func TestSortByScore_TieBreak(t *testing.T) {
	pts := []*model.Point{
		{Name: "b", Score: 50},
		{Name: "c", Score: 70},
		{Name: "a", Score: 50},
	}
	SortByScore(pts)
	assert.Equal(t, "c", pts[0].Name)
	assert.Equal(t, "a", pts[1].Name)
	assert.Equal(t, "b", pts[2].Name)
}

func TestAssignGlyph(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		typ      string
		point    string
		want     model.Glyph
	}{
		{"Explicit", "🐈", "Temple", "Tashirojima", "🐈"},
		{"TypeKeyword", "", "Temple", "Kinkaku", "🛕"},
		{"NameKeyword", "", "", "Mount Fuji", "🗻"},
		{"CaseInsensitive", "", "WATERFALL", "Kegon", "💧"},
		{"FirstRowWins", "", "Shrine", "Temple Gate", "⛩️"},
		{"Fallback", "", "Office", "Nothing", model.DefaultGlyph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignGlyph(tt.explicit, tt.typ, tt.point))
		})
	}
}

func TestLegendOrder(t *testing.T) {
	present := map[model.Glyph]bool{"📍": true, "🗻": true, "🦌": true, "🌋": true}
	got := LegendOrder(present)
	assert.Equal(t, []model.Glyph{"🗻", "📍", "🌋", "🦌"}, got)
	assert.Equal(t, "Mountain/Volcano", Label("🗻"))
	assert.Equal(t, "Other", Label("🛸"))
}

func TestResolveURL(t *testing.T) {
	links := map[string]string{"B": "https://b.example", "C": "not a url"}
	assert.Equal(t, "https://a.example", ResolveURL("https://a.example", "A", links))
	assert.Equal(t, "https://b.example", ResolveURL("", "B", links))
	assert.Equal(t, "https://b.example", ResolveURL("ftp://b", "B", links))
	assert.Equal(t, "", ResolveURL("", "C", links))
	assert.Equal(t, "", ResolveURL("", "D", nil))
}

func TestLoadLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Kinkaku-ji: https://example.com/k\n"), 0o644))

	links, err := LoadLinks(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/k", links["Kinkaku-ji"])

	empty, err := LoadLinks("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = LoadLinks(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPopupHTML(t *testing.T) {
	p := &model.Point{Name: "Tom & Jerry <Inn>", Type: "Onsen", City: "Beppu", Desc: "Hot", URL: "https://example.com/?a=1&b=2"}
	got := PopupHTML(p)

	assert.True(t, strings.HasPrefix(got, "<h3><a "))
	assert.Contains(t, got, `href="https://example.com/?a=1&amp;b=2"`)
	assert.Contains(t, got, "Tom &amp; Jerry &lt;Inn&gt;")
	assert.Contains(t, got, "Onsen · Beppu")
	assert.Contains(t, got, "<p>Hot</p>")

	bare := PopupHTML(&model.Point{Name: "Plain"})
	assert.Equal(t, "<h3>Plain</h3>", bare)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
featured: [Kinkaku-ji]
points:
  - name: Kinkaku-ji
    lat: 35.0394
    lon: 135.7292
    type: Temple
    emoji: "🛕"
`)
	src, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kinkaku-ji"}, src.Featured)
	require.Len(t, src.Points, 1)
	assert.Equal(t, "🛕", src.Points[0].Glyph)
	assert.InDelta(t, 135.7292, src.Points[0].Lon, 1e-9)

	_, err = ParseYAML([]byte("points: {"))
	assert.Error(t, err)
}

func TestBuild_FeaturedBeyondScoreTier(t *testing.T) {
	src := &Source{}
	for i := 0; i < 35; i++ {
		name := fmt.Sprintf("Spot %02d", i)
		src.Featured = append(src.Featured, name)
		src.Points = append(src.Points, Entry{Name: name, Lat: 35, Lon: 135 + float64(i)/100})
	}

	cat, _, err := Build(src, Options{})
	require.NoError(t, err)
	assert.Equal(t, 30, cat.Featured().Len())

	last, _ := cat.Get("Spot 29")
	assert.Greater(t, last.Score, scorer.DefaultRules().Baseline)
	dropped, _ := cat.Get("Spot 30")
	assert.False(t, cat.Featured().Contains("Spot 30"))
	assert.Less(t, dropped.Score, last.Score)

	seen := make(map[float64]string)
	for _, n := range cat.Featured().Names() {
		p, _ := cat.Get(n)
		if prev, dup := seen[p.Score]; dup {
			t.Errorf("%s and %s share featured score %.0f", prev, n, p.Score)
		}
		seen[p.Score] = n
	}
}

func TestBuild_MissingPosition(t *testing.T) {
	src, err := ParseYAML([]byte(`
points:
  - {name: No Coords, type: Temple}
  - {name: Only Lat, lat: 35.0}
  - {name: Null Lon, lat: 35.0, lon: null}
  - {name: Gulf of Guinea, lat: 0, lon: 0}
  - {name: Kinkaku-ji, lat: 35.0394, lon: 135.7292}
`))
	require.NoError(t, err)
	require.Len(t, src.Points, 5)
	assert.True(t, src.Points[0].MissingPosition)
	assert.False(t, src.Points[3].MissingPosition)

	cat, report, err := Build(src, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Accepted)
	require.Len(t, report.Rejected, 3)
	for _, r := range report.Rejected {
		assert.Equal(t, "missing position", r.Reason, r.Name)
	}
	_, ok := cat.Get("No Coords")
	assert.False(t, ok)
	_, ok = cat.Get("Gulf of Guinea")
	assert.True(t, ok, "explicit 0,0 is a real position")
}

func TestParseJSON_MissingPosition(t *testing.T) {
	src, err := ParseYAML([]byte(`{"points":[{"name":"No Coords"},{"name":"Kyoto","lat":35.01,"lon":135.76}]}`))
	require.NoError(t, err)
	require.Len(t, src.Points, 2)
	assert.True(t, src.Points[0].MissingPosition)
	assert.False(t, src.Points[1].MissingPosition)
}

func TestParseGeoJSON(t *testing.T) {
	data := []byte(`{"type":"FeatureCollection","features":[
	 {"type":"Feature","geometry":{"type":"Point","coordinates":[139.7,35.6]},
	  "properties":{"name":"Tokyo Tower","type":"Tower","featured_rank":2}},
	 {"type":"Feature","geometry":{"type":"Point","coordinates":[135.7,35.0]},
	  "properties":{"name":"Kinkaku-ji","glyph":"🛕","featured_rank":1}},
	 {"type":"Feature","geometry":{"type":"Point","coordinates":[135.5,34.7]},
	  "properties":{"name":"Dotonbori","featured_rank":0}},
	 {"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},
	  "properties":{"name":"A Road"}}
	]}`)

	src, err := ParseGeoJSON(data)
	require.NoError(t, err)
	require.Len(t, src.Points, 3)
	assert.Equal(t, 35.6, src.Points[0].Lat)
	assert.Equal(t, 139.7, src.Points[0].Lon)
	assert.Equal(t, "🛕", src.Points[1].Glyph)
	assert.Equal(t, []string{"Kinkaku-ji", "Tokyo Tower"}, src.Featured)
	require.Len(t, src.Skipped, 1)
	assert.Equal(t, "A Road", src.Skipped[0].Name)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte("points:\n  - {name: A, lat: 1, lon: 2}\n"), 0o644))
		src, err := LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, src.Points, 1)
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "c.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"points":[{"name":"A","lat":1,"lon":2}]}`), 0o644))
		src, err := LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, src.Points, 1)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "c.csv"))
		assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestLoadFile_Shapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.shp")

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("NAME", 40),
		shp.StringField("TYPE", 20),
		shp.StringField("RANK", 4),
	}))
	rows := []struct {
		x, y            float64
		name, typ, rank string
	}{
		{135.7292, 35.0394, "Kinkaku-ji", "Temple", "0"},
		{138.7274, 35.3606, "Mount Fuji", "Mountain", "1"},
	}
	for i, r := range rows {
		w.Write(&shp.Point{X: r.x, Y: r.y})
		require.NoError(t, w.WriteAttribute(i, 0, r.name))
		require.NoError(t, w.WriteAttribute(i, 1, r.typ))
		require.NoError(t, w.WriteAttribute(i, 2, r.rank))
	}
	w.Close()
	// go-shp names the attribute table "<base>dbf" when given a .shp path.
	base := strings.TrimSuffix(path, "shp")
	if _, err := os.Stat(base + "dbf"); err != nil {
		require.NoError(t, os.Rename(strings.TrimSuffix(base, ".")+"dbf", base+"dbf"))
	}

	src, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, src.Points, 2)
	assert.Equal(t, "Kinkaku-ji", src.Points[0].Name)
	assert.Equal(t, "Temple", src.Points[0].Type)
	assert.InDelta(t, 35.0394, src.Points[0].Lat, 1e-9)
	assert.InDelta(t, 135.7292, src.Points[0].Lon, 1e-9)
	assert.Equal(t, []string{"Mount Fuji"}, src.Featured)
}
