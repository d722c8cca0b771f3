package catalog

import (
	"sort"
	"strings"

	"poimap/pkg/model"
)

type glyphKeywords struct {
	keywords []string
	glyph    model.Glyph
}

// glyphTable is matched in order against "type name" (lowercased).
var glyphTable = []glyphKeywords{
	{[]string{"mountain", "volcano", "fuji", "mt "}, "🗻"},
	{[]string{"shrine", "jingu", "toshogu", "hachimangu", "inari"}, "⛩️"},
	{[]string{"temple", "dera", "ji "}, "🛕"},
	{[]string{"castle", "schloss", "jo "}, "🏯"},
	{[]string{"tower", "skytree"}, "🗼"},
	{[]string{"crossing"}, "🚦"},
	{[]string{"memorial", "peace"}, "🕊️"},
	{[]string{"district", "streetfood", "dotonbori", "chinatown"}, "🍜"},
	{[]string{"electronics", "akihabara", "anime", "popculture"}, "🎮"},
	{[]string{"cherry", "sakura", "blossom", "hanami", "hirosaki"}, "🌸"},
	{[]string{"nationalpark", "shirakami", "shiretoko", "daisetsuzan"}, "🏞️"},
	{[]string{"gorge", "oirase", "takachiho"}, "🏞️"},
	{[]string{"waterfall", "falls", "kegon", "nachi"}, "💧"},
	{[]string{"lake", "chuzenji", "tazawa"}, "🏞️"},
	{[]string{"bay", "matsushima", "kabira"}, "🌊"},
	{[]string{"coast", "kueste", "beach", "insel", "island", "jima"}, "🏝️"},
	{[]string{"bridge", "bruecke", "kintaikyo"}, "🌉"},
	{[]string{"garden", "kenrokuen", "korakuen", "adachi"}, "🏛️"},
	{[]string{"museum", "teamlab", "ghibli"}, "🏛️"},
	{[]string{"onsen", "thermal", "beppu"}, "♨️"},
	{[]string{"monkey"}, "🐒"},
	{[]string{"aquarium", "churaumi"}, "🐠"},
	{[]string{"bamboo", "arashiyama"}, "🎋"},
	{[]string{"pilgrimage", "koyasan", "kumano", "88", "henro"}, "🥾"},
	{[]string{"festival", "matsuri", "fireworks", "nebuta", "tanabata", "gion"}, "🎆"},
	{[]string{"amusement park", "disney", "usj", "fuji-q", "legoland", "huis ten bosch"}, "🎢"},
	{[]string{"old town", "bikan", "takayama", "kawagoe", "kakunodate"}, "🏘️"},
}

// categoryLabels names the glyphs for the legend.
var categoryLabels = map[model.Glyph]string{
	"🗻":  "Mountain/Volcano",
	"⛩️": "Shrine",
	"🛕":  "Temple",
	"🏯":  "Castle",
	"🗼":  "Tower",
	"🚦":  "Crossing/Sight",
	"🕊️": "Memorial",
	"🍜":  "Food District/Market",
	"🎮":  "Electronics/Pop Culture",
	"🌸":  "Cherry Blossoms",
	"🏞️": "National Park/Gorge",
	"💧":  "Waterfall",
	"♨️": "Onsen",
	"🌉":  "Bridge",
	"🏝️": "Island/Beach",
	"🌊":  "Bay/Coast",
	"🐈":  "Cat Island",
	"🐒":  "Monkeys",
	"🐠":  "Aquarium",
	"🏛️": "Museum/Garden",
	"🎋":  "Bamboo Grove",
	"🎢":  "Amusement Park",
	"🎆":  "Festival",
	"🥾":  "Pilgrimage/Hiking",
	"🏘️": "Old Town/Tradition",
	"📍":  "General",
	"🦌":  "Park/Deer",
	"🌋":  "Volcano",
}

// categoryOrder is the preferred legend order; other glyphs follow sorted.
var categoryOrder = []model.Glyph{
	"🗻", "⛩️", "🛕", "🏯", "🗼", "🚦", "🕊️", "🍜", "🎮", "🌸", "🏞️", "💧",
	"♨️", "🌉", "🏝️", "🐈", "🐠", "🏛️", "🎢", "🎆", "🥾", "🏘️", "📍",
}

// AssignGlyph returns the explicit glyph when set, otherwise the first keyword
// match over type and name, otherwise model.DefaultGlyph.
func AssignGlyph(explicit, typ, name string) model.Glyph {
	if g := strings.TrimSpace(explicit); g != "" {
		return model.Glyph(g)
	}
	hay := strings.ToLower(typ) + " " + strings.ToLower(name)
	for _, row := range glyphTable {
		for _, kw := range row.keywords {
			if strings.Contains(hay, kw) {
				return row.glyph
			}
		}
	}
	return model.DefaultGlyph
}

// Label returns the legend label for a glyph.
func Label(g model.Glyph) string {
	if l, ok := categoryLabels[g]; ok {
		return l
	}
	return "Other"
}

// LegendOrder orders present glyphs by the preferred order, then the rest sorted.
func LegendOrder(present map[model.Glyph]bool) []model.Glyph {
	out := make([]model.Glyph, 0, len(present))
	seen := make(map[model.Glyph]bool, len(categoryOrder))
	for _, g := range categoryOrder {
		seen[g] = true
		if present[g] {
			out = append(out, g)
		}
	}

	var extras []model.Glyph
	for g := range present {
		if !seen[g] {
			extras = append(extras, g)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	return append(out, extras...)
}
