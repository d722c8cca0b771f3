package render

import (
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Op names.
const (
	OpCreate = "create"
	OpAttach = "attach"
	OpDetach = "detach"
	OpMove   = "move"
	OpStyle  = "style"
)

// Op is one recorded change to the rendering state.
type Op struct {
	Op       string     `json:"op"`
	Kind     Kind       `json:"kind"`
	Name     string     `json:"name"`
	Position *orb.Point `json:"position,omitempty"`
	Style    *Style     `json:"style,omitempty"`
	Popup    string     `json:"popup,omitempty"`
}

// Recorder is a Backend that keeps handle state in memory and logs every
// change as an Op. Clients replay the ops to mirror the layers.
type Recorder struct {
	mu      sync.Mutex
	ops     []Op
	layers  [2]*recLayer
	created [2]int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.layers[Marker] = &recLayer{r: r, kind: Marker, active: make(map[string]*recHandle)}
	r.layers[Dot] = &recLayer{r: r, kind: Dot, active: make(map[string]*recHandle)}
	return r
}

// NewMarker creates a detached marker handle.
func (r *Recorder) NewMarker(name string, pos orb.Point, style Style, popup string) Handle {
	return r.create(Marker, name, pos, style, popup)
}

// NewDot creates a detached dot handle.
func (r *Recorder) NewDot(name string, pos orb.Point, style Style) Handle {
	return r.create(Dot, name, pos, style, "")
}

func (r *Recorder) create(k Kind, name string, pos orb.Point, style Style, popup string) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &recHandle{r: r, name: name, kind: k, pos: pos, style: style, popup: popup}
	r.created[k]++
	p, s := pos, style
	r.ops = append(r.ops, Op{Op: OpCreate, Kind: k, Name: name, Position: &p, Style: &s, Popup: popup})
	return h
}

// Layer returns the layer for k.
func (r *Recorder) Layer(k Kind) Layer {
	return r.layers[k]
}

// Drain returns the ops recorded since the last call and clears the log.
func (r *Recorder) Drain() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := r.ops
	r.ops = nil
	return ops
}

// Created returns how many handles of kind k were ever created.
func (r *Recorder) Created(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created[k]
}

// Active returns the sorted names attached to the layer for k.
func (r *Recorder) Active(k Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.layers[k].active))
	for n := range r.layers[k].active {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bindings returns how many times OnClick was called on the attached handle.
func (r *Recorder) Bindings(k Kind, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.layers[k].active[name]; ok {
		return h.bindings
	}
	return 0
}

// StyleOf returns the style of an attached handle.
func (r *Recorder) StyleOf(k Kind, name string) (Style, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.layers[k].active[name]; ok {
		return h.style, true
	}
	return Style{}, false
}

// Click fires the click behaviour of an attached handle. It reports false
// when no such handle is attached or it has no behaviour.
func (r *Recorder) Click(k Kind, name string) bool {
	r.mu.Lock()
	h, ok := r.layers[k].active[name]
	var fn func()
	if ok {
		fn = h.click
	}
	r.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// FeatureCollection exports the attached handles as GeoJSON points, markers first.
func (r *Recorder) FeatureCollection() *geojson.FeatureCollection {
	r.mu.Lock()
	defer r.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for _, k := range []Kind{Marker, Dot} {
		names := make([]string, 0, len(r.layers[k].active))
		for n := range r.layers[k].active {
			names = append(names, n)
		}
		sort.Strings(names)

		for _, n := range names {
			h := r.layers[k].active[n]
			f := geojson.NewFeature(h.pos)
			f.Properties["name"] = h.name
			f.Properties["kind"] = k.String()
			if k == Marker {
				f.Properties["glyph"] = string(h.style.Glyph)
				f.Properties["class"] = h.style.Class
				f.Properties["popup"] = h.popup
			} else {
				f.Properties["radius"] = h.style.Radius
				f.Properties["color"] = h.style.Color
				f.Properties["fill_color"] = h.style.FillColor
			}
			fc.Append(f)
		}
	}
	return fc
}

type recLayer struct {
	r      *Recorder
	kind   Kind
	active map[string]*recHandle
}

func (l *recLayer) Attach(h Handle) {
	rh := h.(*recHandle)
	l.r.mu.Lock()
	defer l.r.mu.Unlock()
	if l.active[rh.name] == rh {
		return
	}
	l.active[rh.name] = rh
	p, s := rh.pos, rh.style
	l.r.ops = append(l.r.ops, Op{Op: OpAttach, Kind: l.kind, Name: rh.name, Position: &p, Style: &s})
}

func (l *recLayer) Detach(h Handle) {
	rh := h.(*recHandle)
	l.r.mu.Lock()
	defer l.r.mu.Unlock()
	if l.active[rh.name] != rh {
		return
	}
	delete(l.active, rh.name)
	l.r.ops = append(l.r.ops, Op{Op: OpDetach, Kind: l.kind, Name: rh.name})
}

func (l *recLayer) Has(h Handle) bool {
	rh, ok := h.(*recHandle)
	if !ok {
		return false
	}
	l.r.mu.Lock()
	defer l.r.mu.Unlock()
	return l.active[rh.name] == rh
}

type recHandle struct {
	r        *Recorder
	name     string
	kind     Kind
	pos      orb.Point
	style    Style
	popup    string
	click    func()
	bindings int
}

func (h *recHandle) Name() string { return h.name }
func (h *recHandle) Kind() Kind   { return h.kind }

func (h *recHandle) SetPosition(pos orb.Point) {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	if h.pos == pos {
		return
	}
	h.pos = pos
	p := pos
	h.r.ops = append(h.r.ops, Op{Op: OpMove, Kind: h.kind, Name: h.name, Position: &p})
}

func (h *recHandle) SetStyle(s Style) {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	if h.style == s {
		return
	}
	h.style = s
	st := s
	h.r.ops = append(h.r.ops, Op{Op: OpStyle, Kind: h.kind, Name: h.name, Style: &st})
}

func (h *recHandle) OnClick(fn func()) {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	h.click = fn
	h.bindings++
}
