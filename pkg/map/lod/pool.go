package lod

import (
	"sort"

	"poimap/pkg/map/render"
)

// pool keeps every handle ever created for one kind. Handles are never
// removed, only detached from the layer.
type pool struct {
	kind    render.Kind
	layer   render.Layer
	handles map[string]render.Handle
	order   []string
	active  map[string]bool
}

func newPool(kind render.Kind, layer render.Layer) *pool {
	return &pool{
		kind:    kind,
		layer:   layer,
		handles: make(map[string]render.Handle),
		active:  make(map[string]bool),
	}
}

func (p *pool) get(name string) (render.Handle, bool) {
	h, ok := p.handles[name]
	return h, ok
}

func (p *pool) put(h render.Handle) {
	p.handles[h.Name()] = h
	p.order = append(p.order, h.Name())
}

// attach reports whether the handle was newly attached.
func (p *pool) attach(h render.Handle) bool {
	if p.active[h.Name()] {
		return false
	}
	p.layer.Attach(h)
	p.active[h.Name()] = true
	return true
}

// detachExcept detaches every active handle whose name is not in keep and
// returns how many were detached.
func (p *pool) detachExcept(keep map[string]bool) int {
	n := 0
	for _, name := range p.order {
		if !p.active[name] || keep[name] {
			continue
		}
		p.layer.Detach(p.handles[name])
		delete(p.active, name)
		n++
	}
	return n
}

func (p *pool) activeNames() []string {
	out := make([]string, 0, len(p.active))
	for n := range p.active {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (p *pool) size() int {
	return len(p.handles)
}
