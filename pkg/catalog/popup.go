package catalog

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"poimap/pkg/model"
)

// PopupHTML renders the popup fragment shown for a point's marker.
func PopupHTML(p *model.Point) string {
	title := element(atom.H3)
	if p.URL != "" {
		a := element(atom.A,
			html.Attribute{Key: "href", Val: p.URL},
			html.Attribute{Key: "target", Val: "_blank"},
			html.Attribute{Key: "rel", Val: "noopener noreferrer"},
		)
		a.AppendChild(text(p.Name))
		title.AppendChild(a)
	} else {
		title.AppendChild(text(p.Name))
	}

	nodes := []*html.Node{title}

	var meta []string
	if p.Type != "" {
		meta = append(meta, p.Type)
	}
	if p.City != "" {
		meta = append(meta, p.City)
	}
	if len(meta) > 0 {
		m := element(atom.P, html.Attribute{Key: "class", Val: "poi-meta"})
		m.AppendChild(text(strings.Join(meta, " · ")))
		nodes = append(nodes, m)
	}

	if p.Desc != "" {
		d := element(atom.P)
		d.AppendChild(text(p.Desc))
		nodes = append(nodes, d)
	}

	var b strings.Builder
	for _, n := range nodes {
		// Rendering to a strings.Builder cannot fail.
		_ = html.Render(&b, n)
	}
	return b.String()
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
