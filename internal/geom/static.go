package geom

import (
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/dom"
)

// Static is a map-backed Provider for synthetic geometry.
//
// Text nodes are assigned one rect per byte offset boundary through
// SetText; RangeRects on a text position returns a zero-width rect at that
// boundary. Elements get explicit node rects through Set.
type Static struct {
	nodes  map[*html.Node][]Rect
	carets map[*html.Node][]Rect
}

// NewStatic creates an empty static provider.
func NewStatic() *Static {
	return &Static{
		nodes:  make(map[*html.Node][]Rect),
		carets: make(map[*html.Node][]Rect),
	}
}

// Set assigns the node rects of n.
func (s *Static) Set(n *html.Node, rects ...Rect) {
	s.nodes[n] = rects
}

// SetText lays out text node n as a single run of fixed-width cells
// starting at (left, top). Every byte offset gets a caret rect.
func (s *Static) SetText(n *html.Node, left, top, cellWidth, height float64) {
	carets := make([]Rect, len(n.Data)+1)
	for i := range carets {
		x := left + float64(i)*cellWidth
		carets[i] = Rect{Left: x, Top: top, Right: x, Bottom: top + height}
	}
	s.carets[n] = carets
	s.nodes[n] = []Rect{{Left: left, Top: top, Right: left + float64(len(n.Data))*cellWidth, Bottom: top + height}}
}

// NodeRects implements Provider.
func (s *Static) NodeRects(n *html.Node) []Rect {
	return s.nodes[n]
}

// RangeRects implements Provider. Element positions resolve against the
// node rects of the adjacent children.
func (s *Static) RangeRects(r dom.Range) []Rect {
	c := r.StartContainer
	if c == nil {
		return nil
	}
	if c.Type == html.TextNode {
		carets := s.carets[c]
		if r.StartOffset < 0 || r.StartOffset >= len(carets) {
			return nil
		}
		return []Rect{carets[r.StartOffset]}
	}
	if !r.Collapsed() {
		if n := r.SelectedNode(); n != nil {
			return s.nodes[n]
		}
		return nil
	}
	if after := dom.ChildAt(c, r.StartOffset); after != nil {
		if rect, ok := Last(s.nodes[after]); ok {
			return []Rect{rect.Collapse(true)}
		}
	}
	if before := dom.ChildAt(c, r.StartOffset-1); before != nil {
		if rect, ok := Last(s.nodes[before]); ok {
			return []Rect{rect.Collapse(false)}
		}
	}
	return nil
}
