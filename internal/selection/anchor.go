package selection

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
)

// anchor pins a position across a tree mutation. Text positions keep their
// node; element positions pin to a surviving sibling so the offset can be
// recomputed once placeholders or deleted nodes are gone.
type anchor struct {
	text     *html.Node
	offset   int
	prefixed bool

	ref   *html.Node
	after bool

	parent *html.Node
}

// anchorOf pins p. Nodes in gone, and caret containers, are assumed to
// disappear.
func anchorOf(p caret.Position, gone ...*html.Node) anchor {
	if caret.IsCaretContainerInline(p.Container()) || caret.CaretContainerBlockOf(p.Container()) != nil {
		p = caret.Normalize(p)
	}
	c, o := p.Container(), p.Offset()
	if c == nil {
		return anchor{}
	}
	if dom.IsText(c) && !contains(gone, c) {
		return anchor{
			text:     c,
			offset:   o,
			prefixed: caret.StartsWithCaretContainer(c),
		}
	}
	if dom.IsText(c) {
		p = caret.Before(c)
		c, o = p.Container(), p.Offset()
	}
	if c == nil {
		return anchor{}
	}

	survives := func(n *html.Node) bool {
		return !contains(gone, n) && !caret.IsCaretContainer(n)
	}
	for n := dom.ChildAt(c, o); n != nil; n = n.NextSibling {
		if survives(n) {
			return anchor{ref: n, parent: c}
		}
	}
	for n := dom.ChildAt(c, o-1); n != nil; n = n.PrevSibling {
		if survives(n) {
			return anchor{ref: n, after: true, parent: c}
		}
	}
	return anchor{parent: c}
}

// resolve returns the pinned position in the mutated tree. The zero Position
// is returned if the anchor node is gone.
func (a anchor) resolve() caret.Position {
	switch {
	case a.text != nil:
		if a.text.Parent == nil {
			return caret.Position{}
		}
		offset := a.offset
		if a.prefixed && !strings.HasPrefix(a.text.Data, caret.ZWSP) {
			offset -= len(caret.ZWSP)
		}
		return caret.NewPosition(a.text, offset)
	case a.ref != nil:
		if a.ref.Parent == nil {
			return caret.Position{}
		}
		if a.after {
			return caret.After(a.ref)
		}
		return caret.Before(a.ref)
	case a.parent != nil:
		return caret.NewPosition(a.parent, 0)
	}
	return caret.Position{}
}

// pinRange pins both ends of r.
func pinRange(r dom.Range, gone ...*html.Node) (anchor, anchor) {
	return anchorOf(caret.FromRangeStart(r), gone...), anchorOf(caret.FromRangeEnd(r), gone...)
}

// unpinRange resolves a pinned range. The second result is false if either
// end is lost.
func unpinRange(start, end anchor) (dom.Range, bool) {
	s, e := start.resolve(), end.resolve()
	if s.IsZero() || e.IsZero() {
		return dom.Range{}, false
	}
	return dom.Range{
		StartContainer: s.Container(), StartOffset: s.Offset(),
		EndContainer: e.Container(), EndOffset: e.Offset(),
	}, true
}

func contains(nodes []*html.Node, n *html.Node) bool {
	for _, m := range nodes {
		if m == n {
			return true
		}
	}
	return false
}
