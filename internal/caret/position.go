package caret

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
)

// Position is a caret location: a container node and an offset inside it.
// For text containers the offset is a byte offset; for elements it counts
// children. Position is an immutable value type and is only meaningful
// against the tree snapshot it was derived from.
type Position struct {
	container *html.Node
	offset    int
}

// NewPosition creates a position, clamping offset to the container bounds.
func NewPosition(container *html.Node, offset int) Position {
	if container == nil {
		return Position{}
	}
	if offset < 0 {
		offset = 0
	}
	if limit := dom.NodeLen(container); offset > limit {
		offset = limit
	}
	return Position{container: container, offset: offset}
}

// Before returns the position immediately before n in its parent. The zero
// Position is returned for detached nodes.
func Before(n *html.Node) Position {
	if n == nil || n.Parent == nil {
		return Position{}
	}
	return Position{container: n.Parent, offset: dom.NodeIndex(n)}
}

// After returns the position immediately after n in its parent. The zero
// Position is returned for detached nodes.
func After(n *html.Node) Position {
	if n == nil || n.Parent == nil {
		return Position{}
	}
	return Position{container: n.Parent, offset: dom.NodeIndex(n) + 1}
}

// FromRangeStart returns the start boundary of r.
func FromRangeStart(r dom.Range) Position {
	return NewPosition(r.StartContainer, r.StartOffset)
}

// FromRangeEnd returns the end boundary of r.
func FromRangeEnd(r dom.Range) Position {
	return NewPosition(r.EndContainer, r.EndOffset)
}

// Container returns the container node.
func (p Position) Container() *html.Node {
	return p.container
}

// Offset returns the offset inside the container.
func (p Position) Offset() int {
	return p.offset
}

// IsZero returns true for the zero Position.
func (p Position) IsZero() bool {
	return p.container == nil
}

// IsText returns true if the container is a text node.
func (p Position) IsText() bool {
	return IsText(p.container)
}

// IsAtStart returns true if the offset is at the start of the container.
func (p Position) IsAtStart() bool {
	return p.offset == 0
}

// IsAtEnd returns true if the offset is at the end of the container.
func (p Position) IsAtEnd() bool {
	return p.container != nil && p.offset >= dom.NodeLen(p.container)
}

// Node returns the node the position points at. For text containers this is
// the container itself. For elements it is the child after the position,
// or the child before it when before is true; the index is clamped to the
// existing children. Childless elements return the container.
func (p Position) Node(before bool) *html.Node {
	if p.container == nil {
		return nil
	}
	if IsText(p.container) || p.container.FirstChild == nil {
		return p.container
	}
	idx := p.offset
	if before {
		idx--
	}
	count := dom.ChildCount(p.container)
	if idx >= count {
		idx = count - 1
	}
	if idx < 0 {
		idx = 0
	}
	return dom.ChildAt(p.container, idx)
}

// ToRange returns a collapsed range at the position.
func (p Position) ToRange() dom.Range {
	return dom.CollapsedAt(p.container, p.offset)
}

// Equal returns true if both positions have the same container and offset.
func (p Position) Equal(other Position) bool {
	return p.container == other.container && p.offset == other.offset
}

// Compare orders positions in document order: -1 if p is before other, 0 if
// equal, 1 if after.
func (p Position) Compare(other Position) int {
	return dom.ComparePoints(p.container, p.offset, other.container, other.offset)
}

// Valid reports whether the offset is inside the container bounds.
func (p Position) Valid() bool {
	return p.container != nil && p.offset >= 0 && p.offset <= dom.NodeLen(p.container)
}

// ClientRects returns the caret rects of the position. Element positions
// next to atomic nodes, <br> markers or tables resolve to the collapsed edge
// of the neighbouring node. Rects without geometry are dropped.
func (p Position) ClientRects(g geom.Provider) []geom.Rect {
	if g == nil || !p.Valid() {
		return nil
	}
	if p.IsText() {
		return geom.NonEmpty(g.RangeRects(p.ToRange()))
	}

	var rects []geom.Rect
	if before := dom.ChildAt(p.container, p.offset-1); before != nil {
		switch {
		case IsText(before):
			rects = append(rects, g.RangeRects(dom.CollapsedAt(before, len(before.Data)))...)
		case IsCaretCandidate(before) && !IsBr(before):
			if r, ok := geom.Last(g.NodeRects(before)); ok {
				rects = append(rects, r.Collapse(false))
			}
		}
	}
	if after := dom.ChildAt(p.container, p.offset); after != nil {
		switch {
		case IsText(after):
			rects = append(rects, g.RangeRects(dom.CollapsedAt(after, 0))...)
		case IsCaretCandidate(after):
			if nodeRects := g.NodeRects(after); len(nodeRects) > 0 {
				rects = append(rects, nodeRects[0].Collapse(true))
			}
		}
	}
	if len(rects) == 0 {
		rects = g.RangeRects(p.ToRange())
	}
	return geom.NonEmpty(rects)
}

// IsVisible reports whether the position renders a caret. Positions inside a
// placeholder other than active are hidden, as are positions without
// geometry.
func (p Position) IsVisible(g geom.Provider, active *html.Node) bool {
	if p.container == nil {
		return false
	}
	if IsCaretContainerInline(p.container) && p.container != active {
		return false
	}
	if block := CaretContainerBlockOf(p.container); block != nil && block != active {
		return false
	}
	return len(p.ClientRects(g)) > 0
}

// String returns a debug representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("Position(%s:%d)", dom.Describe(p.container), p.offset)
}
