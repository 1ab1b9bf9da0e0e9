package selection

import (
	"math"

	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/caret/line"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
)

// moveH computes a horizontal arrow move. A zero range with a nil error
// leaves the move to the host.
func (c *Coordinator) moveH(dir caret.Direction, r dom.Range) (dom.Range, error) {
	faces := boundaryFn(dir)

	if !r.Collapsed() {
		if n := r.SelectedNode(); n != nil && isSelectable(n) {
			return c.showCaret(dir, n, !dir.IsForward())
		}
	}

	inContainer := caret.IsRangeInCaretContainer(r)
	pos := endpoint(dir, r)
	if n := faces(pos); n != nil {
		return c.selectNode(n)
	}

	next, ok := c.walker.Step(dir, pos)
	if !ok {
		if inContainer {
			return r, nil
		}
		return dom.Range{}, nil
	}
	if inContainer && c.sameSpot(pos, next) {
		if again, ok := c.walker.Step(dir, next); ok {
			next = again
		}
	}
	if n := faces(next); n != nil {
		return c.showCaret(dir, n, dir.IsForward())
	}

	if peek, ok := c.walker.Step(dir, next); ok {
		if n := faces(peek); n != nil && c.sameBlock(next, peek) {
			return c.showCaret(dir, n, dir.IsForward())
		}
	}

	if inContainer {
		return c.renderRangeCaret(next.ToRange())
	}
	return dom.Range{}, nil
}

// sameBlock reports whether a move between two positions stays in one block.
// Moving off a line break counts as staying.
func (c *Coordinator) sameBlock(from, to caret.Position) bool {
	if caret.IsBr(from.Node(false)) {
		return true
	}
	return caret.ParentBlock(from.Container(), c.root) == caret.ParentBlock(to.Container(), c.root)
}

// sameSpot reports whether two positions render the caret at the same place.
func (c *Coordinator) sameSpot(a, b caret.Position) bool {
	g := c.host.Geometry()
	if g == nil {
		return false
	}
	ra, ok := geom.Last(a.ClientRects(g))
	if !ok {
		return false
	}
	rb, ok := geom.Last(b.ClientRects(g))
	return ok && ra.Equal(rb)
}

// exitPreBlock moves a caret stuck at the edge of a preformatted block into
// a new block after (or before) it.
func (c *Coordinator) exitPreBlock(dir caret.Direction, r dom.Range) (dom.Range, error) {
	if !r.Collapsed() {
		return dom.Range{}, nil
	}
	pre := dom.Closest(r.StartContainer, c.root, func(n *html.Node) bool { return dom.IsTag(n, "pre") })
	if pre == nil {
		return dom.Range{}, nil
	}
	if _, ok := c.walker.Step(dir, caret.FromRangeStart(r)); ok {
		return dom.Range{}, nil
	}

	block := dom.NewElement(c.config.Caret.ForcedRootBlock)
	dom.AppendChild(block, dom.NewElement("br"))
	if dir.IsForward() {
		dom.InsertAfter(block, pre)
	} else {
		dom.InsertBefore(block, pre)
	}
	return dom.CollapsedAt(block, 0), nil
}

// moveV computes a vertical arrow move with the line walker.
func (c *Coordinator) moveV(dir caret.Direction, r dom.Range) (dom.Range, error) {
	if c.lines == nil {
		return dom.Range{}, ErrNoGeometry
	}
	g := c.host.Geometry()

	pos := endpoint(dir, r)
	rect, ok := geom.Last(pos.ClientRects(g))
	var seed *html.Node
	switch {
	case c.selected != nil:
		seed = c.selected
	case c.fake.IsShown():
		seed = c.boundaryNode()
	}
	if !ok && seed != nil {
		rect, ok = geom.Last(g.NodeRects(seed))
	}
	if !ok {
		return dom.Range{}, ErrNoGeometry
	}
	x := rect.Left

	var rects []line.Rect
	if dir.IsForward() {
		rects = c.lines.DownUntil(line.IsAboveLine(1), pos)
	} else {
		rects = c.lines.UpUntil(line.IsAboveLine(1), pos)
	}
	if closest, ok := line.FindClosest(line.Filter(rects, line.IsLine(1)), x); ok && isSelectable(closest.Node) {
		before := math.Abs(x-closest.Left) < math.Abs(x-closest.Right)
		return c.showCaret(dir, closest.Node, before)
	}

	var positions []line.Rect
	if seed != nil {
		positions = c.lines.PositionsUntil(dir, line.IsAboveLine(1), seed)
	} else {
		positions = c.lines.PositionsFrom(dir, line.IsAboveLine(1), pos)
	}
	if closest, ok := line.FindClosest(line.Filter(positions, line.IsLine(1)), x); ok {
		return c.renderRangeCaret(closest.Position.ToRange())
	}
	if seed != nil {
		current := line.Filter(positions, line.IsLine(0))
		if len(current) > 0 {
			return c.renderRangeCaret(current[len(current)-1].Position.ToRange())
		}
	}
	return dom.Range{}, nil
}
