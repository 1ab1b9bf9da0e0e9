package surface

import (
	"golang.org/x/net/html"

	"github.com/rivo/uniseg"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
)

// The native actions below are what the surface does on its own when an
// input event is not prevented. They follow the caret walker and know
// nothing about fake carets or object selection.

// MoveHorizontal moves the caret one position in dir. With extend set the
// focus end moves and the anchor stays. A non-collapsed range without
// extend collapses to the edge in dir.
func (s *Surface) MoveHorizontal(dir caret.Direction, extend bool) bool {
	r, ok := s.Range()
	if !ok {
		return false
	}
	if !r.Collapsed() && !extend {
		s.SetRange(r.Collapse(!dir.IsForward()))
		return true
	}

	from := caret.FromRangeEnd(r)
	if !dir.IsForward() && !extend {
		from = caret.FromRangeStart(r)
	}
	next, ok := caret.NewWalker(s.root).Step(dir, from)
	if !ok {
		return false
	}
	if !extend {
		s.SetRange(next.ToRange())
		return true
	}
	anchor := caret.FromRangeStart(r)
	s.SetRange(spanning(anchor, next))
	return true
}

// MoveVertical moves the caret to the nearest position one line up or down,
// keeping the column.
func (s *Surface) MoveVertical(dir caret.Direction) bool {
	r, ok := s.Range()
	if !ok {
		return false
	}
	pos := caret.FromRangeEnd(r)
	if !dir.IsForward() {
		pos = caret.FromRangeStart(r)
	}
	rect, ok := geom.Last(pos.ClientRects(s.engine))
	if !ok {
		return false
	}
	y := rect.Top - 1
	if dir.IsForward() {
		y = rect.Bottom
	}
	if y < 0 || y >= float64(s.engine.Height()) {
		return false
	}
	container, offset, ok := s.engine.HitTest(rect.Left, y)
	if !ok {
		return false
	}
	s.SetRange(dom.CollapsedAt(container, offset))
	return true
}

// Click places a collapsed caret at the position nearest to (x, y).
func (s *Surface) Click(x, y float64) bool {
	container, offset, ok := s.engine.HitTest(x, y)
	if !ok {
		return false
	}
	s.SetRange(dom.CollapsedAt(container, offset))
	return true
}

// NodeAt returns the node drawn at (x, y), or the root.
func (s *Surface) NodeAt(x, y float64) *html.Node {
	if n := s.engine.NodeAt(x, y); n != nil {
		return n
	}
	return s.root
}

// InsertText replaces the selection with text and leaves the caret after
// it.
func (s *Surface) InsertText(text string) bool {
	if text == "" {
		return false
	}
	r, ok := s.Range()
	if !ok {
		return false
	}
	if !r.Collapsed() {
		s.DeleteContents()
		if r, ok = s.Range(); !ok {
			return false
		}
	}

	container, offset := r.StartContainer, r.StartOffset
	if dom.IsText(container) {
		container.Data = container.Data[:offset] + text + container.Data[offset:]
		s.SetRange(dom.CollapsedAt(container, offset+len(text)))
		return true
	}

	before := dom.ChildAt(container, offset-1)
	after := dom.ChildAt(container, offset)
	switch {
	case dom.IsText(before):
		before.Data += text
		s.SetRange(dom.CollapsedAt(before, len(before.Data)))
	case dom.IsText(after):
		after.Data = text + after.Data
		s.SetRange(dom.CollapsedAt(after, len(text)))
	default:
		node := dom.NewText(text)
		dom.InsertAt(container, node, offset)
		s.SetRange(dom.CollapsedAt(node, len(text)))
	}
	return true
}

// SplitBlock splits the text block at the caret, moving the content after
// the caret into a new block of the same tag.
func (s *Surface) SplitBlock() bool {
	r, ok := s.Range()
	if !ok {
		return false
	}
	if !r.Collapsed() {
		s.DeleteContents()
		if r, ok = s.Range(); !ok {
			return false
		}
	}
	container, offset := r.StartContainer, r.StartOffset
	block := caret.ParentBlock(container, s.root)
	if block == s.root || !caret.IsTextBlock(block) {
		return false
	}

	// Split the tree from the caret up to the block, cloning each ancestor.
	if dom.IsText(container) {
		dom.SplitText(container, offset)
		container, offset = container.Parent, dom.NodeIndex(container)+1
	}
	next := dom.Clone(block, false)
	for n := container; ; n = n.Parent {
		var moved []*html.Node
		for c := dom.ChildAt(n, offset); c != nil; c = c.NextSibling {
			moved = append(moved, c)
		}
		if n == block {
			for _, c := range moved {
				dom.Detach(c)
				next.AppendChild(c)
			}
			break
		}
		clone := dom.Clone(n, false)
		for _, c := range moved {
			dom.Detach(c)
			clone.AppendChild(c)
		}
		container, offset = n.Parent, dom.NodeIndex(n)+1
		dom.InsertAt(container, clone, offset)
	}
	dom.InsertAfter(next, block)
	for _, b := range []*html.Node{block, next} {
		dropEmptyText(b)
		padEmpty(b)
	}
	s.SetRange(dom.CollapsedAt(next, 0))
	return true
}

// DeleteContents removes the selected content and collapses the caret at
// the start of the range. Only single-container ranges and ranges wrapping
// exactly one node are handled.
func (s *Surface) DeleteContents() bool {
	r, ok := s.Range()
	if !ok || r.Collapsed() {
		return false
	}
	if n := r.SelectedNode(); n != nil {
		parent, idx := n.Parent, dom.NodeIndex(n)
		dom.Remove(n)
		padEmpty(caret.ParentBlock(parent, s.root))
		s.SetRange(dom.CollapsedAt(parent, idx))
		return true
	}
	if r.StartContainer == r.EndContainer && dom.IsText(r.StartContainer) {
		t := r.StartContainer
		t.Data = t.Data[:r.StartOffset] + t.Data[r.EndOffset:]
		s.SetRange(dom.CollapsedAt(t, r.StartOffset))
		return true
	}
	s.SetRange(r.Collapse(true))
	return false
}

// DeleteCharacter removes one grapheme cluster before (Backward) or after
// (Forward) the caret. At a block edge the neighbouring text blocks merge.
func (s *Surface) DeleteCharacter(dir caret.Direction) bool {
	r, ok := s.Range()
	if !ok {
		return false
	}
	if !r.Collapsed() {
		return s.DeleteContents()
	}

	pos := caret.FromRangeStart(r)
	if pos.IsText() && s.deleteCluster(dir, pos) {
		return true
	}

	from := caret.ParentBlock(pos.Container(), s.root)
	if n := adjacent(pos, dir); n != nil && deletable(n, dir) {
		parent, idx := n.Parent, dom.NodeIndex(n)
		dom.Remove(n)
		padEmpty(from)
		s.SetRange(dom.CollapsedAt(parent, idx))
		return true
	}

	next, ok := caret.NewWalker(s.root).Step(dir, pos)
	if !ok {
		return false
	}
	if to := caret.ParentBlock(next.Container(), s.root); to != from {
		if dir.IsForward() {
			return s.mergeBlocks(from, to)
		}
		return s.mergeBlocks(to, from)
	}
	if next.IsText() {
		return s.deleteCluster(dir, next)
	}
	return false
}

// deleteCluster removes the cluster next to pos inside its text node.
func (s *Surface) deleteCluster(dir caret.Direction, pos caret.Position) bool {
	t, offset := pos.Container(), pos.Offset()
	from, to := -1, -1
	g := uniseg.NewGraphemes(t.Data)
	for g.Next() {
		start, end := g.Positions()
		if dir.IsForward() && start == offset {
			from, to = start, end
			break
		}
		if !dir.IsForward() && end == offset {
			from, to = start, end
			break
		}
	}
	if from < 0 {
		return false
	}
	t.Data = t.Data[:from] + t.Data[to:]
	if t.Data != "" {
		s.SetRange(dom.CollapsedAt(t, from))
		return true
	}
	parent, idx := t.Parent, dom.NodeIndex(t)
	dom.Remove(t)
	padEmpty(caret.ParentBlock(parent, s.root))
	s.SetRange(dom.CollapsedAt(parent, idx))
	return true
}

// mergeBlocks appends the content of second to first and removes second.
// The caret lands at the join.
func (s *Surface) mergeBlocks(first, second *html.Node) bool {
	if first == s.root || second == s.root || !caret.IsTextBlock(first) || !caret.IsTextBlock(second) {
		return false
	}
	stripPadding(first)
	stripPadding(second)
	join := dom.ChildCount(first)
	last := first.LastChild
	dom.MoveChildren(second, first)
	dom.Remove(second)
	padEmpty(first)
	if dom.IsText(last) {
		s.SetRange(dom.CollapsedAt(last, len(last.Data)))
		return true
	}
	s.SetRange(dom.CollapsedAt(first, join))
	return true
}

// CopyText returns the plain text of the selection.
func (s *Surface) CopyText() string {
	r, ok := s.Range()
	if !ok || r.Collapsed() {
		return ""
	}
	if n := r.SelectedNode(); n != nil {
		return dom.TextContent(n)
	}
	if r.StartContainer == r.EndContainer && dom.IsText(r.StartContainer) {
		return r.StartContainer.Data[r.StartOffset:r.EndOffset]
	}
	return ""
}

// spanning returns the range between two positions in document order.
func spanning(a, b caret.Position) dom.Range {
	if a.Compare(b) > 0 {
		a, b = b, a
	}
	return dom.Range{
		StartContainer: a.Container(), StartOffset: a.Offset(),
		EndContainer: b.Container(), EndOffset: b.Offset(),
	}
}

// deletable reports whether a native delete in dir removes n outright. A
// trailing line break only pads its block and is kept.
func deletable(n *html.Node, dir caret.Direction) bool {
	if caret.IsBr(n) {
		return !dir.IsForward() || !caret.IsTrailingBr(n)
	}
	return caret.IsAtomic(n)
}

// adjacent returns the element directly before (Backward) or after
// (Forward) pos, skipping inline caret markers. Text neighbours yield nil.
func adjacent(pos caret.Position, dir caret.Direction) *html.Node {
	c, o := pos.Container(), pos.Offset()
	var n *html.Node
	switch {
	case dom.IsText(c) && dir.IsForward():
		if o < len(c.Data) {
			return nil
		}
		n = c.NextSibling
	case dom.IsText(c):
		if o > 0 {
			return nil
		}
		n = c.PrevSibling
	case dir.IsForward():
		n = dom.ChildAt(c, o)
	default:
		n = dom.ChildAt(c, o-1)
	}
	for n != nil && caret.IsCaretContainerInline(n) {
		if dir.IsForward() {
			n = n.NextSibling
		} else {
			n = n.PrevSibling
		}
	}
	if n == nil || dom.IsText(n) {
		return nil
	}
	return n
}

// padEmpty gives an empty text block a line break so it keeps a line.
func padEmpty(block *html.Node) {
	if block == nil || !caret.IsTextBlock(block) {
		return
	}
	empty := true
	for c := block.FirstChild; c != nil; c = c.NextSibling {
		if !dom.IsText(c) || c.Data != "" {
			empty = false
			break
		}
	}
	if empty {
		dom.Empty(block)
		dom.AppendChild(block, dom.NewElement("br"))
	}
}

// stripPadding removes a lone line break from a block about to be merged.
func stripPadding(block *html.Node) {
	if block.FirstChild != nil && block.FirstChild == block.LastChild && caret.IsBr(block.FirstChild) {
		dom.Remove(block.FirstChild)
	}
}

func dropEmptyText(n *html.Node) {
	var stale []*html.Node
	dom.Walk(n, func(c *html.Node) bool {
		if dom.IsText(c) && c.Data == "" {
			stale = append(stale, c)
		}
		return true
	})
	for _, c := range stale {
		dom.Remove(c)
	}
}
