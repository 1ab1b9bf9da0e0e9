package caret

import (
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/dom"
)

// Direction is the walk direction through the document.
type Direction int

const (
	// Backward walks towards the start of the document.
	Backward Direction = -1
	// Forward walks towards the end of the document.
	Forward Direction = 1
)

// IsForward returns true for Forward.
func (d Direction) IsForward() bool {
	return d >= 0
}

// String returns "forward" or "backward".
func (d Direction) String() string {
	if d.IsForward() {
		return "forward"
	}
	return "backward"
}

// Walker computes the next and previous legal caret positions under a root.
// Each atomic node is a single opaque step; the walker never produces a
// position inside an atomic subtree or inside a placeholder.
type Walker struct {
	root *html.Node
}

// NewWalker creates a walker bounded by root. A nil root is a programming
// error and panics.
func NewWalker(root *html.Node) *Walker {
	if root == nil {
		panic("caret: walker requires a root")
	}
	return &Walker{root: root}
}

// Root returns the walk boundary.
func (w *Walker) Root() *html.Node {
	return w.root
}

// Next returns the next legal position after p. The second result is false
// at the end of the root, or when p is detached or out of bounds.
func (w *Walker) Next(p Position) (Position, bool) {
	return w.find(Forward, p)
}

// Prev returns the previous legal position before p. The second result is
// false at the start of the root, or when p is detached or out of bounds.
func (w *Walker) Prev(p Position) (Position, bool) {
	return w.find(Backward, p)
}

// Step walks one position in dir.
func (w *Walker) Step(dir Direction, p Position) (Position, bool) {
	return w.find(dir, p)
}

func (w *Walker) find(dir Direction, start Position) (Position, bool) {
	if !start.Valid() || !dom.Contains(w.root, start.container) {
		return Position{}, false
	}
	start = normalizeStart(dir, start)
	if start.IsZero() {
		return Position{}, false
	}

	// A start inside an atomic subtree leaves the subtree in one step.
	if atomic := outermostAtomic(start.container, w.root); atomic != nil {
		return edge(dir, atomic), true
	}

	result, ok := w.walk(dir, start)

	// Leaving a non-editable host that wraps an editable region lands on
	// the host's outer edge rather than skipping over it.
	if host := outermostNonEditable(start.container, w.root); host != nil {
		if !ok || !dom.Contains(host, result.container) {
			return edge(dir, host), true
		}
	}
	return result, ok
}

func (w *Walker) walk(dir Direction, start Position) (Position, bool) {
	container, offset := start.container, start.offset
	exclude := func(n *html.Node) bool {
		return w.candidate(n) && !dom.Contains(n, container)
	}

	if IsText(container) {
		if dir.IsForward() {
			if o, ok := nextClusterOffset(container.Data, offset); ok {
				return Position{container: container, offset: o}, true
			}
		} else if o, ok := prevClusterOffset(container.Data, offset); ok {
			return Position{container: container, offset: o}, true
		}
		return w.land(dir, w.findFrom(dir, container, exclude))
	}

	idx := offset
	if !dir.IsForward() {
		idx = offset - 1
	}
	child := dom.ChildAt(container, idx)
	if child == nil {
		if !dir.IsForward() {
			return w.land(dir, w.findFrom(dir, container, exclude))
		}
		// Past the last child: continue after the container without
		// re-entering it.
		next := treeNext(container, w.root, true)
		if next == nil || exclude(next) {
			return w.land(dir, next)
		}
		return w.land(dir, w.findInclusive(dir, next, exclude))
	}
	if pos, ok := w.stepOver(dir, child); ok {
		return pos, true
	}
	return w.land(dir, w.findInclusive(dir, child, exclude))
}

// stepOver handles a caret candidate directly adjacent to an element
// position.
func (w *Walker) stepOver(dir Direction, child *html.Node) (Position, bool) {
	if !w.candidate(child) {
		return Position{}, false
	}
	switch {
	case IsText(child):
		if dir.IsForward() {
			return Position{container: child, offset: 0}, true
		}
		return Position{container: child, offset: len(child.Data)}, true

	case IsAtomic(child):
		return edge(dir, child), true

	case IsBr(child):
		if !dir.IsForward() {
			return Before(child), true
		}
		if !IsTrailingBr(child) {
			return After(child), true
		}
		return w.land(dir, w.findFrom(dir, child, w.candidate))
	}

	// Tables and non-editable hosts with editable regions are entered.
	inner := w.findWithin(dir, child)
	if inner != nil {
		return w.land(dir, inner)
	}
	return edge(dir, child), true
}

// land converts a candidate found by a search into the position where the
// caret arrives when walking in dir.
func (w *Walker) land(dir Direction, n *html.Node) (Position, bool) {
	if n == nil {
		return Position{}, false
	}
	if IsText(n) {
		if dir.IsForward() {
			return Position{container: n, offset: 0}, true
		}
		return Position{container: n, offset: len(n.Data)}, true
	}
	if dir.IsForward() {
		return Before(n), true
	}
	if IsBr(n) && IsTrailingBr(n) {
		return Before(n), true
	}
	return After(n), true
}

func (w *Walker) candidate(n *html.Node) bool {
	return IsEditableCaretCandidate(n, w.root)
}

// findFrom searches strictly after (or before) n.
func (w *Walker) findFrom(dir Direction, n *html.Node, pred func(*html.Node) bool) *html.Node {
	return FindNode(n, dir, pred, w.root)
}

// findInclusive searches n's subtree first, then beyond it.
func (w *Walker) findInclusive(dir Direction, n *html.Node, pred func(*html.Node) bool) *html.Node {
	if !dir.IsForward() {
		n = deepestLast(n)
	}
	if pred(n) {
		return n
	}
	return FindNode(n, dir, pred, w.root)
}

// findWithin searches only inside n.
func (w *Walker) findWithin(dir Direction, n *html.Node) *html.Node {
	pred := func(c *html.Node) bool { return c != n && w.candidate(c) }
	if dir.IsForward() {
		return FindNode(n, dir, pred, n)
	}
	last := deepestLast(n)
	if last != n && pred(last) {
		return last
	}
	return FindNode(last, dir, pred, n)
}

// FindNode returns the first node after n (or before n, walking backward)
// in document order under root that satisfies pred. Forward walks visit a
// node's children before its siblings; backward walks visit a node's
// previous sibling's last descendants before its parent. Atomic and bogus
// subtrees are never entered.
func FindNode(n *html.Node, dir Direction, pred func(*html.Node) bool, root *html.Node) *html.Node {
	if n == nil || root == nil {
		return nil
	}
	for {
		if dir.IsForward() {
			n = treeNext(n, root, false)
		} else {
			n = treePrev(n, root)
		}
		if n == nil {
			return nil
		}
		if pred(n) {
			return n
		}
	}
}

func treeNext(n, root *html.Node, shallow bool) *html.Node {
	if !shallow && n.FirstChild != nil && !isOpaque(n) {
		return n.FirstChild
	}
	for ; n != nil && n != root; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

func treePrev(n, root *html.Node) *html.Node {
	if n == root {
		return nil
	}
	if n.PrevSibling != nil {
		return deepestLast(n.PrevSibling)
	}
	if n.Parent != nil && n.Parent != root {
		return n.Parent
	}
	return nil
}

func deepestLast(n *html.Node) *html.Node {
	for n.LastChild != nil && !isOpaque(n) {
		n = n.LastChild
	}
	return n
}

// IsTrailingBr reports whether br is the last content of its block, so the
// position after it starts no new line.
func IsTrailingBr(br *html.Node) bool {
	if !IsBr(br) || br.Parent == nil || !IsBlock(br.Parent) {
		return false
	}
	for s := br.NextSibling; s != nil; s = s.NextSibling {
		if IsText(s) && (s.Data == "" || IsCaretContainerInline(s)) {
			continue
		}
		return false
	}
	return true
}

// edge returns the outer edge of n in the walk direction: after n when
// walking forward, before it when walking backward.
func edge(dir Direction, n *html.Node) Position {
	if dir.IsForward() {
		return After(n)
	}
	return Before(n)
}

// normalizeStart moves a position out of a placeholder onto the element
// boundary the placeholder stands for.
func normalizeStart(dir Direction, p Position) Position {
	if block := CaretContainerBlockOf(p.container); block != nil {
		return edge(dir, block)
	}
	if IsCaretContainerInline(p.container) {
		return edge(dir, p.container)
	}
	return p
}

func outermostAtomic(n, root *html.Node) *html.Node {
	var found *html.Node
	for p := n; p != nil && p != root; p = p.Parent {
		if IsAtomic(p) {
			found = p
		}
	}
	return found
}

func outermostNonEditable(n, root *html.Node) *html.Node {
	var found *html.Node
	for p := n; p != nil && p != root; p = p.Parent {
		if IsContentEditableFalse(p) {
			found = p
		}
	}
	return found
}
