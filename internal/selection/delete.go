package selection

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/event/events"
)

// Deletion reasons carried by ObjectDeleted.
const (
	ReasonBackspace = "backspace"
	ReasonDelete    = "delete"
	ReasonCut       = "cut"
)

func deleteReason(dir caret.Direction) string {
	if dir.IsForward() {
		return ReasonDelete
	}
	return ReasonBackspace
}

// backspaceDelete computes Backspace (Backward) or Delete (Forward). A zero
// range with a nil error leaves the deletion to the host.
func (c *Coordinator) backspaceDelete(dir caret.Direction, r dom.Range) (dom.Range, error) {
	if c.selected != nil && !r.Collapsed() {
		return c.deleteAtomic(c.selected, deleteReason(dir))
	}
	if !r.Collapsed() {
		return dom.Range{}, nil
	}

	faces := boundaryFn(dir)
	pos := endpoint(dir, r)
	if n := faces(pos); n != nil {
		return c.deleteAtomic(n, deleteReason(dir))
	}

	peek, ok := c.walker.Step(dir, pos)
	if ok {
		if n := faces(peek); n != nil {
			from := caret.ParentBlock(pos.Container(), c.root)
			to := caret.ParentBlock(n, c.root)
			if caret.IsBlock(n) {
				return c.enterBlockBoundary(dir, from, n)
			}
			if from == to {
				return c.deleteAtomic(n, deleteReason(dir))
			}
			return c.mergeTextBlocks(dir, from, to, n)
		}
	}

	if block := caret.CaretContainerBlockOf(r.StartContainer); block != nil && !caret.HasContent(block) {
		if !ok {
			return dom.Range{}, nil
		}
		start, end := pinRange(peek.ToRange(), block)
		c.fake.Hide()
		dom.Remove(block)
		out, found := unpinRange(start, end)
		if !found {
			return dom.Range{}, ErrInvalidRange
		}
		return c.renderRangeCaret(out)
	}
	return dom.Range{}, nil
}

// enterBlockBoundary handles Backspace or Delete from a block that borders
// an atomic block: an empty block goes away and the caret lands beside the
// atomic block, which itself is kept.
func (c *Coordinator) enterBlockBoundary(dir caret.Direction, from, atomic *html.Node) (dom.Range, error) {
	if from != c.root && from != atomic && isEmptyBlock(from) {
		c.fake.Hide()
		dom.Remove(from)
	}
	return c.showCaret(dir, atomic, dir.IsForward())
}

// mergeTextBlocks joins the caret's block with the neighbouring text block
// that starts or ends with the inline atomic node n, then places the caret
// beside n.
func (c *Coordinator) mergeTextBlocks(dir caret.Direction, from, to, n *html.Node) (dom.Range, error) {
	if from == c.root || to == c.root || !caret.IsTextBlock(from) || !caret.IsTextBlock(to) {
		return dom.Range{}, nil
	}
	c.fake.Hide()
	switch {
	case isEmptyBlock(from):
		dom.Remove(from)
	case dir.IsForward():
		dropPadding(from)
		dom.MoveChildren(to, from)
		dom.Remove(to)
	default:
		dropPadding(to)
		dom.MoveChildren(from, to)
		dom.Remove(from)
	}
	c.logger.Debug("blocks merged", zap.String("node", dom.Describe(n)))
	return c.showCaret(dir, n, dir.IsForward())
}

// deleteAtomic removes node and returns where the caret goes. The caret
// position is resolved before anything is removed; without one the tree is
// left alone.
func (c *Coordinator) deleteAtomic(node *html.Node, reason string) (dom.Range, error) {
	if node == nil || !dom.IsAttached(c.root, node) {
		return dom.Range{}, ErrDetached
	}

	target, found := c.resolveAfterDelete(node)
	empty := c.emptyWithout(node)
	var block *html.Node
	if !found && !empty {
		block = caret.ParentBlock(node.Parent, c.root)
		if block == c.root || !caret.IsTextBlock(block) {
			return dom.Range{}, ErrInvalidRange
		}
	}

	pin := anchorOf(target, node)
	c.fake.Hide()
	c.clearObjectSelection()
	parent := node.Parent
	for _, m := range []*html.Node{node.PrevSibling, node.NextSibling} {
		if caret.IsCaretContainerInline(m) {
			dom.Remove(m)
		}
	}
	dom.Remove(node)

	var r dom.Range
	switch {
	case empty:
		dom.Empty(c.root)
		p := dom.NewElement(c.config.Caret.ForcedRootBlock)
		dom.AppendChild(p, dom.NewElement("br"))
		dom.AppendChild(c.root, p)
		r = dom.CollapsedAt(p, 0)
	case block != nil:
		pruneEmptyInlines(parent, block)
		padBlock(block)
		r = dom.CollapsedAt(block, 0)
	default:
		pos := pin.resolve()
		if pos.IsZero() {
			return dom.Range{}, ErrInvalidRange
		}
		block := caret.ParentBlock(parent, c.root)
		if !dom.Contains(parent, pos.Container()) {
			pruneEmptyInlines(parent, block)
		}
		padBlock(block)
		r = pos.ToRange()
	}

	publish(c, events.TopicObjectDeleted, &events.ObjectDeleted{Target: node, Reason: reason})
	c.logger.Debug("object deleted", zap.String("node", dom.Describe(node)), zap.String("reason", reason))
	return c.renderRangeCaret(r)
}

// resolveAfterDelete picks the caret position for when node is gone: after
// a preceding atomic sibling, else the previous caret position, else the
// next one.
func (c *Coordinator) resolveAfterDelete(node *html.Node) (caret.Position, bool) {
	prev := node.PrevSibling
	for prev != nil && caret.IsCaretContainerInline(prev) {
		prev = prev.PrevSibling
	}
	if prev != nil && caret.IsAtomic(prev) {
		return caret.After(prev), true
	}
	if p, ok := c.walker.Prev(caret.Before(node)); ok {
		return p, true
	}
	if p, ok := c.walker.Next(caret.After(node)); ok {
		return p, true
	}
	return caret.Position{}, false
}

// emptyWithout reports whether the root holds no content besides node,
// placeholders, bogus elements and the blocks wrapping them.
func (c *Coordinator) emptyWithout(node *html.Node) bool {
	return holdsOnly(c.root, node)
}

// holdsOnly reports whether parent contains nothing but node, line breaks,
// blank text, placeholders, bogus elements and elements holding only those.
func holdsOnly(parent, node *html.Node) bool {
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		switch {
		case n == node, caret.IsCaretContainer(n), caret.IsBogusAll(n), caret.IsBr(n):
		case dom.IsText(n):
			if !isBlank(n.Data) {
				return false
			}
		case dom.IsElement(n) && !isSelectable(n) && holdsOnly(n, node):
		default:
			return false
		}
	}
	return true
}

func isBlank(s string) bool {
	return strings.TrimSpace(strings.ReplaceAll(s, caret.ZWSP, "")) == ""
}

// pruneEmptyInlines removes the inline wrappers between n and block that
// were left without children.
func pruneEmptyInlines(n, block *html.Node) {
	for n != nil && n != block && n.FirstChild == nil {
		parent := n.Parent
		dom.Remove(n)
		n = parent
	}
}

// isEmptyBlock reports whether a block has nothing but line breaks, markers
// and whitespace.
func isEmptyBlock(n *html.Node) bool {
	empty := true
	dom.Walk(n, func(c *html.Node) bool {
		if c == n {
			return true
		}
		switch {
		case dom.IsText(c):
			if !isBlank(c.Data) {
				empty = false
			}
		case caret.IsBr(c):
		default:
			empty = false
		}
		return empty
	})
	return empty
}

// dropPadding removes a lone line break from a block about to receive
// content.
func dropPadding(n *html.Node) {
	if n.FirstChild != nil && n.FirstChild == n.LastChild && caret.IsBr(n.FirstChild) {
		dom.Remove(n.FirstChild)
	}
}

// padBlock gives a text block left without children a line break.
func padBlock(n *html.Node) {
	if n != nil && caret.IsTextBlock(n) && n.FirstChild == nil {
		dom.AppendChild(n, dom.NewElement("br"))
	}
}
