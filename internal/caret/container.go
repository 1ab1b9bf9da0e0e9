package caret

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/dom"
)

// IsCaretContainerInline returns true for text nodes that consist of exactly
// one marker character.
func IsCaretContainerInline(n *html.Node) bool {
	return IsText(n) && n.Data == ZWSP
}

// IsCaretContainerBlock returns true for block placeholders, or for text
// nodes directly inside one.
func IsCaretContainerBlock(n *html.Node) bool {
	if IsText(n) {
		n = n.Parent
	}
	return dom.Matches(n, SelectorCaretContainer)
}

// IsCaretContainer returns true for inline or block placeholders.
func IsCaretContainer(n *html.Node) bool {
	return IsCaretContainerInline(n) || IsCaretContainerBlock(n)
}

// StartsWithCaretContainer returns true for text nodes beginning with the
// marker character.
func StartsWithCaretContainer(n *html.Node) bool {
	return IsText(n) && strings.HasPrefix(n.Data, ZWSP)
}

// EndsWithCaretContainer returns true for text nodes ending with the marker
// character.
func EndsWithCaretContainer(n *html.Node) bool {
	return IsText(n) && strings.HasSuffix(n.Data, ZWSP)
}

// CaretContainerBlockOf returns the block placeholder containing n
// (inclusive), or nil.
func CaretContainerBlockOf(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if dom.Matches(n, SelectorCaretContainer) {
			return n
		}
	}
	return nil
}

// InsertInline returns an inline placeholder immediately before or after
// node. An adjacent placeholder already sitting at that side is reused, and
// a marker at the near edge of an adjacent text node is split off into its
// own node. Returns nil if node is detached.
func InsertInline(node *html.Node, before bool) *html.Node {
	if node == nil || node.Parent == nil {
		return nil
	}

	if before {
		sibling := node.PrevSibling
		if IsText(sibling) {
			if IsCaretContainerInline(sibling) {
				return sibling
			}
			if EndsWithCaretContainer(sibling) {
				return dom.SplitText(sibling, len(sibling.Data)-len(ZWSP))
			}
		}
		return NewInline(node, true)
	}

	sibling := node.NextSibling
	if IsText(sibling) {
		if IsCaretContainerInline(sibling) {
			return sibling
		}
		if StartsWithCaretContainer(sibling) {
			dom.SplitText(sibling, len(ZWSP))
			return sibling
		}
	}
	return NewInline(node, false)
}

// NewInline inserts a new inline placeholder immediately before or after
// node, leaving adjacent markers alone. Returns nil if node is detached.
func NewInline(node *html.Node, before bool) *html.Node {
	if node == nil || node.Parent == nil {
		return nil
	}
	text := dom.NewText(ZWSP)
	if before {
		dom.InsertBefore(text, node)
	} else {
		dom.InsertAfter(text, node)
	}
	return text
}

// InsertBlock creates a block placeholder with the given tag before or after
// node. Returns nil if node is detached.
func InsertBlock(tag string, node *html.Node, before bool) *html.Node {
	if node == nil || node.Parent == nil {
		return nil
	}
	side := "after"
	if before {
		side = "before"
	}
	block := dom.NewElement(tag, AttrCaret, side, AttrBogus, "all")
	block.AppendChild(newBogusBr())
	if before {
		dom.InsertBefore(block, node)
	} else {
		dom.InsertAfter(block, node)
	}
	return block
}

func newBogusBr() *html.Node {
	return dom.NewElement("br", AttrBogus, "1")
}

// HasContent reports whether a block placeholder holds more than its bogus
// line break.
func HasContent(n *html.Node) bool {
	if n == nil || n.FirstChild == nil {
		return false
	}
	return n.FirstChild != n.LastChild || !IsBr(n.FirstChild)
}

// ShowCaretContainerBlock promotes a block placeholder to ordinary content by
// stripping its marker attributes. Promotion is one-way. Returns nil if n is
// not a block placeholder.
func ShowCaretContainerBlock(n *html.Node) *html.Node {
	if !dom.IsElement(n) || !dom.HasAttr(n, AttrCaret) {
		return nil
	}
	dom.RemoveAttr(n, AttrCaret)
	dom.RemoveAttr(n, AttrBogus)
	dom.RemoveAttr(n, "style")
	if HasContent(n) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if IsBr(c) && dom.HasAttr(c, AttrBogus) && c == n.LastChild && c != n.FirstChild {
				dom.Remove(c)
			}
			c = next
		}
	}
	return n
}

// RemoveCaretContainer removes a placeholder that holds no real content. A
// block placeholder that gained content is promoted instead. A text node
// that merged with typed text loses only its leading or trailing marker.
func RemoveCaretContainer(n *html.Node) {
	if n == nil {
		return
	}
	if dom.IsElement(n) {
		if !dom.HasAttr(n, AttrCaret) {
			return
		}
		if HasContent(n) {
			ShowCaretContainerBlock(n)
			return
		}
		dom.Remove(n)
		return
	}
	if !IsText(n) {
		return
	}
	if IsCaretContainerInline(n) {
		dom.Remove(n)
		return
	}
	TrimMarker(n)
}

// TrimMarker strips a single leading or trailing marker character from a
// text node that merged with typed content. It returns the byte index where
// the marker was removed, or -1 if nothing was trimmed.
func TrimMarker(n *html.Node) int {
	if !IsText(n) || n.Data == ZWSP {
		return -1
	}
	switch {
	case strings.HasPrefix(n.Data, ZWSP):
		n.Data = n.Data[len(ZWSP):]
		return 0
	case strings.HasSuffix(n.Data, ZWSP):
		n.Data = n.Data[:len(n.Data)-len(ZWSP)]
		return len(n.Data)
	}
	return -1
}

// TrimInlineCaretContainers removes the empty inline placeholders under root
// that owned reports, except keep, which hosts the live caret. Marker
// characters that owned does not claim are document content.
func TrimInlineCaretContainers(root, keep *html.Node, owned func(*html.Node) bool) int {
	var stale []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if n != keep && IsCaretContainerInline(n) && owned(n) {
			stale = append(stale, n)
		}
		return true
	})
	for _, n := range stale {
		dom.Remove(n)
	}
	return len(stale)
}

// SweepCaretContainerBlocks removes or promotes every block placeholder
// under root except keep.
func SweepCaretContainerBlocks(root, keep *html.Node) int {
	count := 0
	for _, n := range dom.QueryAll(root, SelectorCaretContainer) {
		if n == keep {
			continue
		}
		RemoveCaretContainer(n)
		count++
	}
	return count
}

// IsRangeInCaretContainer reports whether the start of r lies inside any
// placeholder.
func IsRangeInCaretContainer(r dom.Range) bool {
	return IsCaretContainer(r.StartContainer) || CaretContainerBlockOf(r.StartContainer) != nil
}

// ContentHTML serializes the children of root without the markup this
// package adds: bogus subtrees, the selection attribute and the inline
// placeholders that owned reports. The tree itself is not modified.
func ContentHTML(root *html.Node, owned func(*html.Node) bool) string {
	if root == nil {
		return ""
	}
	return dom.InnerHTML(contentClone(root, owned))
}

func contentClone(n *html.Node, owned func(*html.Node) bool) *html.Node {
	c := dom.Clone(n, false)
	dom.RemoveAttr(c, AttrSelected)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if IsBogusAll(child) {
			continue
		}
		if IsText(child) && owned != nil && owned(child) {
			if IsCaretContainerInline(child) {
				continue
			}
			text := dom.Clone(child, false)
			TrimMarker(text)
			c.AppendChild(text)
			continue
		}
		c.AppendChild(contentClone(child, owned))
	}
	return c
}
