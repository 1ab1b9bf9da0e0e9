package caret

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/caretkit/internal/dom"
)

// Reserved markers. They must not collide with user content.
const (
	// ZWSP is the zero-width marker character of inline caret containers.
	ZWSP = "\u200b"

	// AttrCaret marks a block caret container; its value is "before" or "after".
	AttrCaret = "data-mce-caret"

	// AttrBogus marks nodes that are never part of real content.
	AttrBogus = "data-mce-bogus"

	// AttrSelected marks the atomic node that is currently object-selected.
	AttrSelected = "data-mce-selected"

	// AttrContentEditable is the non-editable marker attribute.
	AttrContentEditable = "contenteditable"
)

// Selectors for the reserved markers.
const (
	SelectorCaretContainer = "[" + AttrCaret + "]"
	SelectorBogusAll       = "[" + AttrBogus + "=all]"
	SelectorSelected       = "[" + AttrSelected + "]"
)

var atomicInlineTags = map[atom.Atom]bool{
	atom.Img:      true,
	atom.Input:    true,
	atom.Textarea: true,
	atom.Hr:       true,
	atom.Iframe:   true,
	atom.Video:    true,
	atom.Audio:    true,
	atom.Object:   true,
}

var invalidTextParents = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Textarea: true,
}

var blockTags = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Body:       true,
	atom.Dd:         true,
	atom.Div:        true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Fieldset:   true,
	atom.Figcaption: true,
	atom.Figure:     true,
	atom.Footer:     true,
	atom.Form:       true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Header:     true,
	atom.Hr:         true,
	atom.Li:         true,
	atom.Main:       true,
	atom.Nav:        true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Table:      true,
	atom.Tbody:      true,
	atom.Td:         true,
	atom.Tfoot:      true,
	atom.Th:         true,
	atom.Thead:      true,
	atom.Tr:         true,
	atom.Ul:         true,
}

var textBlockTags = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Div:        true,
	atom.Figure:     true,
	atom.Footer:     true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Header:     true,
	atom.Nav:        true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
}

func tagAtom(n *html.Node) atom.Atom {
	if n.DataAtom != 0 {
		return n.DataAtom
	}
	return atom.Lookup([]byte(strings.ToLower(n.Data)))
}

// IsText returns true for text nodes.
func IsText(n *html.Node) bool {
	return dom.IsText(n)
}

// IsBr returns true for <br> elements.
func IsBr(n *html.Node) bool {
	return dom.IsElement(n) && tagAtom(n) == atom.Br
}

// IsBlock returns true for block-level elements. Inline elements carrying a
// data-block attribute count as blocks too.
func IsBlock(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	if blockTags[tagAtom(n)] {
		return true
	}
	return dom.HasAttr(n, "data-block")
}

// IsTextBlock returns true for blocks whose children are inline content.
func IsTextBlock(n *html.Node) bool {
	return dom.IsElement(n) && textBlockTags[tagAtom(n)]
}

// IsContentEditableFalse returns true for elements marked non-editable.
func IsContentEditableFalse(n *html.Node) bool {
	v, ok := dom.Attr(n, AttrContentEditable)
	return ok && strings.EqualFold(strings.TrimSpace(v), "false")
}

// IsContentEditableTrue returns true for elements explicitly marked editable.
func IsContentEditableTrue(n *html.Node) bool {
	v, ok := dom.Attr(n, AttrContentEditable)
	if !ok {
		return false
	}
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || v == "true"
}

// IsBogusAll returns true for elements that are entirely excluded from
// content, such as block caret containers, the visual caret and the
// selection mirror.
func IsBogusAll(n *html.Node) bool {
	return dom.Matches(n, SelectorBogusAll)
}

// IsAtomicInlineElement returns true for replaced inline elements.
func IsAtomicInlineElement(n *html.Node) bool {
	return dom.IsElement(n) && atomicInlineTags[tagAtom(n)]
}

// IsAtomicContentEditableFalse returns true for non-editable elements that
// contain no nested editable region.
func IsAtomicContentEditableFalse(n *html.Node) bool {
	if !IsContentEditableFalse(n) {
		return false
	}
	editable := false
	dom.Walk(n, func(c *html.Node) bool {
		if c != n && IsContentEditableTrue(c) {
			editable = true
			return false
		}
		return true
	})
	return !editable
}

// IsAtomic returns true for nodes the caret may never enter.
func IsAtomic(n *html.Node) bool {
	return IsAtomicInlineElement(n) || IsAtomicContentEditableFalse(n)
}

// isOpaque reports whether tree walks must not descend into n.
func isOpaque(n *html.Node) bool {
	return IsAtomic(n) || IsBogusAll(n)
}

// insideExcluded reports whether n lies inside a bogus subtree or a block
// caret container, where no caret candidate may live.
func insideExcluded(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if IsBogusAll(p) || dom.Matches(p, SelectorCaretContainer) {
			return true
		}
	}
	return false
}

// IsCaretCandidate returns true for nodes that can anchor a caret: text
// nodes with content, atomic nodes as a whole, <br> markers, tables and
// non-editable hosts. Malformed or detached nodes are never candidates.
func IsCaretCandidate(n *html.Node) bool {
	if n == nil || n.Parent == nil {
		return false
	}
	if IsCaretContainer(n) || insideExcluded(n) {
		return false
	}
	if IsText(n) {
		if n.Data == "" {
			return false
		}
		if dom.IsElement(n.Parent) && invalidTextParents[tagAtom(n.Parent)] {
			return false
		}
		return true
	}
	if !dom.IsElement(n) || IsBogusAll(n) {
		return false
	}
	return IsAtomic(n) || IsBr(n) || tagAtom(n) == atom.Table || IsContentEditableFalse(n)
}

// IsInEditable reports whether n sits in an editable part of root: the
// nearest ancestor carrying a contenteditable flag must not be false.
func IsInEditable(n, root *html.Node) bool {
	if n == nil {
		return false
	}
	for p := n.Parent; p != nil && p != root; p = p.Parent {
		if IsContentEditableFalse(p) {
			return false
		}
		if IsContentEditableTrue(p) {
			return true
		}
	}
	return true
}

// IsEditableCaretCandidate combines IsCaretCandidate and IsInEditable.
func IsEditableCaretCandidate(n, root *html.Node) bool {
	return IsCaretCandidate(n) && IsInEditable(n, root)
}

// AtomicRoot returns the outermost atomic or non-editable ancestor of n
// (inclusive) below root, or nil.
func AtomicRoot(n, root *html.Node) *html.Node {
	var found *html.Node
	for p := n; p != nil && p != root; p = p.Parent {
		if IsAtomic(p) || IsContentEditableFalse(p) {
			found = p
		}
	}
	return found
}

// ParentBlock returns the nearest block ancestor of n (inclusive) below
// root, or root itself.
func ParentBlock(n, root *html.Node) *html.Node {
	for p := n; p != nil && p != root; p = p.Parent {
		if IsBlock(p) {
			return p
		}
	}
	return root
}
