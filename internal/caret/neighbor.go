package caret

import (
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/dom"
)

// BeforeAtomic returns the atomic node that p sits immediately before, or
// nil. A position inside an inline placeholder counts as sitting where the
// placeholder is.
func BeforeAtomic(p Position) *html.Node {
	if p.IsZero() {
		return nil
	}
	if IsCaretContainerInline(p.container) {
		return atomicOrNil(skipMarkers(p.container.NextSibling, true))
	}
	if block := CaretContainerBlockOf(p.container); block != nil {
		if dom.AttrValue(block, AttrCaret) == "before" {
			return atomicOrNil(block.NextSibling)
		}
		return nil
	}
	if IsText(p.container) {
		return nil
	}
	return atomicOrNil(skipMarkers(dom.ChildAt(p.container, p.offset), true))
}

// AfterAtomic returns the atomic node that p sits immediately after, or nil.
func AfterAtomic(p Position) *html.Node {
	if p.IsZero() {
		return nil
	}
	if IsCaretContainerInline(p.container) {
		return atomicOrNil(skipMarkers(p.container.PrevSibling, false))
	}
	if block := CaretContainerBlockOf(p.container); block != nil {
		if dom.AttrValue(block, AttrCaret) == "after" {
			return atomicOrNil(block.PrevSibling)
		}
		return nil
	}
	if IsText(p.container) {
		return nil
	}
	return atomicOrNil(skipMarkers(dom.ChildAt(p.container, p.offset-1), false))
}

// IsAtomicBoundary reports whether p sits directly next to an atomic node.
func IsAtomicBoundary(p Position) bool {
	return BeforeAtomic(p) != nil || AfterAtomic(p) != nil
}

func skipMarkers(n *html.Node, forward bool) *html.Node {
	for n != nil && IsCaretContainerInline(n) {
		if forward {
			n = n.NextSibling
		} else {
			n = n.PrevSibling
		}
	}
	return n
}

func atomicOrNil(n *html.Node) *html.Node {
	if n != nil && IsAtomic(n) {
		return n
	}
	return nil
}

// Normalize resolves a position inside a placeholder to the element boundary
// the placeholder stands for. A block placeholder inserted before a node
// resolves to the edge of that node, so the placeholder itself is skipped.
// Other positions are returned unchanged.
func Normalize(p Position) Position {
	if block := CaretContainerBlockOf(p.container); block != nil {
		if dom.AttrValue(block, AttrCaret) == "before" {
			return After(block)
		}
		return Before(block)
	}
	if IsCaretContainerInline(p.container) {
		if atomic := atomicOrNil(skipMarkers(p.container.NextSibling, true)); atomic != nil {
			return Before(atomic)
		}
		return After(p.container)
	}
	return p
}
