package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// Range is a pair of boundary points in the document tree.
// Range is a value type; it does not track tree mutations.
type Range struct {
	StartContainer *html.Node
	StartOffset    int
	EndContainer   *html.Node
	EndOffset      int
}

// CollapsedAt returns a collapsed range at the given boundary point.
func CollapsedAt(container *html.Node, offset int) Range {
	return Range{
		StartContainer: container,
		StartOffset:    offset,
		EndContainer:   container,
		EndOffset:      offset,
	}
}

// SelectNode returns a range spanning exactly n within its parent.
// The second result is false if n is detached.
func SelectNode(n *html.Node) (Range, bool) {
	if n == nil || n.Parent == nil {
		return Range{}, false
	}
	idx := NodeIndex(n)
	return Range{
		StartContainer: n.Parent,
		StartOffset:    idx,
		EndContainer:   n.Parent,
		EndOffset:      idx + 1,
	}, true
}

// IsZero returns true if the range has no containers.
func (r Range) IsZero() bool {
	return r.StartContainer == nil && r.EndContainer == nil
}

// Collapsed returns true if start and end are the same point.
func (r Range) Collapsed() bool {
	return r.StartContainer == r.EndContainer && r.StartOffset == r.EndOffset
}

// Collapse returns the range collapsed to its start or end.
func (r Range) Collapse(toStart bool) Range {
	if toStart {
		return CollapsedAt(r.StartContainer, r.StartOffset)
	}
	return CollapsedAt(r.EndContainer, r.EndOffset)
}

// Valid reports whether both boundary points reference live containers with
// offsets inside their bounds.
func (r Range) Valid() bool {
	if r.StartContainer == nil || r.EndContainer == nil {
		return false
	}
	if r.StartOffset < 0 || r.StartOffset > NodeLen(r.StartContainer) {
		return false
	}
	if r.EndOffset < 0 || r.EndOffset > NodeLen(r.EndContainer) {
		return false
	}
	return true
}

// SelectedNode returns the single child node spanned by the range, or nil if
// the range does not wrap exactly one node.
func (r Range) SelectedNode() *html.Node {
	if r.StartContainer == nil || r.StartContainer != r.EndContainer {
		return nil
	}
	if r.StartContainer.Type != html.ElementNode && r.StartContainer.Type != html.DocumentNode {
		return nil
	}
	if r.EndOffset != r.StartOffset+1 {
		return nil
	}
	return ChildAt(r.StartContainer, r.StartOffset)
}

// Within returns true if both boundary points lie inside root.
func (r Range) Within(root *html.Node) bool {
	return Contains(root, r.StartContainer) && Contains(root, r.EndContainer)
}

// String returns a debug representation of the range.
func (r Range) String() string {
	if r.Collapsed() {
		return fmt.Sprintf("Range(%s:%d)", Describe(r.StartContainer), r.StartOffset)
	}
	return fmt.Sprintf("Range(%s:%d-%s:%d)",
		Describe(r.StartContainer), r.StartOffset,
		Describe(r.EndContainer), r.EndOffset)
}

// Describe returns a short label for n used in logs and debug output.
func Describe(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case html.TextNode:
		const maxLen = 12
		data := n.Data
		if len(data) > maxLen {
			data = data[:maxLen] + "…"
		}
		return fmt.Sprintf("#text%q", data)
	case html.ElementNode:
		return "<" + n.Data + ">"
	case html.DocumentNode:
		return "#document"
	default:
		return "#node"
	}
}
