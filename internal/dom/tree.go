package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IsText returns true if n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsElement returns true if n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsTag returns true if n is an element with one of the given tag names.
func IsTag(n *html.Node, tags ...string) bool {
	if !IsElement(n) {
		return false
	}
	for _, t := range tags {
		if strings.EqualFold(n.Data, t) {
			return true
		}
	}
	return false
}

// NodeIndex returns the index of n among its siblings, or -1 if detached.
func NodeIndex(n *html.Node) int {
	if n == nil || n.Parent == nil {
		return -1
	}
	idx := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return idx
		}
		idx++
	}
	return -1
}

// ChildAt returns the child of parent at index i, or nil if out of range.
func ChildAt(parent *html.Node, i int) *html.Node {
	if parent == nil || i < 0 {
		return nil
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if i == 0 {
			return c
		}
		i--
	}
	return nil
}

// ChildCount returns the number of children of n.
func ChildCount(n *html.Node) int {
	if n == nil {
		return 0
	}
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Children returns a snapshot of the children of n.
func Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// NodeLen returns the maximum legal offset inside n: the byte length of a
// text node, or the child count of any other node.
func NodeLen(n *html.Node) int {
	if n == nil {
		return 0
	}
	if n.Type == html.TextNode {
		return len(n.Data)
	}
	return ChildCount(n)
}

// Contains returns true if n is ancestor or one of its descendants.
func Contains(ancestor, n *html.Node) bool {
	if ancestor == nil {
		return false
	}
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// IsAttached returns true if n is still part of the tree under root.
func IsAttached(root, n *html.Node) bool {
	return Contains(root, n)
}

// Parents returns n and its ancestors up to, but excluding, root.
// The result is ordered from n outwards. If n is not inside root the
// ancestor chain up to the document is returned.
func Parents(n, root *html.Node) []*html.Node {
	var out []*html.Node
	for ; n != nil && n != root; n = n.Parent {
		out = append(out, n)
	}
	return out
}

// Closest returns the nearest node from n upwards (inclusive) that satisfies
// pred, stopping before root.
func Closest(n, root *html.Node, pred func(*html.Node) bool) *html.Node {
	for ; n != nil && n != root; n = n.Parent {
		if pred(n) {
			return n
		}
	}
	return nil
}

// Detach removes n from its parent if it has one.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Remove is an alias for Detach kept for readability at call sites that
// delete content rather than move it.
func Remove(n *html.Node) {
	Detach(n)
}

// InsertBefore inserts n as the previous sibling of ref, detaching n first.
// Returns false if ref is detached.
func InsertBefore(n, ref *html.Node) bool {
	if n == nil || ref == nil || ref.Parent == nil || n == ref {
		return false
	}
	Detach(n)
	ref.Parent.InsertBefore(n, ref)
	return true
}

// InsertAfter inserts n as the next sibling of ref, detaching n first.
// Returns false if ref is detached.
func InsertAfter(n, ref *html.Node) bool {
	if n == nil || ref == nil || ref.Parent == nil || n == ref {
		return false
	}
	Detach(n)
	ref.Parent.InsertBefore(n, ref.NextSibling)
	return true
}

// AppendChild appends n to parent, detaching n first.
func AppendChild(parent, n *html.Node) {
	if parent == nil || n == nil {
		return
	}
	Detach(n)
	parent.AppendChild(n)
}

// InsertAt inserts n into parent at child index i. Indexes past the end
// append.
func InsertAt(parent, n *html.Node, i int) {
	if parent == nil || n == nil {
		return
	}
	Detach(n)
	parent.InsertBefore(n, ChildAt(parent, i))
}

// MoveChildren moves every child of from to the end of to.
func MoveChildren(from, to *html.Node) {
	if from == nil || to == nil {
		return
	}
	for c := from.FirstChild; c != nil; c = from.FirstChild {
		from.RemoveChild(c)
		to.AppendChild(c)
	}
}

// Empty removes every child of n.
func Empty(n *html.Node) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// SplitText splits text node n at byte offset into two siblings and returns
// the new node holding the tail. Returns nil if n is not a text node or the
// offset is out of range.
func SplitText(n *html.Node, offset int) *html.Node {
	if !IsText(n) || offset < 0 || offset > len(n.Data) {
		return nil
	}
	tail := NewText(n.Data[offset:])
	n.Data = n.Data[:offset]
	if n.Parent != nil {
		n.Parent.InsertBefore(tail, n.NextSibling)
	}
	return tail
}

// NewText creates a detached text node.
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// NewElement creates a detached element node with the given attributes
// given as key, value pairs.
func NewElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     strings.ToLower(tag),
		DataAtom: atom.Lookup([]byte(strings.ToLower(tag))),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		SetAttr(n, attrs[i], attrs[i+1])
	}
	return n
}

// Clone returns a detached copy of n. A deep clone copies the whole subtree.
func Clone(n *html.Node, deep bool) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	if deep {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			c.AppendChild(Clone(child, true))
		}
	}
	return c
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if !IsElement(n) {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrValue returns the value of attribute key on n, or "" if absent.
func AttrValue(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// HasAttr returns true if n carries attribute key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets attribute key on n, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	if !IsElement(n) {
		return
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: strings.ToLower(key), Val: val})
}

// RemoveAttr removes attribute key from n.
func RemoveAttr(n *html.Node, key string) {
	if !IsElement(n) {
		return
	}
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Walk visits n and its descendants in document order until fn returns
// false.
func Walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !Walk(c, fn) {
			return false
		}
		c = next
	}
	return true
}

// ComparePoints orders two boundary points in document order. It returns
// -1, 0 or 1. Points in different trees compare as 0.
func ComparePoints(aNode *html.Node, aOffset int, bNode *html.Node, bOffset int) int {
	if aNode == bNode {
		switch {
		case aOffset < bOffset:
			return -1
		case aOffset > bOffset:
			return 1
		default:
			return 0
		}
	}

	// b inside a: compare a's offset with the index of b's ancestor child of a.
	if child := childContaining(aNode, bNode); child != nil {
		if aOffset <= NodeIndex(child) {
			return -1
		}
		return 1
	}
	if child := childContaining(bNode, aNode); child != nil {
		if bOffset <= NodeIndex(child) {
			return 1
		}
		return -1
	}

	aPath := pathFromRoot(aNode)
	bPath := pathFromRoot(bNode)
	if len(aPath) == 0 || len(bPath) == 0 || aPath[0] != bPath[0] {
		return 0
	}
	i := 0
	for i < len(aPath) && i < len(bPath) && aPath[i] == bPath[i] {
		i++
	}
	if NodeIndex(aPath[i]) < NodeIndex(bPath[i]) {
		return -1
	}
	return 1
}

// childContaining returns the child of ancestor that contains n, or nil.
func childContaining(ancestor, n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Parent == ancestor {
			return n
		}
	}
	return nil
}

func pathFromRoot(n *html.Node) []*html.Node {
	var path []*html.Node
	for ; n != nil; n = n.Parent {
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
