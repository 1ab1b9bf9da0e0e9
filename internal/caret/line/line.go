// Package line walks caret candidates by visual line for vertical caret
// navigation and mouse snapping.
//
// Lines are relative: line 0 is the line of the starting position and line
// 1 the next line in the walk direction. Grouping uses only the geometry
// reported by a geom.Provider, so it works the same against a real layout
// engine and against synthetic rects.
package line

import (
	"math"

	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
)

// Rect is a client rect found during a line walk.
type Rect struct {
	geom.Rect

	// Line is the relative line ordinal; 0 is the starting line.
	Line int

	// Node is the caret candidate the rect belongs to.
	Node *html.Node

	// Position is set for rects produced by PositionsUntil.
	Position caret.Position
}

// Predicate decides whether a walk stops at a rect.
type Predicate func(Rect) bool

// IsAboveLine returns a predicate matching rects beyond line n.
func IsAboveLine(n int) Predicate {
	return func(r Rect) bool { return r.Line > n }
}

// IsLine returns a predicate matching rects on line n.
func IsLine(n int) Predicate {
	return func(r Rect) bool { return r.Line == n }
}

// Filter returns the rects matching pred.
func Filter(rects []Rect, pred Predicate) []Rect {
	var out []Rect
	for _, r := range rects {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// FindClosest returns the rect with the smallest horizontal distance to x.
// On a tie the rect found first wins.
func FindClosest(rects []Rect, x float64) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	best := rects[0]
	bestDist := best.DistanceX(x)
	for _, r := range rects[1:] {
		if d := r.DistanceX(x); d < bestDist {
			best, bestDist = r, d
		}
	}
	return best, true
}

// Walker groups caret candidates under a root into visual lines.
type Walker struct {
	root     *html.Node
	geometry geom.Provider
	relation geom.Relation
}

// NewWalker creates a line walker. A nil root or provider is a programming
// error and panics.
func NewWalker(root *html.Node, g geom.Provider, rel geom.Relation) *Walker {
	if root == nil || g == nil {
		panic("line: walker requires a root and a geometry provider")
	}
	return &Walker{root: root, geometry: g, relation: rel}
}

// UpUntil collects candidate rects on the lines above pos, nearest first,
// until stop matches.
func (w *Walker) UpUntil(stop Predicate, pos caret.Position) []Rect {
	return w.walkUntil(caret.Backward, w.relation.IsAbove, w.relation.IsBelow, stop, pos)
}

// DownUntil collects candidate rects on the lines below pos, nearest first,
// until stop matches.
func (w *Walker) DownUntil(stop Predicate, pos caret.Position) []Rect {
	return w.walkUntil(caret.Forward, w.relation.IsBelow, w.relation.IsAbove, stop, pos)
}

func (w *Walker) walkUntil(dir caret.Direction, beyond, behind func(a, b geom.Rect) bool, stop Predicate, pos caret.Position) []Rect {
	target, ok := geom.Last(pos.ClientRects(w.geometry))
	if !ok {
		return nil
	}

	var result []Rect
	line := 0
	add := func(n *html.Node) bool {
		rects := w.geometry.NodeRects(n)
		if !dir.IsForward() {
			rects = reversed(rects)
		}
		for _, r := range rects {
			if r.IsEmpty() || behind(r, target) {
				continue
			}
			if beyond(r, lastOr(result, target)) {
				line++
			}
			lr := Rect{Rect: r, Line: line, Node: n}
			if stop(lr) {
				return true
			}
			result = append(result, lr)
		}
		return false
	}

	start := pos.Node(!dir.IsForward())
	if start == nil {
		return nil
	}
	if caret.IsEditableCaretCandidate(start, w.root) && add(start) {
		return result
	}
	w.findUntil(dir, start, add)
	return result
}

// findUntil visits editable caret candidates after (or before) n until fn
// returns true.
func (w *Walker) findUntil(dir caret.Direction, n *html.Node, fn func(*html.Node) bool) {
	pred := func(c *html.Node) bool { return caret.IsEditableCaretCandidate(c, w.root) }
	for {
		n = caret.FindNode(n, dir, pred, w.root)
		if n == nil || fn(n) {
			return
		}
	}
}

// PositionsUntil walks visible caret positions starting at the outer edge of
// node: after it when walking forward, before it when walking backward.
// It is used when the caret is at an atomic node, which has no interior
// position to seed from.
func (w *Walker) PositionsUntil(dir caret.Direction, stop Predicate, node *html.Node) []Rect {
	if dir.IsForward() {
		return w.PositionsFrom(dir, stop, caret.After(node))
	}
	return w.PositionsFrom(dir, stop, caret.Before(node))
}

// PositionsFrom walks visible caret positions from pos in dir, grouping
// them into lines relative to pos, until stop matches.
func (w *Walker) PositionsFrom(dir caret.Direction, stop Predicate, pos caret.Position) []Rect {
	if pos.IsZero() {
		return nil
	}
	beyond, behind := w.relation.IsBelow, w.relation.IsAbove
	if !dir.IsForward() {
		beyond, behind = w.relation.IsAbove, w.relation.IsBelow
	}

	target, ok := geom.Last(pos.ClientRects(w.geometry))
	if !ok {
		return nil
	}

	walker := caret.NewWalker(w.root)
	var result []Rect
	line := 0
	for ok {
		if pos.IsVisible(w.geometry, nil) {
			r, _ := geom.Last(pos.ClientRects(w.geometry))
			if !behind(r, target) {
				if beyond(r, lastOr(result, target)) {
					line++
				}
				lr := Rect{Rect: r, Line: line, Node: pos.Node(!dir.IsForward()), Position: pos}
				if stop(lr) {
					return result
				}
				result = append(result, lr)
			}
		}
		pos, ok = walker.Step(dir, pos)
	}
	return result
}

// CaretInfo is the result of a mouse snap: the atomic node to place a caret
// next to and which side of it.
type CaretInfo struct {
	Node     *html.Node
	Before   bool
	Distance float64
}

// ClosestCaret finds the atomic node boundary nearest to the point (x, y).
// Only atomic nodes whose rects span y are considered; the hit is then
// refined against every candidate on the same line, so a closer text
// candidate wins over a farther atomic node.
func (w *Walker) ClosestCaret(x, y float64) (CaretInfo, bool) {
	var candidates []Rect
	for _, n := range FakeCaretTargets(w.root) {
		for _, r := range w.geometry.NodeRects(n) {
			if y >= r.Top && y <= r.Bottom {
				candidates = append(candidates, Rect{Rect: r, Node: n})
			}
		}
	}
	closest, ok := FindClosest(candidates, x)
	if !ok {
		return CaretInfo{}, false
	}
	closest, ok = FindClosest(w.lineNodeRects(closest), x)
	if !ok || !caret.IsAtomic(closest.Node) {
		return CaretInfo{}, false
	}
	return CaretInfo{
		Node:     closest.Node,
		Before:   math.Abs(x-closest.Left) < math.Abs(x-closest.Right),
		Distance: closest.DistanceX(x),
	}, true
}

// lineNodeRects collects the rects of candidates on the same line as
// target, walking outwards from target's node in both directions until a
// candidate has nothing on that line.
func (w *Walker) lineNodeRects(target Rect) []Rect {
	rects := []Rect{target}
	collect := func(off func(a, b geom.Rect) bool) func(*html.Node) bool {
		return func(n *html.Node) bool {
			found := 0
			for _, r := range w.geometry.NodeRects(n) {
				if r.IsEmpty() || off(r, target.Rect) {
					continue
				}
				rects = append(rects, Rect{Rect: r, Node: n})
				found++
			}
			return found == 0
		}
	}
	w.findUntil(caret.Backward, target.Node, collect(w.relation.IsAbove))
	w.findUntil(caret.Forward, target.Node, collect(w.relation.IsBelow))
	return rects
}

// FakeCaretTargets returns the atomic nodes under root in document order.
// Atomic nodes nested in other atomic nodes and nodes inside bogus subtrees
// are skipped.
func FakeCaretTargets(root *html.Node) []*html.Node {
	var out []*html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !dom.IsElement(c) || caret.IsBogusAll(c) {
				continue
			}
			if caret.IsAtomic(c) {
				out = append(out, c)
				continue
			}
			visit(c)
		}
	}
	if root != nil {
		visit(root)
	}
	return out
}

// lastOr returns the last collected rect, or fallback when none has been
// collected yet.
func lastOr(rects []Rect, fallback geom.Rect) geom.Rect {
	if len(rects) == 0 {
		return fallback
	}
	return rects[len(rects)-1].Rect
}

func reversed(rects []geom.Rect) []geom.Rect {
	out := make([]geom.Rect, len(rects))
	for i, r := range rects {
		out[len(rects)-1-i] = r
	}
	return out
}
