// Package geom provides client rectangles and the line relations used for
// vertical caret navigation.
package geom

import (
	"fmt"
	"math"

	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/dom"
)

// Rect is an axis-aligned client rectangle.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// NewRect creates a rect from origin and size.
func NewRect(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Right: left + width, Bottom: top + height}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// IsEmpty returns true for rects with no area and no height. A zero-width
// rect with height is a valid caret rect.
func (r Rect) IsEmpty() bool {
	return r.Height() <= 0
}

// Collapse returns a zero-width rect at the left edge (toStart) or right
// edge of r.
func (r Rect) Collapse(toStart bool) Rect {
	if toStart {
		r.Right = r.Left
	} else {
		r.Left = r.Right
	}
	return r
}

// Equal returns true if both rects have the same edges.
func (r Rect) Equal(other Rect) bool {
	return r == other
}

// ContainsXY returns true if the point lies inside r, edges included.
func (r Rect) ContainsXY(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// DistanceX returns the smaller horizontal distance from x to either
// vertical edge of r.
func (r Rect) DistanceX(x float64) float64 {
	return math.Min(math.Abs(r.Left-x), math.Abs(r.Right-x))
}

// String returns a debug representation.
func (r Rect) String() string {
	return fmt.Sprintf("Rect(%g,%g %gx%g)", r.Left, r.Top, r.Width(), r.Height())
}

// Provider resolves client rectangles for nodes and ranges. It abstracts the
// rendering engine so line logic can run against synthetic rects.
type Provider interface {
	// NodeRects returns the bounding boxes of n, one per rendered fragment.
	NodeRects(n *html.Node) []Rect

	// RangeRects returns the client rects of a range. For a collapsed range
	// in a text node this is a zero-width caret rect.
	RangeRects(r dom.Range) []Rect
}

// Last returns the last rect of rects.
func Last(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	return rects[len(rects)-1], true
}

// NonEmpty filters out rects without geometry.
func NonEmpty(rects []Rect) []Rect {
	out := rects[:0:0]
	for _, r := range rects {
		if !r.IsEmpty() {
			out = append(out, r)
		}
	}
	return out
}
