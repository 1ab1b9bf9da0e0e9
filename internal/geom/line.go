package geom

import "math"

// DefaultTolerance is the overlap ratio above which two rects are considered
// to share a line.
const DefaultTolerance = 0.5

// Relation compares rects by visual line. Tolerance is the fraction of the
// smaller rect's height that the vertical overlap must exceed for the rects
// to be on the same line.
type Relation struct {
	Tolerance float64
}

// DefaultRelation returns a relation using DefaultTolerance.
func DefaultRelation() Relation {
	return Relation{Tolerance: DefaultTolerance}
}

func (rel Relation) tolerance() float64 {
	if rel.Tolerance <= 0 || rel.Tolerance > 1 {
		return DefaultTolerance
	}
	return rel.Tolerance
}

// Overlap returns the vertical overlap of a and b. Negative values are gaps.
func Overlap(a, b Rect) float64 {
	return math.Min(a.Bottom, b.Bottom) - math.Max(a.Top, b.Top)
}

// SameLine reports whether a and b are on the same visual line.
func (rel Relation) SameLine(a, b Rect) bool {
	minHeight := math.Min(a.Height(), b.Height())
	if minHeight <= 0 {
		return Overlap(a, b) >= 0 && a.Top == b.Top
	}
	return Overlap(a, b) > minHeight*rel.tolerance()
}

// IsAbove reports whether a lies on a line above b.
func (rel Relation) IsAbove(a, b Rect) bool {
	if rel.SameLine(a, b) {
		return false
	}
	return centerY(a) < centerY(b)
}

// IsBelow reports whether a lies on a line below b.
func (rel Relation) IsBelow(a, b Rect) bool {
	if rel.SameLine(a, b) {
		return false
	}
	return centerY(a) > centerY(b)
}

// Compare orders rects by line, then by left edge. It returns -1, 0 or 1.
func (rel Relation) Compare(a, b Rect) int {
	switch {
	case rel.IsAbove(a, b):
		return -1
	case rel.IsBelow(a, b):
		return 1
	case a.Left < b.Left:
		return -1
	case a.Left > b.Left:
		return 1
	default:
		return 0
	}
}

func centerY(r Rect) float64 {
	return r.Top + r.Height()/2
}
