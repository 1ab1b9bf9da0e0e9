package line

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
)

func mustBody(t *testing.T, markup string) *html.Node {
	t.Helper()
	body, err := dom.ParseBodyString(markup)
	if err != nil {
		t.Fatalf("ParseBodyString() error = %v", err)
	}
	return body
}

func TestFindClosest(t *testing.T) {
	a := Rect{Rect: geom.NewRect(0, 0, 2, 1)}
	b := Rect{Rect: geom.NewRect(4, 0, 2, 1)}
	c := Rect{Rect: geom.NewRect(10, 0, 2, 1)}

	tests := []struct {
		name  string
		rects []Rect
		x     float64
		want  Rect
	}{
		{"nearest left", []Rect{a, b, c}, 1, a},
		{"nearest right edge", []Rect{a, b, c}, 7, b},
		{"tie favors first", []Rect{a, b}, 3, a},
		{"tie favors first reversed", []Rect{b, a}, 3, b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindClosest(tt.rects, tt.x)
			if !ok {
				t.Fatal("FindClosest() found nothing")
			}
			if !got.Equal(tt.want.Rect) {
				t.Errorf("FindClosest() = %v, want %v", got.Rect, tt.want.Rect)
			}
		})
	}

	if _, ok := FindClosest(nil, 0); ok {
		t.Error("FindClosest(nil) should find nothing")
	}
}

func TestPredicates(t *testing.T) {
	rects := []Rect{{Line: 0}, {Line: 1}, {Line: 1}, {Line: 2}}
	if got := len(Filter(rects, IsLine(1))); got != 2 {
		t.Errorf("Filter(IsLine(1)) = %d rects, want 2", got)
	}
	if !IsAboveLine(1)(rects[3]) || IsAboveLine(1)(rects[2]) {
		t.Error("IsAboveLine(1) should match only line 2")
	}
}

// twoLines lays out <p>ab<img>cdef</p> with "cdef" wrapped to a second line:
//
//	ab[img]
//	cdef
func twoLines(t *testing.T) (*html.Node, *geom.Static) {
	t.Helper()
	body := mustBody(t, `<p>ab<img>cdef</p>`)
	p := body.FirstChild
	g := geom.NewStatic()
	g.SetText(p.FirstChild, 0, 0, 1, 1)
	g.Set(dom.ChildAt(p, 1), geom.NewRect(2, 0, 3, 1))
	g.SetText(p.LastChild, 0, 1, 1, 1)
	return body, g
}

func TestUpUntilFindsAtomicAbove(t *testing.T) {
	body, g := twoLines(t)
	p := body.FirstChild
	img := dom.ChildAt(p, 1)
	w := NewWalker(body, g, geom.DefaultRelation())

	rects := w.UpUntil(IsAboveLine(1), caret.NewPosition(p.LastChild, 4))
	lines := make([]int, len(rects))
	for i, r := range rects {
		lines[i] = r.Line
	}
	if diff := cmp.Diff([]int{0, 1, 1}, lines); diff != "" {
		t.Errorf("UpUntil() lines mismatch (-want +got):\n%s", diff)
	}

	closest, ok := FindClosest(Filter(rects, IsLine(1)), 4)
	if !ok || closest.Node != img {
		t.Fatalf("FindClosest() = %s, want img", dom.Describe(closest.Node))
	}
}

func TestDownUntil(t *testing.T) {
	body, g := twoLines(t)
	p := body.FirstChild
	w := NewWalker(body, g, geom.DefaultRelation())

	rects := w.DownUntil(IsAboveLine(1), caret.NewPosition(p.FirstChild, 1))
	next := Filter(rects, IsLine(1))
	if len(next) != 1 || next[0].Node != p.LastChild {
		t.Fatalf("DownUntil() line 1 = %v, want the wrapped text", next)
	}
}

func TestUpUntilWithoutGeometry(t *testing.T) {
	body := mustBody(t, `<p>ab</p>`)
	w := NewWalker(body, geom.NewStatic(), geom.DefaultRelation())
	if rects := w.UpUntil(IsAboveLine(1), caret.NewPosition(body.FirstChild.FirstChild, 1)); rects != nil {
		t.Errorf("UpUntil() = %v, want nil", rects)
	}
}

func TestPositionsUntil(t *testing.T) {
	body := mustBody(t, `<p><img>ab</p><p>cdef</p>`)
	p1, p2 := body.FirstChild, body.LastChild
	img := p1.FirstChild
	g := geom.NewStatic()
	g.Set(img, geom.NewRect(0, 0, 3, 1))
	g.SetText(p1.LastChild, 3, 0, 1, 1)
	g.SetText(p2.FirstChild, 0, 1, 1, 1)
	w := NewWalker(body, g, geom.DefaultRelation())

	rects := w.PositionsUntil(caret.Forward, IsAboveLine(1), img)
	if got := len(Filter(rects, IsLine(0))); got != 4 {
		t.Errorf("PositionsUntil() line 0 = %d positions, want 4", got)
	}
	closest, ok := FindClosest(Filter(rects, IsLine(1)), 3)
	if !ok {
		t.Fatal("PositionsUntil() found no position on line 1")
	}
	want := caret.NewPosition(p2.FirstChild, 3)
	if !closest.Position.Equal(want) {
		t.Errorf("closest position = %v, want %v", closest.Position, want)
	}
}

func TestClosestCaret(t *testing.T) {
	body := mustBody(t, `<p>ab<img>cd</p>`)
	p := body.FirstChild
	img := dom.ChildAt(p, 1)
	g := geom.NewStatic()
	g.SetText(p.FirstChild, 0, 0, 1, 1)
	g.Set(img, geom.NewRect(2, 0, 3, 1))
	g.SetText(p.LastChild, 5, 0, 1, 1)
	w := NewWalker(body, g, geom.DefaultRelation())

	tests := []struct {
		name       string
		x, y       float64
		wantFound  bool
		wantBefore bool
	}{
		{"near left edge", 2.4, 0.5, true, true},
		{"near right edge", 4.5, 0.5, true, false},
		{"text is closer", 6.5, 0.5, false, false},
		{"off the line", 3, 5, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := w.ClosestCaret(tt.x, tt.y)
			if ok != tt.wantFound {
				t.Fatalf("ClosestCaret() found = %v, want %v", ok, tt.wantFound)
			}
			if !ok {
				return
			}
			if info.Node != img {
				t.Errorf("ClosestCaret().Node = %s, want img", dom.Describe(info.Node))
			}
			if info.Before != tt.wantBefore {
				t.Errorf("ClosestCaret().Before = %v, want %v", info.Before, tt.wantBefore)
			}
		})
	}
}

func TestFakeCaretTargets(t *testing.T) {
	body := mustBody(t, `<p><img id="a"><span contenteditable="false"><img id="nested"></span></p>`+
		`<div data-mce-bogus="all"><img id="bogus"></div><hr>`)
	targets := FakeCaretTargets(body)
	var got []string
	for _, n := range targets {
		got = append(got, dom.Describe(n))
	}
	if len(targets) != 3 {
		t.Fatalf("FakeCaretTargets() = %v, want img, span and hr", got)
	}
	if targets[1].Data != "span" || targets[2].Data != "hr" {
		t.Errorf("FakeCaretTargets() = %v, want img, span and hr", got)
	}
}

func TestNewWalkerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewWalker(nil) should panic")
		}
	}()
	NewWalker(nil, geom.NewStatic(), geom.DefaultRelation())
}
