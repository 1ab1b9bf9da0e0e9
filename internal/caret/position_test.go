package caret

import (
	"testing"

	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
)

func TestNewPositionClamps(t *testing.T) {
	body := mustBody(t, `<p>abc</p>`)
	text := body.FirstChild.FirstChild

	if got := NewPosition(text, -4).Offset(); got != 0 {
		t.Errorf("NewPosition(-4).Offset() = %d, want 0", got)
	}
	if got := NewPosition(text, 10).Offset(); got != 3 {
		t.Errorf("NewPosition(10).Offset() = %d, want 3", got)
	}
	if !NewPosition(nil, 0).IsZero() {
		t.Error("NewPosition(nil) should be zero")
	}
}

func TestBeforeAfter(t *testing.T) {
	body := mustBody(t, `<p>ab<img>cd</p>`)
	p := body.FirstChild
	img := mustQuery(t, body, "img")

	before, after := Before(img), After(img)
	if before.Container() != p || before.Offset() != 1 {
		t.Errorf("Before(img) = %v, want (p, 1)", before)
	}
	if after.Container() != p || after.Offset() != 2 {
		t.Errorf("After(img) = %v, want (p, 2)", after)
	}
	if before.Node(false) != img || after.Node(true) != img {
		t.Error("Node() should resolve to img on both sides")
	}
	if before.Compare(after) != -1 {
		t.Errorf("Compare() = %d, want -1", before.Compare(after))
	}
	if !Before(dom.NewElement("img")).IsZero() {
		t.Error("Before() of detached node should be zero")
	}
}

func TestPositionClientRects(t *testing.T) {
	body := mustBody(t, `<p>ab<img>cd</p>`)
	p := body.FirstChild
	img := mustQuery(t, body, "img")

	g := geom.NewStatic()
	g.SetText(p.FirstChild, 0, 0, 1, 1)
	g.Set(img, geom.NewRect(2, 0, 3, 1))
	g.SetText(p.LastChild, 5, 0, 1, 1)

	rects := Before(img).ClientRects(g)
	if len(rects) != 2 {
		t.Fatalf("ClientRects() = %d rects, want 2", len(rects))
	}
	if rects[1].Left != 2 || rects[1].Width() != 0 {
		t.Errorf("ClientRects()[1] = %v, want collapsed left edge of img", rects[1])
	}

	rects = NewPosition(p.LastChild, 1).ClientRects(g)
	if len(rects) != 1 || rects[0].Left != 6 {
		t.Errorf("ClientRects(text) = %v, want one rect at 6", rects)
	}
}

func TestPositionIsVisible(t *testing.T) {
	body := mustBody(t, `<p><img></p>`)
	img := mustQuery(t, body, "img")
	marker := InsertInline(img, true)

	g := geom.NewStatic()
	g.Set(img, geom.NewRect(0, 0, 3, 1))
	g.SetText(marker, 0, 0, 0, 1)

	pos := NewPosition(marker, 1)
	if pos.IsVisible(g, nil) {
		t.Error("position in an inactive placeholder should be hidden")
	}
	if !pos.IsVisible(g, marker) {
		t.Error("position in the active placeholder should be visible")
	}
	if NewPosition(body.FirstChild, 0).IsVisible(geom.NewStatic(), nil) {
		t.Error("position without geometry should be hidden")
	}
}
