package layout

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

func rect(left, top, right, bottom float64) geom.Rect {
	return geom.Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

func TestBlocksStack(t *testing.T) {
	body := mustBody(t, `<p>ab</p><p></p><p>c<br></p>`)
	e := New(body, Config{Width: 10, AtomicWidth: 3})
	ps := dom.QueryAll(body, "p")

	want := [][]geom.Rect{
		{rect(0, 0, 10, 1)},
		{rect(0, 1, 10, 2)},
		{rect(0, 2, 10, 3)},
	}
	for i, p := range ps {
		if diff := cmp.Diff(want[i], e.NodeRects(p)); diff != "" {
			t.Errorf("NodeRects(p[%d]) mismatch (-want +got):\n%s", i, diff)
		}
	}
	if got := e.Height(); got != 3 {
		t.Errorf("Height() = %d, want 3", got)
	}
}

func TestTextCarets(t *testing.T) {
	body := mustBody(t, `<p>ab<img width="2">cd</p>`)
	e := New(body, DefaultConfig())
	p := dom.QueryFirst(body, "p")
	ab, img, cd := p.FirstChild, dom.ChildAt(p, 1), p.LastChild

	tests := []struct {
		name string
		r    dom.Range
		want []geom.Rect
	}{
		{"text start", dom.CollapsedAt(ab, 0), []geom.Rect{rect(0, 0, 0, 1)}},
		{"text end", dom.CollapsedAt(ab, 2), []geom.Rect{rect(2, 0, 2, 1)}},
		{"before image", dom.CollapsedAt(p, 1), []geom.Rect{rect(2, 0, 2, 1)}},
		{"after image", dom.CollapsedAt(p, 2), []geom.Rect{rect(4, 0, 4, 1)}},
		{"after text", dom.CollapsedAt(cd, 1), []geom.Rect{rect(5, 0, 5, 1)}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, e.RangeRects(tt.r)); diff != "" {
			t.Errorf("%s: RangeRects() mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
	if diff := cmp.Diff([]geom.Rect{rect(2, 0, 4, 1)}, e.NodeRects(img)); diff != "" {
		t.Errorf("NodeRects(img) mismatch (-want +got):\n%s", diff)
	}
}

func TestWordWrap(t *testing.T) {
	body := mustBody(t, `<p>aaa bbb ccc</p>`)
	e := New(body, Config{Width: 8, AtomicWidth: 3})
	text := dom.QueryFirst(body, "p").FirstChild

	want := []geom.Rect{rect(0, 0, 8, 1), rect(0, 1, 3, 2)}
	if diff := cmp.Diff(want, e.NodeRects(text)); diff != "" {
		t.Errorf("NodeRects(text) mismatch (-want +got):\n%s", diff)
	}
	if got := e.RangeRects(dom.CollapsedAt(text, 8)); len(got) != 1 || got[0].Top != 1 || got[0].Left != 0 {
		t.Errorf("RangeRects(offset 8) = %v, want start of line 1", got)
	}
}

func TestZeroWidthMarker(t *testing.T) {
	body := mustBody(t, "<p>a\u200b<img>b</p>")
	e := New(body, DefaultConfig())
	marker := dom.QueryFirst(body, "p").FirstChild
	// "a" and the marker share one text node here.
	if got := e.RangeRects(dom.CollapsedAt(marker, len(marker.Data))); len(got) != 1 || got[0].Left != 1 {
		t.Errorf("RangeRects(after marker) = %v, want column 1", got)
	}
}

func TestBogusNodesTakeNoSpace(t *testing.T) {
	body := mustBody(t, `<p>a</p><div data-mce-bogus="all">hidden</div><p>b</p>`)
	e := New(body, DefaultConfig())
	ps := dom.QueryAll(body, "p")
	if got := e.NodeRects(ps[1]); len(got) != 1 || got[0].Top != 1 {
		t.Errorf("NodeRects(second p) = %v, want top 1", got)
	}
	if got := e.NodeRects(dom.QueryFirst(body, "div")); len(got) != 0 {
		t.Errorf("NodeRects(bogus) = %v, want none", got)
	}
}

func TestAtomicBlock(t *testing.T) {
	body := mustBody(t, `<p>a</p><div contenteditable="false">x</div><p>b</p>`)
	e := New(body, Config{Width: 6, AtomicWidth: 3})
	div := dom.QueryFirst(body, "div")
	if diff := cmp.Diff([]geom.Rect{rect(0, 1, 6, 2)}, e.NodeRects(div)); diff != "" {
		t.Errorf("NodeRects(div) mismatch (-want +got):\n%s", diff)
	}
	if got := e.Height(); got != 3 {
		t.Errorf("Height() = %d, want 3", got)
	}
}

func TestRelayoutOnMutation(t *testing.T) {
	body := mustBody(t, `<p>ab<img>cd</p>`)
	e := New(body, DefaultConfig())
	img := dom.QueryFirst(body, "img")
	e.NodeRects(img)
	e.NodeRects(img)
	if got := e.Runs(); got != 1 {
		t.Fatalf("Runs() = %d, want 1 for an unchanged tree", got)
	}

	marker := caret.InsertInline(img, true)
	if got := e.RangeRects(dom.CollapsedAt(marker, 0)); len(got) != 1 || got[0].Left != 2 {
		t.Errorf("RangeRects(new marker) = %v, want column 2", got)
	}
	if got := e.Runs(); got != 2 {
		t.Errorf("Runs() = %d, want 2 after mutation", got)
	}

	marker.Data = "x"
	if got := e.NodeRects(img); len(got) != 1 || got[0].Left != 3 {
		t.Errorf("NodeRects(img) = %v, want column 3 after text change", got)
	}
}

func TestHitTest(t *testing.T) {
	body := mustBody(t, `<p>ab<img>cd</p><p>efgh</p>`)
	e := New(body, DefaultConfig())
	p := dom.QueryFirst(body, "p")

	tests := []struct {
		name      string
		x, y      float64
		container *html.Node
		offset    int
	}{
		{"inside text", 1.2, 0.5, p.FirstChild, 1},
		{"right of image", 4.9, 0.5, p, 2},
		{"second line", 3, 1.5, dom.QueryAll(body, "p")[1].FirstChild, 3},
		{"below content", 0, 9, dom.QueryAll(body, "p")[1].FirstChild, 0},
	}
	for _, tt := range tests {
		c, o, ok := e.HitTest(tt.x, tt.y)
		if !ok || c != tt.container || o != tt.offset {
			t.Errorf("%s: HitTest() = (%s, %d, %v), want (%s, %d)", tt.name,
				dom.Describe(c), o, ok, dom.Describe(tt.container), tt.offset)
		}
	}
}

func TestNodeAt(t *testing.T) {
	body := mustBody(t, `<p>ab<img>cd</p>`)
	e := New(body, DefaultConfig())
	if got := e.NodeAt(3, 0.5); got != dom.QueryFirst(body, "img") {
		t.Errorf("NodeAt(img) = %s", dom.Describe(got))
	}
	if got := e.NodeAt(0.5, 0.5); got != dom.QueryFirst(body, "p") {
		t.Errorf("NodeAt(text) = %s, want <p>", dom.Describe(got))
	}
	if got := e.NodeAt(50, 50); got != body {
		t.Errorf("NodeAt(outside) = %s, want body", dom.Describe(got))
	}
}

func TestGlyphs(t *testing.T) {
	body := mustBody(t, `<p>a<img alt="pic" width="5"></p><hr>`)
	e := New(body, Config{Width: 4, AtomicWidth: 3})
	var got []string
	for _, g := range e.Glyphs() {
		got = append(got, g.Text)
	}
	want := []string{"a", "[pic", "────"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Glyphs() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewPanicsWithoutRoot(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil, DefaultConfig())
}
