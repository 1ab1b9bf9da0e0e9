package dom

import (
	"testing"

	"golang.org/x/net/html"
)

func mustBody(t *testing.T, markup string) *html.Node {
	t.Helper()
	body, err := ParseBodyString(markup)
	if err != nil {
		t.Fatalf("ParseBodyString() error = %v", err)
	}
	return body
}

func TestNodeIndexAndChildAt(t *testing.T) {
	body := mustBody(t, "<p>a</p><p>b</p><p>c</p>")

	for i := 0; i < 3; i++ {
		c := ChildAt(body, i)
		if c == nil {
			t.Fatalf("ChildAt(%d) = nil", i)
		}
		if got := NodeIndex(c); got != i {
			t.Errorf("NodeIndex(ChildAt(%d)) = %d, want %d", i, got, i)
		}
	}
	if ChildAt(body, 3) != nil {
		t.Error("ChildAt(3) should be nil")
	}
	if NodeIndex(NewText("x")) != -1 {
		t.Error("NodeIndex of detached node should be -1")
	}
}

func TestNodeLen(t *testing.T) {
	body := mustBody(t, "<p>héllo</p>")
	p := body.FirstChild
	if got := NodeLen(p); got != 1 {
		t.Errorf("NodeLen(p) = %d, want 1", got)
	}
	if got := NodeLen(p.FirstChild); got != len("héllo") {
		t.Errorf("NodeLen(text) = %d, want %d", got, len("héllo"))
	}
}

func TestSplitText(t *testing.T) {
	body := mustBody(t, "<p>abcd</p>")
	text := body.FirstChild.FirstChild

	tail := SplitText(text, 1)
	if tail == nil {
		t.Fatal("SplitText() = nil")
	}
	if text.Data != "a" || tail.Data != "bcd" {
		t.Errorf("SplitText() = %q/%q, want a/bcd", text.Data, tail.Data)
	}
	if text.NextSibling != tail {
		t.Error("tail should follow head")
	}
	if SplitText(text, 5) != nil {
		t.Error("SplitText out of range should return nil")
	}
}

func TestInsertBeforeAfter(t *testing.T) {
	body := mustBody(t, "<p>a</p>")
	p := body.FirstChild

	before := NewElement("div")
	after := NewElement("span")
	if !InsertBefore(before, p) || !InsertAfter(after, p) {
		t.Fatal("insert failed")
	}
	if got := InnerHTML(body); got != "<div></div><p>a</p><span></span>" {
		t.Errorf("InnerHTML() = %q", got)
	}
	if InsertBefore(NewText("x"), NewText("detached")) {
		t.Error("InsertBefore on detached ref should fail")
	}
}

func TestAttributes(t *testing.T) {
	n := NewElement("DIV", "Contenteditable", "false")
	if n.Data != "div" {
		t.Errorf("tag = %q, want div", n.Data)
	}
	if v, ok := Attr(n, "contenteditable"); !ok || v != "false" {
		t.Errorf("Attr() = %q, %v", v, ok)
	}
	SetAttr(n, "contenteditable", "true")
	if v, _ := Attr(n, "contenteditable"); v != "true" {
		t.Errorf("Attr() after SetAttr = %q, want true", v)
	}
	RemoveAttr(n, "CONTENTEDITABLE")
	if HasAttr(n, "contenteditable") {
		t.Error("attribute should be removed")
	}
}

func TestRangeSelectedNode(t *testing.T) {
	body := mustBody(t, `<p>a<img src="x">b</p>`)
	p := body.FirstChild
	img := p.FirstChild.NextSibling

	r, ok := SelectNode(img)
	if !ok {
		t.Fatal("SelectNode() failed")
	}
	if got := r.SelectedNode(); got != img {
		t.Errorf("SelectedNode() = %v, want img", Describe(got))
	}
	if CollapsedAt(p, 1).SelectedNode() != nil {
		t.Error("collapsed range should select nothing")
	}
	if !r.Valid() {
		t.Error("range should be valid")
	}
	if (Range{StartContainer: p, StartOffset: 9, EndContainer: p, EndOffset: 9}).Valid() {
		t.Error("out-of-bounds range should be invalid")
	}
}

func TestComparePoints(t *testing.T) {
	body := mustBody(t, "<p>ab</p><p>cd</p>")
	p1 := body.FirstChild
	p2 := p1.NextSibling
	t1 := p1.FirstChild
	t2 := p2.FirstChild

	tests := []struct {
		name string
		a    *html.Node
		ao   int
		b    *html.Node
		bo   int
		want int
	}{
		{"same node before", t1, 0, t1, 1, -1},
		{"same node equal", t1, 1, t1, 1, 0},
		{"across blocks", t1, 2, t2, 0, -1},
		{"ancestor before child", body, 0, t1, 0, -1},
		{"ancestor after child", body, 1, t1, 0, 1},
		{"child before ancestor", t2, 0, body, 2, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComparePoints(tt.a, tt.ao, tt.b, tt.bo); got != tt.want {
				t.Errorf("ComparePoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQueryAll(t *testing.T) {
	body := mustBody(t, `<p>a<span contenteditable="false">x</span></p><div contenteditable="false"></div>`)

	nodes := QueryAll(body, `[contenteditable="false"]`)
	if len(nodes) != 2 {
		t.Fatalf("QueryAll() returned %d nodes, want 2", len(nodes))
	}
	if nodes[0].Data != "span" || nodes[1].Data != "div" {
		t.Errorf("QueryAll() order = %s, %s", nodes[0].Data, nodes[1].Data)
	}
	if QueryAll(body, "[[bad") != nil {
		t.Error("invalid selector should return nil")
	}
	if !Matches(nodes[0], "span[contenteditable]") {
		t.Error("Matches() = false, want true")
	}
}

func TestCloneDeep(t *testing.T) {
	body := mustBody(t, `<p class="x">a<b>c</b></p>`)
	clone := Clone(body.FirstChild, true)
	if clone.Parent != nil {
		t.Error("clone should be detached")
	}
	if got, want := OuterHTML(clone), OuterHTML(body.FirstChild); got != want {
		t.Errorf("OuterHTML(clone) = %q, want %q", got, want)
	}
	if TextContent(clone) != "ac" {
		t.Errorf("TextContent() = %q, want ac", TextContent(clone))
	}
}
