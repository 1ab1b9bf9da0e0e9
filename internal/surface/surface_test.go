package surface

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
)

func mustSurface(t *testing.T, markup string) *Surface {
	t.Helper()
	s, err := ParseString(markup)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return s
}

func TestParseStripsBlockWhitespace(t *testing.T) {
	s := mustSurface(t, "<p>a b</p>\n  <p>c</p>\n")
	if got, want := s.HTML(), "<p>a b</p><p>c</p>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestNewPanicsWithoutRoot(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil)
}

func TestRangeValidation(t *testing.T) {
	s := mustSurface(t, "<p>abc</p>")
	text := dom.QueryFirst(s.Root(), "p").FirstChild

	if _, ok := s.Range(); ok {
		t.Error("Range() ok before any range was set")
	}

	s.SetRange(dom.CollapsedAt(text, 2))
	if r, ok := s.Range(); !ok || r.StartOffset != 2 {
		t.Errorf("Range() = %v, %v", r, ok)
	}

	text.Data = "a"
	if _, ok := s.Range(); ok {
		t.Error("Range() ok for an out of bounds offset")
	}

	detached := dom.NewText("xyz")
	s.SetRange(dom.CollapsedAt(detached, 1))
	if _, ok := s.Range(); ok {
		t.Error("Range() ok for a range outside the root")
	}
}

func TestFocusAndScroll(t *testing.T) {
	s := mustSurface(t, "<p>abc</p>")
	if s.HasFocus() {
		t.Error("HasFocus() = true initially")
	}
	s.Focus()
	if !s.HasFocus() {
		t.Error("HasFocus() = false after Focus")
	}
	s.Blur()
	if s.HasFocus() {
		t.Error("HasFocus() = true after Blur")
	}

	p := dom.QueryFirst(s.Root(), "p")
	s.ScrollIntoView(p, true)
	if s.ScrolledTo() != p {
		t.Errorf("ScrolledTo() = %s, want <p>", dom.Describe(s.ScrolledTo()))
	}
}

func TestClipboard(t *testing.T) {
	s := mustSurface(t, "<p>abc</p>")
	data := map[string]string{"text/plain": "abc"}
	s.SetClipboard(data)
	data["text/plain"] = "changed"
	if got := s.Clipboard("text/plain"); got != "abc" {
		t.Errorf("Clipboard() = %q, want %q", got, "abc")
	}
}

func TestMoveHorizontal(t *testing.T) {
	s := mustSurface(t, "<p>abc</p>")
	text := dom.QueryFirst(s.Root(), "p").FirstChild

	s.SetRange(dom.CollapsedAt(text, 1))
	if !s.MoveHorizontal(caret.Forward, false) {
		t.Fatal("MoveHorizontal(forward) = false")
	}
	if r, _ := s.Range(); r != dom.CollapsedAt(text, 2) {
		t.Errorf("Range() = %v, want (text, 2)", r)
	}

	s.MoveHorizontal(caret.Forward, true)
	r, _ := s.Range()
	want := dom.Range{StartContainer: text, StartOffset: 2, EndContainer: text, EndOffset: 3}
	if r != want {
		t.Errorf("extended Range() = %v, want %v", r, want)
	}

	s.MoveHorizontal(caret.Backward, false)
	if r, _ := s.Range(); r != dom.CollapsedAt(text, 2) {
		t.Errorf("collapsed Range() = %v, want (text, 2)", r)
	}

	s.SetRange(dom.CollapsedAt(text, 3))
	if s.MoveHorizontal(caret.Forward, false) {
		t.Error("MoveHorizontal() at end of document = true")
	}
}

func TestMoveVertical(t *testing.T) {
	s := mustSurface(t, "<p>abc</p><p>defg</p>")
	ps := dom.QueryAll(s.Root(), "p")

	s.SetRange(dom.CollapsedAt(ps[0].FirstChild, 2))
	if !s.MoveVertical(caret.Forward) {
		t.Fatal("MoveVertical(down) = false")
	}
	if r, _ := s.Range(); r != dom.CollapsedAt(ps[1].FirstChild, 2) {
		t.Errorf("Range() = %v, want (defg, 2)", r)
	}
	if s.MoveVertical(caret.Forward) {
		t.Error("MoveVertical(down) on last line = true")
	}
	s.MoveVertical(caret.Backward)
	if r, _ := s.Range(); r != dom.CollapsedAt(ps[0].FirstChild, 2) {
		t.Errorf("Range() = %v, want (abc, 2)", r)
	}
}

func TestClick(t *testing.T) {
	s := mustSurface(t, "<p>abc</p>")
	text := dom.QueryFirst(s.Root(), "p").FirstChild
	if !s.Click(2, 0.5) {
		t.Fatal("Click() = false")
	}
	if r, _ := s.Range(); r != dom.CollapsedAt(text, 2) {
		t.Errorf("Range() = %v, want (text, 2)", r)
	}
}

func TestInsertText(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		place  func(r *dom.Range, s *Surface)
		text   string
		want   string
	}{
		{
			name:   "into text",
			markup: "<p>ac</p>",
			place: func(r *dom.Range, s *Surface) {
				*r = dom.CollapsedAt(dom.QueryFirst(s.Root(), "p").FirstChild, 1)
			},
			text: "b",
			want: "<p>abc</p>",
		},
		{
			name:   "into empty block",
			markup: "<p><br></p>",
			place: func(r *dom.Range, s *Surface) {
				*r = dom.CollapsedAt(dom.QueryFirst(s.Root(), "p"), 0)
			},
			text: "x",
			want: "<p>x<br/></p>",
		},
		{
			name:   "after atomic node",
			markup: "<p><img/></p>",
			place: func(r *dom.Range, s *Surface) {
				*r = dom.CollapsedAt(dom.QueryFirst(s.Root(), "p"), 1)
			},
			text: "x",
			want: "<p><img/>x</p>",
		},
		{
			name:   "replaces selection",
			markup: "<p>abcd</p>",
			place: func(r *dom.Range, s *Surface) {
				text := dom.QueryFirst(s.Root(), "p").FirstChild
				*r = dom.Range{StartContainer: text, StartOffset: 1, EndContainer: text, EndOffset: 3}
			},
			text: "X",
			want: "<p>aXd</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSurface(t, tt.markup)
			var r dom.Range
			tt.place(&r, s)
			s.SetRange(r)
			if !s.InsertText(tt.text) {
				t.Fatal("InsertText() = false")
			}
			if diff := cmp.Diff(tt.want, s.HTML()); diff != "" {
				t.Errorf("HTML() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeleteCharacter(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		dir    caret.Direction
		// The caret goes in text node number node of block, at offset.
		block, node, offset int
		want                string
	}{
		{"backspace in text", "<p>abc</p>", caret.Backward, 0, 0, 2, "<p>ac</p>"},
		{"delete in text", "<p>abc</p>", caret.Forward, 0, 0, 0, "<p>bc</p>"},
		{"backspace merges blocks", "<p>ab</p><p>cd</p>", caret.Backward, 1, 0, 0, "<p>abcd</p>"},
		{"delete merges blocks", "<p>ab</p><p>cd</p>", caret.Forward, 0, 0, 2, "<p>abcd</p>"},
		{"backspace removes image", "<p>a<img/>b</p>", caret.Backward, 0, 1, 0, "<p>ab</p>"},
		{"delete removes image", "<p>a<img/>b</p>", caret.Forward, 0, 0, 1, "<p>ab</p>"},
		{"last character pads block", "<p>a</p>", caret.Backward, 0, 0, 1, "<p><br/></p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSurface(t, tt.markup)
			block := dom.QueryAll(s.Root(), "p")[tt.block]
			text := textNodes(block)[tt.node]
			s.SetRange(dom.CollapsedAt(text, tt.offset))
			if !s.DeleteCharacter(tt.dir) {
				t.Fatal("DeleteCharacter() = false")
			}
			if diff := cmp.Diff(tt.want, s.HTML()); diff != "" {
				t.Errorf("HTML() mismatch (-want +got):\n%s", diff)
			}
			if _, ok := s.Range(); !ok {
				t.Error("Range() invalid after delete")
			}
		})
	}
}

func TestDeleteCharacterAtDocumentStart(t *testing.T) {
	s := mustSurface(t, "<p>abc</p>")
	s.SetRange(dom.CollapsedAt(dom.QueryFirst(s.Root(), "p").FirstChild, 0))
	if s.DeleteCharacter(caret.Backward) {
		t.Error("DeleteCharacter() at document start = true")
	}
}

func TestSplitBlock(t *testing.T) {
	s := mustSurface(t, "<p>foo<b>barbaz</b></p>")
	b := dom.QueryFirst(s.Root(), "b")
	s.SetRange(dom.CollapsedAt(b.FirstChild, 3))
	if !s.SplitBlock() {
		t.Fatal("SplitBlock() = false")
	}
	if diff := cmp.Diff("<p>foo<b>bar</b></p><p><b>baz</b></p>", s.HTML()); diff != "" {
		t.Errorf("HTML() mismatch (-want +got):\n%s", diff)
	}
	r, _ := s.Range()
	if r.StartContainer != dom.QueryAll(s.Root(), "p")[1] || r.StartOffset != 0 {
		t.Errorf("Range() = %v, want start of second block", r)
	}
}

func TestCopyText(t *testing.T) {
	s := mustSurface(t, "<p>abcd</p>")
	text := dom.QueryFirst(s.Root(), "p").FirstChild
	s.SetRange(dom.Range{StartContainer: text, StartOffset: 1, EndContainer: text, EndOffset: 3})
	if got := s.CopyText(); got != "bc" {
		t.Errorf("CopyText() = %q, want %q", got, "bc")
	}
}

func textNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(n, func(c *html.Node) bool {
		if dom.IsText(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

func TestFlushSelectionChange(t *testing.T) {
	s := mustSurface(t, "<p>abc</p>")
	calls := 0
	s.OnSelectionChange(func() { calls++ })

	if s.FlushSelectionChange() {
		t.Error("FlushSelectionChange() = true with nothing queued")
	}
	text := dom.QueryFirst(s.Root(), "p").FirstChild
	s.SetRange(dom.CollapsedAt(text, 1))
	s.SetRange(dom.CollapsedAt(text, 2))
	if !s.FlushSelectionChange() {
		t.Error("FlushSelectionChange() = false after SetRange")
	}
	s.FlushSelectionChange()
	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
}
