package terminal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/caretkit/internal/config"
	"github.com/dshills/caretkit/internal/editor"
	"github.com/dshills/caretkit/internal/input/key"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func newTerminal(t *testing.T, markup string) (*Terminal, tcell.SimulationScreen, *fakeClipboard) {
	t.Helper()
	ed, err := editor.Load(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("editor.Load() error = %v", err)
	}
	t.Cleanup(ed.Close)

	screen := tcell.NewSimulationScreen("UTF-8")
	clip := &fakeClipboard{}
	term := New(screen, ed, WithClipboard(clip))
	if err := term.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(term.Fini)
	screen.SetSize(40, 5)
	return term, screen, clip
}

func keyEvent(k tcell.Key, r rune, mod tcell.ModMask) *tcell.EventKey {
	return tcell.NewEventKey(k, r, mod)
}

func row(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(b.String(), " ")
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want string
		ok   bool
	}{
		{"rune", keyEvent(tcell.KeyRune, 'a', tcell.ModNone), "a", true},
		{"arrow", keyEvent(tcell.KeyLeft, 0, tcell.ModNone), "Left", true},
		{"shift arrow", keyEvent(tcell.KeyRight, 0, tcell.ModShift), "Shift+Right", true},
		{"backspace", keyEvent(tcell.KeyBackspace2, 0, tcell.ModNone), "Backspace", true},
		{"control letter", keyEvent(tcell.KeyCtrlC, 0, tcell.ModCtrl), "Ctrl+c", true},
		{"function key", keyEvent(tcell.KeyF5, 0, tcell.ModNone), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvertKey(tt.ev)
			if ok != tt.ok {
				t.Fatalf("ConvertKey() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			want, err := key.Parse(tt.want)
			if err != nil {
				t.Fatal(err)
			}
			if got.Key != want.Key || got.Rune != want.Rune || got.Modifiers != want.Modifiers {
				t.Errorf("ConvertKey() = %v, want %v", got, want)
			}
		})
	}
}

func TestHandleTyping(t *testing.T) {
	term, screen, _ := newTerminal(t, "<p>ab</p>")

	if !term.Handle(keyEvent(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Fatal("Handle() = false for a character")
	}
	if got := term.ed.Snapshot().HTML; got != "<p>xab</p>" {
		t.Errorf("HTML = %q, want <p>xab</p>", got)
	}
	if got := row(screen, 0); got != "xab" {
		t.Errorf("row 0 = %q, want xab", got)
	}
	x, y, visible := screen.GetCursor()
	if !visible || x != 1 || y != 0 {
		t.Errorf("GetCursor() = (%d, %d, %v), want (1, 0, true)", x, y, visible)
	}
	if got := row(screen, 4); !strings.Contains(got, "text") {
		t.Errorf("status line = %q, want state text", got)
	}
}

func TestHandleQuit(t *testing.T) {
	term, _, _ := newTerminal(t, "<p>ab</p>")
	if term.Handle(keyEvent(tcell.KeyCtrlQ, 0, tcell.ModCtrl)) {
		t.Error("Handle(Ctrl+Q) = true, want false")
	}
}

func TestClickSelectsAndCopiesObject(t *testing.T) {
	term, screen, clip := newTerminal(t, `<p>ab<img width="5"></p>`)

	term.Handle(tcell.NewEventMouse(3, 0, tcell.Button1, tcell.ModNone))
	if got := term.ed.Snapshot().State; got != "object" {
		t.Fatalf("State = %q, want object", got)
	}
	if got := row(screen, 0); got != "ab{img}" {
		t.Errorf("row 0 = %q, want ab{img}", got)
	}
	_, _, style, _ := screen.GetContent(3, 0)
	if _, _, attrs := style.Decompose(); attrs&tcell.AttrReverse == 0 {
		t.Error("selected object not drawn reversed")
	}
	if _, _, visible := screen.GetCursor(); visible {
		t.Error("cursor visible while object selected")
	}

	term.Handle(keyEvent(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	if clip.text != `<img width="5"/>` {
		t.Errorf("clipboard = %q, want the object markup", clip.text)
	}
	if !strings.HasPrefix(term.Status(), "copied") {
		t.Errorf("Status() = %q, want copied", term.Status())
	}

	term.Handle(keyEvent(tcell.KeyCtrlX, 0, tcell.ModCtrl))
	if got := term.ed.Snapshot().HTML; got != "<p>ab</p>" {
		t.Errorf("HTML after cut = %q, want <p>ab</p>", got)
	}
}

func TestMouseDragDoesNotReclick(t *testing.T) {
	term, _, _ := newTerminal(t, `<p>ab<img width="5"></p>`)

	term.Handle(tcell.NewEventMouse(3, 0, tcell.Button1, tcell.ModNone))
	term.Handle(tcell.NewEventMouse(0, 0, tcell.Button1, tcell.ModNone))
	if got := term.ed.Snapshot().State; got != "object" {
		t.Errorf("State after drag = %q, want object", got)
	}

	term.Handle(tcell.NewEventMouse(0, 0, tcell.ButtonNone, tcell.ModNone))
	term.Handle(tcell.NewEventMouse(0, 0, tcell.Button1, tcell.ModNone))
	if got := term.ed.Snapshot().State; got != "text" {
		t.Errorf("State after second click = %q, want text", got)
	}
}

func TestCopyFailures(t *testing.T) {
	term, _, clip := newTerminal(t, "<p>ab</p>")

	term.Handle(keyEvent(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	if term.Status() != "nothing to copy" {
		t.Errorf("Status() = %q, want nothing to copy", term.Status())
	}

	clip.err = errors.New("no display")
	term.Handle(keyEvent(tcell.KeyRight, 0, tcell.ModShift))
	term.Handle(keyEvent(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	if term.Status() != "clipboard unavailable" {
		t.Errorf("Status() = %q, want clipboard unavailable", term.Status())
	}
}

func TestFocusEvents(t *testing.T) {
	term, _, _ := newTerminal(t, "<p>ab</p>")

	term.Handle(tcell.NewEventFocus(false))
	if term.ed.Surface().HasFocus() {
		t.Error("HasFocus() = true after focus out")
	}
	term.Handle(tcell.NewEventFocus(true))
	if !term.ed.Surface().HasFocus() {
		t.Error("HasFocus() = false after focus in")
	}
}

func TestReload(t *testing.T) {
	term, _, _ := newTerminal(t, "<p>ab</p>")

	cfg := config.Default()
	cfg.Layout.Width = 20
	term.Reload(cfg)
	if got := term.ed.Config().Layout.Width; got != 20 {
		t.Errorf("Layout.Width = %d, want 20", got)
	}
	if term.Status() != "configuration reloaded" {
		t.Errorf("Status() = %q", term.Status())
	}
}

func TestRun(t *testing.T) {
	term, screen, _ := newTerminal(t, "<p>ab</p>")

	if err := screen.PostEvent(keyEvent(tcell.KeyRune, 'z', tcell.ModNone)); err != nil {
		t.Fatal(err)
	}
	if err := screen.PostEvent(keyEvent(tcell.KeyCtrlQ, 0, tcell.ModCtrl)); err != nil {
		t.Fatal(err)
	}
	if err := term.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := term.ed.Snapshot().HTML; got != "<p>zab</p>" {
		t.Errorf("HTML = %q, want <p>zab</p>", got)
	}
}

func TestRunCancelled(t *testing.T) {
	term, _, _ := newTerminal(t, "<p>ab</p>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := term.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
