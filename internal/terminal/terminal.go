// Package terminal runs an editor in a tcell screen.
package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/config"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/editor"
	"github.com/dshills/caretkit/internal/input/key"
	"github.com/dshills/caretkit/internal/logging"
	"github.com/dshills/caretkit/internal/selection"
)

// TickInterval is how often Run advances deferred work and the caret blink.
const TickInterval = 100 * time.Millisecond

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) Option {
	return func(t *Terminal) {
		t.clip = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Terminal) {
		t.logger = l
	}
}

// Terminal draws an editor and feeds it screen input. Ctrl+C copies,
// Ctrl+X cuts and Ctrl+Q quits; every other key goes to the editor.
type Terminal struct {
	screen tcell.Screen
	ed     *editor.Editor
	clip   Clipboard
	logger *zap.Logger

	buttons tcell.ButtonMask
	status  string
}

// New creates a terminal for ed drawing to screen.
func New(screen tcell.Screen, ed *editor.Editor, opts ...Option) *Terminal {
	t := &Terminal{
		screen: screen,
		ed:     ed,
		clip:   systemClipboard{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.Component(logging.OrNop(t.logger), "terminal")
	return t
}

// Init initializes the screen with mouse and focus reporting.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	t.screen.EnableMouse()
	t.screen.EnableFocus()
	return nil
}

// Fini restores the terminal.
func (t *Terminal) Fini() {
	t.screen.Fini()
}

// Status returns the message shown in the status line.
func (t *Terminal) Status() string {
	return t.status
}

// Handle processes one screen event and redraws. It returns false when the
// user asked to quit.
func (t *Terminal) Handle(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		kev, ok := ConvertKey(e)
		if !ok {
			return true
		}
		if !t.handleKey(kev) {
			return false
		}
	case *tcell.EventMouse:
		x, y := e.Position()
		buttons := e.Buttons()
		pressed := buttons&tcell.Button1 != 0 && t.buttons&tcell.Button1 == 0
		t.buttons = buttons
		if pressed {
			t.ed.Click(cellPoint(x, y))
		}
	case *tcell.EventFocus:
		if e.Focused {
			t.ed.Focus()
		} else {
			t.ed.Blur()
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	t.Draw()
	return true
}

func (t *Terminal) handleKey(ev key.Event) bool {
	if ev.Modifiers.Has(key.ModCtrl) && ev.Key == key.KeyRune {
		switch ev.Rune {
		case 'q':
			return false
		case 'c':
			t.copy(t.ed.Copy(), "copied")
			return true
		case 'x':
			t.copy(t.ed.Cut(), "cut")
			return true
		}
	}
	t.status = ""
	t.ed.HandleKey(ev)
	return true
}

// copy writes the best text flavor of data to the clipboard.
func (t *Terminal) copy(data map[string]string, verb string) {
	text := data[selection.MIMEPlain]
	if text == "" {
		text = data[selection.MIMEHTML]
	}
	if text == "" {
		t.status = "nothing to copy"
		return
	}
	if err := t.clip.WriteAll(text); err != nil {
		t.logger.Warn("clipboard write failed", zap.Error(err))
		t.status = "clipboard unavailable"
		return
	}
	t.status = fmt.Sprintf("%s %d bytes", verb, len(text))
}

// Reload applies a new configuration and redraws.
func (t *Terminal) Reload(cfg *config.Config) {
	t.ed.SetConfig(cfg)
	t.status = "configuration reloaded"
	t.Draw()
}

// Draw renders the document, the selection, the caret and a status line.
func (t *Terminal) Draw() {
	t.screen.Clear()
	eng := t.ed.Surface().Layout()
	base := tcell.StyleDefault
	for _, g := range eng.Glyphs() {
		style := base
		if g.Node != nil && dom.HasAttr(g.Node, caret.AttrSelected) {
			style = style.Reverse(true)
		}
		t.drawText(g.X, g.Y, g.Text, style)
	}

	r, hasRange := t.ed.Surface().Range()
	if hasRange && !r.Collapsed() {
		for _, rect := range eng.RangeRects(r) {
			t.highlight(int(rect.Left), int(rect.Right), int(rect.Top))
		}
	}
	t.placeCursor()
	t.drawStatus()
	t.screen.Show()
}

func (t *Terminal) placeCursor() {
	coord := t.ed.Coordinator()
	if coord.SelectedNode() != nil {
		t.screen.HideCursor()
		return
	}
	if rect, ok := coord.FakeCaret().Rect(); ok {
		if coord.FakeCaret().Visible() {
			t.screen.ShowCursor(int(rect.Left), int(rect.Top))
		} else {
			t.screen.HideCursor()
		}
		return
	}
	r, ok := t.ed.Surface().Range()
	if !ok {
		t.screen.HideCursor()
		return
	}
	rects := t.ed.Surface().Layout().RangeRects(r.Collapse(false))
	if len(rects) == 0 {
		t.screen.HideCursor()
		return
	}
	t.screen.ShowCursor(int(rects[0].Left), int(rects[0].Top))
}

func (t *Terminal) drawStatus() {
	w, h := t.screen.Size()
	if h == 0 {
		return
	}
	snap := t.ed.Snapshot()
	line := fmt.Sprintf(" %s  %s", snap.State, snap.Selection)
	if t.status != "" {
		line += "  " + t.status
	}
	line = runewidth.FillRight(runewidth.Truncate(line, w, "…"), w)
	t.drawText(0, h-1, line, tcell.StyleDefault.Reverse(true))
}

func (t *Terminal) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		t.screen.SetContent(x, y, r, nil, style)
		x += w
	}
}

func (t *Terminal) highlight(left, right, y int) {
	for x := left; x < right; x++ {
		r, comb, style, _ := t.screen.GetContent(x, y)
		t.screen.SetContent(x, y, r, comb, style.Reverse(true))
	}
}

// Run processes screen events until the user quits or ctx is done. Configs
// received on reload are applied on the event loop.
func (t *Terminal) Run(ctx context.Context, reload <-chan *config.Config) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go t.screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	t.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !t.Handle(ev) {
				t.logger.Debug("quit")
				return nil
			}
		case cfg := <-reload:
			t.Reload(cfg)
		case now := <-ticker.C:
			if t.ed.Tick(now) {
				t.Draw()
			}
		}
	}
}
