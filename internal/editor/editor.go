package editor

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/config"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/event"
	"github.com/dshills/caretkit/internal/input/key"
	"github.com/dshills/caretkit/internal/input/mouse"
	"github.com/dshills/caretkit/internal/logging"
	"github.com/dshills/caretkit/internal/selection"
	"github.com/dshills/caretkit/internal/surface"
)

// Option configures an Editor.
type Option func(*options)

type options struct {
	config *config.Config
	logger *zap.Logger
	bus    *event.Bus
}

// WithConfig sets the configuration. The editor keeps a copy.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.config = cfg.Clone()
		}
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBus sets the notification bus, for example one that plugins already
// subscribed to.
func WithBus(b *event.Bus) Option {
	return func(o *options) { o.bus = b }
}

func newOptions(opts []Option) options {
	o := options{config: config.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrNop(o.logger)
	if o.bus == nil {
		o.bus = event.NewBus(event.WithLogger(logging.Component(o.logger, "bus")))
	}
	return o
}

// Editor is one editable document with its selection coordinator.
// Editor is not safe for concurrent use; input must be delivered from a
// single event loop.
type Editor struct {
	surface *surface.Surface
	coord   *selection.Coordinator
	bus     *event.Bus
	config  *config.Config
	logger  *zap.Logger
	closed  bool
}

// New creates an editor over an existing surface. The surface gains focus.
func New(s *surface.Surface, opts ...Option) *Editor {
	o := newOptions(opts)
	return newEditor(s, o)
}

func newEditor(s *surface.Surface, o options) *Editor {
	e := &Editor{
		surface: s,
		bus:     o.bus,
		config:  o.config,
		logger:  logging.Component(o.logger, "editor"),
	}
	e.coord = selection.New(s,
		selection.WithBus(o.bus),
		selection.WithLogger(o.logger),
		selection.WithConfig(o.config),
	)
	s.OnSelectionChange(e.coord.SelectionChange)
	s.Focus()
	if r, ok := firstCaret(s); ok {
		s.SetRange(r)
		s.FlushSelectionChange()
	}
	return e
}

// Load parses markup from r into a new editor.
func Load(r io.Reader, opts ...Option) (*Editor, error) {
	o := newOptions(opts)
	s, err := surface.Parse(r,
		surface.WithLogger(o.logger),
		surface.WithLayout(o.config.LayoutOptions()),
	)
	if err != nil {
		return nil, &OperationError{Op: "load", Err: err}
	}
	return newEditor(s, o), nil
}

// Open loads the HTML document at path.
func Open(path string, opts ...Option) (*Editor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OperationError{Op: "open", Target: path, Err: err}
	}
	defer f.Close()

	ed, err := Load(f, opts...)
	if err != nil {
		return nil, &OperationError{Op: "open", Target: path, Err: err}
	}
	ed.logger.Info("document opened", zap.String("path", path))
	return ed, nil
}

// firstCaret returns the first caret position of the document.
func firstCaret(s *surface.Surface) (dom.Range, bool) {
	root := s.Root()
	p, ok := caret.NewWalker(root).Next(caret.NewPosition(root, 0))
	if !ok {
		return dom.Range{}, false
	}
	return p.ToRange(), true
}

// Surface returns the editing surface.
func (e *Editor) Surface() *surface.Surface {
	return e.surface
}

// Coordinator returns the selection coordinator.
func (e *Editor) Coordinator() *selection.Coordinator {
	return e.coord
}

// Bus returns the notification bus.
func (e *Editor) Bus() *event.Bus {
	return e.bus
}

// Config returns the active configuration.
func (e *Editor) Config() *config.Config {
	return e.config
}

// SetConfig applies a reloaded configuration.
func (e *Editor) SetConfig(cfg *config.Config) {
	if e.closed || cfg == nil {
		return
	}
	e.config = cfg.Clone()
	e.surface.Layout().SetConfig(e.config.LayoutOptions())
	e.coord.SetConfig(e.config)
	e.logger.Info("configuration applied")
}

// HandleKey delivers a key press. It reports whether the coordinator
// overrode the native default.
func (e *Editor) HandleKey(ev key.Event) bool {
	if e.closed {
		return false
	}
	kev := selection.NewKeyEvent(ev)
	e.coord.KeyDown(kev)
	overridden := kev.DefaultPrevented()
	if !overridden {
		e.native(ev)
	}
	e.coord.KeyUp(selection.NewKeyEvent(ev))
	e.surface.FlushSelectionChange()
	e.logger.Debug("key", zap.Stringer("key", ev), zap.Bool("overridden", overridden))
	return overridden
}

// Type delivers text as a sequence of character key presses.
func (e *Editor) Type(text string) {
	for _, r := range text {
		e.HandleKey(key.NewEvent(key.KeyRune, r, key.ModNone))
	}
}

// Click delivers a primary button press at (x, y). It reports whether the
// coordinator overrode the native hit test.
func (e *Editor) Click(x, y float64) bool {
	if e.closed {
		return false
	}
	target := e.surface.NodeAt(x, y)
	mev := selection.NewMouseEvent(mouse.NewPress(mouse.ButtonLeft, x, y, key.ModNone), target)
	e.coord.MouseDown(mev)
	overridden := mev.DefaultPrevented()
	if !overridden {
		e.surface.Focus()
		e.surface.Click(x, y)
	}
	e.surface.FlushSelectionChange()
	e.logger.Debug("click",
		zap.Float64("x", x), zap.Float64("y", y),
		zap.String("target", dom.Describe(target)), zap.Bool("overridden", overridden))
	return overridden
}

// Copy copies the selection and returns the clipboard flavors written.
func (e *Editor) Copy() map[string]string {
	return e.clipboard(false)
}

// Cut copies the selection, deletes it and returns the clipboard flavors
// written.
func (e *Editor) Cut() map[string]string {
	return e.clipboard(true)
}

func (e *Editor) clipboard(cut bool) map[string]string {
	if e.closed {
		return nil
	}
	cev := selection.NewClipboardEvent()
	if cut {
		e.coord.Cut(cev)
	} else {
		e.coord.Copy(cev)
	}

	var data map[string]string
	if cev.DefaultPrevented() {
		data = cev.Data.Map()
	} else if text := e.surface.CopyText(); text != "" {
		data = map[string]string{selection.MIMEPlain: text}
		if cut {
			e.surface.DeleteContents()
		}
	}
	if len(data) > 0 {
		e.surface.SetClipboard(data)
	}
	e.surface.FlushSelectionChange()
	return data
}

// Focus gives the editor focus.
func (e *Editor) Focus() {
	if e.closed {
		return
	}
	e.surface.Focus()
	e.coord.Focus()
	e.surface.FlushSelectionChange()
}

// Blur takes focus away from the editor.
func (e *Editor) Blur() {
	if e.closed {
		return
	}
	e.coord.Blur()
	e.surface.Blur()
	e.surface.FlushSelectionChange()
}

// Tick runs deferred coordinator work and advances the caret blink. It
// reports whether the display changed.
func (e *Editor) Tick(now time.Time) bool {
	if e.closed {
		return false
	}
	e.coord.RunDeferred()
	changed := e.surface.FlushSelectionChange()
	return e.coord.Tick(now) || changed
}

// Close destroys the coordinator, removing every placeholder it added.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.coord.Destroy()
	e.closed = true
	e.logger.Debug("closed")
}

// Snapshot describes the editor state for display and tests.
type Snapshot struct {
	HTML      string `yaml:"html"`
	State     string `yaml:"state"`
	Selection string `yaml:"selection"`
}

// String returns a compact one-line form.
func (s Snapshot) String() string {
	return fmt.Sprintf("[%s] %s | %s", s.State, s.Selection, s.HTML)
}

// Snapshot returns the current state.
func (e *Editor) Snapshot() Snapshot {
	snap := Snapshot{
		HTML:  caret.ContentHTML(e.surface.Root(), e.coord.FakeCaret().Owns),
		State: e.coord.State().String(),
	}
	if n := e.coord.SelectedNode(); n != nil {
		snap.Selection = "object " + dom.Describe(n)
	} else if r, ok := e.surface.Range(); ok {
		snap.Selection = r.String()
	} else {
		snap.Selection = "none"
	}
	return snap
}
