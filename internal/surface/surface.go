package surface

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
	"github.com/dshills/caretkit/internal/layout"
	"github.com/dshills/caretkit/internal/logging"
)

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Surface) { s.logger = logging.Component(l, "surface") }
}

// WithLayout sets the layout configuration.
func WithLayout(cfg layout.Config) Option {
	return func(s *Surface) { s.layoutConfig = cfg }
}

// Surface is an in-memory editing surface. Surface is not safe for
// concurrent use.
type Surface struct {
	root         *html.Node
	engine       *layout.Engine
	layoutConfig layout.Config
	logger       *zap.Logger

	rng      dom.Range
	hasRange bool
	focused  bool

	clipboard map[string]string
	scrolled  *html.Node

	onChange func()
	changed  bool
}

// New creates a surface editing the children of root. A nil root panics.
func New(root *html.Node, opts ...Option) *Surface {
	if root == nil {
		panic("surface: requires a root")
	}
	s := &Surface{
		root:         root,
		layoutConfig: layout.DefaultConfig(),
		logger:       zap.NewNop(),
		clipboard:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = layout.New(root, s.layoutConfig, layout.WithLogger(s.logger))
	return s
}

// Parse reads an HTML document and creates a surface editing its body.
// Whitespace-only text between blocks is dropped.
func Parse(r io.Reader, opts ...Option) (*Surface, error) {
	body, err := dom.ParseBody(r)
	if err != nil {
		return nil, err
	}
	StripBlockWhitespace(body)
	return New(body, opts...), nil
}

// ParseString is Parse for a string.
func ParseString(markup string, opts ...Option) (*Surface, error) {
	return Parse(strings.NewReader(markup), opts...)
}

// StripBlockWhitespace removes whitespace-only text nodes that sit between
// blocks or at the edges of a block.
func StripBlockWhitespace(root *html.Node) int {
	var stale []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if !dom.IsText(n) || strings.TrimSpace(n.Data) != "" {
			return true
		}
		prev, next := n.PrevSibling, n.NextSibling
		if (prev == nil || caret.IsBlock(prev)) && (next == nil || caret.IsBlock(next)) {
			stale = append(stale, n)
		}
		return true
	})
	for _, n := range stale {
		dom.Remove(n)
	}
	return len(stale)
}

// Root returns the editing root.
func (s *Surface) Root() *html.Node {
	return s.root
}

// Layout returns the layout engine.
func (s *Surface) Layout() *layout.Engine {
	return s.engine
}

// Geometry returns the geometry provider.
func (s *Surface) Geometry() geom.Provider {
	return s.engine
}

// Range returns the native selection range. The second result is false when
// there is no range or the range is stale: out of bounds or outside the
// root.
func (s *Surface) Range() (dom.Range, bool) {
	if !s.hasRange || !s.rng.Valid() || !s.rng.Within(s.root) {
		return dom.Range{}, false
	}
	return s.rng, true
}

// SetRange sets the native selection range.
func (s *Surface) SetRange(r dom.Range) {
	if r.IsZero() {
		s.hasRange = false
		s.rng = dom.Range{}
		s.changed = true
		return
	}
	s.rng = r
	s.hasRange = true
	s.changed = true
	s.logger.Debug("range set", zap.Stringer("range", r))
}

// OnSelectionChange registers fn to be told about range writes. Changes are
// queued and delivered by FlushSelectionChange, the way a browser raises
// selectionchange after the current event finishes.
func (s *Surface) OnSelectionChange(fn func()) {
	s.onChange = fn
}

// FlushSelectionChange delivers a queued selection change. It reports
// whether one was delivered.
func (s *Surface) FlushSelectionChange() bool {
	if !s.changed {
		return false
	}
	s.changed = false
	if s.onChange != nil {
		s.onChange()
	}
	return true
}

// Focus gives the surface focus.
func (s *Surface) Focus() {
	s.focused = true
}

// Blur removes focus.
func (s *Surface) Blur() {
	s.focused = false
}

// HasFocus reports whether the surface has focus.
func (s *Surface) HasFocus() bool {
	return s.focused
}

// ScrollIntoView records n as the node last scrolled to. The layout has no
// viewport offset, so nothing else moves.
func (s *Surface) ScrollIntoView(n *html.Node, alignToTop bool) {
	s.scrolled = n
	s.logger.Debug("scroll into view", zap.String("node", dom.Describe(n)), zap.Bool("top", alignToTop))
}

// ScrolledTo returns the node last passed to ScrollIntoView.
func (s *Surface) ScrolledTo() *html.Node {
	return s.scrolled
}

// SetClipboard replaces the clipboard contents with data, keyed by MIME
// type.
func (s *Surface) SetClipboard(data map[string]string) {
	s.clipboard = make(map[string]string, len(data))
	for k, v := range data {
		s.clipboard[k] = v
	}
}

// Clipboard returns the clipboard flavor for mime.
func (s *Surface) Clipboard(mime string) string {
	return s.clipboard[mime]
}

// HTML returns the markup of the editing root's children.
func (s *Surface) HTML() string {
	return dom.InnerHTML(s.root)
}
