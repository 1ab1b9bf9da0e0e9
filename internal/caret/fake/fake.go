// Package fake renders a synthetic caret at atomic node boundaries, where a
// native caret cannot be shown reliably.
package fake

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/geom"
	"github.com/dshills/caretkit/internal/logging"
)

// Class names carried by the visual caret element.
const (
	ClassVisualCaret       = "mce-visual-caret"
	ClassVisualCaretBefore = "mce-visual-caret-before"
	ClassVisualCaretHidden = "mce-visual-caret-hidden"
)

// Config holds fake caret configuration.
type Config struct {
	// BlinkEnabled enables caret blinking.
	BlinkEnabled bool

	// BlinkRate is the blink interval.
	BlinkRate time.Duration

	// BlockTag is the tag of block caret containers.
	BlockTag string
}

// DefaultConfig returns the default fake caret configuration.
func DefaultConfig() Config {
	return Config{
		BlinkEnabled: true,
		BlinkRate:    500 * time.Millisecond,
		BlockTag:     "p",
	}
}

// Option configures a Caret.
type Option func(*Caret)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Caret) { c.logger = logging.Component(l, "fakecaret") }
}

// WithClock sets the time source used to start the blink cycle.
func WithClock(now func() time.Time) Option {
	return func(c *Caret) { c.now = now }
}

// Caret shows and hides the fake caret. At most one caret is shown at a
// time. Caret is not safe for concurrent use; it runs on the event loop
// that owns the document.
type Caret struct {
	root     *html.Node
	geometry geom.Provider
	config   Config
	logger   *zap.Logger
	now      func() time.Time

	container *html.Node
	markers   map[*html.Node]struct{}
	visual    *html.Node
	rect      geom.Rect
	before    bool

	blinking  bool
	visible   bool
	lastBlink time.Time
}

// New creates a fake caret bound to root. A nil root is a programming error
// and panics.
func New(root *html.Node, g geom.Provider, cfg Config, opts ...Option) *Caret {
	if root == nil {
		panic("fake: caret requires a root")
	}
	if cfg.BlockTag == "" {
		cfg.BlockTag = DefaultConfig().BlockTag
	}
	c := &Caret{
		root:     root,
		geometry: g,
		config:   cfg,
		logger:   zap.NewNop(),
		now:      time.Now,
		markers:  make(map[*html.Node]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetConfig replaces the configuration. A running blink picks up the new
// rate on the next Tick.
func (c *Caret) SetConfig(cfg Config) {
	if cfg.BlockTag == "" {
		cfg.BlockTag = c.config.BlockTag
	}
	c.config = cfg
}

// Show hides any current caret and shows one before or after node. Block
// nodes get a block caret container plus a visual caret element at the
// node's edge; inline nodes get an inline caret container that hosts the
// native caret. The returned range is where the native selection goes.
func (c *Caret) Show(before bool, node *html.Node) (dom.Range, bool) {
	c.Hide()
	if node == nil || !dom.IsAttached(c.root, node) || node == c.root {
		return dom.Range{}, false
	}

	if caret.IsBlock(node) {
		return c.showBlock(before, node)
	}

	marker := c.insertMarker(node, before)
	if marker == nil {
		return dom.Range{}, false
	}
	c.container = marker
	c.before = before
	if next := marker.NextSibling; next != nil && caret.IsAtomic(next) {
		return dom.CollapsedAt(marker, 0), true
	}
	return dom.CollapsedAt(marker, len(marker.Data)), true
}

// insertMarker places an inline placeholder beside node. Only markers this
// caret inserted are reused; any other marker character is content.
func (c *Caret) insertMarker(node *html.Node, before bool) *html.Node {
	sibling := node.NextSibling
	if before {
		sibling = node.PrevSibling
	}
	var marker *html.Node
	if caret.IsText(sibling) && !c.Owns(sibling) {
		marker = caret.NewInline(node, before)
	} else {
		marker = caret.InsertInline(node, before)
	}
	if marker != nil {
		c.markers[marker] = struct{}{}
	}
	return marker
}

// Owns reports whether n is an inline placeholder inserted by this caret.
func (c *Caret) Owns(n *html.Node) bool {
	_, ok := c.markers[n]
	return ok
}

func (c *Caret) showBlock(before bool, node *html.Node) (dom.Range, bool) {
	block := caret.InsertBlock(c.config.BlockTag, node, before)
	if block == nil {
		return dom.Range{}, false
	}
	c.container = block
	c.before = before

	rect, ok := c.edgeRect(node, before)
	if !ok {
		c.logger.Debug("no geometry for block caret", zap.String("node", dom.Describe(node)))
		return dom.CollapsedAt(block, 0), true
	}
	dom.SetAttr(block, "style", fmt.Sprintf("top: %gpx", rect.Top))

	class := ClassVisualCaret
	if before {
		class += " " + ClassVisualCaretBefore
	}
	c.visual = dom.NewElement("div", "class", class, caret.AttrBogus, "all")
	c.rect = rect
	c.applyRect()
	dom.AppendChild(c.root, c.visual)
	c.startBlink()
	return dom.CollapsedAt(block, 0), true
}

func (c *Caret) edgeRect(node *html.Node, before bool) (geom.Rect, bool) {
	if c.geometry == nil {
		return geom.Rect{}, false
	}
	rects := geom.NonEmpty(c.geometry.NodeRects(node))
	if len(rects) == 0 {
		return geom.Rect{}, false
	}
	if before {
		return rects[0].Collapse(true), true
	}
	last := rects[len(rects)-1]
	return last.Collapse(false), true
}

func (c *Caret) applyRect() {
	dom.SetAttr(c.visual, "style", fmt.Sprintf("left: %gpx; top: %gpx; width: 1px; height: %gpx",
		c.rect.Left, c.rect.Top, c.rect.Height()))
}

// Reposition moves the visual caret to the current edge of the node it
// belongs to, after the layout changed.
func (c *Caret) Reposition() {
	if c.visual == nil || c.container == nil {
		return
	}
	node := c.container.PrevSibling
	if c.before {
		node = c.container.NextSibling
	}
	if node == nil {
		return
	}
	if rect, ok := c.edgeRect(node, c.before); ok {
		c.rect = rect
		c.applyRect()
	}
}

// Hide removes the caret. Empty caret containers are removed; containers
// that gained content are promoted instead. Inline placeholders left over
// from earlier carets are swept too. Safe to call when nothing is shown.
func (c *Caret) Hide() {
	if c.container != nil {
		caret.RemoveCaretContainer(c.container)
		delete(c.markers, c.container)
		c.container = nil
	}
	for m := range c.markers {
		if m.Parent != nil {
			caret.RemoveCaretContainer(m)
		}
		delete(c.markers, m)
	}
	if c.visual != nil {
		dom.Remove(c.visual)
		c.visual = nil
	}
	c.blinking = false
	c.visible = false
}

// Destroy hides the caret and stops blinking for good.
func (c *Caret) Destroy() {
	c.Hide()
}

func (c *Caret) startBlink() {
	c.visible = true
	c.lastBlink = c.now()
	c.blinking = c.config.BlinkEnabled && c.config.BlinkRate > 0
}

// Tick advances the blink cycle. It returns true if the visual caret
// toggled.
func (c *Caret) Tick(now time.Time) bool {
	if c.visual == nil || !c.blinking {
		return false
	}
	if now.Sub(c.lastBlink) < c.config.BlinkRate {
		return false
	}
	c.visible = !c.visible
	c.lastBlink = now

	class := ClassVisualCaret
	if c.before {
		class += " " + ClassVisualCaretBefore
	}
	if !c.visible {
		class += " " + ClassVisualCaretHidden
	}
	dom.SetAttr(c.visual, "class", class)
	return true
}

// IsShown returns true if a caret container is active.
func (c *Caret) IsShown() bool {
	return c.container != nil
}

// Visible reports whether the visual caret is in the on phase of its blink.
func (c *Caret) Visible() bool {
	return c.visual != nil && c.visible
}

// Container returns the active caret container, or nil.
func (c *Caret) Container() *html.Node {
	return c.container
}

// Element returns the visual caret element, or nil for inline carets.
func (c *Caret) Element() *html.Node {
	return c.visual
}

// Rect returns the visual caret rect.
func (c *Caret) Rect() (geom.Rect, bool) {
	if c.visual == nil {
		return geom.Rect{}, false
	}
	return c.rect, true
}
