package selection

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/google/uuid"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/caret/fake"
	"github.com/dshills/caretkit/internal/caret/line"
	"github.com/dshills/caretkit/internal/config"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/event"
	"github.com/dshills/caretkit/internal/event/events"
	"github.com/dshills/caretkit/internal/event/topic"
	"github.com/dshills/caretkit/internal/logging"
)

// Source is the event source name used for notifications.
const Source = "selection"

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBus sets the notification bus. By default the coordinator creates its
// own.
func WithBus(b *event.Bus) Option {
	return func(c *Coordinator) { c.bus = b }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.base = logging.OrNop(l) }
}

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *Coordinator) {
		if cfg != nil {
			c.config = cfg.Clone()
		}
	}
}

// Coordinator overrides native caret and selection behavior around atomic
// nodes for one editor. It is the only writer of the selection state.
// Coordinator is not safe for concurrent use; all handlers run on the event
// loop that owns the document.
type Coordinator struct {
	host   Host
	root   *html.Node
	bus    *event.Bus
	config *config.Config
	base   *zap.Logger
	logger *zap.Logger
	ctx    context.Context

	walker *caret.Walker
	lines  *line.Walker
	fake   *fake.Caret

	mirrorID string
	mirror   *html.Node
	selected *html.Node

	lastRange dom.Range
	hasLast   bool

	state     State
	destroyed bool
	deferred  []func()
}

// New creates a coordinator for host. A host without a root is a programming
// error and panics.
func New(host Host, opts ...Option) *Coordinator {
	if host == nil || host.Root() == nil {
		panic("selection: coordinator requires a host with a root")
	}
	c := &Coordinator{
		host:     host,
		root:     host.Root(),
		config:   config.Default(),
		base:     zap.NewNop(),
		ctx:      context.Background(),
		mirrorID: "sel-" + uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Component(c.base, "selection")
	if c.bus == nil {
		c.bus = event.NewBus(event.WithLogger(c.logger))
	}

	c.walker = caret.NewWalker(c.root)
	g := host.Geometry()
	if g != nil {
		c.lines = line.NewWalker(c.root, g, c.config.Relation())
	}
	c.fake = fake.New(c.root, g, c.config.FakeCaret(), fake.WithLogger(c.base))
	return c
}

// Bus returns the notification bus.
func (c *Coordinator) Bus() *event.Bus {
	return c.bus
}

// State returns the current selection state.
func (c *Coordinator) State() State {
	return c.state
}

// SelectedNode returns the object-selected node, or nil.
func (c *Coordinator) SelectedNode() *html.Node {
	return c.selected
}

// Mirror returns the offscreen mirror element, or nil when nothing is
// object-selected.
func (c *Coordinator) Mirror() *html.Node {
	return c.mirror
}

// FakeCaret returns the fake caret.
func (c *Coordinator) FakeCaret() *fake.Caret {
	return c.fake
}

// SetConfig applies a new configuration, for example after a reload.
func (c *Coordinator) SetConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	c.config = cfg.Clone()
	c.fake.SetConfig(c.config.FakeCaret())
	if g := c.host.Geometry(); g != nil {
		c.lines = line.NewWalker(c.root, g, c.config.Relation())
	}
}

// Range returns the effective selection: the object-selected node while one
// is selected, otherwise the native range.
func (c *Coordinator) Range() (dom.Range, bool) {
	if c.selected != nil && dom.IsAttached(c.root, c.selected) {
		return dom.SelectNode(c.selected)
	}
	return c.host.Range()
}

// setRange writes r to the host, first turning it into an object selection
// or a boundary caret when it describes one.
func (c *Coordinator) setRange(r dom.Range) {
	if r.IsZero() {
		return
	}
	if c.fake.IsShown() && !caret.IsRangeInCaretContainer(r) {
		r = c.hideStable(r)
	}
	if sel, ok := c.setObjectSelection(r); ok {
		r = sel
	}
	c.host.SetRange(r)
	c.updateState()
}

// setObjectSelection returns the range the host should hold for r. Collapsed
// ranges beside an atomic node become boundary carets; a range wrapping one
// selectable node becomes an object selection.
func (c *Coordinator) setObjectSelection(r dom.Range) (dom.Range, bool) {
	if r.Collapsed() {
		c.clearObjectSelection()
		if caret.IsRangeInCaretContainer(r) {
			return dom.Range{}, false
		}
		pos := caret.FromRangeStart(r)
		if n := caret.BeforeAtomic(pos); n != nil {
			if rng, err := c.showCaret(caret.Forward, n, true); err == nil {
				return rng, true
			}
		}
		if n := caret.AfterAtomic(pos); n != nil {
			if rng, err := c.showCaret(caret.Backward, n, false); err == nil {
				return rng, true
			}
		}
		return dom.Range{}, false
	}

	node := r.SelectedNode()
	if node == nil || !isSelectable(node) {
		c.clearObjectSelection()
		return dom.Range{}, false
	}
	if node == c.selected && c.mirror != nil {
		return c.mirrorRange(), true
	}
	return c.selectObject(node)
}

// hideStable hides the fake caret while keeping r pointing at the same
// places.
func (c *Coordinator) hideStable(r dom.Range) dom.Range {
	start, end := pinRange(r)
	c.fake.Hide()
	if out, ok := unpinRange(start, end); ok {
		return out
	}
	c.logger.Debug("range lost while hiding fake caret", zap.Stringer("range", r))
	return r
}

// showCaret places a boundary caret before or after node.
func (c *Coordinator) showCaret(dir caret.Direction, node *html.Node, before bool) (dom.Range, error) {
	if node == nil || !dom.IsAttached(c.root, node) {
		return dom.Range{}, ErrDetached
	}
	ev := &events.CaretShown{Target: node, Direction: int(dir), Before: before}
	publish(c, events.TopicCaretShown, ev)
	if ev.DefaultPrevented() {
		return dom.Range{}, ErrCanceled
	}
	c.host.ScrollIntoView(node, dir == caret.Backward)
	r, ok := c.fake.Show(before, node)
	if !ok {
		return dom.Range{}, ErrDetached
	}
	c.logger.Debug("boundary caret",
		zap.String("node", dom.Describe(node)), zap.Bool("before", before))
	return r, nil
}

// selectNode returns the range selecting node, after observers agreed.
func (c *Coordinator) selectNode(node *html.Node) (dom.Range, error) {
	c.fake.Hide()
	if node == nil || !dom.IsAttached(c.root, node) {
		return dom.Range{}, ErrDetached
	}
	ev := &events.BeforeObjectSelected{Target: node}
	publish(c, events.TopicBeforeObjectSelected, ev)
	if ev.DefaultPrevented() {
		return dom.Range{}, ErrCanceled
	}
	r, ok := dom.SelectNode(node)
	if !ok {
		return dom.Range{}, ErrDetached
	}
	return r, nil
}

// renderRangeCaret turns a collapsed range beside an atomic node into a
// boundary caret. Other ranges are returned unchanged.
func (c *Coordinator) renderRangeCaret(r dom.Range) (dom.Range, error) {
	if !r.Collapsed() {
		return r, nil
	}
	pos := caret.FromRangeStart(r)
	if n := caret.BeforeAtomic(pos); n != nil {
		return c.showCaret(caret.Forward, n, true)
	}
	if n := caret.AfterAtomic(pos); n != nil {
		return c.showCaret(caret.Backward, n, false)
	}
	return r, nil
}

// override runs fn and, when it yields a range, suppresses the native
// default of ev and writes the range. It reports whether it overrode.
func (c *Coordinator) override(ev Event, op string, fn func() (dom.Range, error)) bool {
	r, err := fn()
	if err != nil {
		c.logger.Debug("native default kept", zap.Error(&OperationError{Op: op, Err: err}))
		return false
	}
	if r.IsZero() || ev.DefaultPrevented() {
		return false
	}
	ev.PreventDefault()
	c.setRange(r)
	c.logger.Debug("override", zap.String("op", op), zap.Stringer("range", r))
	return true
}

// publish delivers a notification with a typed payload. Delivery failures
// are logged.
func publish[T any](c *Coordinator, t topic.Topic, payload T) {
	if err := c.bus.Publish(c.ctx, event.NewEvent(t, payload, Source)); err != nil {
		c.logger.Debug("publish failed", zap.String("topic", t.String()), zap.Error(err))
	}
}

// updateState derives the state and notifies observers when it changed.
func (c *Coordinator) updateState() {
	next := StateText
	var target *html.Node
	switch {
	case c.selected != nil:
		next, target = StateObjectSelected, c.selected
	case c.fake.IsShown():
		next, target = StateBoundary, c.boundaryNode()
	}
	if next == c.state {
		return
	}
	prev := c.state
	c.state = next
	c.logger.Debug("state changed", zap.Stringer("from", prev), zap.Stringer("to", next))
	publish(c, events.TopicStateChanged, &events.StateChanged{From: prev.String(), To: next.String(), Target: target})
}

// boundaryNode returns the atomic node the fake caret sits beside.
func (c *Coordinator) boundaryNode() *html.Node {
	container := c.fake.Container()
	if container == nil {
		return nil
	}
	if dom.IsElement(container) {
		if dom.AttrValue(container, caret.AttrCaret) == "before" {
			return container.NextSibling
		}
		return container.PrevSibling
	}
	if n := caret.BeforeAtomic(caret.NewPosition(container, 0)); n != nil {
		return n
	}
	return caret.AfterAtomic(caret.NewPosition(container, 0))
}

// later queues fn to run on the next RunDeferred, unless the coordinator is
// destroyed first.
func (c *Coordinator) later(fn func()) {
	c.deferred = append(c.deferred, fn)
}

// RunDeferred runs the callbacks queued since the last call. The host calls
// it on its next tick.
func (c *Coordinator) RunDeferred() {
	fns := c.deferred
	c.deferred = nil
	for _, fn := range fns {
		if c.destroyed {
			return
		}
		fn()
	}
}

func isSelectable(n *html.Node) bool {
	return caret.IsAtomic(n) || caret.IsContentEditableFalse(n)
}

// endpoint returns the normalized end of r in the direction of travel.
func endpoint(dir caret.Direction, r dom.Range) caret.Position {
	if dir.IsForward() {
		return caret.Normalize(caret.FromRangeEnd(r))
	}
	return caret.Normalize(caret.FromRangeStart(r))
}

// boundaryFn returns the query for the atomic node a position faces when
// travelling in dir.
func boundaryFn(dir caret.Direction) func(caret.Position) *html.Node {
	if dir.IsForward() {
		return caret.BeforeAtomic
	}
	return caret.AfterAtomic
}
