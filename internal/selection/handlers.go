package selection

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/caret/line"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/event/events"
	"github.com/dshills/caretkit/internal/input/key"
	"github.com/dshills/caretkit/internal/input/mouse"
)

// KeyDown handles arrow keys, Backspace and Delete around atomic nodes.
// While an object is selected, content keys are suppressed.
func (c *Coordinator) KeyDown(ev *KeyEvent) {
	if c.destroyed || ev == nil || ev.DefaultPrevented() || ev.IsModified() {
		return
	}
	r, ok := c.Range()
	if !ok {
		return
	}

	shift := ev.Modifiers.Has(key.ModShift)
	switch ev.Key {
	case key.KeyLeft, key.KeyRight:
		if shift {
			return
		}
		dir := arrowDirection(ev.Key)
		if !c.override(ev, "moveH", func() (dom.Range, error) { return c.moveH(dir, r) }) {
			c.override(ev, "exitPre", func() (dom.Range, error) { return c.exitPreBlock(dir, r) })
		}
	case key.KeyUp, key.KeyDown:
		if shift {
			return
		}
		dir := arrowDirection(ev.Key)
		if !c.override(ev, "moveV", func() (dom.Range, error) { return c.moveV(dir, r) }) {
			c.override(ev, "exitPre", func() (dom.Range, error) { return c.exitPreBlock(dir, r) })
		}
	case key.KeyBackspace, key.KeyDelete:
		dir := caret.Forward
		if ev.Key == key.KeyBackspace {
			dir = caret.Backward
		}
		overridden := c.override(ev, "backspaceDelete", func() (dom.Range, error) { return c.backspaceDelete(dir, r) })
		if !overridden && c.selected != nil {
			// Native editing would act on the mirror.
			ev.PreventDefault()
		}
	default:
		if c.selected != nil && ev.IsContentKey() {
			ev.PreventDefault()
		}
	}
}

func arrowDirection(k key.Key) caret.Direction {
	if k == key.KeyLeft || k == key.KeyUp {
		return caret.Backward
	}
	return caret.Forward
}

// KeyUp promotes placeholders that gained typed content.
func (c *Coordinator) KeyUp(ev *KeyEvent) {
	if c.destroyed || ev == nil {
		return
	}
	c.promoteTyped()
}

// CompositionStart promotes placeholders before an input method starts
// composing into them.
func (c *Coordinator) CompositionStart() {
	if c.destroyed {
		return
	}
	c.promoteTyped()
}

func (c *Coordinator) promoteTyped() {
	r, ok := c.host.Range()
	if !ok {
		return
	}
	if block := caret.CaretContainerBlockOf(r.StartContainer); block != nil {
		if caret.HasContent(block) {
			c.ShowBlockCaretContainer(block)
		}
		return
	}

	// Only the fake caret's own placeholder is trimmed; marker characters
	// elsewhere are user content.
	t := r.StartContainer
	if t != c.fake.Container() || !dom.IsText(t) || caret.IsCaretContainerInline(t) {
		return
	}
	start, end := pinRange(r)
	c.fake.Hide()
	if out, ok := unpinRange(start, end); ok {
		c.host.SetRange(out)
	}
	c.updateState()
}

// MouseDown selects atomic nodes on click and snaps clicks near an atomic
// node to its boundary.
func (c *Coordinator) MouseDown(ev *MouseEvent) {
	if c.destroyed || ev == nil || ev.Action != mouse.ActionPress {
		return
	}
	target := ev.Target
	if target == nil || !dom.Contains(c.root, target) || (c.mirror != nil && dom.Contains(c.mirror, target)) {
		target = c.root
	}

	var object *html.Node
	editable := false
	for n := target; n != nil && n != c.root; n = n.Parent {
		if caret.IsContentEditableTrue(n) {
			editable = true
			break
		}
		if isSelectable(n) {
			object = n
		}
	}

	switch {
	case object != nil:
		ev.PreventDefault()
		c.host.Focus()
		r, err := c.selectNode(object)
		if err != nil {
			c.logger.Debug("object not selected", zap.Error(&OperationError{Op: "mouseSelect", Err: err}))
			return
		}
		c.setRange(r)
		c.later(func() {
			if c.selected != object && dom.IsAttached(c.root, object) {
				if r, err := c.selectNode(object); err == nil {
					c.setRange(r)
				}
			}
		})
		return
	case editable:
		c.clearObjectSelection()
		c.hideFakeCaret()
		publish(c, events.TopicEditableSelected, &events.EditableSelected{Target: target})
		c.updateState()
		return
	}

	c.clearObjectSelection()
	c.hideFakeCaret()
	c.updateState()
	if c.lines == nil {
		return
	}
	info, ok := c.lines.ClosestCaret(ev.X, ev.Y)
	if !ok || !c.withinSnap(info) || c.hasBetterMouseTarget(target, info.Node) {
		return
	}
	ev.PreventDefault()
	c.host.Focus()
	if r, err := c.showCaret(caret.Forward, info.Node, info.Before); err == nil {
		c.setRange(r)
	}
}

func (c *Coordinator) withinSnap(info line.CaretInfo) bool {
	d := c.config.Mouse.SnapDistance
	return d <= 0 || info.Distance <= d
}

// hasBetterMouseTarget reports whether the clicked block is unrelated to the
// snap candidate, in which case the native hit test is trusted.
func (c *Coordinator) hasBetterMouseTarget(target, node *html.Node) bool {
	block := caret.ParentBlock(target, c.root)
	return block != c.root && !dom.Contains(block, node)
}

// Copy writes the object selection to the clipboard.
func (c *Coordinator) Copy(ev *ClipboardEvent) {
	c.clipboard(ev, false)
}

// Cut writes the object selection to the clipboard and deletes the object.
func (c *Coordinator) Cut(ev *ClipboardEvent) {
	c.clipboard(ev, true)
}

func (c *Coordinator) clipboard(ev *ClipboardEvent, cut bool) {
	if c.destroyed || ev == nil || c.selected == nil || !dom.IsAttached(c.root, c.selected) {
		return
	}
	clone := c.mirrorClone()
	if clone == nil {
		return
	}
	ev.PreventDefault()
	if ev.Data == nil {
		ev.Data = NewClipboardData()
	}
	ev.Data.Clear()
	markup := dom.OuterHTML(clone)
	ev.Data.SetData(MIMEPlain, dom.TextContent(clone))
	ev.Data.SetData(MIMEHTML, markup)
	ev.Data.SetData(MIMEInternalHTML, markup)

	if !cut {
		return
	}
	r, err := c.deleteAtomic(c.selected, ReasonCut)
	if err != nil {
		c.logger.Debug("cut kept object", zap.Error(&OperationError{Op: "cut", Err: err}))
		return
	}
	c.setRange(r)
}

// SelectionChange reacts to a native selection change.
func (c *Coordinator) SelectionChange() {
	if c.destroyed {
		return
	}
	r, ok := c.host.Range()
	if !ok {
		c.logger.Debug("native range discarded")
		return
	}
	if c.inMirror(r) {
		c.updateState()
		return
	}

	c.clearObjectSelection()
	if caret.IsRangeInCaretContainer(r) {
		c.sweep(r.StartContainer)
	} else if c.fake.IsShown() {
		if out := c.hideStable(r); out != r {
			c.host.SetRange(out)
			r = out
		}
	}
	c.lastRange, c.hasLast = r, true
	c.updateState()
}

// sweep removes every placeholder except the one holding n.
func (c *Coordinator) sweep(n *html.Node) {
	var keepInline, keepBlock *html.Node
	if caret.IsCaretContainerInline(n) {
		keepInline = n
	}
	keepBlock = caret.CaretContainerBlockOf(n)
	caret.TrimInlineCaretContainers(c.root, keepInline, c.fake.Owns)
	caret.SweepCaretContainerBlocks(c.root, keepBlock)
}

// Focus re-renders the caret at the last known range.
func (c *Coordinator) Focus() {
	if c.destroyed {
		return
	}
	r, ok := c.lastRange, c.hasLast && c.lastRange.Valid() && c.lastRange.Within(c.root)
	if !ok {
		r, ok = c.host.Range()
	}
	if !ok {
		return
	}
	if c.fake.IsShown() && !caret.IsRangeInCaretContainer(r) {
		r = c.hideStable(r)
	}
	c.sweep(r.StartContainer)
	out, err := c.renderRangeCaret(r)
	if err != nil {
		out = r
	}
	c.setRange(out)
}

// Blur drops the object selection and hides the fake caret. The object
// selection is re-established on Focus.
func (c *Coordinator) Blur() {
	if c.destroyed {
		return
	}
	if c.selected != nil {
		if r, ok := dom.SelectNode(c.selected); ok {
			c.lastRange, c.hasLast = r, true
		}
	}
	c.clearObjectSelection()
	c.hideFakeCaret()
	c.updateState()
}

// ShowBlockCaretContainer promotes a block caret container to real content.
func (c *Coordinator) ShowBlockCaretContainer(n *html.Node) {
	if c.destroyed || !dom.IsElement(n) || !dom.HasAttr(n, caret.AttrCaret) {
		return
	}
	r, ok := c.host.Range()
	caret.ShowCaretContainerBlock(n)
	c.fake.Hide()
	publish(c, events.TopicCaretContainerShown, &events.CaretContainerShown{Target: n})
	if ok {
		if !r.Valid() {
			r = dom.CollapsedAt(n, dom.ChildCount(n))
		}
		c.host.SetRange(r)
	}
	c.updateState()
}

// HideFakeCaret hides the fake caret, keeping the native range in place.
func (c *Coordinator) HideFakeCaret() {
	if c.destroyed {
		return
	}
	c.hideFakeCaret()
	c.updateState()
}

func (c *Coordinator) hideFakeCaret() {
	if !c.fake.IsShown() {
		return
	}
	r, ok := c.host.Range()
	if !ok {
		c.fake.Hide()
		return
	}
	out := c.hideStable(r)
	c.host.SetRange(out)
}

// Tick advances the fake caret blink. It reports whether the caret toggled.
func (c *Coordinator) Tick(now time.Time) bool {
	if c.destroyed {
		return false
	}
	return c.fake.Tick(now)
}

// Destroy removes every trace of the coordinator from the document. All
// handlers become no-ops afterwards.
func (c *Coordinator) Destroy() {
	if c.destroyed {
		return
	}
	c.fake.Destroy()
	c.clearObjectSelection()
	caret.SweepCaretContainerBlocks(c.root, nil)
	c.destroyed = true
	c.deferred = nil
	c.logger.Debug("destroyed")
}
