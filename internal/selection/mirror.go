package selection

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/dom"
	"github.com/dshills/caretkit/internal/event/events"
)

// ClassMirror is the class of the offscreen mirror element.
const ClassMirror = "mce-offscreen-selection"

// nbsp pads the mirror clone so the native range has text to anchor in.
const nbsp = "\u00a0"

// selectObject makes node the object selection. Observers may replace the
// clone placed in the mirror, or veto the selection.
func (c *Coordinator) selectObject(node *html.Node) (dom.Range, bool) {
	clone := dom.Clone(node, true)
	ev := &events.ObjectSelected{Target: node, TargetClone: clone}
	publish(c, events.TopicObjectSelected, ev)
	if ev.DefaultPrevented() {
		c.clearObjectSelection()
		return dom.Range{}, false
	}
	if ev.TargetClone != nil {
		clone = ev.TargetClone
	}

	c.clearObjectSelection()
	c.mirror = dom.NewElement("div",
		"id", c.mirrorID,
		"class", ClassMirror,
		caret.AttrBogus, "all",
	)
	dom.AppendChild(c.mirror, dom.NewText(nbsp))
	dom.AppendChild(c.mirror, clone)
	dom.AppendChild(c.mirror, dom.NewText(nbsp))
	dom.AppendChild(c.root, c.mirror)

	dom.SetAttr(node, caret.AttrSelected, "1")
	c.selected = node
	c.logger.Debug("object selected", zap.String("node", dom.Describe(node)))
	return c.mirrorRange(), true
}

// mirrorRange spans the clone inside the mirror, excluding the padding.
func (c *Coordinator) mirrorRange() dom.Range {
	return dom.Range{
		StartContainer: c.mirror.FirstChild, StartOffset: len(nbsp),
		EndContainer: c.mirror.LastChild, EndOffset: 0,
	}
}

// mirrorClone returns the clone held by the mirror.
func (c *Coordinator) mirrorClone() *html.Node {
	if c.mirror == nil || c.mirror.FirstChild == nil {
		return nil
	}
	return c.mirror.FirstChild.NextSibling
}

// inMirror reports whether r starts inside the mirror.
func (c *Coordinator) inMirror(r dom.Range) bool {
	return c.mirror != nil && dom.Contains(c.mirror, r.StartContainer)
}

// clearObjectSelection drops the object selection and the mirror.
func (c *Coordinator) clearObjectSelection() {
	if c.selected != nil {
		dom.RemoveAttr(c.selected, caret.AttrSelected)
		c.selected = nil
	}
	for _, n := range dom.QueryAll(c.root, caret.SelectorSelected) {
		dom.RemoveAttr(n, caret.AttrSelected)
	}
	if c.mirror != nil {
		dom.Remove(c.mirror)
		c.mirror = nil
	}
}
