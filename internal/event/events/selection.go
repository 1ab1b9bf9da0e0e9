package events

import (
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/event/topic"
)

// Selection notification topics.
const (
	// TopicCaretShown is published before a boundary caret is shown.
	// Cancelable: a prevented caret is not rendered.
	TopicCaretShown topic.Topic = "caret.shown"

	// TopicCaretContainerShown is published when a block caret container is
	// promoted to real content.
	TopicCaretContainerShown topic.Topic = "caret.container.shown"

	// TopicBeforeObjectSelected is published before an atomic node becomes
	// the selection target. Cancelable.
	TopicBeforeObjectSelected topic.Topic = "object.beforeselect"

	// TopicObjectSelected is published when an atomic node is selected.
	// Handlers may replace TargetClone, the content placed in the mirror.
	TopicObjectSelected topic.Topic = "object.selected"

	// TopicObjectDeleted is published after an atomic node is deleted.
	TopicObjectDeleted topic.Topic = "object.deleted"

	// TopicEditableSelected is published when the user clicks into an
	// editable region nested in an atomic node.
	TopicEditableSelected topic.Topic = "editable.selected"

	// TopicStateChanged is published when the coordinator state changes.
	TopicStateChanged topic.Topic = "selection.state.changed"
)

// Cancelable is embedded by payloads whose default action can be vetoed.
type Cancelable struct {
	prevented bool
}

// PreventDefault vetoes the default action.
func (c *Cancelable) PreventDefault() {
	c.prevented = true
}

// DefaultPrevented reports whether a handler vetoed the default action.
func (c *Cancelable) DefaultPrevented() bool {
	return c.prevented
}

// CaretShown is published before a boundary caret is shown.
type CaretShown struct {
	Cancelable

	// Target is the atomic node the caret is placed next to.
	Target *html.Node

	// Direction is 1 for a forward move, -1 for backward.
	Direction int

	// Before is true when the caret sits before Target.
	Before bool
}

// CaretContainerShown is published when a block caret container is
// promoted.
type CaretContainerShown struct {
	Target *html.Node
}

// BeforeObjectSelected is published before an atomic node is selected.
type BeforeObjectSelected struct {
	Cancelable

	Target *html.Node
}

// ObjectSelected is published when an atomic node is selected.
type ObjectSelected struct {
	Cancelable

	// Target is the selected node in the document.
	Target *html.Node

	// TargetClone is the deep clone placed in the mirror.
	TargetClone *html.Node
}

// ObjectDeleted is published after an atomic node was removed.
type ObjectDeleted struct {
	Target *html.Node

	// Reason is "backspace", "delete" or "cut".
	Reason string
}

// EditableSelected is published when an editable region nested in an atomic
// node is clicked.
type EditableSelected struct {
	Target *html.Node
}

// StateChanged is published when the coordinator state changes.
type StateChanged struct {
	From string
	To   string

	// Target is the atomic node of the new state, if any.
	Target *html.Node
}
