package selection

import (
	"golang.org/x/net/html"

	"github.com/dshills/caretkit/internal/input/key"
	"github.com/dshills/caretkit/internal/input/mouse"
)

// Clipboard flavors written for an object selection.
const (
	MIMEHTML         = "text/html"
	MIMEPlain        = "text/plain"
	MIMEInternalHTML = "application/x-mce-html"
)

// Event is an input event whose native default action can be suppressed.
type Event interface {
	PreventDefault()
	DefaultPrevented() bool
}

// Cancelable implements Event. It is embedded by the concrete event types.
type Cancelable struct {
	prevented bool
}

// PreventDefault suppresses the native default action.
func (c *Cancelable) PreventDefault() {
	c.prevented = true
}

// DefaultPrevented reports whether the native default action is suppressed.
func (c *Cancelable) DefaultPrevented() bool {
	return c.prevented
}

// KeyEvent is a keydown or keyup.
type KeyEvent struct {
	Cancelable
	key.Event
}

// NewKeyEvent wraps a key event.
func NewKeyEvent(ev key.Event) *KeyEvent {
	return &KeyEvent{Event: ev}
}

// MouseEvent is a mousedown.
type MouseEvent struct {
	Cancelable
	mouse.Event

	// Target is the node under the pointer.
	Target *html.Node
}

// NewMouseEvent wraps a mouse event aimed at target.
func NewMouseEvent(ev mouse.Event, target *html.Node) *MouseEvent {
	return &MouseEvent{Event: ev, Target: target}
}

// ClipboardEvent is a copy or cut.
type ClipboardEvent struct {
	Cancelable

	Data *ClipboardData
}

// NewClipboardEvent creates a clipboard event with empty data.
func NewClipboardEvent() *ClipboardEvent {
	return &ClipboardEvent{Data: NewClipboardData()}
}

// ClipboardData holds clipboard flavors keyed by MIME type.
type ClipboardData struct {
	items map[string]string
	order []string
}

// NewClipboardData creates empty clipboard data.
func NewClipboardData() *ClipboardData {
	return &ClipboardData{items: make(map[string]string)}
}

// SetData stores data for a MIME type.
func (d *ClipboardData) SetData(mime, data string) {
	if _, ok := d.items[mime]; !ok {
		d.order = append(d.order, mime)
	}
	d.items[mime] = data
}

// GetData returns the data for a MIME type, or "".
func (d *ClipboardData) GetData(mime string) string {
	return d.items[mime]
}

// Clear removes every flavor.
func (d *ClipboardData) Clear() {
	d.items = make(map[string]string)
	d.order = nil
}

// Types returns the stored MIME types in insertion order.
func (d *ClipboardData) Types() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Map returns a copy of the stored flavors.
func (d *ClipboardData) Map() map[string]string {
	out := make(map[string]string, len(d.items))
	for k, v := range d.items {
		out[k] = v
	}
	return out
}
