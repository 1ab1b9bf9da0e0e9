// Package mouse defines pointer events delivered to the editing surface.
package mouse

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/caretkit/internal/input/key"
)

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button.
	ButtonMiddle
	// ButtonRight is the secondary mouse button.
	ButtonRight
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// ParseButton parses "left", "middle" or "right". An empty name is left.
func ParseButton(name string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "left":
		return ButtonLeft, nil
	case "middle":
		return ButtonMiddle, nil
	case "right":
		return ButtonRight, nil
	}
	return ButtonNone, fmt.Errorf("unknown mouse button %q", name)
}

// Action represents the type of mouse action.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionPress indicates a button press.
	ActionPress
	// ActionRelease indicates a button release.
	ActionRelease
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	default:
		return "none"
	}
}

// Event is a mouse event in client coordinates.
type Event struct {
	Button    Button
	Action    Action
	X         float64
	Y         float64
	Modifiers key.Modifier
	Timestamp time.Time
}

// NewPress creates a press event at (x, y).
func NewPress(b Button, x, y float64, mods key.Modifier) Event {
	return Event{Button: b, Action: ActionPress, X: x, Y: y, Modifiers: mods, Timestamp: time.Now()}
}

// IsPrimary returns true for left button events.
func (e Event) IsPrimary() bool {
	return e.Button == ButtonLeft
}

// String returns a debug representation such as "left press (3,1)".
func (e Event) String() string {
	s := fmt.Sprintf("%s %s (%g,%g)", e.Button, e.Action, e.X, e.Y)
	if e.Modifiers != key.ModNone {
		s = e.Modifiers.String() + "+" + s
	}
	return s
}
