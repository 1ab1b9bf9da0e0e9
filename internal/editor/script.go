package editor

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/caretkit/internal/input/key"
)

// Step is one scripted input action. Exactly one field is set.
//
//	- key: Right
//	- type: hello
//	- click: {x: 4, y: 0.5}
//	- copy: true
//	- tick: 500ms
type Step struct {
	Key   string `yaml:"key,omitempty"`
	Type  string `yaml:"type,omitempty"`
	Click *Point `yaml:"click,omitempty"`
	Copy  bool   `yaml:"copy,omitempty"`
	Cut   bool   `yaml:"cut,omitempty"`
	Focus bool   `yaml:"focus,omitempty"`
	Blur  bool   `yaml:"blur,omitempty"`
	Tick  string `yaml:"tick,omitempty"`
}

// Point is a layout coordinate in cells.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Action returns the name of the step's action, or "" if it has none.
func (s Step) Action() string {
	names := s.actions()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func (s Step) actions() []string {
	var names []string
	if s.Key != "" {
		names = append(names, "key")
	}
	if s.Type != "" {
		names = append(names, "type")
	}
	if s.Click != nil {
		names = append(names, "click")
	}
	if s.Copy {
		names = append(names, "copy")
	}
	if s.Cut {
		names = append(names, "cut")
	}
	if s.Focus {
		names = append(names, "focus")
	}
	if s.Blur {
		names = append(names, "blur")
	}
	if s.Tick != "" {
		names = append(names, "tick")
	}
	return names
}

// Validate checks that the step names exactly one well-formed action.
func (s Step) Validate() error {
	switch n := len(s.actions()); {
	case n == 0:
		return ErrEmptyStep
	case n > 1:
		return ErrAmbiguousStep
	}
	if s.Key != "" {
		if _, err := key.Parse(s.Key); err != nil {
			return err
		}
	}
	if s.Tick != "" {
		if _, err := time.ParseDuration(s.Tick); err != nil {
			return fmt.Errorf("invalid tick %q: %w", s.Tick, err)
		}
	}
	return nil
}

// String returns the step in its YAML shorthand.
func (s Step) String() string {
	switch s.Action() {
	case "key":
		return "key " + s.Key
	case "type":
		return fmt.Sprintf("type %q", s.Type)
	case "click":
		return fmt.Sprintf("click (%g,%g)", s.Click.X, s.Click.Y)
	case "tick":
		return "tick " + s.Tick
	case "":
		return "empty"
	default:
		return s.Action()
	}
}

// ParseScript reads a YAML list of steps and validates each one.
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step
	if err := yaml.NewDecoder(r).Decode(&steps); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &OperationError{Op: "parse script", Err: err}
	}
	for i, s := range steps {
		if err := s.Validate(); err != nil {
			return nil, &StepError{Index: i, Err: err}
		}
	}
	return steps, nil
}

// Apply runs one step.
func (e *Editor) Apply(s Step) error {
	if e.closed {
		return ErrClosed
	}
	if err := s.Validate(); err != nil {
		return err
	}
	switch s.Action() {
	case "key":
		ev, _ := key.Parse(s.Key)
		e.HandleKey(key.NewEvent(ev.Key, ev.Rune, ev.Modifiers))
	case "type":
		e.Type(s.Type)
	case "click":
		e.Click(s.Click.X, s.Click.Y)
	case "copy":
		e.Copy()
	case "cut":
		e.Cut()
	case "focus":
		e.Focus()
	case "blur":
		e.Blur()
	case "tick":
		d, _ := time.ParseDuration(s.Tick)
		e.Tick(time.Now().Add(d))
	}
	return nil
}

// Run applies steps in order, calling observe after each one. It stops at
// the first step that fails.
func (e *Editor) Run(steps []Step, observe func(i int, s Step, snap Snapshot)) error {
	for i, s := range steps {
		if err := e.Apply(s); err != nil {
			return &StepError{Index: i, Err: err}
		}
		if observe != nil {
			observe(i, s, e.Snapshot())
		}
	}
	return nil
}
