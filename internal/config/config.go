package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/caretkit/internal/caret/fake"
	"github.com/dshills/caretkit/internal/geom"
	"github.com/dshills/caretkit/internal/layout"
	"github.com/dshills/caretkit/internal/logging"
)

// Config is the complete caretkit configuration.
type Config struct {
	Caret  CaretConfig    `toml:"caret" yaml:"caret"`
	Line   LineConfig     `toml:"line" yaml:"line"`
	Mouse  MouseConfig    `toml:"mouse" yaml:"mouse"`
	Layout LayoutConfig   `toml:"layout" yaml:"layout"`
	Log    logging.Config `toml:"log" yaml:"log"`
}

// CaretConfig configures the fake caret and caret containers.
type CaretConfig struct {
	// BlinkEnabled enables fake caret blinking.
	BlinkEnabled bool `toml:"blinkEnabled" yaml:"blinkEnabled"`

	// BlinkRate is the blink interval.
	BlinkRate Duration `toml:"blinkRate" yaml:"blinkRate"`

	// BlockTag is the tag of block caret containers.
	BlockTag string `toml:"blockTag" yaml:"blockTag"`

	// ForcedRootBlock is the tag used when a caret container is promoted
	// to a paragraph of its own.
	ForcedRootBlock string `toml:"forcedRootBlock" yaml:"forcedRootBlock"`
}

// LineConfig configures visual line grouping.
type LineConfig struct {
	// Tolerance is the vertical overlap ratio above which two rects share
	// a line. Must be in (0, 1].
	Tolerance float64 `toml:"tolerance" yaml:"tolerance"`
}

// MouseConfig configures mouse snapping.
type MouseConfig struct {
	// SnapDistance is the maximum horizontal distance at which a click
	// snaps to an atomic node boundary. Zero means any distance on the
	// click line.
	SnapDistance float64 `toml:"snapDistance" yaml:"snapDistance"`
}

// LayoutConfig configures the monospace layout engine.
type LayoutConfig struct {
	// Width is the viewport width in cells.
	Width int `toml:"width" yaml:"width"`

	// AtomicWidth is the default cell width of atomic inline nodes without
	// a width attribute.
	AtomicWidth int `toml:"atomicWidth" yaml:"atomicWidth"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Caret: CaretConfig{
			BlinkEnabled:    true,
			BlinkRate:       Duration{500 * time.Millisecond},
			BlockTag:        "p",
			ForcedRootBlock: "p",
		},
		Line: LineConfig{
			Tolerance: geom.DefaultTolerance,
		},
		Layout: LayoutConfig{
			Width:       80,
			AtomicWidth: 3,
		},
		Log: logging.DefaultConfig(),
	}
}

// Validate checks every setting and returns all violations joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Caret.BlinkRate.Duration <= 0 {
		errs = append(errs, &ValidationError{Path: "caret.blinkRate", Value: c.Caret.BlinkRate, Message: "must be positive"})
	}
	if c.Caret.BlockTag == "" {
		errs = append(errs, &ValidationError{Path: "caret.blockTag", Value: c.Caret.BlockTag, Message: "must not be empty"})
	}
	if c.Caret.ForcedRootBlock == "" {
		errs = append(errs, &ValidationError{Path: "caret.forcedRootBlock", Value: c.Caret.ForcedRootBlock, Message: "must not be empty"})
	}
	if c.Line.Tolerance <= 0 || c.Line.Tolerance > 1 {
		errs = append(errs, &ValidationError{Path: "line.tolerance", Value: c.Line.Tolerance, Message: "must be in (0, 1]"})
	}
	if c.Mouse.SnapDistance < 0 {
		errs = append(errs, &ValidationError{Path: "mouse.snapDistance", Value: c.Mouse.SnapDistance, Message: "must not be negative"})
	}
	if c.Layout.Width <= 0 {
		errs = append(errs, &ValidationError{Path: "layout.width", Value: c.Layout.Width, Message: "must be positive"})
	}
	if c.Layout.AtomicWidth <= 0 {
		errs = append(errs, &ValidationError{Path: "layout.atomicWidth", Value: c.Layout.AtomicWidth, Message: "must be positive"})
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, &ValidationError{Path: "log.format", Value: c.Log.Format, Message: "must be json or console"})
	}
	return errors.Join(errs...)
}

// FakeCaret returns the fake caret configuration.
func (c *Config) FakeCaret() fake.Config {
	return fake.Config{
		BlinkEnabled: c.Caret.BlinkEnabled,
		BlinkRate:    c.Caret.BlinkRate.Duration,
		BlockTag:     c.Caret.BlockTag,
	}
}

// LayoutOptions returns the layout engine configuration.
func (c *Config) LayoutOptions() layout.Config {
	return layout.Config{Width: c.Layout.Width, AtomicWidth: c.Layout.AtomicWidth}
}

// Relation returns the line relation for the configured tolerance.
func (c *Config) Relation() geom.Relation {
	return geom.Relation{Tolerance: c.Line.Tolerance}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Duration is a time.Duration that decodes from strings like "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
