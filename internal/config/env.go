package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvLoader applies environment variables to a configuration.
type EnvLoader struct {
	prefix string
}

// NewEnvLoader creates an environment loader. The prefix should include
// the trailing underscore (e.g., "CARETKIT_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix}
}

// Values returns the prefixed environment variables as setting paths.
// Note: empty values are treated as set.
func (l *EnvLoader) Values() map[string]string {
	values := make(map[string]string)
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		values[l.envToPath(name)] = value
	}
	return values
}

// Apply sets every prefixed environment variable on cfg. Variables that
// name no setting or hold unparsable values are errors.
func (l *EnvLoader) Apply(cfg *Config) error {
	for path, value := range l.Values() {
		set, ok := setters[path]
		if !ok {
			return fmt.Errorf("environment %s: %w", path, ErrUnknownSetting)
		}
		if err := set(cfg, value); err != nil {
			return fmt.Errorf("environment %s: %w", path, err)
		}
	}
	return nil
}

// envToPath converts CARETKIT_CARET_BLINK_RATE to caret.blinkRate.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	parts := strings.Split(name, "_")

	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}
	setting := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part != "" {
			setting += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return section + "." + setting
}

var setters = map[string]func(*Config, string) error{
	"caret.blinkEnabled": func(c *Config, s string) error {
		return setBool(&c.Caret.BlinkEnabled, s)
	},
	"caret.blinkRate": func(c *Config, s string) error {
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		c.Caret.BlinkRate = Duration{d}
		return nil
	},
	"caret.blockTag": func(c *Config, s string) error {
		c.Caret.BlockTag = s
		return nil
	},
	"caret.forcedRootBlock": func(c *Config, s string) error {
		c.Caret.ForcedRootBlock = s
		return nil
	},
	"line.tolerance": func(c *Config, s string) error {
		return setFloat(&c.Line.Tolerance, s)
	},
	"mouse.snapDistance": func(c *Config, s string) error {
		return setFloat(&c.Mouse.SnapDistance, s)
	},
	"layout.width": func(c *Config, s string) error {
		return setInt(&c.Layout.Width, s)
	},
	"layout.atomicWidth": func(c *Config, s string) error {
		return setInt(&c.Layout.AtomicWidth, s)
	},
	"log.level": func(c *Config, s string) error {
		c.Log.Level = s
		return nil
	},
	"log.format": func(c *Config, s string) error {
		c.Log.Format = s
		return nil
	},
	"log.output": func(c *Config, s string) error {
		c.Log.Output = s
		return nil
	},
}

func setBool(dst *bool, s string) error {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0", "":
		*dst = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}

func setFloat(dst *float64, s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setInt(dst *int, s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
