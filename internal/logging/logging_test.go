package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "warn", Format: "json"}, &buf)

	l.Info("hidden")
	l.Warn("shown", zap.String("op", "test"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, `"op":"test"`) {
		t.Errorf("output = %q, want the op field", out)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(NewWithWriter(Config{Level: "debug", Format: "json"}, &buf), "walker")
	l.Debug("step")
	if !strings.Contains(buf.String(), `"component":"walker"`) {
		t.Errorf("output = %q, want the component field", buf.String())
	}

	if Component(nil, "x") == nil {
		t.Error("Component(nil) should return a no-op logger")
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caretkit.log")
	l, closeFn, err := New(Config{Level: "info", Output: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("hello")
	if err := closeFn(); err != nil {
		t.Errorf("close error = %v", err)
	}
}
