package key

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Event
	}{
		{"Left", Event{Key: KeyLeft}},
		{"shift+right", Event{Key: KeyRight, Modifiers: ModShift}},
		{"a", Event{Key: KeyRune, Rune: 'a'}},
		{"Ctrl+c", Event{Key: KeyRune, Rune: 'c', Modifiers: ModCtrl}},
		{"Space", Event{Key: KeyRune, Rune: ' '}},
		{"BS", Event{Key: KeyBackspace}},
		{"Del", Event{Key: KeyDelete}},
		{"é", Event{Key: KeyRune, Rune: 'é'}},
		{"Ctrl++", Event{Key: KeyRune, Rune: '+', Modifiers: ModCtrl}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.spec)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if got.Key != tt.want.Key || got.Rune != tt.want.Rune || got.Modifiers != tt.want.Modifiers {
			t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(""); !errors.Is(err, ErrEmptySpec) {
		t.Errorf("Parse(\"\") error = %v, want ErrEmptySpec", err)
	}
	if _, err := Parse("Hyper+x"); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("Parse(Hyper+x) error = %v, want ErrInvalidSpec", err)
	}
	if _, err := Parse("Banana"); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("Parse(Banana) error = %v, want ErrInvalidSpec", err)
	}
}

func TestEventPredicates(t *testing.T) {
	tests := []struct {
		name     string
		ev       Event
		modified bool
		content  bool
	}{
		{"char", Event{Key: KeyRune, Rune: 'x'}, false, true},
		{"shifted char", Event{Key: KeyRune, Rune: 'X', Modifiers: ModShift}, false, true},
		{"ctrl char", Event{Key: KeyRune, Rune: 'c', Modifiers: ModCtrl}, true, false},
		{"enter", Event{Key: KeyEnter}, false, true},
		{"arrow", Event{Key: KeyLeft}, false, false},
		{"meta arrow", Event{Key: KeyLeft, Modifiers: ModMeta}, true, false},
	}
	for _, tt := range tests {
		if got := tt.ev.IsModified(); got != tt.modified {
			t.Errorf("%s: IsModified() = %v, want %v", tt.name, got, tt.modified)
		}
		if got := tt.ev.IsContentKey(); got != tt.content {
			t.Errorf("%s: IsContentKey() = %v, want %v", tt.name, got, tt.content)
		}
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{Key: KeyRight, Modifiers: ModShift}, "Shift+Right"},
		{Event{Key: KeyRune, Rune: 'A', Modifiers: ModShift}, "A"},
		{Event{Key: KeyRune, Rune: 'c', Modifiers: ModCtrl}, "Ctrl+c"},
		{Event{Key: KeyRune, Rune: ' '}, "Space"},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if !KeyUp.IsArrow() || KeyEnter.IsArrow() {
		t.Error("IsArrow() mismatch")
	}
}
