package editor

import (
	"github.com/dshills/caretkit/internal/caret"
	"github.com/dshills/caretkit/internal/input/key"
)

// native performs the surface default for a key the coordinator left
// alone. Modified keys have no default.
func (e *Editor) native(ev key.Event) bool {
	if ev.IsModified() {
		return false
	}
	s := e.surface
	shift := ev.Modifiers.Has(key.ModShift)
	switch ev.Key {
	case key.KeyLeft:
		return s.MoveHorizontal(caret.Backward, shift)
	case key.KeyRight:
		return s.MoveHorizontal(caret.Forward, shift)
	case key.KeyUp:
		return s.MoveVertical(caret.Backward)
	case key.KeyDown:
		return s.MoveVertical(caret.Forward)
	case key.KeyBackspace:
		return s.DeleteCharacter(caret.Backward)
	case key.KeyDelete:
		return s.DeleteCharacter(caret.Forward)
	case key.KeyEnter:
		return s.SplitBlock()
	case key.KeyTab:
		return s.InsertText("\t")
	case key.KeyRune:
		if ev.IsChar() {
			return s.InsertText(string(ev.Rune))
		}
	}
	return false
}
