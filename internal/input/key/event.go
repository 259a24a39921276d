package key

import (
	"strings"
	"unicode"
)

// Event is a single key press.
type Event struct {
	Key       Key
	Rune      rune
	Modifiers Modifier
}

// NewRuneEvent creates an event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecialEvent creates an event for a special key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// IsRune reports whether e carries a character.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar reports whether e is a printable character that should be
// inserted into a text buffer. Ctrl, Alt and Meta chords are not.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune) && !e.IsModified()
}

// IsModified reports whether a modifier other than Shift is held for a
// character, or any modifier for a special key.
func (e Event) IsModified() bool {
	if e.Key == KeyRune {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// Equals reports whether two events are the same key press.
// Shift on a character is ignored because it is already reflected in the rune.
func (e Event) Equals(other Event) bool {
	if e.Key != other.Key || e.Rune != other.Rune {
		return false
	}
	if e.Key == KeyRune {
		mask := ModCtrl | ModAlt | ModMeta
		return e.Modifiers&mask == other.Modifiers&mask
	}
	return e.Modifiers == other.Modifiers
}

// String returns the Vim-style form, e.g. "a", "<C-c>", "<CR>".
func (e Event) String() string {
	if e.IsRune() && !e.IsModified() {
		if e.Rune == ' ' {
			return "<Space>"
		}
		return string(e.Rune)
	}

	var parts []string
	if e.Modifiers.Has(ModCtrl) {
		parts = append(parts, "C")
	}
	if e.Modifiers.Has(ModAlt) {
		parts = append(parts, "A")
	}
	if e.Modifiers.Has(ModMeta) {
		parts = append(parts, "D")
	}
	if e.Modifiers.Has(ModShift) && e.Key != KeyRune {
		parts = append(parts, "S")
	}

	var name string
	switch e.Key {
	case KeyRune:
		if e.Rune == ' ' {
			name = "Space"
		} else {
			name = strings.ToLower(string(e.Rune))
		}
	case KeyEnter:
		name = "CR"
	default:
		name = e.Key.String()
	}
	return "<" + strings.Join(append(parts, name), "-") + ">"
}
