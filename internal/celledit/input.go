package celledit

import (
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/gridedit/internal/input/key"
)

// Input is a single-line text buffer with a cursor.
// Positions are in runes. Input values are immutable; every edit returns
// a new Input.
type Input struct {
	runes  []rune
	cursor int
}

// NewInput returns a buffer holding s with the cursor at the end.
func NewInput(s string) Input {
	r := []rune(s)
	return Input{runes: r, cursor: len(r)}
}

// String returns the buffer contents.
func (in Input) String() string {
	return string(in.runes)
}

// Len returns the length in runes.
func (in Input) Len() int {
	return len(in.runes)
}

// Cursor returns the cursor position in runes.
func (in Input) Cursor() int {
	return in.cursor
}

// CursorColumn returns the display column of the cursor, accounting for
// wide characters.
func (in Input) CursorColumn() int {
	return runewidth.StringWidth(string(in.runes[:in.cursor]))
}

// Width returns the display width of the whole buffer.
func (in Input) Width() int {
	return runewidth.StringWidth(string(in.runes))
}

// Insert adds r at the cursor.
func (in Input) Insert(r rune) Input {
	out := make([]rune, 0, len(in.runes)+1)
	out = append(out, in.runes[:in.cursor]...)
	out = append(out, r)
	out = append(out, in.runes[in.cursor:]...)
	return Input{runes: out, cursor: in.cursor + 1}
}

// Backspace removes the rune before the cursor.
func (in Input) Backspace() Input {
	if in.cursor == 0 {
		return in
	}
	return in.remove(in.cursor-1, in.cursor)
}

// Delete removes the rune under the cursor.
func (in Input) Delete() Input {
	if in.cursor >= len(in.runes) {
		return in
	}
	return in.remove(in.cursor, in.cursor+1)
}

// ClearToStart removes everything before the cursor.
func (in Input) ClearToStart() Input {
	return in.remove(0, in.cursor)
}

// MoveTo places the cursor at pos, clamped to the buffer.
func (in Input) MoveTo(pos int) Input {
	pos = max(0, min(pos, len(in.runes)))
	return Input{runes: in.runes, cursor: pos}
}

func (in Input) remove(from, to int) Input {
	out := make([]rune, 0, len(in.runes)-(to-from))
	out = append(out, in.runes[:from]...)
	out = append(out, in.runes[to:]...)
	return Input{runes: out, cursor: from}
}

// Apply performs the text editing bound to ev and reports whether ev was
// an editing key.
func (in Input) Apply(ev key.Event) (Input, bool) {
	if ev.IsChar() {
		return in.Insert(ev.Rune), true
	}
	if ev.Key == key.KeyRune && ev.Modifiers.Has(key.ModCtrl) && unicode.ToLower(ev.Rune) == 'u' {
		return in.ClearToStart(), true
	}
	if ev.IsModified() {
		return in, false
	}
	switch ev.Key {
	case key.KeyBackspace:
		return in.Backspace(), true
	case key.KeyDelete:
		return in.Delete(), true
	case key.KeyLeft:
		return in.MoveTo(in.cursor - 1), true
	case key.KeyRight:
		return in.MoveTo(in.cursor + 1), true
	case key.KeyHome:
		return in.MoveTo(0), true
	case key.KeyEnd:
		return in.MoveTo(len(in.runes)), true
	}
	return in, false
}
