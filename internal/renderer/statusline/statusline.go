// Package statusline renders the bottom line of the grid: edit mode, cell
// position and the latest message.
package statusline

import (
	"fmt"

	"github.com/dshills/gridedit/internal/renderer/backend"
	"github.com/dshills/gridedit/internal/renderer/core"
)

// MessageType indicates the type of status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageWarning
	MessageError
)

// Styles configures the status line colors.
type Styles struct {
	Bar     core.Style
	Modes   map[string]core.Style
	Info    core.Style
	Warning core.Style
	Error   core.Style
}

// DefaultStyles returns the built-in status line styles.
func DefaultStyles() Styles {
	return Styles{
		Bar: core.DefaultStyle().WithBackground(core.ColorGray).WithForeground(core.ColorWhite),
		Modes: map[string]core.Style{
			"NORMAL": core.DefaultStyle().Bold().WithBackground(core.ColorBlue).WithForeground(core.ColorWhite),
			"EDIT":   core.DefaultStyle().Bold().WithBackground(core.ColorGreen).WithForeground(core.ColorBlack),
			"MENU":   core.DefaultStyle().Bold().WithBackground(core.ColorYellow).WithForeground(core.ColorBlack),
		},
		Info:    core.DefaultStyle().WithBackground(core.ColorGray).WithForeground(core.ColorWhite),
		Warning: core.DefaultStyle().WithBackground(core.ColorGray).WithForeground(core.ColorYellow),
		Error:   core.DefaultStyle().WithBackground(core.ColorGray).WithForeground(core.ColorRed).Bold(),
	}
}

// StatusLine holds what the status line shows.
type StatusLine struct {
	mode    string
	row     int // 1-indexed, 0 = none
	rows    int
	column  string
	message string
	msgType MessageType
	styles  Styles
}

// New creates a status line in NORMAL mode.
func New() *StatusLine {
	return &StatusLine{mode: "NORMAL", styles: DefaultStyles()}
}

// SetStyles replaces the styles.
func (s *StatusLine) SetStyles(styles Styles) {
	s.styles = styles
}

// SetMode updates the displayed mode.
func (s *StatusLine) SetMode(mode string) {
	s.mode = mode
}

// Mode returns the displayed mode.
func (s *StatusLine) Mode() string {
	return s.mode
}

// SetPosition updates the cell position. Row is 1-indexed.
func (s *StatusLine) SetPosition(row, rows int, column string) {
	s.row = row
	s.rows = rows
	s.column = column
}

// SetMessage displays a status message next to the mode.
func (s *StatusLine) SetMessage(msg string, msgType MessageType) {
	s.message = msg
	s.msgType = msgType
}

// Message returns the current message.
func (s *StatusLine) Message() string {
	return s.message
}

// ClearMessage clears the status message.
func (s *StatusLine) ClearMessage() {
	s.message = ""
	s.msgType = MessageNone
}

// Render draws the status line on row y, width cells wide.
func (s *StatusLine) Render(b backend.Backend, y, width int) {
	bar := s.styles.Bar
	b.Fill(core.RectFromSize(y, 0, 1, width), core.NewStyledCell(' ', bar))

	modeStyle, ok := s.styles.Modes[s.mode]
	if !ok {
		modeStyle = bar.Bold()
	}
	x := put(b, 0, y, width, " "+s.mode+" ", modeStyle)
	x++

	pos := s.formatPosition()
	posStart := width - core.StringWidth(pos) - 1

	if s.message != "" {
		limit := width - x
		if posStart > x {
			limit = posStart - x - 1
		}
		put(b, x, y, x+limit, core.Fit(s.message, limit), s.messageStyle())
	}
	if pos != "" && posStart > x {
		put(b, posStart, y, width, pos, bar)
	}
}

func (s *StatusLine) messageStyle() core.Style {
	switch s.msgType {
	case MessageError:
		return s.styles.Error
	case MessageWarning:
		return s.styles.Warning
	default:
		return s.styles.Info
	}
}

// formatPosition formats the position info for the right side,
// e.g. "Role  3/12".
func (s *StatusLine) formatPosition() string {
	if s.rows == 0 {
		return ""
	}
	if s.column == "" {
		return fmt.Sprintf("%d/%d", s.row, s.rows)
	}
	return fmt.Sprintf("%s  %d/%d", s.column, s.row, s.rows)
}

// put writes text at (x, y) without passing limit and returns the next x.
func put(b backend.Backend, x, y, limit int, text string, style core.Style) int {
	for _, r := range text {
		w := core.RuneWidth(r)
		if x+w > limit {
			break
		}
		b.SetCell(x, y, core.NewStyledCell(r, style))
		if w == 2 {
			b.SetCell(x+1, y, core.ContinuationCell(style))
		}
		x += w
	}
	return x
}
