// Package tableprint renders the visible projection of a grid as a static
// table, for output that is not a terminal session: pipes, files and
// quick looks at a dataset.
package tableprint

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/renderer"
	"github.com/dshills/gridedit/internal/renderer/core"
)

// Source provides the columns and rows to print.
type Source interface {
	VisibleColumns() []column.Definition
	Rows() grid.Rows
}

// Options configures printing.
type Options struct {
	// Theme styles the header, badges and formatting errors. Nil means
	// renderer.DefaultTheme. Colors only appear when the writer is a
	// color capable terminal.
	Theme *renderer.Theme

	// MaxColumnWidth truncates cell text. Zero means no limit.
	MaxColumnWidth int
}

// Fprint writes the table for src to w.
func Fprint(w io.Writer, src Source, opts Options) error {
	_, err := io.WriteString(w, Render(lipgloss.NewRenderer(w), src, opts)+"\n")
	return err
}

// Render returns the table for src using re for color detection.
func Render(re *lipgloss.Renderer, src Source, opts Options) string {
	th := opts.Theme
	if th == nil {
		th = renderer.DefaultTheme()
	}
	defs := src.VisibleColumns()
	rows := src.Rows()

	headers := make([]string, len(defs))
	for i, d := range defs {
		headers[i] = d.HeaderText()
	}

	cells := make([][]string, len(rows))
	styles := make([][]string, len(rows))
	for r, rec := range rows {
		cells[r] = make([]string, len(defs))
		styles[r] = make([]string, len(defs))
		for c, d := range defs {
			raw, _ := rec.Get(d.Key)
			text, err := d.Display(raw)
			switch {
			case err != nil:
				text = column.DefaultString(raw)
				styles[r][c] = "error"
			default:
				styles[r][c] = d.Style(raw)
			}
			if opts.MaxColumnWidth > 0 {
				text = runewidth.Truncate(text, opts.MaxColumnWidth, "…")
			}
			cells[r][c] = text
		}
	}

	header := Style(re, th.Style("header")).Padding(0, 1)
	cell := re.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Style(re, th.Style("rule"))).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if row < 0 || row >= len(styles) || col >= len(styles[row]) {
				return cell
			}
			if name := styles[row][col]; name != "" {
				return Style(re, th.Style(name)).Padding(0, 1)
			}
			return cell
		})
	return t.String()
}

// Style converts a theme style to a lipgloss style bound to re.
func Style(re *lipgloss.Renderer, s core.Style) lipgloss.Style {
	out := re.NewStyle()
	if c, ok := Color(s.Foreground); ok {
		out = out.Foreground(c)
	}
	if c, ok := Color(s.Background); ok {
		out = out.Background(c)
	}
	a := s.Attributes
	return out.
		Bold(a.Has(core.AttrBold)).
		Faint(a.Has(core.AttrDim)).
		Italic(a.Has(core.AttrItalic)).
		Underline(a.Has(core.AttrUnderline)).
		Reverse(a.Has(core.AttrReverse))
}

// Color converts a theme color. The terminal default has no lipgloss
// equivalent and reports false.
func Color(c core.Color) (lipgloss.Color, bool) {
	switch {
	case c.IsDefault():
		return "", false
	case c.Indexed:
		return lipgloss.Color(fmt.Sprint(c.R)), true
	default:
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)), true
	}
}
