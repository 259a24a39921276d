package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/gridedit/internal/renderer/core"
	"github.com/dshills/gridedit/internal/renderer/statusline"
)

// Theme maps dotted style names to styles. A lookup of "badge.active"
// falls back to "badge" and then to the default style.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	styles map[string]core.Style
}

// NewTheme creates an empty theme.
func NewTheme(name string) *Theme {
	return &Theme{Name: name, styles: make(map[string]core.Style)}
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() *Theme {
	t := NewTheme("default")
	d := core.DefaultStyle()
	t.Set("toolbar", d.WithBackground(core.ColorBlue).WithForeground(core.ColorWhite))
	t.Set("button", d.WithBackground(core.ColorWhite).WithForeground(core.ColorBlack))
	t.Set("button.open", d.WithBackground(core.ColorYellow).WithForeground(core.ColorBlack).Bold())
	t.Set("header", d.Bold())
	t.Set("rule", d.WithForeground(core.ColorGray))
	t.Set("cell", d)
	t.Set("cell.alt", d)
	t.Set("cell.selected", d.Reverse())
	t.Set("cell.editing", d.WithBackground(core.ColorWhite).WithForeground(core.ColorBlack).Underline())
	t.Set("error", d.WithForeground(core.ColorRed))
	t.Set("badge", d.Bold())
	t.Set("badge.active", d.WithForeground(core.ColorGreen).Bold())
	t.Set("badge.inactive", d.WithForeground(core.ColorRed).Bold())
	t.Set("badge.pending", d.WithForeground(core.ColorYellow).Bold())
	t.Set("menu", d.WithBackground(core.ColorWhite).WithForeground(core.ColorBlack))
	t.Set("menu.selected", d.WithBackground(core.ColorBlue).WithForeground(core.ColorWhite))
	t.Set("modal", d.WithBackground(core.ColorRed).WithForeground(core.ColorWhite))
	t.Set("modal.title", d.WithBackground(core.ColorRed).WithForeground(core.ColorWhite).Bold())

	st := statusline.DefaultStyles()
	t.Set("status", st.Bar)
	t.Set("status.normal", st.Modes["NORMAL"])
	t.Set("status.edit", st.Modes["EDIT"])
	t.Set("status.menu", st.Modes["MENU"])
	t.Set("status.warning", st.Warning)
	t.Set("status.error", st.Error)
	return t
}

// Set defines or replaces the style called name.
func (t *Theme) Set(name string, s core.Style) {
	t.styles[strings.ToLower(name)] = s
}

// SetSpec parses a style spec such as "fg=#ffffff bg=blue bold" and stores
// it under name.
func (t *Theme) SetSpec(name, spec string) error {
	s, err := core.ParseStyle(spec)
	if err != nil {
		return fmt.Errorf("theme style %q: %w", name, err)
	}
	t.Set(name, s)
	return nil
}

// Apply sets every entry of specs. It stops at the first invalid spec;
// entries before it stay applied.
func (t *Theme) Apply(specs map[string]string) error {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := t.SetSpec(name, specs[name]); err != nil {
			return err
		}
	}
	return nil
}

// Style returns the style for name, walking up dotted parents.
func (t *Theme) Style(name string) core.Style {
	name = strings.ToLower(name)
	for name != "" {
		if s, ok := t.styles[name]; ok {
			return s
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return core.DefaultStyle()
}

// Has reports whether name is defined exactly.
func (t *Theme) Has(name string) bool {
	_, ok := t.styles[strings.ToLower(name)]
	return ok
}

// Names returns the defined style names in sorted order.
func (t *Theme) Names() []string {
	names := make([]string, 0, len(t.styles))
	for name := range t.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StatusStyles derives the status line styles from the theme.
func (t *Theme) StatusStyles() statusline.Styles {
	bar := t.Style("status")
	return statusline.Styles{
		Bar: bar,
		Modes: map[string]core.Style{
			"NORMAL": t.Style("status.normal"),
			"EDIT":   t.Style("status.edit"),
			"MENU":   t.Style("status.menu"),
		},
		Info:    bar,
		Warning: t.Style("status.warning"),
		Error:   t.Style("status.error"),
	}
}
