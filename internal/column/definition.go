// Package column describes how record fields are projected into grid columns
// and which of those columns are currently shown.
//
// The set of definitions is fixed for the lifetime of a Registry. Only
// visibility changes, and it does so through immutable Visibility values:
// Toggle returns a new value and never modifies its argument.
package column

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKey indicates a definition without a field key.
	ErrEmptyKey = errors.New("column key is empty")

	// ErrDuplicateKey indicates two definitions for the same field key.
	ErrDuplicateKey = errors.New("duplicate column key")
)

// Formatter maps a raw field value to its display text.
type Formatter func(raw any) (string, error)

// Styler maps a raw field value to a theme style name.
// An empty result means the default cell style.
type Styler func(raw any) string

// Definition describes one field projection.
type Definition struct {
	// Key is the record field this column reads.
	Key string

	// Header is the text shown in the header row.
	Header string

	// MinWidth is the minimum display width in pixels, as in the dataset
	// files. Terminal renderers convert it to cells.
	MinWidth int

	// Editable allows the cell edit controller to open sessions on this column.
	Editable bool

	// Format renders the raw value for display. Nil means the default string form.
	Format Formatter

	// Badge picks a style for the rendered value. Nil means no badge.
	Badge Styler

	// Enum lists the accepted values of a closed enumeration. Empty means open.
	Enum []string
}

// Display returns the text shown for raw while the cell is not being edited.
// Formatter errors are returned to the caller unchanged.
func (d Definition) Display(raw any) (string, error) {
	if d.Format != nil {
		return d.Format(raw)
	}
	return DefaultString(raw), nil
}

// Style returns the badge style name for raw, or "".
func (d Definition) Style(raw any) string {
	if d.Badge == nil {
		return ""
	}
	return d.Badge(raw)
}

// HeaderText returns the header, falling back to the key.
func (d Definition) HeaderText() string {
	if d.Header != "" {
		return d.Header
	}
	return d.Key
}

// DefaultString renders a raw value in its default string form.
// A nil value renders as the empty string.
func DefaultString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func validate(defs []Definition) error {
	seen := make(map[string]struct{}, len(defs))
	for i, d := range defs {
		if d.Key == "" {
			return fmt.Errorf("%w: definition %d", ErrEmptyKey, i)
		}
		if _, dup := seen[d.Key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, d.Key)
		}
		seen[d.Key] = struct{}{}
	}
	return nil
}
