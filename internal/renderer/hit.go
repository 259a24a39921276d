package renderer

import (
	"github.com/dshills/gridedit/internal/grid"
)

// HitKind classifies a screen position.
type HitKind int

const (
	HitNone HitKind = iota
	HitToolbar
	HitMenuButton
	HitMenu
	HitMenuItem
	HitHeader
	HitCell
	HitStatus
	HitModal
)

var hitNames = [...]string{"none", "toolbar", "menu-button", "menu", "menu-item", "header", "cell", "status", "modal"}

func (k HitKind) String() string {
	if int(k) < len(hitNames) {
		return hitNames[k]
	}
	return "unknown"
}

// Hit describes what is drawn at a screen position.
type Hit struct {
	Kind HitKind

	// Item is the menu item index for HitMenuItem.
	Item int

	// RowIndex and Row identify the record for HitCell.
	RowIndex int
	Row      grid.RowID

	// Column is the visible column index and Key its field for HitHeader
	// and HitCell. Column is -1 when the position is right of every column.
	Column int
	Key    string

	// Editing is set when the cell is the active edit input.
	Editing bool
}

// HitTest maps (x, y) to what the last frame drew there. Overlays take
// precedence over the grid below them.
func (r *Renderer) HitTest(x, y int) Hit {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return Hit{Kind: HitNone, Column: -1}
	}
	if r.modalOn {
		return Hit{Kind: HitModal, Column: -1}
	}
	if !r.menuRect.IsEmpty() && r.menuRect.Contains(x, y) {
		i := y - r.menuRect.Top - 1
		inner := x > r.menuRect.Left && x < r.menuRect.Right-1
		if inner && i >= 0 && i < r.menuRect.Height()-2 {
			return Hit{Kind: HitMenuItem, Item: i, Column: -1}
		}
		return Hit{Kind: HitMenu, Column: -1}
	}

	switch {
	case y == toolbarRow:
		if r.buttonRect.Contains(x, y) {
			return Hit{Kind: HitMenuButton, Column: -1}
		}
		return Hit{Kind: HitToolbar, Column: -1}
	case y == r.height-1:
		return Hit{Kind: HitStatus, Column: -1}
	case y == headerRow || y == ruleRow:
		h := Hit{Kind: HitHeader, Column: -1}
		if b, ok := r.boxAt(x); ok {
			h.Column, h.Key = b.Index, b.Key
		}
		return h
	}

	rowIdx := r.vp.ScreenToRow(y - bodyTop)
	rows := r.sheet.Rows()
	if rowIdx < 0 || rowIdx >= len(rows) {
		return Hit{Kind: HitNone, Column: -1}
	}
	b, ok := r.boxAt(x)
	if !ok {
		return Hit{Kind: HitNone, Column: -1}
	}
	rec := rows[rowIdx]
	return Hit{
		Kind:     HitCell,
		RowIndex: rowIdx,
		Row:      rec.ID,
		Column:   b.Index,
		Key:      b.Key,
		Editing:  r.sheet.Editing().Is(rec.ID, b.Key),
	}
}

func (r *Renderer) boxAt(x int) (ColumnBox, bool) {
	for _, b := range r.boxes {
		if b.Contains(x) {
			return b, true
		}
	}
	return ColumnBox{}, false
}
