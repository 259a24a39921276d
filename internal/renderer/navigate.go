package renderer

import (
	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/grid"
)

// Cursor returns the cell cursor as row index and visible column index.
func (r *Renderer) Cursor() (row, col int) {
	return r.cursorRow, r.cursorCol
}

// SetCursor moves the cell cursor and scrolls it into view.
func (r *Renderer) SetCursor(row, col int) {
	rows := len(r.sheet.Rows())
	cols := len(r.sheet.VisibleColumns())
	r.cursorRow, r.cursorCol = row, col
	r.clampCursor(rows, cols)
	r.vp.SetRows(rows)
	r.vp.Reveal(r.cursorRow)
}

// MoveCursor moves the cell cursor by the given deltas.
func (r *Renderer) MoveCursor(dRow, dCol int) {
	r.SetCursor(r.cursorRow+dRow, r.cursorCol+dCol)
}

// PageDown moves the cursor and the view one body height down.
func (r *Renderer) PageDown() {
	r.MoveCursor(r.vp.Height(), 0)
}

// PageUp moves the cursor and the view one body height up.
func (r *Renderer) PageUp() {
	r.MoveCursor(-r.vp.Height(), 0)
}

// Scroll scrolls the body by delta rows without moving the cursor.
func (r *Renderer) Scroll(delta int) {
	r.vp.SetRows(len(r.sheet.Rows()))
	r.vp.ScrollBy(delta)
}

// CursorCell returns the record and column under the cell cursor.
func (r *Renderer) CursorCell() (*grid.Record, column.Definition, bool) {
	rows := r.sheet.Rows()
	defs := r.sheet.VisibleColumns()
	if r.cursorRow < 0 || r.cursorRow >= len(rows) || r.cursorCol < 0 || r.cursorCol >= len(defs) {
		return nil, column.Definition{}, false
	}
	return rows[r.cursorRow], defs[r.cursorCol], true
}

// FollowColumn keeps the cursor on the column called key after the
// visible column list changed. When key is hidden the cursor keeps its
// index and is clamped.
func (r *Renderer) FollowColumn(key string) {
	for i, d := range r.sheet.VisibleColumns() {
		if d.Key == key {
			r.cursorCol = i
			return
		}
	}
	r.clampCursor(len(r.sheet.Rows()), len(r.sheet.VisibleColumns()))
}
