// Package viewport tracks which rows and columns of the grid body are on
// screen.
//
// Rows scroll one at a time under the sticky header; columns scroll by
// whole columns. A Viewport belongs to the event loop and holds no lock.
package viewport

// Viewport represents the visible portion of the grid body.
type Viewport struct {
	// First visible row and column index.
	top  int
	left int

	// Body height in rows.
	height int

	// Total number of rows.
	rows int

	// Rows kept between the cursor and the top or bottom edge.
	margin int
}

// NewViewport creates a viewport showing height rows.
// Height is clamped to a minimum of 1.
func NewViewport(height int) *Viewport {
	return &Viewport{height: max(height, 1), margin: 1}
}

// Top returns the first visible row.
func (v *Viewport) Top() int { return v.top }

// Left returns the first visible column.
func (v *Viewport) Left() int { return v.left }

// Height returns the body height in rows.
func (v *Viewport) Height() int { return v.height }

// Bottom returns the last visible row (exclusive).
func (v *Viewport) Bottom() int {
	return min(v.top+v.height, v.rows)
}

// Resize updates the body height.
func (v *Viewport) Resize(height int) {
	v.height = max(height, 1)
	v.clamp()
}

// SetRows sets the total row count and clamps the scroll position.
func (v *Viewport) SetRows(rows int) {
	v.rows = max(rows, 0)
	v.clamp()
}

// SetMargin sets how many rows are kept visible around the cursor.
func (v *Viewport) SetMargin(rows int) {
	v.margin = max(rows, 0)
}

// effectiveMargin shrinks the margin on short screens so the cursor row
// can always be placed.
func (v *Viewport) effectiveMargin() int {
	return min(v.margin, (v.height-1)/2)
}

func (v *Viewport) maxTop() int {
	return max(v.rows-v.height, 0)
}

func (v *Viewport) clamp() {
	v.top = min(max(v.top, 0), v.maxTop())
}

// IsRowVisible returns true if row is on screen.
func (v *Viewport) IsRowVisible(row int) bool {
	return row >= v.top && row < v.Bottom()
}

// RowToScreen converts a row index to a body-relative screen row, or -1.
func (v *Viewport) RowToScreen(row int) int {
	if !v.IsRowVisible(row) {
		return -1
	}
	return row - v.top
}

// ScreenToRow converts a body-relative screen row to a row index, or -1.
func (v *Viewport) ScreenToRow(screenRow int) int {
	row := v.top + screenRow
	if screenRow < 0 || screenRow >= v.height || row >= v.rows {
		return -1
	}
	return row
}

// ScrollTo makes row the first visible row.
func (v *Viewport) ScrollTo(row int) {
	v.top = row
	v.clamp()
}

// ScrollBy scrolls by delta rows.
func (v *Viewport) ScrollBy(delta int) {
	v.ScrollTo(v.top + delta)
}

// PageDown scrolls one screen down.
func (v *Viewport) PageDown() { v.ScrollBy(v.height) }

// PageUp scrolls one screen up.
func (v *Viewport) PageUp() { v.ScrollBy(-v.height) }

// Reveal scrolls the minimum amount that puts row on screen with the
// margin respected. It reports whether the viewport moved.
func (v *Viewport) Reveal(row int) bool {
	old := v.top
	m := v.effectiveMargin()
	switch {
	case row < v.top+m:
		v.top = row - m
	case row >= v.top+v.height-m:
		v.top = row - v.height + m + 1
	}
	v.clamp()
	return v.top != old
}

// RevealColumn adjusts the first visible column so that column col fits
// into avail cells, given the width of every column. It reports whether
// the viewport moved.
func (v *Viewport) RevealColumn(col int, widths []int, avail int) bool {
	old := v.left
	if col < 0 || col >= len(widths) {
		v.left = min(v.left, max(len(widths)-1, 0))
		return v.left != old
	}
	if col < v.left {
		v.left = col
		return true
	}
	for v.left < col && span(widths[v.left:col+1]) > avail {
		v.left++
	}
	return v.left != old
}

// SetLeft sets the first visible column.
func (v *Viewport) SetLeft(col int) {
	v.left = max(col, 0)
}

func span(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	return total
}

// ScrollPercent returns how far down the body is scrolled, 0-100.
func (v *Viewport) ScrollPercent() int {
	if v.maxTop() == 0 {
		return 0
	}
	return v.top * 100 / v.maxTop()
}
