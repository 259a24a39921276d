package renderer

import (
	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/renderer/core"
)

// pixelsPerCell converts a column's MinWidth, given in pixels, to cells.
const pixelsPerCell = 8

// Each column box is one space of padding on both sides of the content
// plus a one cell separator.
const boxChrome = 3

// ColumnBox is the on-screen placement of a visible column.
type ColumnBox struct {
	// Index is the position in the visible column list.
	Index int
	Key   string

	// X is the first content cell; Width is the content width.
	X     int
	Width int
}

// Contains reports whether screen column x falls inside the box, padding
// and separator included.
func (b ColumnBox) Contains(x int) bool {
	return x >= b.X-1 && x < b.X+b.Width+2
}

// MinCells converts a MinWidth in pixels to cells, rounding up.
func MinCells(minWidth int) int {
	if minWidth <= 0 {
		return 0
	}
	return (minWidth + pixelsPerCell - 1) / pixelsPerCell
}

// ColumnWidths returns the content width of every column: the widest of
// the minimum width, the header and the displayed values, capped at
// maxWidth when it is positive. An active edit input counts with one
// extra cell for the cursor.
func ColumnWidths(src Sheet, defs []column.Definition, rows grid.Rows, maxWidth int) []int {
	widths := make([]int, len(defs))
	for i, d := range defs {
		w := max(MinCells(d.MinWidth), core.StringWidth(d.HeaderText()), 1)
		for _, rec := range rows {
			text, editing, _ := src.CellText(rec, d)
			tw := core.StringWidth(text)
			if editing {
				tw++
			}
			w = max(w, tw)
		}
		if maxWidth > 0 {
			w = min(w, maxWidth)
		}
		widths[i] = w
	}
	return widths
}

// boxWidths adds the padding and separator to content widths.
func boxWidths(widths []int) []int {
	out := make([]int, len(widths))
	for i, w := range widths {
		out[i] = w + boxChrome
	}
	return out
}

// placeColumns lays out columns from index left onwards until the screen
// width is used up. The last box may be cut by the screen edge.
func placeColumns(defs []column.Definition, widths []int, left, screenWidth int) []ColumnBox {
	var boxes []ColumnBox
	x := 0
	for i := left; i < len(defs) && x < screenWidth; i++ {
		boxes = append(boxes, ColumnBox{Index: i, Key: defs[i].Key, X: x + 1, Width: widths[i]})
		x += widths[i] + boxChrome
	}
	return boxes
}

// sliceColumns returns the part of s starting at display column from.
// A wide rune cut by from is dropped.
func sliceColumns(s string, from int) string {
	if from <= 0 {
		return s
	}
	col := 0
	for i, r := range s {
		if col >= from {
			return s[i:]
		}
		col += core.RuneWidth(r)
	}
	return ""
}
