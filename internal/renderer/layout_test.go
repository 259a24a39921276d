package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/gridedit/internal/grid"
)

func TestMinCells(t *testing.T) {
	assert.Equal(t, 0, MinCells(0))
	assert.Equal(t, 10, MinCells(80))
	assert.Equal(t, 32, MinCells(250))
	assert.Equal(t, 1, MinCells(1))
}

func TestColumnWidths(t *testing.T) {
	s := newUsers(t, 3)
	defs := s.VisibleColumns()

	assert.Equal(t, []int{10, 7, 6, 6}, ColumnWidths(s, defs, s.Rows(), 0))
	assert.Equal(t, []int{5, 5, 5, 5}, ColumnWidths(s, defs, s.Rows(), 5))

	s.Activate(grid.IntID(2), "role")
	assert.Equal(t, 7, ColumnWidths(s, defs, s.Rows(), 0)[2], "edit input reserves a cursor cell")
}

func TestPlaceColumns(t *testing.T) {
	s := newUsers(t, 1)
	defs := s.VisibleColumns()
	widths := []int{10, 7, 6, 6}

	boxes := placeColumns(defs, widths, 0, 60)
	assert.Len(t, boxes, 4)
	assert.Equal(t, ColumnBox{Index: 1, Key: "name", X: 14, Width: 7}, boxes[1])

	boxes = placeColumns(defs, widths, 2, 12)
	assert.Len(t, boxes, 2, "the last box may be cut by the edge")
	assert.Equal(t, "role", boxes[0].Key)
	assert.Equal(t, 1, boxes[0].X)

	b := ColumnBox{X: 14, Width: 7}
	assert.True(t, b.Contains(13))
	assert.True(t, b.Contains(22))
	assert.False(t, b.Contains(23))
	assert.False(t, b.Contains(12))
}

func TestSliceColumns(t *testing.T) {
	assert.Equal(t, "hello", sliceColumns("hello", 0))
	assert.Equal(t, "llo", sliceColumns("hello", 2))
	assert.Equal(t, "", sliceColumns("hi", 5))
	assert.Equal(t, "界x", sliceColumns("世界x", 2))
	assert.Equal(t, "x", sliceColumns("世界x", 3), "a cut wide rune is dropped")
}
