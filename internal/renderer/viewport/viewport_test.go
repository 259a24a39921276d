package viewport

import (
	"testing"
)

func TestNewViewport(t *testing.T) {
	v := NewViewport(0)

	if v.Height() != 1 {
		t.Errorf("expected clamped height 1, got %d", v.Height())
	}
	if v.Top() != 0 || v.Left() != 0 {
		t.Errorf("expected origin, got top %d left %d", v.Top(), v.Left())
	}
}

func TestViewportScrollClamps(t *testing.T) {
	v := NewViewport(10)
	v.SetRows(25)

	v.ScrollBy(100)
	if v.Top() != 15 {
		t.Errorf("expected top 15 at end, got %d", v.Top())
	}
	if v.Bottom() != 25 {
		t.Errorf("expected bottom 25, got %d", v.Bottom())
	}

	v.PageUp()
	v.PageUp()
	if v.Top() != 0 {
		t.Errorf("expected top 0, got %d", v.Top())
	}

	v.ScrollTo(12)
	v.SetRows(5)
	if v.Top() != 0 {
		t.Errorf("shrinking rows should clamp top, got %d", v.Top())
	}
}

func TestViewportScreenMapping(t *testing.T) {
	v := NewViewport(4)
	v.SetRows(6)
	v.ScrollTo(2)

	if got := v.RowToScreen(3); got != 1 {
		t.Errorf("RowToScreen(3) = %d, want 1", got)
	}
	if got := v.RowToScreen(1); got != -1 {
		t.Errorf("RowToScreen(1) = %d, want -1", got)
	}
	if got := v.ScreenToRow(3); got != 5 {
		t.Errorf("ScreenToRow(3) = %d, want 5", got)
	}
	if got := v.ScreenToRow(4); got != -1 {
		t.Errorf("ScreenToRow past height = %d, want -1", got)
	}
}

func TestViewportReveal(t *testing.T) {
	v := NewViewport(5)
	v.SetRows(20)
	v.SetMargin(1)

	if v.Reveal(2) {
		t.Error("row 2 is already visible with margin")
	}
	if !v.Reveal(4) || v.Top() != 1 {
		t.Errorf("Reveal(4) top = %d, want 1", v.Top())
	}
	if !v.Reveal(19) || v.Top() != 15 {
		t.Errorf("Reveal(19) top = %d, want 15", v.Top())
	}
	if !v.Reveal(0) || v.Top() != 0 {
		t.Errorf("Reveal(0) top = %d, want 0", v.Top())
	}
}

func TestViewportRevealTinyHeight(t *testing.T) {
	v := NewViewport(1)
	v.SetRows(3)
	v.SetMargin(5)

	v.Reveal(2)
	if !v.IsRowVisible(2) {
		t.Errorf("row 2 should be visible, top %d", v.Top())
	}
}

func TestViewportRevealColumn(t *testing.T) {
	v := NewViewport(5)
	widths := []int{10, 10, 10, 10}

	if v.RevealColumn(1, widths, 25) {
		t.Error("column 1 fits without scrolling")
	}
	if !v.RevealColumn(3, widths, 25) || v.Left() != 2 {
		t.Errorf("RevealColumn(3) left = %d, want 2", v.Left())
	}
	if !v.RevealColumn(0, widths, 25) || v.Left() != 0 {
		t.Errorf("RevealColumn(0) left = %d, want 0", v.Left())
	}

	v.SetLeft(3)
	v.RevealColumn(-1, widths[:2], 25)
	if v.Left() != 1 {
		t.Errorf("left should clamp to the last column, got %d", v.Left())
	}
}

func TestViewportScrollPercent(t *testing.T) {
	v := NewViewport(10)
	v.SetRows(5)
	if v.ScrollPercent() != 0 {
		t.Error("no scrolling possible means 0%")
	}
	v.SetRows(30)
	v.ScrollTo(10)
	if v.ScrollPercent() != 50 {
		t.Errorf("expected 50%%, got %d", v.ScrollPercent())
	}
}
