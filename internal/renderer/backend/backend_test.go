package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridedit/internal/input/key"
	"github.com/dshills/gridedit/internal/renderer/core"
)

func newMemory(t *testing.T, w, h int) *MemoryBackend {
	t.Helper()
	b := NewMemoryBackend(w, h)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return b
}

func TestMemoryBackendSetGetCell(t *testing.T) {
	b := newMemory(t, 80, 24)

	cell := core.NewStyledCell('X', core.DefaultStyle().WithForeground(core.ColorRed))
	b.SetCell(10, 5, cell)

	if got := b.GetCell(10, 5); !got.Equals(cell) {
		t.Errorf("cell mismatch: expected %+v, got %+v", cell, got)
	}

	b.SetCell(-1, 0, cell)
	b.SetCell(100, 0, cell)
	if empty := b.GetCell(-1, 0); !empty.Equals(core.EmptyCell()) {
		t.Error("out of bounds should return empty cell")
	}
}

func TestMemoryBackendFillAndLine(t *testing.T) {
	b := newMemory(t, 10, 3)

	b.Fill(core.RectFromSize(1, 2, 1, 3), core.NewStyledCell('.', core.DefaultStyle()))
	if got := b.Line(1); got != "  ..." {
		t.Errorf("Line(1) = %q", got)
	}
	if got := b.Line(0); got != "" {
		t.Errorf("Line(0) = %q, want empty", got)
	}

	b.Clear()
	if got := b.Line(1); got != "" {
		t.Errorf("clear should reset all cells, got %q", got)
	}
}

func TestMemoryBackendFind(t *testing.T) {
	b := newMemory(t, 20, 2)
	b.SetCell(0, 1, core.NewStyledCell('日', core.DefaultStyle()))
	b.SetCell(1, 1, core.ContinuationCell(core.DefaultStyle()))
	b.SetCell(2, 1, core.NewStyledCell('x', core.DefaultStyle()))

	x, y, ok := b.Find("x")
	if !ok || x != 2 || y != 1 {
		t.Errorf("Find = (%d, %d, %v), want (2, 1, true)", x, y, ok)
	}
	if _, _, ok := b.Find("zzz"); ok {
		t.Error("Find should miss absent text")
	}
}

func TestMemoryBackendCursor(t *testing.T) {
	b := newMemory(t, 80, 24)

	b.ShowCursor(15, 10)
	x, y, visible := b.CursorPosition()
	if x != 15 || y != 10 || !visible {
		t.Errorf("cursor position: expected (15, 10, true), got (%d, %d, %v)", x, y, visible)
	}

	b.HideCursor()
	if _, _, visible = b.CursorPosition(); visible {
		t.Error("cursor should be hidden")
	}
}

func TestMemoryBackendResize(t *testing.T) {
	b := newMemory(t, 80, 24)

	b.Resize(100, 40)

	w, h := b.Size()
	if w != 100 || h != 40 {
		t.Errorf("expected size (100, 40), got (%d, %d)", w, h)
	}
	ev := b.PollEvent()
	if ev.Type != EventResize || ev.Width != 100 || ev.Height != 40 {
		t.Errorf("expected resize event, got %+v", ev)
	}
}

func TestMemoryBackendEvents(t *testing.T) {
	b := newMemory(t, 80, 24)

	b.InjectKey(key.NewSpecialEvent(key.KeyEnter, key.ModNone))
	b.InjectClick(3, 4)

	got := b.PollEvent()
	if got.Type != EventKey || got.Key.Key != key.KeyEnter {
		t.Errorf("expected enter key event, got %+v", got)
	}
	press := b.PollEvent()
	release := b.PollEvent()
	if press.MouseButton != MouseLeft || release.MouseButton != MouseNone || press.MouseX != 3 || press.MouseY != 4 {
		t.Errorf("expected press and release at (3, 4), got %+v %+v", press, release)
	}
	if _, ok := b.TryPollEvent(); ok {
		t.Error("queue should be empty")
	}
}

func TestMemoryBackendShutdown(t *testing.T) {
	b := newMemory(t, 80, 24)
	b.Shutdown()
	b.Shutdown()

	if ev := b.PollEvent(); ev.Type != EventClosed {
		t.Errorf("expected closed event, got %+v", ev)
	}
	if b.PostEvent(Event{Type: EventKey}) {
		t.Error("posting to a closed backend should fail")
	}
}

func TestPoster(t *testing.T) {
	b := newMemory(t, 80, 24)
	ran := false

	if !Poster(b)(func() { ran = true }) {
		t.Fatal("post failed")
	}
	ev := b.PollEvent()
	if ev.Type != EventInterrupt || ev.Func == nil {
		t.Fatalf("expected interrupt, got %+v", ev)
	}
	ev.Func()
	if !ran {
		t.Error("posted function did not run")
	}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want key.Event
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), key.NewRuneEvent('x', key.ModNone)},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), key.NewSpecialEvent(key.KeyEnter, key.ModNone)},
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), key.NewSpecialEvent(key.KeyTab, key.ModNone)},
		{"backspace2", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), key.NewSpecialEvent(key.KeyBackspace, key.ModNone)},
		{"ctrl-u", tcell.NewEventKey(tcell.KeyCtrlU, 0, tcell.ModCtrl), key.NewRuneEvent('u', key.ModCtrl)},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), key.NewSpecialEvent(key.KeyEscape, key.ModNone)},
		{"pgdn", tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), key.NewSpecialEvent(key.KeyPageDown, key.ModNone)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertKey(tt.ev)
			if got != tt.want {
				t.Errorf("convertKey = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConvertEventInterrupt(t *testing.T) {
	fn := func() {}
	ev := convertEvent(tcell.NewEventInterrupt(fn))
	if ev.Type != EventInterrupt || ev.Func == nil {
		t.Errorf("expected interrupt with func, got %+v", ev)
	}

	if ev := convertEvent(tcell.NewEventInterrupt("other")); ev.Type != EventNone {
		t.Errorf("foreign interrupt data should be ignored, got %+v", ev)
	}
	if ev := convertEvent(nil); ev.Type != EventClosed {
		t.Errorf("nil event means closed, got %+v", ev)
	}
}

func TestStyleRoundTrip(t *testing.T) {
	s := core.DefaultStyle().WithForeground(core.ColorFromRGB(10, 20, 30)).WithBackground(core.ColorBlue).Bold()
	got := convertTcellStyle(convertStyle(s))
	if !got.Equals(s) {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}
}
