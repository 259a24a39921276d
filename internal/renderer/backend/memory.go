package backend

import (
	"strings"
	"sync"

	"github.com/dshills/gridedit/internal/input/key"
	"github.com/dshills/gridedit/internal/renderer/core"
)

// MemoryBackend keeps the screen in memory. It is used by tests and by the
// non-interactive paths that render a frame without a terminal.
type MemoryBackend struct {
	mu            sync.Mutex
	width, height int
	cells         [][]core.Cell
	cursorX       int
	cursorY       int
	cursorVisible bool
	shows         int
	beeps         int
	events        chan Event
	done          chan struct{}
	closeOnce     sync.Once
}

// NewMemoryBackend creates a memory backend with the given dimensions.
func NewMemoryBackend(width, height int) *MemoryBackend {
	return &MemoryBackend{
		width:  width,
		height: height,
		events: make(chan Event, 256),
		done:   make(chan struct{}),
	}
}

func (b *MemoryBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allocate()
	return nil
}

func (b *MemoryBackend) allocate() {
	b.cells = make([][]core.Cell, b.height)
	for i := range b.cells {
		b.cells[i] = make([]core.Cell, b.width)
		for j := range b.cells[i] {
			b.cells[i][j] = core.EmptyCell()
		}
	}
}

// Shutdown makes every later PollEvent return EventClosed.
func (b *MemoryBackend) Shutdown() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *MemoryBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *MemoryBackend) SetCell(x, y int, cell core.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x >= 0 && x < b.width && y >= 0 && y < len(b.cells) {
		b.cells[y][x] = cell
	}
}

func (b *MemoryBackend) GetCell(x, y int) core.Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x >= 0 && x < b.width && y >= 0 && y < len(b.cells) {
		return b.cells[y][x]
	}
	return core.EmptyCell()
}

func (b *MemoryBackend) Fill(rect core.ScreenRect, cell core.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for y := max(rect.Top, 0); y < rect.Bottom && y < len(b.cells); y++ {
		for x := max(rect.Left, 0); x < rect.Right && x < b.width; x++ {
			b.cells[y][x] = cell
		}
	}
}

func (b *MemoryBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	empty := core.EmptyCell()
	for y := range b.cells {
		for x := range b.cells[y] {
			b.cells[y][x] = empty
		}
	}
}

func (b *MemoryBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shows++
}

func (b *MemoryBackend) ShowCursor(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorX = x
	b.cursorY = y
	b.cursorVisible = true
}

func (b *MemoryBackend) HideCursor() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorVisible = false
}

func (b *MemoryBackend) PollEvent() Event {
	select {
	case ev := <-b.events:
		return ev
	case <-b.done:
		return Event{Type: EventClosed}
	}
}

// TryPollEvent returns the next queued event without blocking.
func (b *MemoryBackend) TryPollEvent() (Event, bool) {
	select {
	case ev := <-b.events:
		return ev, true
	default:
		return Event{}, false
	}
}

func (b *MemoryBackend) PostEvent(event Event) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.events <- event:
		return true
	default:
		return false
	}
}

func (b *MemoryBackend) Beep() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.beeps++
}

func (b *MemoryBackend) EnableMouse()  {}
func (b *MemoryBackend) DisableMouse() {}

// InjectKey queues a key press.
func (b *MemoryBackend) InjectKey(ev key.Event) bool {
	return b.PostEvent(Event{Type: EventKey, Key: ev})
}

// InjectClick queues a left button press and its release at (x, y).
func (b *MemoryBackend) InjectClick(x, y int) bool {
	return b.PostEvent(Event{Type: EventMouse, MouseX: x, MouseY: y, MouseButton: MouseLeft}) &&
		b.PostEvent(Event{Type: EventMouse, MouseX: x, MouseY: y, MouseButton: MouseNone})
}

// Resize changes the screen size, clears it and queues a resize event.
func (b *MemoryBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width = width
	b.height = height
	b.allocate()
	b.mu.Unlock()
	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}

// Line returns the text of row y with trailing spaces removed.
func (b *MemoryBackend) Line(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if y < 0 || y >= len(b.cells) {
		return ""
	}
	var sb strings.Builder
	for _, c := range b.cells[y] {
		if c.IsContinuation() {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}

// Lines returns every row as Line would.
func (b *MemoryBackend) Lines() []string {
	_, h := b.Size()
	out := make([]string, h)
	for y := range out {
		out[y] = b.Line(y)
	}
	return out
}

// Find returns the position of the first occurrence of text, scanning rows
// top to bottom. The column is a display column.
func (b *MemoryBackend) Find(text string) (x, y int, ok bool) {
	for row, line := range b.Lines() {
		if i := strings.Index(line, text); i >= 0 {
			return core.StringWidth(line[:i]), row, true
		}
	}
	return 0, 0, false
}

// CursorPosition returns the current cursor position.
func (b *MemoryBackend) CursorPosition() (x, y int, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursorX, b.cursorY, b.cursorVisible
}

// ShowCount returns how many frames have been shown.
func (b *MemoryBackend) ShowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shows
}

// BeepCount returns how many times Beep was called.
func (b *MemoryBackend) BeepCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.beeps
}
