package columnmenu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/deferred"
)

type fakeSource struct {
	defs []column.Definition
	vis  *column.Visibility
}

func newFakeSource() *fakeSource {
	defs := []column.Definition{
		{Key: "id", Header: "ID"},
		{Key: "name", Header: "Name"},
		{Key: "email"},
	}
	return &fakeSource{defs: defs, vis: column.NewVisibility(defs)}
}

func (f *fakeSource) AllColumns() []column.Definition { return f.defs }
func (f *fakeSource) IsVisible(key string) bool      { return f.vis.IsVisible(key) }
func (f *fakeSource) ToggleColumn(key string)        { f.vis = column.Toggle(f.vis, key) }

func TestMenuToggle(t *testing.T) {
	m := New(newFakeSource())
	var changes []bool
	m.OnChange(func(open bool) { changes = append(changes, open) })

	m.Toggle()
	assert.True(t, m.IsOpen())
	m.Toggle()
	assert.False(t, m.IsOpen())
	assert.Equal(t, []bool{true, false}, changes)
}

func TestMenuItems(t *testing.T) {
	src := newFakeSource()
	m := New(src)
	m.Open()

	require.True(t, m.Activate(1))

	want := []Item{
		{Key: "id", Label: "ID", Checked: true},
		{Key: "name", Label: "Name", Checked: false},
		{Key: "email", Label: "email", Checked: true},
	}
	assert.Equal(t, want, m.Items())
	assert.False(t, m.Activate(3))
	assert.False(t, m.Activate(-1))
}

func TestMenuActivateWhenClosed(t *testing.T) {
	src := newFakeSource()
	m := New(src)

	assert.False(t, m.Activate(0))
	assert.True(t, src.IsVisible("id"))
}

func TestMenuBlurClosesAfterDelay(t *testing.T) {
	clock := deferred.NewManualClock()
	m := New(newFakeSource(), WithClock(clock))
	m.Open()

	m.Blur()
	clock.Advance(149 * time.Millisecond)
	assert.True(t, m.IsOpen(), "item clicks during the delay still land")
	assert.True(t, m.ClosePending())
	require.True(t, m.Activate(0))

	clock.Advance(time.Millisecond)
	assert.False(t, m.IsOpen())
}

func TestMenuStaleCloseDoesNotCloseReopenedMenu(t *testing.T) {
	clock := deferred.NewManualClock()
	m := New(newFakeSource(), WithClock(clock))

	m.Open()
	m.Blur()
	m.Close()
	clock.Advance(100 * time.Millisecond)
	m.Open()
	clock.Advance(100 * time.Millisecond)

	assert.True(t, m.IsOpen())
	assert.False(t, m.ClosePending())
}

func TestMenuStaleCloseQueuedOnLoop(t *testing.T) {
	clock := deferred.NewManualClock()
	var queued []func()
	post := func(fn func()) bool {
		queued = append(queued, fn)
		return true
	}
	m := New(newFakeSource(), WithClock(clock), WithPoster(post), WithCloseDelay(50*time.Millisecond))

	m.Open()
	m.Blur()
	clock.Advance(50 * time.Millisecond)
	require.Len(t, queued, 1)

	// The user re-opens before the loop gets to the queued close.
	m.Close()
	m.Open()
	for _, fn := range queued {
		fn()
	}

	assert.True(t, m.IsOpen())
}

func TestMenuBlurWhenClosed(t *testing.T) {
	clock := deferred.NewManualClock()
	m := New(newFakeSource(), WithClock(clock))

	assert.Equal(t, deferred.Token(0), m.Blur())
	assert.Equal(t, 0, clock.Pending())
}

func TestMenuCursor(t *testing.T) {
	src := newFakeSource()
	m := New(src)
	m.Open()

	m.Up()
	assert.Equal(t, 0, m.Cursor())
	m.Down()
	m.Down()
	m.Down()
	assert.Equal(t, 2, m.Cursor())

	require.True(t, m.ActivateCursor())
	assert.False(t, src.IsVisible("email"))

	m.Close()
	m.Open()
	assert.Equal(t, 0, m.Cursor(), "reopening resets the cursor")
}
