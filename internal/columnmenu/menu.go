// Package columnmenu implements the "Columns" dropdown that toggles
// column visibility.
//
// Losing focus closes the menu after a short delay so a click that is
// already under way still lands on an item. The close is a deferred
// action: opening the menu again cancels it, so a close scheduled by an
// earlier blur never shuts a menu opened later.
package columnmenu

import (
	"log/slog"
	"time"

	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/deferred"
)

// DefaultCloseDelay is the delay between blur and close.
const DefaultCloseDelay = 150 * time.Millisecond

// Source provides the columns and applies toggles.
type Source interface {
	AllColumns() []column.Definition
	IsVisible(key string) bool
	ToggleColumn(key string)
}

// Item is one checkbox row of the menu.
type Item struct {
	Key     string
	Label   string
	Checked bool
}

// Option configures a Menu.
type Option func(*config)

type config struct {
	delay  time.Duration
	clock  deferred.Clock
	poster deferred.Poster
	logger *slog.Logger
}

// WithCloseDelay sets the blur-to-close delay.
func WithCloseDelay(d time.Duration) Option {
	return func(c *config) { c.delay = d }
}

// WithClock sets the clock used for the deferred close.
func WithClock(clock deferred.Clock) Option {
	return func(c *config) { c.clock = clock }
}

// WithPoster routes the deferred close through an event loop.
func WithPoster(p deferred.Poster) Option {
	return func(c *config) { c.poster = p }
}

// WithLogger sets the menu logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Menu is the dropdown state. Like the rest of the UI state it is owned
// by the event loop goroutine; only the deferred close timer runs
// elsewhere and it reaches the menu through the poster.
type Menu struct {
	src      Source
	open     bool
	cursor   int
	closer   *deferred.Action
	logger   *slog.Logger
	onChange func(open bool)
}

// New creates a closed menu.
func New(src Source, opts ...Option) *Menu {
	cfg := config{
		delay:  DefaultCloseDelay,
		clock:  deferred.RealClock{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Menu{src: src, logger: cfg.logger}
	dopts := []deferred.Option{deferred.WithClock(cfg.clock)}
	if cfg.poster != nil {
		dopts = append(dopts, deferred.WithPoster(cfg.poster))
	}
	m.closer = deferred.New(cfg.delay, m.deferredClose, dopts...)
	return m
}

// OnChange registers a callback for open/close changes, used to request
// a redraw.
func (m *Menu) OnChange(fn func(open bool)) {
	m.onChange = fn
}

// SetCloseDelay changes the blur-to-close delay.
func (m *Menu) SetCloseDelay(d time.Duration) {
	m.closer.SetDelay(d)
}

// IsOpen reports whether the menu is shown.
func (m *Menu) IsOpen() bool {
	return m.open
}

// ClosePending reports whether a deferred close is armed.
func (m *Menu) ClosePending() bool {
	return m.closer.Pending()
}

// Toggle handles a press of the menu button.
func (m *Menu) Toggle() {
	if m.open {
		m.Close()
		return
	}
	m.Open()
}

// Open shows the menu and cancels any pending close.
func (m *Menu) Open() {
	m.closer.Cancel()
	if m.open {
		return
	}
	m.open = true
	m.cursor = 0
	m.logger.Debug("column menu opened")
	m.changed()
}

// Close hides the menu immediately.
func (m *Menu) Close() {
	m.closer.Cancel()
	if !m.open {
		return
	}
	m.open = false
	m.logger.Debug("column menu closed")
	m.changed()
}

// Blur schedules a close after the configured delay.
func (m *Menu) Blur() deferred.Token {
	if !m.open {
		return 0
	}
	return m.closer.Schedule()
}

func (m *Menu) deferredClose() {
	if !m.open {
		return
	}
	m.open = false
	m.logger.Debug("column menu closed after blur")
	m.changed()
}

func (m *Menu) changed() {
	if m.onChange != nil {
		m.onChange(m.open)
	}
}

// Items returns one entry per column definition, in definition order,
// checked when the column is visible.
func (m *Menu) Items() []Item {
	defs := m.src.AllColumns()
	items := make([]Item, len(defs))
	for i, d := range defs {
		items[i] = Item{Key: d.Key, Label: d.HeaderText(), Checked: m.src.IsVisible(d.Key)}
	}
	return items
}

// Activate toggles the column of item i. Out-of-range indexes are ignored.
func (m *Menu) Activate(i int) bool {
	defs := m.src.AllColumns()
	if !m.open || i < 0 || i >= len(defs) {
		return false
	}
	m.cursor = i
	m.src.ToggleColumn(defs[i].Key)
	return true
}

// ActivateCursor toggles the column under the keyboard cursor.
func (m *Menu) ActivateCursor() bool {
	return m.Activate(m.cursor)
}

// Cursor returns the highlighted item index.
func (m *Menu) Cursor() int {
	return m.cursor
}

// Up moves the cursor up, stopping at the first item.
func (m *Menu) Up() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// Down moves the cursor down, stopping at the last item.
func (m *Menu) Down() {
	if m.cursor < len(m.src.AllColumns())-1 {
		m.cursor++
	}
}
