// Package sheet is the owning context of an editable grid.
//
// A Sheet holds the visibility map and wires together the grid store, the
// column registry, the cell edit controller and the validation policy.
// Everything here runs on one goroutine; a Sheet is not safe for
// concurrent use.
package sheet

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/dshills/gridedit/internal/celledit"
	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/event"
	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/input/key"
	"github.com/dshills/gridedit/internal/validate"
)

// ErrUnknownField is returned when a column names a field that no record has.
var ErrUnknownField = errors.New("unknown field")

const source = "sheet"

// Notifier shows a rejection message to the user. Alert is called
// synchronously from the commit path.
type Notifier interface {
	Alert(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Alert calls f.
func (f NotifierFunc) Alert(msg string) { f(msg) }

// UpdateFunc is called after an accepted write has been applied.
type UpdateFunc func(row grid.RowID, field string, value any)

// Option configures a Sheet.
type Option func(*options)

type options struct {
	onUpdate UpdateFunc
	notifier Notifier
	policy   *validate.Policy
	bus      *event.Bus
	logger   *slog.Logger
	keymap   *key.Keymap
	idSource func() uuid.UUID
}

// WithUpdateCallback sets the host callback for accepted writes.
func WithUpdateCallback(fn UpdateFunc) Option {
	return func(o *options) { o.onUpdate = fn }
}

// WithNotifier sets where rejection messages go.
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithPolicy sets the validation policy. Enum validators for columns
// that declare an enumeration are added to it.
func WithPolicy(p *validate.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithBus sets the event bus used for internal notifications.
func WithBus(b *event.Bus) Option {
	return func(o *options) { o.bus = b }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithKeymap sets the keymap used while editing.
func WithKeymap(km *key.Keymap) Option {
	return func(o *options) { o.keymap = km }
}

// WithSessionIDs replaces the edit session ID generator.
func WithSessionIDs(fn func() uuid.UUID) Option {
	return func(o *options) { o.idSource = fn }
}

// Sheet is the grid orchestrator.
type Sheet struct {
	store    *grid.Store
	registry *column.Registry
	vis      *column.Visibility
	edit     *celledit.Controller
	policy   *validate.Policy
	notifier Notifier
	bus      *event.Bus
	onUpdate UpdateFunc
	logger   *slog.Logger
}

// New builds a sheet over records and defs.
func New(records []*grid.Record, defs []column.Definition, opts ...Option) (*Sheet, error) {
	o := options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy == nil {
		o.policy = validate.NewPolicy()
	}
	if o.bus == nil {
		o.bus = event.NewBus(event.WithLogger(o.logger))
	}
	if o.notifier == nil {
		o.notifier = NotifierFunc(func(msg string) {
			o.logger.Warn("rejected edit", "message", msg)
		})
	}

	registry, err := column.NewRegistry(defs)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	if err := checkFields(records, defs); err != nil {
		return nil, err
	}
	store, err := grid.NewStore(records, grid.WithLogger(o.logger.With("component", "store")))
	if err != nil {
		return nil, fmt.Errorf("records: %w", err)
	}

	for _, d := range defs {
		if len(d.Enum) > 0 {
			o.policy.Register(d.Key, validate.Enum(d.Enum...))
		}
	}

	s := &Sheet{
		store:    store,
		registry: registry,
		vis:      registry.DefaultVisibility(),
		policy:   o.policy,
		notifier: o.notifier,
		bus:      o.bus,
		onUpdate: o.onUpdate,
		logger:   o.logger,
	}

	copts := []celledit.Option{celledit.WithLogger(o.logger.With("component", "celledit"))}
	if o.keymap != nil {
		copts = append(copts, celledit.WithKeymap(o.keymap))
	}
	if o.idSource != nil {
		copts = append(copts, celledit.WithIDSource(o.idSource))
	}
	s.edit = celledit.NewController(registry, s.commit, copts...)
	s.edit.OnTransition(s.onTransition)
	return s, nil
}

// checkFields rejects a column whose key appears in none of the records.
func checkFields(records []*grid.Record, defs []column.Definition) error {
	if len(records) == 0 {
		return nil
	}
	for _, d := range defs {
		found := false
		for _, r := range records {
			if r != nil && r.Has(d.Key) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: column %q", ErrUnknownField, d.Key)
		}
	}
	return nil
}

// Bus returns the sheet's event bus.
func (s *Sheet) Bus() *event.Bus { return s.bus }

// Policy returns the validation policy so extra validators can be added.
func (s *Sheet) Policy() *validate.Policy { return s.policy }

// Registry returns the column registry.
func (s *Sheet) Registry() *column.Registry { return s.registry }

// Editor returns the cell edit controller.
func (s *Sheet) Editor() *celledit.Controller { return s.edit }

// Rows returns the current row collection. It must not be modified.
func (s *Sheet) Rows() grid.Rows { return s.store.Rows() }

// Len returns the number of rows.
func (s *Sheet) Len() int { return s.store.Len() }

// Row returns the record with id.
func (s *Sheet) Row(id grid.RowID) (*grid.Record, bool) { return s.store.Row(id) }

// Version increases on every applied write.
func (s *Sheet) Version() uint64 { return s.store.Version() }

// AllColumns returns every column definition in order.
func (s *Sheet) AllColumns() []column.Definition { return s.registry.All() }

// VisibleColumns returns the visible projection of the columns.
func (s *Sheet) VisibleColumns() []column.Definition {
	return s.registry.Visible(s.vis)
}

// Visibility returns the current visibility map.
func (s *Sheet) Visibility() *column.Visibility { return s.vis }

// IsVisible reports whether the column key is shown.
func (s *Sheet) IsVisible(key string) bool { return s.vis.IsVisible(key) }

// ToggleColumn flips the visibility of key.
func (s *Sheet) ToggleColumn(key string) {
	s.vis = column.Toggle(s.vis, key)
	visible := s.vis.IsVisible(key)
	s.logger.Debug("column toggled", "key", key, "visible", visible)
	s.bus.Emit(event.TopicColumnToggled, event.ColumnToggled{Key: key, Visible: visible}, source)
}

// Mode returns the edit mode.
func (s *Sheet) Mode() celledit.Mode { return s.edit.Mode() }

// Editing returns the active edit session or nil.
func (s *Sheet) Editing() *celledit.Session { return s.edit.Session() }

// Activate starts editing the cell (row, key). It reports whether the
// cell is being edited afterwards.
func (s *Sheet) Activate(row grid.RowID, key string) bool {
	rec, ok := s.store.Row(row)
	if !ok {
		return false
	}
	raw, _ := rec.Get(key)
	return s.edit.Activate(row, key, raw)
}

// ReplaceRecords swaps in a new row collection. An edit session open on a
// row that is gone stays open; its commit becomes a stale no-op.
func (s *Sheet) ReplaceRecords(records []*grid.Record) error {
	if err := checkFields(records, s.registry.All()); err != nil {
		return err
	}
	if err := s.store.Reset(records); err != nil {
		return fmt.Errorf("records: %w", err)
	}
	s.logger.Info("records replaced", "rows", len(records))
	return nil
}

// HandleKey forwards a key press to the edit controller.
func (s *Sheet) HandleKey(ev key.Event) bool { return s.edit.HandleKey(ev) }

// Commit commits the active session.
func (s *Sheet) Commit() bool { return s.edit.Commit() }

// Cancel cancels the active session.
func (s *Sheet) Cancel() bool { return s.edit.Cancel() }

// Blur reports focus loss of session id.
func (s *Sheet) Blur(id uuid.UUID) bool { return s.edit.Blur(id) }

// BlurCurrent blurs the active session, if any.
func (s *Sheet) BlurCurrent() bool { return s.edit.BlurCurrent() }

// CellText returns what a cell shows: the input buffer while it is being
// edited, the formatted value otherwise. A formatter error is returned
// with the default string form of the raw value.
func (s *Sheet) CellText(rec *grid.Record, def column.Definition) (text string, editing bool, err error) {
	if sess := s.edit.Session(); sess.Is(rec.ID, def.Key) {
		return sess.Input.String(), true, nil
	}
	raw, _ := rec.Get(def.Key)
	text, err = def.Display(raw)
	if err != nil {
		return column.DefaultString(raw), false, err
	}
	return text, false, nil
}

func (s *Sheet) onTransition(t celledit.Transition) {
	switch {
	case t.To == celledit.Editing:
		s.bus.Emit(event.TopicCellActivated, event.CellActivated{Row: t.Session.Row.Value(), Field: t.Session.Field}, source)
	case t.Reason != celledit.ReasonCommitted:
		s.bus.Emit(event.TopicCellCancelled, event.CellCancelled{Row: t.Session.Row.Value(), Field: t.Session.Field}, source)
	}
}

// commit is the edit controller's commit callback.
func (s *Sheet) commit(row grid.RowID, field, value string) {
	if err := s.policy.Check(field, value); err != nil {
		reason := err.Error()
		var verr *validate.Error
		if errors.As(err, &verr) {
			reason = verr.Message
		}
		s.logger.Info("edit rejected", "row", row.String(), "field", field, "value", value, "reason", reason)
		s.bus.Emit(event.TopicCellRejected, event.CellRejected{
			Row: row.Value(), Field: field, Value: value, Reason: reason,
		}, source)
		s.notifier.Alert(s.rejectMessage(field, value, reason))
		return
	}

	if field == grid.IDField {
		s.logger.Warn("identifier column is not writable", "row", row.String())
		return
	}

	var prev any
	if rec, ok := s.store.Row(row); ok {
		prev, _ = rec.Get(field)
	}
	v := coerce(prev, value)

	if !s.store.UpdateField(row, field, v) {
		s.bus.Emit(event.TopicCellStale, event.CellStale{Row: row.Value(), Field: field}, source)
		return
	}
	s.bus.Emit(event.TopicCellCommitted, event.CellCommitted{Row: row.Value(), Field: field, Value: value}, source)
	if s.onUpdate != nil {
		s.onUpdate(row, field, v)
	}
}

func (s *Sheet) rejectMessage(field, value, reason string) string {
	name := field
	if d, ok := s.registry.Lookup(field); ok {
		name = d.HeaderText()
	}
	return fmt.Sprintf("Invalid %s %q: %s.", name, value, reason)
}

// coerce keeps numeric and boolean fields typed when the input parses;
// anything else is stored as the string the user typed.
func coerce(prev any, s string) any {
	switch prev.(type) {
	case int64:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case int:
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	case float64:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case bool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}
