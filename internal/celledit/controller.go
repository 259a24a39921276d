package celledit

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/input/key"
)

// Editability reports whether a field may be edited.
// column.Registry satisfies it.
type Editability interface {
	IsEditable(field string) bool
}

// CommitFunc receives the raw input of a committed session.
// The controller is already Idle when it is called.
type CommitFunc func(row grid.RowID, field, value string)

// Reason explains a transition.
type Reason int

const (
	ReasonActivated Reason = iota
	ReasonCommitted
	ReasonCancelled
	ReasonBlurred
	ReasonReplaced
)

var reasonNames = [...]string{"activated", "committed", "cancelled", "blurred", "replaced"}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Transition describes a mode change.
// Session is the session entered (Idle to Editing) or left (Editing to Idle).
type Transition struct {
	From, To Mode
	Reason   Reason
	Session  Session
}

// TransitionFunc observes transitions.
type TransitionFunc func(Transition)

// Option configures a Controller.
type Option func(*Controller)

// WithKeymap sets the keymap used by HandleKey.
func WithKeymap(km *key.Keymap) Option {
	return func(c *Controller) {
		c.keymap = km
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithIDSource replaces the session ID generator.
func WithIDSource(fn func() uuid.UUID) Option {
	return func(c *Controller) {
		c.newID = fn
	}
}

// Controller owns the edit state. It is not safe for concurrent use; all
// calls are expected on the event loop goroutine.
type Controller struct {
	state     State
	editable  Editability
	onCommit  CommitFunc
	keymap    *key.Keymap
	observers []TransitionFunc
	newID     func() uuid.UUID
	logger    *slog.Logger
}

// NewController creates an idle controller.
func NewController(editable Editability, onCommit CommitFunc, opts ...Option) *Controller {
	c := &Controller{
		editable: editable,
		onCommit: onCommit,
		keymap:   key.DefaultKeymap(),
		newID:    uuid.New,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnTransition registers an observer. Observers run after the state has
// changed and before the commit callback.
func (c *Controller) OnTransition(fn TransitionFunc) {
	if fn != nil {
		c.observers = append(c.observers, fn)
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Mode returns Idle or Editing.
func (c *Controller) Mode() Mode {
	return c.state.Mode()
}

// Session returns the active session, or nil when Idle.
// The session must not be modified.
func (c *Controller) Session() *Session {
	return c.state.Session
}

// IsEditing reports whether the given cell is being edited.
func (c *Controller) IsEditing(row grid.RowID, field string) bool {
	return c.state.Session.Is(row, field)
}

// Activate starts editing a cell. raw is the current field value.
// A non-editable field is a no-op. An active session on another cell is
// resolved as a blur first. It reports whether the cell is being edited
// afterwards.
func (c *Controller) Activate(row grid.RowID, field string, raw any) bool {
	if !c.editable.IsEditable(field) {
		return false
	}
	if cur := c.state.Session; cur != nil && !cur.Is(row, field) {
		c.apply(Event{Kind: Blur, SessionID: cur.ID}, ReasonReplaced)
	}
	c.apply(Event{
		Kind:     Activate,
		Row:      row,
		Field:    field,
		Raw:      raw,
		Editable: true,
		NewID:    c.newID(),
	}, ReasonActivated)
	return c.state.Session.Is(row, field)
}

// Commit finalizes the session and calls the commit callback once.
// It reports whether a commit was dispatched.
func (c *Controller) Commit() bool {
	return c.apply(Event{Kind: Commit}, ReasonCommitted)
}

// Cancel discards the session without calling the commit callback.
func (c *Controller) Cancel() bool {
	return c.apply(Event{Kind: Cancel}, ReasonCancelled)
}

// Blur reports focus loss for session id. A blur for a session that has
// already ended, or for a different session, is ignored.
func (c *Controller) Blur(id uuid.UUID) bool {
	return c.apply(Event{Kind: Blur, SessionID: id}, ReasonBlurred)
}

// BlurCurrent blurs whatever session is active.
func (c *Controller) BlurCurrent() bool {
	if c.state.Session == nil {
		return false
	}
	return c.Blur(c.state.Session.ID)
}

// HandleKey routes a key press while Editing: commit and cancel bindings
// end the session, editing keys change the input. It reports whether the
// key was consumed. Keys are never consumed while Idle.
func (c *Controller) HandleKey(ev key.Event) bool {
	if c.state.Session == nil {
		return false
	}
	switch a, _ := c.keymap.Resolve(ev, key.ActionCommit, key.ActionCancel); a {
	case key.ActionCommit:
		c.Commit()
		return true
	case key.ActionCancel:
		c.Cancel()
		return true
	}
	before := c.state.Session
	c.apply(Event{Kind: Edit, Key: ev}, ReasonActivated)
	return c.state.Session != before
}

// apply runs one reducer step, notifies observers and dispatches a commit.
// It reports whether the state changed.
func (c *Controller) apply(ev Event, reason Reason) bool {
	prev := c.state
	next, dispatch := Reduce(prev, ev)
	if next == prev {
		return false
	}
	c.state = next

	if prev.Mode() != next.Mode() {
		t := Transition{From: prev.Mode(), To: next.Mode(), Reason: reason}
		if next.Session != nil {
			t.Session = *next.Session
		} else {
			t.Session = *prev.Session
		}
		c.logger.Debug("edit transition",
			"from", t.From.String(), "to", t.To.String(), "reason", reason.String(),
			"row", t.Session.Row.String(), "field", t.Session.Field)
		for _, fn := range c.observers {
			fn(t)
		}
	}

	if dispatch != nil && c.onCommit != nil {
		c.onCommit(dispatch.Row, dispatch.Field, dispatch.Value)
	}
	return true
}
