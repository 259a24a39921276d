// Package celledit implements the single-cell edit state machine.
//
// The machine has two modes. Idle has no session; Editing has exactly one
// Session for a (row, field) pair. Reduce is the pure transition function;
// Controller wraps it with session IDs, the commit callback, keymap lookup
// and transition observers.
//
// A commit is dispatched at most once per session. After a commit the
// machine is Idle, so a blur that follows the commit keypress carries a
// session ID that is no longer current and is ignored.
package celledit

import (
	"github.com/google/uuid"

	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/input/key"
)

// Mode is Idle or Editing.
type Mode int

const (
	Idle Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "EDIT"
	}
	return "NORMAL"
}

// Session is the cell currently being edited.
type Session struct {
	ID      uuid.UUID
	Row     grid.RowID
	Field   string
	Raw     any
	Input   Input
	Focused bool
}

// Is reports whether the session edits the given cell.
func (s *Session) Is(row grid.RowID, field string) bool {
	return s != nil && s.Row == row && s.Field == field
}

// State is the machine state. A nil Session means Idle.
type State struct {
	Session *Session
}

// Mode returns Idle or Editing.
func (s State) Mode() Mode {
	if s.Session == nil {
		return Idle
	}
	return Editing
}

// Kind identifies an input to Reduce.
type Kind int

const (
	// Activate asks to edit a cell.
	Activate Kind = iota
	// Commit finalizes the current session.
	Commit
	// Cancel discards the current session.
	Cancel
	// Blur reports that the edit surface of SessionID lost focus.
	Blur
	// Edit applies a text editing key to the input.
	Edit
)

var kindNames = [...]string{"activate", "commit", "cancel", "blur", "edit"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is an input to Reduce.
type Event struct {
	Kind Kind

	// Activate fields. NewID becomes the session ID.
	Row      grid.RowID
	Field    string
	Raw      any
	Editable bool
	NewID    uuid.UUID

	// Blur field.
	SessionID uuid.UUID

	// Edit field.
	Key key.Event
}

// Dispatch is the write request produced by a commit.
type Dispatch struct {
	SessionID uuid.UUID
	Row       grid.RowID
	Field     string
	Value     string
}

// Reduce returns the state after ev. It returns a non-nil Dispatch only
// for a Commit while Editing. Reduce never modifies s.
func Reduce(s State, ev Event) (State, *Dispatch) {
	cur := s.Session

	switch ev.Kind {
	case Activate:
		if !ev.Editable {
			return s, nil
		}
		if cur.Is(ev.Row, ev.Field) {
			return s, nil
		}
		// Any other session is resolved as an implicit blur.
		return State{Session: &Session{
			ID:      ev.NewID,
			Row:     ev.Row,
			Field:   ev.Field,
			Raw:     ev.Raw,
			Input:   NewInput(column.DefaultString(ev.Raw)),
			Focused: true,
		}}, nil

	case Commit:
		if cur == nil {
			return s, nil
		}
		return State{}, &Dispatch{
			SessionID: cur.ID,
			Row:       cur.Row,
			Field:     cur.Field,
			Value:     cur.Input.String(),
		}

	case Cancel:
		return State{}, nil

	case Blur:
		if cur == nil || cur.ID != ev.SessionID {
			return s, nil
		}
		return State{}, nil

	case Edit:
		if cur == nil {
			return s, nil
		}
		in, ok := cur.Input.Apply(ev.Key)
		if !ok {
			return s, nil
		}
		next := *cur
		next.Input = in
		return State{Session: &next}, nil
	}
	return s, nil
}
