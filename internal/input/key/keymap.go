package key

import (
	"fmt"
	"sort"
	"strings"
)

// Action names a bindable command.
type Action string

// Actions understood by the grid.
const (
	ActionCommit   Action = "commit"
	ActionCancel   Action = "cancel"
	ActionEdit     Action = "edit"
	ActionColumns  Action = "columns"
	ActionQuit     Action = "quit"
	ActionUp       Action = "up"
	ActionDown     Action = "down"
	ActionLeft     Action = "left"
	ActionRight    Action = "right"
	ActionPageUp   Action = "pageup"
	ActionPageDown Action = "pagedown"
	ActionToggle   Action = "toggle"
)

var defaultBindings = map[Action][]string{
	ActionCommit:   {"Enter"},
	ActionCancel:   {"Escape"},
	ActionEdit:     {"Enter", "F2"},
	ActionColumns:  {"c"},
	ActionQuit:     {"q", "Ctrl+C"},
	ActionUp:       {"Up", "k"},
	ActionDown:     {"Down", "j"},
	ActionLeft:     {"Left", "h"},
	ActionRight:    {"Right", "l", "Tab"},
	ActionPageUp:   {"PageUp"},
	ActionPageDown: {"PageDown"},
	ActionToggle:   {"Space", "Enter"},
}

// Keymap binds actions to one or more key events.
// The same event may be bound to several actions; the caller decides
// which actions apply in its current mode.
type Keymap struct {
	bindings map[Action][]Event
}

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() *Keymap {
	km := &Keymap{bindings: make(map[Action][]Event, len(defaultBindings))}
	for a, specs := range defaultBindings {
		for _, s := range specs {
			km.bindings[a] = append(km.bindings[a], MustParse(s))
		}
	}
	return km
}

// Actions returns every known action, sorted.
func Actions() []Action {
	out := make([]Action, 0, len(defaultBindings))
	for a := range defaultBindings {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Bind replaces the bindings of action with specs.
func (km *Keymap) Bind(action Action, specs ...string) error {
	if _, ok := defaultBindings[action]; !ok {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidSpec, action)
	}
	events := make([]Event, 0, len(specs))
	for _, s := range specs {
		ev, err := Parse(s)
		if err != nil {
			return fmt.Errorf("bind %s: %w", action, err)
		}
		events = append(events, ev)
	}
	km.bindings[action] = events
	return nil
}

// Apply overrides bindings from a settings table of action name to specs.
// Actions not in overrides keep their current bindings.
func (km *Keymap) Apply(overrides map[string][]string) error {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := km.Bind(Action(strings.ToLower(name)), overrides[name]...); err != nil {
			return err
		}
	}
	return nil
}

// Matches reports whether ev is bound to action.
func (km *Keymap) Matches(action Action, ev Event) bool {
	for _, b := range km.bindings[action] {
		if b.Equals(ev) {
			return true
		}
	}
	return false
}

// Resolve returns the first of the candidate actions that ev is bound to.
func (km *Keymap) Resolve(ev Event, candidates ...Action) (Action, bool) {
	for _, a := range candidates {
		if km.Matches(a, ev) {
			return a, true
		}
	}
	return "", false
}

// Bindings returns the events bound to action.
func (km *Keymap) Bindings(action Action) []Event {
	return km.bindings[action]
}

// Help returns the first binding of action in display form, or "".
func (km *Keymap) Help(action Action) string {
	b := km.bindings[action]
	if len(b) == 0 {
		return ""
	}
	return b[0].String()
}
