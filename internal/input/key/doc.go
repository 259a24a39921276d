// Package key provides key event types, key-spec parsing and the action
// keymap used by the grid.
//
//   - Key: a special key or KeyRune for characters
//   - Modifier: Ctrl, Alt, Shift, Meta
//   - Event: a single key press
//   - Keymap: named actions ("commit", "cancel", "edit", ...) bound to events
//
// # Key Specifications
//
// Specs may be written as:
//
//   - Simple keys: "a", "q", "Enter", "Escape"
//   - With modifiers: "Ctrl+C", "Alt+Enter"
//   - Vim-style: "<C-c>", "<CR>", "<Esc>"
package key
