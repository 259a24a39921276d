// Package renderer draws the editable grid on a terminal backend.
//
// A frame has four fixed parts and two overlays:
//
//	 [ Columns ▾ ]                     Title    toolbar
//	 ID │ Name        │ Email           │         sticky header
//	 ──────────────────────────────────────
//	 1  │ Alice       │ alice@...       │         body, scrolls
//	 ...
//	 NORMAL                      Name  1/12     status line
//
// The column menu drops down from the toolbar button and a modal message
// box is centered on top of everything. Only the body scrolls; the header
// stays in place.
//
// The renderer also owns the cell cursor and answers hit tests against the
// geometry of the last frame it drew.
//
// Usage:
//
//	b, _ := backend.NewTerminal()
//	r := renderer.New(b, sheet, menu, renderer.DefaultOptions())
//	r.Render()
package renderer
