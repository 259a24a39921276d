package app

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/input/key"
	"github.com/dshills/gridedit/internal/renderer"
	"github.com/dshills/gridedit/internal/renderer/backend"
	"github.com/dshills/gridedit/internal/renderer/statusline"
)

// Mouse wheel step in rows.
const wheelStep = 3

// eventLoop draws a frame, then blocks on the backend and handles one
// event at a time until quit or the backend closes.
func (app *Application) eventLoop() error {
	app.render()
	for {
		ev := app.backend.PollEvent()
		if ev.Type == backend.EventClosed {
			return nil
		}

		start := time.Now()
		err := app.safeHandle(ev)
		app.metrics.RecordEvent(time.Since(start))

		if errors.Is(err, ErrQuit) || app.quit {
			return nil
		}
		if err != nil {
			return err
		}
		app.render()
	}
}

func (app *Application) render() {
	start := time.Now()
	app.renderer.Render()
	app.metrics.RecordRender(time.Since(start))
}

// safeHandle handles ev and turns a handler panic into a logged error and
// a status message. The loop keeps running.
func (app *Application) safeHandle(ev backend.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr := NewRecoveredPanicError(r, string(debug.Stack()))
			app.metrics.RecordPanic()
			app.logger.Error("event handler panic", "panic", fmt.Sprint(r), "stack", perr.Stack)
			app.status(fmt.Sprintf("Internal error: %v", r), statusline.MessageError)
			err = nil
		}
	}()
	return app.handleBackendEvent(ev)
}

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		app.renderer.Resize(ev.Width, ev.Height)
		return nil
	case backend.EventKey:
		app.metrics.RecordKey()
		return app.handleKey(ev.Key)
	case backend.EventMouse:
		return app.handleMouse(ev)
	case backend.EventInterrupt:
		app.metrics.RecordInterrupt()
		if ev.Func != nil {
			ev.Func()
		}
		return nil
	default:
		return nil
	}
}

// handleKey routes a key press to the modal, the open menu, the edit
// session or grid navigation, in that order.
func (app *Application) handleKey(ev key.Event) error {
	km := app.keymap
	r := app.renderer

	if r.ModalActive() {
		r.DismissModal()
		return nil
	}

	if app.menu.IsOpen() {
		return app.handleMenuKey(ev)
	}

	if app.sheet.Editing() != nil {
		app.sheet.HandleKey(ev)
		return nil
	}

	action, ok := km.Resolve(ev,
		key.ActionQuit, key.ActionColumns, key.ActionEdit,
		key.ActionUp, key.ActionDown, key.ActionLeft, key.ActionRight,
		key.ActionPageUp, key.ActionPageDown,
	)
	if !ok {
		return nil
	}
	switch action {
	case key.ActionQuit:
		return ErrQuit
	case key.ActionColumns:
		app.menu.Toggle()
	case key.ActionEdit:
		app.editCursorCell()
	case key.ActionUp:
		r.MoveCursor(-1, 0)
	case key.ActionDown:
		r.MoveCursor(1, 0)
	case key.ActionLeft:
		r.MoveCursor(0, -1)
	case key.ActionRight:
		r.MoveCursor(0, 1)
	case key.ActionPageUp:
		r.PageUp()
	case key.ActionPageDown:
		r.PageDown()
	}
	return nil
}

func (app *Application) handleMenuKey(ev key.Event) error {
	action, ok := app.keymap.Resolve(ev,
		key.ActionQuit, key.ActionCancel, key.ActionColumns,
		key.ActionUp, key.ActionDown, key.ActionToggle,
	)
	if !ok {
		return nil
	}
	switch action {
	case key.ActionQuit:
		return ErrQuit
	case key.ActionCancel, key.ActionColumns:
		app.menu.Close()
	case key.ActionUp:
		app.menu.Up()
	case key.ActionDown:
		app.menu.Down()
	case key.ActionToggle:
		items := app.menu.Items()
		if i := app.menu.Cursor(); i < len(items) {
			app.toggleItem(i, items[i].Key)
		}
	}
	return nil
}

// editCursorCell starts editing the cell under the cursor, or beeps when
// it is read-only.
func (app *Application) editCursorCell() {
	rec, def, ok := app.renderer.CursorCell()
	if !ok {
		return
	}
	if !def.Editable || !app.sheet.Activate(rec.ID, def.Key) {
		app.backend.Beep()
	}
}

// toggleItem flips the column of menu item i and keeps the cell cursor on
// the column it was on.
func (app *Application) toggleItem(i int, itemKey string) {
	_, cur, hadCursor := app.renderer.CursorCell()
	if !app.menu.Activate(i) {
		return
	}
	app.logger.Debug("menu item toggled", "key", itemKey)
	if hadCursor {
		app.renderer.FollowColumn(cur.Key)
	}
}

// handleMouse acts on the press edge of the left button and on the wheel.
// Motion with the button held and the release are ignored.
func (app *Application) handleMouse(ev backend.Event) error {
	switch ev.MouseButton {
	case backend.MouseWheelUp:
		app.renderer.Scroll(-wheelStep)
		return nil
	case backend.MouseWheelDown:
		app.renderer.Scroll(wheelStep)
		return nil
	}

	pressed := ev.MouseButton == backend.MouseLeft
	edge := pressed && !app.mouseDown
	app.mouseDown = pressed
	if !edge {
		return nil
	}
	app.metrics.RecordClick()
	app.handleClick(ev.MouseX, ev.MouseY)
	return nil
}

// handleClick applies a left click at (x, y). Focus leaves the edit input
// and the menu before the click lands on what is under it.
func (app *Application) handleClick(x, y int) {
	r := app.renderer
	hit := r.HitTest(x, y)

	if hit.Kind == renderer.HitModal {
		r.DismissModal()
		return
	}

	if app.sheet.Editing() != nil && !(hit.Kind == renderer.HitCell && hit.Editing) {
		app.sheet.BlurCurrent()
	}
	if app.menu.IsOpen() {
		switch hit.Kind {
		case renderer.HitMenu, renderer.HitMenuItem, renderer.HitMenuButton:
		default:
			app.menu.Blur()
		}
	}

	switch hit.Kind {
	case renderer.HitMenuButton:
		app.menu.Toggle()
	case renderer.HitMenuItem:
		items := app.menu.Items()
		if hit.Item >= 0 && hit.Item < len(items) {
			app.toggleItem(hit.Item, items[hit.Item].Key)
		}
	case renderer.HitHeader:
		if hit.Column >= 0 {
			row, _ := r.Cursor()
			r.SetCursor(row, hit.Column)
		}
	case renderer.HitCell:
		app.clickCell(hit)
	}
}

func (app *Application) clickCell(hit renderer.Hit) {
	if hit.Column < 0 {
		app.renderer.SetCursor(hit.RowIndex, 0)
		return
	}
	app.renderer.SetCursor(hit.RowIndex, hit.Column)
	if hit.Editing {
		return
	}
	defs := app.sheet.VisibleColumns()
	if hit.Column < len(defs) && defs[hit.Column].Editable {
		app.sheet.Activate(hit.Row, hit.Key)
	}
}

// alert is the sheet's notifier: rejection messages are shown as a modal.
func (app *Application) alert(msg string) {
	if app.renderer == nil {
		app.logger.Warn("rejected edit", "message", msg)
		return
	}
	app.renderer.ShowModal(msg)
}

// onUpdate is the sheet's write callback.
func (app *Application) onUpdate(row grid.RowID, field string, value any) {
	app.logger.Info("record updated", "row", row.String(), "field", field, "value", value)
}
