package app

import (
	"fmt"

	"github.com/dshills/gridedit/internal/event"
	"github.com/dshills/gridedit/internal/renderer/statusline"
)

// newSubscriptions routes sheet and reload events to the status line and
// the metrics. Handlers run synchronously on the publishing goroutine,
// which is always the event loop.
func newSubscriptions(app *Application) ([]*event.Subscription, error) {
	handlers := []struct {
		topic   event.Topic
		handler event.Handler
	}{
		{event.TopicCellCommitted, app.onCommitted},
		{event.TopicCellRejected, func(event.Event) { app.metrics.RecordRejection() }},
		{event.TopicCellStale, app.onStale},
		{event.TopicColumnToggled, app.onColumnToggled},
		{event.TopicConfigReloaded, app.onReloaded},
	}

	bus := app.sheet.Bus()
	subs := make([]*event.Subscription, 0, len(handlers))
	for _, h := range handlers {
		sub, err := bus.Subscribe(h.topic, h.handler)
		if err != nil {
			for _, s := range subs {
				s.Cancel()
			}
			return nil, fmt.Errorf("subscribe %s: %w", h.topic, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (app *Application) status(msg string, t statusline.MessageType) {
	if app.renderer != nil {
		app.renderer.Status().SetMessage(msg, t)
	}
}

func (app *Application) header(field string) string {
	if d, ok := app.sheet.Registry().Lookup(field); ok {
		return d.HeaderText()
	}
	return field
}

func (app *Application) onCommitted(ev event.Event) {
	app.metrics.RecordCommit()
	if p, ok := ev.Payload.(event.CellCommitted); ok {
		app.status(fmt.Sprintf("Saved %s of row %v", app.header(p.Field), p.Row), statusline.MessageInfo)
	}
}

func (app *Application) onStale(ev event.Event) {
	app.metrics.RecordStale()
	if p, ok := ev.Payload.(event.CellStale); ok {
		app.status(fmt.Sprintf("Row %v no longer exists; edit discarded", p.Row), statusline.MessageWarning)
	}
}

func (app *Application) onColumnToggled(ev event.Event) {
	p, ok := ev.Payload.(event.ColumnToggled)
	if !ok {
		return
	}
	verb := "Hid"
	if p.Visible {
		verb = "Showed"
	}
	app.status(fmt.Sprintf("%s column %s", verb, app.header(p.Key)), statusline.MessageInfo)
}

func (app *Application) onReloaded(ev event.Event) {
	app.metrics.RecordReload()
	p, ok := ev.Payload.(event.ConfigReloaded)
	if !ok {
		return
	}
	if p.Err != nil {
		app.status(fmt.Sprintf("Reload failed: %v", p.Err), statusline.MessageError)
		return
	}
	app.status("Reloaded "+p.Path, statusline.MessageInfo)
}
