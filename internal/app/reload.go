package app

import (
	"slices"

	"github.com/dshills/gridedit/internal/config"
	"github.com/dshills/gridedit/internal/config/watcher"
	"github.com/dshills/gridedit/internal/event"
	"github.com/dshills/gridedit/internal/input/key"
	"github.com/dshills/gridedit/internal/renderer/backend"
)

// onFileChange runs on the watcher goroutine. The reload itself is posted
// to the event loop.
func (app *Application) onFileChange(ev watcher.Event) {
	if ev.Op == watcher.OpRemove {
		app.logger.Info("watched file removed", "path", ev.Path)
		return
	}
	post := backend.Poster(app.backend)
	if !post(func() { app.reloadPath(ev.Path) }) {
		app.logger.Warn("reload dropped", "path", ev.Path)
	}
}

func (app *Application) reloadPath(path string) {
	switch path {
	case app.settingsPath:
		_ = app.ReloadSettings()
	case app.datasetPath:
		_ = app.ReloadDataset()
	}
}

// ReloadSettings reads the settings again and applies the keymap, the
// theme, the menu delay, the grid limits and the log level. The log file
// and format only change on restart. Must run on the event loop.
func (app *Application) ReloadSettings() error {
	err := app.applySettings()
	return app.reloaded(app.opts.ConfigPath, err)
}

func (app *Application) applySettings() error {
	s, err := app.loadSettings()
	if err != nil {
		return err
	}
	theme, err := buildTheme(s)
	if err != nil {
		return err
	}
	km := key.DefaultKeymap()
	if err := km.Apply(s.KeymapOverrides()); err != nil {
		return err
	}

	*app.keymap = *km
	app.renderer.SetTheme(theme)
	app.renderer.SetMaxColumnWidth(s.Grid.MaxColumnWidth)
	app.renderer.Viewport().SetMargin(s.Grid.ScrollMargin)
	app.menu.SetCloseDelay(s.Menu.CloseDelay.Std())
	if app.logging != nil {
		if level, err := s.Log.SlogLevel(); err == nil {
			app.logging.SetLevel(level)
		}
	}
	if s.Log.File != app.settings.Log.File || s.Log.Format != app.settings.Log.Format {
		app.logger.Info("log file and format changes apply on restart")
	}
	app.settings = s
	return nil
}

// ReloadDataset reads the dataset again and replaces the records. Column
// changes only apply on restart. Must run on the event loop.
func (app *Application) ReloadDataset() error {
	err := app.applyDataset()
	return app.reloaded(app.opts.DataPath, err)
}

func (app *Application) applyDataset() error {
	ds, err := app.loadDataset()
	if err != nil {
		return err
	}
	records, err := ds.BuildRecords()
	if err != nil {
		return err
	}
	if err := app.sheet.ReplaceRecords(records); err != nil {
		return err
	}
	if !slices.Equal(columnKeys(ds), columnKeys(app.dataset)) {
		app.logger.Warn("column changes apply on restart", "source", ds.Source)
	}
	app.dataset = ds
	return nil
}

func columnKeys(ds *config.Dataset) []string {
	keys := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		keys[i] = c.Key
	}
	return keys
}

// reloaded logs and publishes the outcome of a reload.
func (app *Application) reloaded(path string, err error) error {
	if err != nil {
		err = NewOperationError("reload", path, err)
		app.logger.Warn("reload failed", "path", path, "error", err)
	} else {
		app.logger.Info("reloaded", "path", path)
	}
	app.sheet.Bus().Emit(event.TopicConfigReloaded, event.ConfigReloaded{Path: path, Err: err}, "app")
	return err
}
