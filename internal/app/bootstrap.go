package app

import (
	"path/filepath"

	"github.com/dshills/gridedit/internal/columnmenu"
	"github.com/dshills/gridedit/internal/config"
	"github.com/dshills/gridedit/internal/config/loader"
	"github.com/dshills/gridedit/internal/config/watcher"
	"github.com/dshills/gridedit/internal/input/key"
	"github.com/dshills/gridedit/internal/renderer"
	"github.com/dshills/gridedit/internal/renderer/backend"
	"github.com/dshills/gridedit/internal/sheet"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"settings", b.initSettings},
		{"logging", b.initLogging},
		{"dataset", b.initDataset},
		{"sheet", b.initSheet},
		{"menu", b.initMenu},
		{"renderer", b.initRenderer},
		{"subscriptions", b.initSubscriptions},
		{"watcher", b.initWatcher},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			if _, ok := err.(*InitError); ok {
				return err
			}
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

// initSettings loads the settings file, the environment and the command
// line overrides.
func (b *bootstrapper) initSettings() error {
	s, err := b.app.loadSettings()
	if err != nil {
		return err
	}
	b.app.settings = s
	return nil
}

// loadSettings reads the settings the same way at startup and on reload.
func (app *Application) loadSettings() (*config.Settings, error) {
	env := app.opts.Env
	if env == nil {
		env = loader.NewEnvLoader()
	}
	s, err := config.Load(config.Options{FS: app.opts.FS, Path: app.opts.ConfigPath, Env: env})
	if err != nil {
		return nil, err
	}
	if app.opts.LogLevel != "" {
		s.Log.Level = app.opts.LogLevel
	}
	if app.opts.LogFile != "" {
		s.Log.File = app.opts.LogFile
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// initLogging builds the logger unless one was supplied.
func (b *bootstrapper) initLogging() error {
	if b.app.opts.Logger != nil {
		b.app.logger = b.app.opts.Logger
		return nil
	}
	l, err := NewLogging(b.app.settings.Log)
	if err != nil {
		return err
	}
	b.app.logging = l
	b.app.logger = l.Logger
	return nil
}

// initDataset loads the dataset file or the embedded sample.
func (b *bootstrapper) initDataset() error {
	ds, err := b.app.loadDataset()
	if err != nil {
		return err
	}
	b.app.dataset = ds
	b.app.logger.Debug("dataset loaded", "source", ds.Source, "records", len(ds.Records))
	return nil
}

func (app *Application) loadDataset() (*config.Dataset, error) {
	if app.opts.DataPath == "" {
		return config.DefaultDataset()
	}
	return config.LoadDataset(app.opts.FS, app.opts.DataPath)
}

// initSheet builds the column definitions, the records, the validation
// policy and the keymap, and the sheet over them.
func (b *bootstrapper) initSheet() error {
	app := b.app
	defs, err := app.dataset.Definitions(nil)
	if err != nil {
		return err
	}
	records, err := app.dataset.BuildRecords()
	if err != nil {
		return err
	}
	policy, err := app.dataset.Policy()
	if err != nil {
		return err
	}

	app.keymap = key.DefaultKeymap()
	if err := app.keymap.Apply(app.settings.KeymapOverrides()); err != nil {
		policy.Close()
		return err
	}

	app.sheet, err = sheet.New(records, defs,
		sheet.WithPolicy(policy),
		sheet.WithKeymap(app.keymap),
		sheet.WithLogger(app.logger.With("component", "sheet")),
		sheet.WithNotifier(sheet.NotifierFunc(app.alert)),
		sheet.WithUpdateCallback(app.onUpdate),
	)
	if err != nil {
		policy.Close()
		return err
	}
	return nil
}

// initMenu creates the column menu. Its deferred close runs on the loop.
func (b *bootstrapper) initMenu() error {
	app := b.app
	opts := []columnmenu.Option{
		columnmenu.WithCloseDelay(app.settings.Menu.CloseDelay.Std()),
		columnmenu.WithPoster(backend.Poster(app.backend)),
		columnmenu.WithLogger(app.logger.With("component", "columnmenu")),
	}
	if app.opts.Clock != nil {
		opts = append(opts, columnmenu.WithClock(app.opts.Clock))
	}
	app.menu = columnmenu.New(app.sheet, opts...)
	return nil
}

// initRenderer creates the renderer with the configured theme.
func (b *bootstrapper) initRenderer() error {
	app := b.app
	theme, err := buildTheme(app.settings)
	if err != nil {
		return err
	}
	opts := renderer.DefaultOptions()
	opts.Title = app.dataset.Title
	opts.MaxColumnWidth = app.settings.Grid.MaxColumnWidth
	opts.ScrollMargin = app.settings.Grid.ScrollMargin
	opts.Theme = theme
	app.renderer = renderer.New(app.backend, app.sheet, app.menu, opts)
	return nil
}

func buildTheme(s *config.Settings) (*renderer.Theme, error) {
	theme := renderer.DefaultTheme()
	if err := theme.Apply(s.Theme); err != nil {
		return nil, err
	}
	return theme, nil
}

// initSubscriptions wires sheet events to the status line and metrics.
func (b *bootstrapper) initSubscriptions() error {
	subs, err := newSubscriptions(b.app)
	if err != nil {
		return err
	}
	b.app.subs = subs
	return nil
}

// initWatcher watches the settings and dataset files when requested.
func (b *bootstrapper) initWatcher() error {
	app := b.app
	if !app.opts.Watch {
		return nil
	}
	w, err := watcher.New(watcher.WithLogger(app.logger.With("component", "watcher")))
	if err != nil {
		return err
	}
	for _, p := range []struct {
		path string
		dst  *string
	}{
		{app.opts.ConfigPath, &app.settingsPath},
		{app.opts.DataPath, &app.datasetPath},
	} {
		if p.path == "" {
			continue
		}
		abs, err := filepath.Abs(p.path)
		if err != nil {
			w.Stop()
			return err
		}
		if err := w.Watch(abs); err != nil {
			w.Stop()
			return NewOperationError("watch", p.path, err)
		}
		*p.dst = abs
	}
	w.OnChange(app.onFileChange)
	app.watcher = w
	return nil
}

// cleanup releases components in reverse initialization order.
// Called when bootstrap fails partway through.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

// cleanupComponent cleans up a single component.
func (b *bootstrapper) cleanupComponent(component string) {
	app := b.app
	switch component {
	case "logging":
		if app.logging != nil {
			_ = app.logging.Close()
			app.logging = nil
		}
	case "sheet":
		if app.sheet != nil {
			app.sheet.Policy().Close()
			app.sheet = nil
		}
	case "subscriptions":
		for _, s := range app.subs {
			s.Cancel()
		}
		app.subs = nil
	case "watcher":
		if app.watcher != nil {
			app.watcher.Stop()
			app.watcher = nil
		}
	}
}

