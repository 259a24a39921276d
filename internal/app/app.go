// Package app provides the main application structure and coordination
// for gridedit. It wires the configuration, the sheet, the column menu and
// the renderer together and runs the terminal event loop.
//
// All UI state is owned by the goroutine running Run. Work from other
// goroutines (timers, the file watcher, Shutdown) reaches that state by
// posting an interrupt event to the backend.
package app

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dshills/gridedit/internal/columnmenu"
	"github.com/dshills/gridedit/internal/config"
	"github.com/dshills/gridedit/internal/config/loader"
	"github.com/dshills/gridedit/internal/config/watcher"
	"github.com/dshills/gridedit/internal/deferred"
	"github.com/dshills/gridedit/internal/event"
	"github.com/dshills/gridedit/internal/input/key"
	"github.com/dshills/gridedit/internal/renderer"
	"github.com/dshills/gridedit/internal/renderer/backend"
	"github.com/dshills/gridedit/internal/sheet"
)

// Application is the central coordinator for all gridedit components.
type Application struct {
	opts Options

	// Configuration
	settings *config.Settings
	dataset  *config.Dataset
	logging  *Logging
	logger   *slog.Logger

	// Grid components
	sheet    *sheet.Sheet
	menu     *columnmenu.Menu
	keymap   *key.Keymap
	renderer *renderer.Renderer
	backend  backend.Backend

	// Live reload
	watcher      *watcher.Watcher
	settingsPath string
	datasetPath  string

	subs    []*event.Subscription
	metrics *Metrics

	// State
	running   atomic.Bool
	quit      bool
	mouseDown bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the settings file. Empty means built-in defaults.
	ConfigPath string

	// DataPath is the dataset file. Empty means the embedded sample.
	DataPath string

	// LogLevel and LogFile override the log settings when not empty.
	LogLevel string
	LogFile  string

	// Watch reloads the settings and dataset files when they change.
	Watch bool

	// FS reads the settings and dataset files. Nil means the OS.
	FS loader.FileSystem

	// Env supplies environment overrides. Nil means the process
	// environment with the default mapping.
	Env *loader.EnvLoader

	// Logger replaces the logger built from the settings.
	Logger *slog.Logger

	// Clock drives the column menu's deferred close. Nil means real time.
	Clock deferred.Clock
}

// New creates an application drawing on b. The backend is initialized
// by Run.
func New(b backend.Backend, opts Options) (*Application, error) {
	if b == nil {
		return nil, ErrNoBackend
	}
	app := &Application{
		opts:    opts,
		backend: b,
		metrics: NewMetrics(),
	}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Run initializes the backend and runs the event loop until quit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()
	app.backend.EnableMouse()

	if app.watcher != nil {
		app.watcher.Start()
	}
	app.logger.Info("started", "rows", app.sheet.Len(), "columns", len(app.sheet.AllColumns()))

	err := app.eventLoop()
	app.logger.Info("stopped", "metrics", app.metrics.Snapshot())
	return err
}

// Shutdown asks a running event loop to return. It is safe to call from
// any goroutine.
func (app *Application) Shutdown() error {
	if !app.running.Load() {
		return ErrNotRunning
	}
	if !app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt, Func: app.requestQuit}) {
		return ErrNotRunning
	}
	return nil
}

// Do runs fn on the event loop and waits for it. It returns false when
// the loop is not running or fn did not run within timeout.
func (app *Application) Do(fn func(), timeout time.Duration) bool {
	done := make(chan struct{})
	ok := app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt, Func: func() {
		defer close(done)
		fn()
	}})
	if !ok {
		return false
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close releases resources that outlive Run: the watcher, the
// validation policy and the log file.
func (app *Application) Close() error {
	errs := NewErrorList()
	for _, s := range app.subs {
		s.Cancel()
	}
	app.subs = nil
	if app.watcher != nil {
		app.watcher.Stop()
		app.watcher = nil
	}
	if app.sheet != nil {
		app.sheet.Policy().Close()
	}
	if app.logging != nil {
		if err := app.logging.Close(); err != nil {
			errs.Add(NewComponentError("logging", "close", err))
		}
	}
	return errs.AsError()
}

func (app *Application) requestQuit() {
	app.quit = true
}

// IsRunning reports whether the event loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Settings returns the active settings.
func (app *Application) Settings() *config.Settings { return app.settings }

// Dataset returns the loaded dataset.
func (app *Application) Dataset() *config.Dataset { return app.dataset }

// Sheet returns the grid orchestrator.
func (app *Application) Sheet() *sheet.Sheet { return app.sheet }

// Menu returns the column menu.
func (app *Application) Menu() *columnmenu.Menu { return app.menu }

// Renderer returns the renderer.
func (app *Application) Renderer() *renderer.Renderer { return app.renderer }

// Keymap returns the active keymap.
func (app *Application) Keymap() *key.Keymap { return app.keymap }

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Metrics returns the loop metrics.
func (app *Application) Metrics() *Metrics { return app.metrics }
