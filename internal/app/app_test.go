package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dshills/gridedit/internal/config"
	"github.com/dshills/gridedit/internal/config/loader"
	"github.com/dshills/gridedit/internal/deferred"
	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/input/key"
	"github.com/dshills/gridedit/internal/renderer"
	"github.com/dshills/gridedit/internal/renderer/backend"
)

const waitFor = 2 * time.Second

// noEnv keeps tests independent of the process environment.
func noEnv() *loader.EnvLoader {
	env := loader.NewEnvLoader()
	env.SetLookup(func(string) (string, bool) { return "", false })
	return env
}

type harness struct {
	t     *testing.T
	app   *Application
	b     *backend.MemoryBackend
	clock *deferred.ManualClock
	done  chan error
}

// start creates an application over a memory backend and runs its loop.
func start(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		b:     backend.NewMemoryBackend(160, 20),
		clock: deferred.NewManualClock(),
		done:  make(chan error, 1),
	}
	if opts.Env == nil {
		opts.Env = noEnv()
	}
	opts.Clock = h.clock

	app, err := New(h.b, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.app = app
	go func() { h.done <- app.Run() }()
	t.Cleanup(func() {
		_ = app.Shutdown()
		select {
		case <-h.done:
		case <-time.After(waitFor):
			t.Error("event loop did not stop")
		}
		if err := app.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	h.sync()
	return h
}

// on runs fn on the event loop after every event queued so far.
func (h *harness) on(fn func()) {
	h.t.Helper()
	if !h.app.Do(fn, waitFor) {
		h.t.Fatal("event loop did not run the function")
	}
}

func (h *harness) sync() { h.on(func() {}) }

func (h *harness) keys(specs ...string) {
	h.t.Helper()
	for _, s := range specs {
		if !h.b.InjectKey(key.MustParse(s)) {
			h.t.Fatalf("event queue full at %q", s)
		}
	}
	h.sync()
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	for _, r := range s {
		h.b.InjectKey(key.NewRuneEvent(r, key.ModNone))
	}
	h.sync()
}

func (h *harness) click(x, y int) {
	h.t.Helper()
	h.b.InjectClick(x, y)
	h.sync()
}

// find locates text on the last frame.
func (h *harness) find(text string) (x, y int) {
	h.t.Helper()
	var ok bool
	h.on(func() { x, y, ok = h.b.Find(text) })
	if !ok {
		h.t.Fatalf("%q not on screen", text)
	}
	return x, y
}

func (h *harness) screen() string {
	var lines []string
	h.on(func() { lines = h.b.Lines() })
	return strings.Join(lines, "\n")
}

func (h *harness) field(id int64, name string) any {
	h.t.Helper()
	var v any
	var ok bool
	h.on(func() {
		var rec *grid.Record
		if rec, ok = h.app.Sheet().Row(grid.IntID(id)); ok {
			v, _ = rec.Get(name)
		}
	})
	if !ok {
		h.t.Fatalf("row %d missing", id)
	}
	return v
}

func (h *harness) editing() bool {
	var on bool
	h.on(func() { on = h.app.Sheet().Editing() != nil })
	return on
}

func (h *harness) menuOpen() (open, pending bool) {
	h.on(func() { open, pending = h.app.Menu().IsOpen(), h.app.Menu().ClosePending() })
	return open, pending
}

func TestNew_NilBackend(t *testing.T) {
	if _, err := New(nil, Options{}); !errors.Is(err, ErrNoBackend) {
		t.Errorf("New(nil) error = %v, expected ErrNoBackend", err)
	}
}

func TestNew_Bootstrap(t *testing.T) {
	fsys := fstest.MapFS{
		"settings.toml": {Data: []byte("[keymap]\ncolumns = \"C\"\n\n[menu]\ncloseDelay = \"300ms\"\n")},
	}
	app, err := New(backend.NewMemoryBackend(80, 24), Options{FS: fsys, ConfigPath: "settings.toml", Env: noEnv(), LogLevel: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if got := app.Dataset().Title; got != "Users" {
		t.Errorf("title = %q", got)
	}
	if got := app.Sheet().Len(); got != 12 {
		t.Errorf("rows = %d, expected 12", got)
	}
	if !app.Keymap().Matches(key.ActionColumns, key.MustParse("C")) {
		t.Error("keymap override not applied")
	}
	if got := app.Settings().Menu.CloseDelay.Std(); got != 300*time.Millisecond {
		t.Errorf("close delay = %v", got)
	}
	if got := app.Settings().Log.Level; got != "debug" {
		t.Errorf("log level override = %q", got)
	}
	if app.IsRunning() {
		t.Error("IsRunning() before Run")
	}
	if err := app.Shutdown(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Shutdown() before Run = %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"theme.yaml":  {Data: []byte("theme:\n  header: \"fg=nope\"\n")},
		"keys.yaml":   {Data: []byte("keymap:\n  commit: \"Ctrl+\"\n")},
		"noid.yaml":   {Data: []byte("columns: [{key: a}]\nrecords: [{a: 1}]\n")},
		"level.yaml":  {Data: []byte("log:\n  level: loud\n")},
		"broken.toml": {Data: []byte("[grid\n")},
	}
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"missing dataset", Options{DataPath: "users.yaml"}, config.ErrFileNotFound},
		{"dataset without ids", Options{DataPath: "noid.yaml"}, config.ErrInvalidDataset},
		{"invalid level", Options{ConfigPath: "level.yaml"}, config.ErrInvalidSetting},
		{"invalid level flag", Options{LogLevel: "loud"}, config.ErrInvalidSetting},
		{"bad theme", Options{ConfigPath: "theme.yaml"}, nil},
		{"bad key spec", Options{ConfigPath: "keys.yaml"}, nil},
		{"parse error", Options{ConfigPath: "broken.toml"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.FS = fsys
			tt.opts.Env = noEnv()
			_, err := New(backend.NewMemoryBackend(80, 24), tt.opts)
			if !errors.Is(err, ErrInitialization) {
				t.Fatalf("New() error = %v, expected an initialization error", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, expected %v", err, tt.want)
			}
		})
	}
}

func TestRun_AlreadyRunning(t *testing.T) {
	h := start(t, Options{})
	if err := h.app.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v", err)
	}
	if !h.app.IsRunning() {
		t.Error("IsRunning() = false")
	}
}

func TestRun_FirstFrame(t *testing.T) {
	h := start(t, Options{})
	out := h.screen()

	for _, want := range []string{"Columns", "Users", "ID", "Joined Date", "John Doe", "Jan 15, 2023", "NORMAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("first frame lacks %q:\n%s", want, out)
		}
	}
}

func TestRun_KeyboardEditCommit(t *testing.T) {
	h := start(t, Options{})
	h.on(func() { h.app.Renderer().SetCursor(0, 1) })

	h.keys("Enter")
	if !h.editing() {
		t.Fatal("Enter on an editable cell should start editing")
	}
	h.keys("Ctrl+U")
	h.typeText("Alice Doe")
	if !strings.Contains(h.screen(), "EDIT") {
		t.Error("status line should show EDIT mode")
	}
	h.keys("Enter")

	if h.editing() {
		t.Error("Enter should commit and end the session")
	}
	if got := h.field(1, "name"); got != "Alice Doe" {
		t.Errorf("name = %v, expected Alice Doe", got)
	}
	out := h.screen()
	if !strings.Contains(out, "Alice Doe") || !strings.Contains(out, "Saved Name of row 1") {
		t.Errorf("frame after commit:\n%s", out)
	}
	if s := h.app.Metrics().Snapshot(); s.Commits != 1 || s.Keys == 0 {
		t.Errorf("metrics = %+v", s)
	}
}

func TestRun_EscapeCancels(t *testing.T) {
	h := start(t, Options{})
	h.on(func() { h.app.Renderer().SetCursor(1, 3) })

	h.keys("F2", "Ctrl+U")
	h.typeText("Admin")
	h.keys("Escape")

	if h.editing() {
		t.Error("Escape should end the session")
	}
	if got := h.field(2, "role"); got != "Editor" {
		t.Errorf("role = %v, cancel must not write", got)
	}
}

func TestRun_RejectedEditShowsModal(t *testing.T) {
	h := start(t, Options{})
	h.on(func() { h.app.Renderer().SetCursor(0, 2) })

	h.keys("Enter", "Ctrl+U")
	h.typeText("not-an-email")
	h.keys("Enter")

	var active bool
	var msg string
	h.on(func() { active, msg = h.app.Renderer().ModalActive(), h.app.Renderer().ModalMessage() })
	if !active || !strings.Contains(msg, `Invalid Email "not-an-email"`) {
		t.Fatalf("modal = %v %q", active, msg)
	}
	if got := h.field(1, "email"); got != "john.doe@example.com" {
		t.Errorf("email = %v, rejected value must not be written", got)
	}

	h.keys("j")
	h.on(func() { active = h.app.Renderer().ModalActive() })
	if active {
		t.Error("any key should dismiss the modal")
	}
	var row int
	h.on(func() { row, _ = h.app.Renderer().Cursor() })
	if row != 0 {
		t.Error("the dismissing key must not also move the cursor")
	}
	if s := h.app.Metrics().Snapshot(); s.Rejections != 1 {
		t.Errorf("rejections = %d", s.Rejections)
	}
}

func TestRun_ReadOnlyCellBeeps(t *testing.T) {
	h := start(t, Options{})
	h.keys("Enter")

	if h.editing() {
		t.Error("the ID column is not editable")
	}
	if h.b.BeepCount() != 1 {
		t.Errorf("beeps = %d, expected 1", h.b.BeepCount())
	}
}

func TestRun_Navigation(t *testing.T) {
	h := start(t, Options{})
	h.keys("j", "j", "l", "Down", "Tab")

	var row, col int
	h.on(func() { row, col = h.app.Renderer().Cursor() })
	if row != 3 || col != 2 {
		t.Errorf("cursor = (%d,%d), expected (3,2)", row, col)
	}
	h.keys("k", "h")
	h.on(func() { row, col = h.app.Renderer().Cursor() })
	if row != 2 || col != 1 {
		t.Errorf("cursor = (%d,%d), expected (2,1)", row, col)
	}
}

func TestRun_ClickActivatesAndBlurDiscards(t *testing.T) {
	h := start(t, Options{})

	x, y := h.find("Jane Smith")
	h.click(x+1, y)
	if !h.editing() {
		t.Fatal("clicking an editable cell should start editing")
	}
	var sessRow grid.RowID
	h.on(func() { sessRow = h.app.Sheet().Editing().Row })
	if sessRow != grid.IntID(2) {
		t.Errorf("session row = %v, expected 2", sessRow)
	}

	h.typeText("!")
	h.click(x+2, y)
	if !h.editing() {
		t.Error("clicking inside the input keeps the session")
	}

	tx, ty := h.find("Users")
	h.click(tx, ty)
	if h.editing() {
		t.Error("clicking outside the input should blur the session")
	}
	if got := h.field(2, "name"); got != "Jane Smith" {
		t.Errorf("name = %v, blur discards the input", got)
	}
}

func TestRun_ClickReadOnlyCellMovesCursor(t *testing.T) {
	h := start(t, Options{})
	x, y := h.find("Active")
	h.click(x, y)

	if h.editing() {
		t.Error("status is not editable")
	}
	var col int
	h.on(func() { _, col = h.app.Renderer().Cursor() })
	if col != 4 {
		t.Errorf("cursor column = %d, expected 4", col)
	}
}

func TestRun_MenuDeferredClose(t *testing.T) {
	h := start(t, Options{})

	bx, by := h.find("Columns")
	h.click(bx, by)
	if open, _ := h.menuOpen(); !open {
		t.Fatal("clicking the button should open the menu")
	}
	if !strings.Contains(h.screen(), "[x] Email") {
		t.Errorf("menu items not drawn:\n%s", h.screen())
	}

	tx, ty := h.find("Users")
	h.click(tx, ty)
	open, pending := h.menuOpen()
	if !open || !pending {
		t.Fatalf("after blur open=%v pending=%v, expected a pending close", open, pending)
	}

	h.clock.Advance(config.DefaultCloseDelay)
	h.sync()
	if open, _ := h.menuOpen(); open {
		t.Error("the menu should close once the delay elapsed")
	}
}

func TestRun_MenuReopenCancelsStaleClose(t *testing.T) {
	h := start(t, Options{})

	h.keys("c")
	tx, ty := h.find("Users")
	h.click(tx, ty)
	h.on(func() { h.app.Menu().Open() })

	if open, pending := h.menuOpen(); !open || pending {
		t.Fatalf("open=%v pending=%v, reopening should cancel the close", open, pending)
	}
	h.clock.Advance(time.Second)
	h.sync()
	if open, _ := h.menuOpen(); !open {
		t.Error("a close scheduled before the reopen must not close the menu")
	}
}

func TestRun_MenuKeyboardToggle(t *testing.T) {
	h := start(t, Options{})
	h.on(func() { h.app.Renderer().SetCursor(0, 3) })

	h.keys("c", "Down", "Down", "Space", "Escape")

	if open, _ := h.menuOpen(); open {
		t.Error("Escape should close the menu")
	}
	var visible bool
	var col int
	h.on(func() {
		visible = h.app.Sheet().IsVisible("email")
		_, col = h.app.Renderer().Cursor()
	})
	if visible {
		t.Error("Space should toggle the highlighted column")
	}
	if col != 2 {
		t.Errorf("cursor column = %d, expected 2 (still on Role)", col)
	}
	out := h.screen()
	if strings.Contains(out, "john.doe@example.com") || !strings.Contains(out, "Hid column Email") {
		t.Errorf("frame after hiding Email:\n%s", out)
	}
}

func TestRun_MenuItemClick(t *testing.T) {
	h := start(t, Options{})
	h.keys("c")

	x, y := -1, -1
	h.on(func() {
		w, ht := h.b.Size()
		for yy := 0; yy < ht && x < 0; yy++ {
			for xx := 0; xx < w; xx++ {
				if hit := h.app.Renderer().HitTest(xx, yy); hit.Kind == renderer.HitMenuItem && hit.Item == 5 {
					x, y = xx, yy
					break
				}
			}
		}
	})
	if x < 0 {
		t.Fatal("menu item for Joined Date not found")
	}
	h.click(x, y)

	var visible bool
	h.on(func() { visible = h.app.Sheet().IsVisible("joinedDate") })
	if visible {
		t.Error("clicking an item should toggle its column")
	}
	if open, pending := h.menuOpen(); !open || pending {
		t.Errorf("open=%v pending=%v, an item click keeps the menu open", open, pending)
	}
}

func TestRun_QuitKey(t *testing.T) {
	b := backend.NewMemoryBackend(80, 20)
	app, err := New(b, Options{Env: noEnv()})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	done := make(chan error, 1)
	go func() { done <- app.Run() }()
	b.InjectKey(key.MustParse("q"))

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(waitFor):
		t.Fatal("q did not quit")
	}
}

func TestRun_PanicIsRecovered(t *testing.T) {
	h := start(t, Options{})
	h.b.PostEvent(backend.Event{Type: backend.EventInterrupt, Func: func() { panic("boom") }})
	h.sync()

	if s := h.app.Metrics().Snapshot(); s.Panics != 1 {
		t.Errorf("panics = %d", s.Panics)
	}
	if !strings.Contains(h.screen(), "Internal error: boom") {
		t.Error("the panic should be reported on the status line")
	}
}

func TestRun_Resize(t *testing.T) {
	h := start(t, Options{})
	h.b.Resize(60, 10)
	h.sync()

	out := h.screen()
	if lines := strings.Split(out, "\n"); len(lines) != 10 {
		t.Errorf("frame has %d lines after resize", len(lines))
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

const twoUsers = `title: Team
columns:
  - {key: id, header: ID}
  - {key: name, header: Name, editable: true}
records:
  - {id: 1, name: Ann}
  - {id: 2, name: Bob}
`

func TestReloadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, "menu:\n  closeDelay: 100ms\n")

	h := start(t, Options{ConfigPath: path})

	writeFile(t, path, "keymap:\n  quit: Ctrl+Q\ngrid:\n  maxColumnWidth: 6\nmenu:\n  closeDelay: 1s\n")
	var err error
	h.on(func() { err = h.app.ReloadSettings() })
	if err != nil {
		t.Fatalf("ReloadSettings() = %v", err)
	}

	if h.app.Keymap().Matches(key.ActionQuit, key.MustParse("q")) {
		t.Error("q should no longer quit")
	}
	if got := h.app.Settings().Menu.CloseDelay.Std(); got != time.Second {
		t.Errorf("close delay = %v", got)
	}
	out := h.screen()
	if !strings.Contains(out, "Reloaded "+path) || !strings.Contains(out, "John …") {
		t.Errorf("frame after reload:\n%s", out)
	}

	writeFile(t, path, "grid:\n  maxColumnWidth: -3\n")
	h.on(func() { err = h.app.ReloadSettings() })
	if !errors.Is(err, config.ErrInvalidSetting) {
		t.Errorf("ReloadSettings() = %v, expected an invalid setting", err)
	}
	if !strings.Contains(h.screen(), "Reload failed") {
		t.Error("a failed reload should be reported")
	}
	if got := h.app.Settings().Grid.MaxColumnWidth; got != 6 {
		t.Errorf("failed reload changed settings: maxColumnWidth = %d", got)
	}
}

func TestReloadDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "team.yaml")
	writeFile(t, path, twoUsers)

	h := start(t, Options{DataPath: path})
	if !strings.Contains(h.screen(), "Team") {
		t.Error("the dataset title belongs on the toolbar")
	}

	writeFile(t, path, strings.Replace(twoUsers, "  - {id: 2, name: Bob}\n", "", 1))
	var err error
	var rows int
	h.on(func() {
		err = h.app.ReloadDataset()
		rows = h.app.Sheet().Len()
	})
	if err != nil || rows != 1 {
		t.Fatalf("ReloadDataset() = %v, rows = %d", err, rows)
	}
	if strings.Contains(h.screen(), "Bob") {
		t.Error("removed record still drawn")
	}
	if s := h.app.Metrics().Snapshot(); s.Reloads != 1 {
		t.Errorf("reloads = %d", s.Reloads)
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "team.yaml")
	writeFile(t, path, twoUsers)

	h := start(t, Options{DataPath: path, Watch: true})
	writeFile(t, path, strings.Replace(twoUsers, "Bob", "Bea", 1))

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(h.screen(), "Bea") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("dataset change not picked up:\n%s", h.screen())
}
