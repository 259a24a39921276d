package renderer

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/gridedit/internal/celledit"
	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/columnmenu"
	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/renderer/backend"
	"github.com/dshills/gridedit/internal/renderer/core"
	"github.com/dshills/gridedit/internal/renderer/statusline"
	"github.com/dshills/gridedit/internal/renderer/viewport"
)

// Sheet provides the grid content.
type Sheet interface {
	// VisibleColumns returns the columns to draw, in order.
	VisibleColumns() []column.Definition

	// Rows returns the records to draw, in order.
	Rows() grid.Rows

	// CellText returns the text of a cell and whether it is being edited.
	CellText(rec *grid.Record, def column.Definition) (text string, editing bool, err error)

	// Editing returns the active edit session or nil.
	Editing() *celledit.Session
}

// Menu provides the column dropdown state.
type Menu interface {
	IsOpen() bool
	Items() []columnmenu.Item
	Cursor() int
}

// Screen rows above and below the body.
const (
	toolbarRow  = 0
	headerRow   = 1
	ruleRow     = 2
	bodyTop     = 3
	chromeLines = 4 // toolbar, header, rule, status
)

// Options configures the renderer.
type Options struct {
	// Title is shown on the right of the toolbar.
	Title string

	// ButtonLabel is the text of the column menu button.
	ButtonLabel string

	// MaxColumnWidth caps column content width. Zero means no cap.
	MaxColumnWidth int

	// ScrollMargin is the number of rows kept visible around the cursor.
	ScrollMargin int

	// Theme supplies the styles. Nil means DefaultTheme.
	Theme *Theme
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		ButtonLabel:    "Columns",
		MaxColumnWidth: 40,
		ScrollMargin:   1,
	}
}

// Renderer draws the grid and tracks the cell cursor and overlays.
// It is owned by the event loop.
type Renderer struct {
	opts    Options
	backend backend.Backend
	theme   *Theme
	sheet   Sheet
	menu    Menu

	vp     *viewport.Viewport
	status *statusline.StatusLine

	// Cell cursor: row index and visible column index.
	cursorRow int
	cursorCol int

	modal   string
	modalOn bool

	// Geometry of the last frame, used by HitTest.
	width, height int
	boxes         []ColumnBox
	buttonRect    core.ScreenRect
	menuRect      core.ScreenRect
	frames        uint64
}

// New creates a renderer drawing sheet on b. Menu may be nil.
func New(b backend.Backend, sheet Sheet, menu Menu, opts Options) *Renderer {
	if opts.Theme == nil {
		opts.Theme = DefaultTheme()
	}
	if opts.ButtonLabel == "" {
		opts.ButtonLabel = "Columns"
	}
	r := &Renderer{
		opts:    opts,
		backend: b,
		theme:   opts.Theme,
		sheet:   sheet,
		menu:    menu,
		status:  statusline.New(),
	}
	r.status.SetStyles(r.theme.StatusStyles())
	r.width, r.height = b.Size()
	r.vp = viewport.NewViewport(r.bodyHeight())
	r.vp.SetMargin(opts.ScrollMargin)
	return r
}

// SetTheme replaces the theme.
func (r *Renderer) SetTheme(t *Theme) {
	if t == nil {
		t = DefaultTheme()
	}
	r.theme = t
	r.status.SetStyles(t.StatusStyles())
}

// Theme returns the active theme.
func (r *Renderer) Theme() *Theme { return r.theme }

// SetMaxColumnWidth changes the column width cap.
func (r *Renderer) SetMaxColumnWidth(n int) { r.opts.MaxColumnWidth = n }

// Status returns the status line for messages.
func (r *Renderer) Status() *statusline.StatusLine { return r.status }

// Viewport returns the body viewport.
func (r *Renderer) Viewport() *viewport.Viewport { return r.vp }

// Frames returns the number of frames drawn.
func (r *Renderer) Frames() uint64 { return r.frames }

// Resize updates the screen size. The next Render uses it.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.vp.Resize(r.bodyHeight())
}

func (r *Renderer) bodyHeight() int {
	return max(r.height-chromeLines, 1)
}

// ShowModal displays a blocking message box.
func (r *Renderer) ShowModal(msg string) {
	r.modal = msg
	r.modalOn = true
}

// DismissModal hides the message box.
func (r *Renderer) DismissModal() {
	r.modal = ""
	r.modalOn = false
}

// ModalActive reports whether a message box is shown.
func (r *Renderer) ModalActive() bool { return r.modalOn }

// ModalMessage returns the shown message.
func (r *Renderer) ModalMessage() string { return r.modal }

// Render draws a complete frame and shows it.
func (r *Renderer) Render() {
	r.width, r.height = r.backend.Size()
	r.vp.Resize(r.bodyHeight())

	defs := r.sheet.VisibleColumns()
	rows := r.sheet.Rows()
	r.vp.SetRows(len(rows))
	r.clampCursor(len(rows), len(defs))

	widths := ColumnWidths(r.sheet, defs, rows, r.opts.MaxColumnWidth)
	r.vp.RevealColumn(r.cursorCol, boxWidths(widths), r.width)
	r.boxes = placeColumns(defs, widths, r.vp.Left(), r.width)

	r.backend.Clear()
	r.drawToolbar()
	r.drawHeader(defs)
	cursorShown := r.drawBody(defs, rows)
	r.drawStatus(defs, len(rows))

	r.menuRect = core.ScreenRect{}
	if r.menu != nil && r.menu.IsOpen() {
		r.drawMenu()
		cursorShown = false
	}
	if r.modalOn {
		r.drawModal()
		cursorShown = false
	}
	if !cursorShown {
		r.backend.HideCursor()
	}

	r.backend.Show()
	r.frames++
}

func (r *Renderer) clampCursor(rows, cols int) {
	r.cursorRow = min(max(r.cursorRow, 0), max(rows-1, 0))
	r.cursorCol = min(max(r.cursorCol, 0), max(cols-1, 0))
}

func (r *Renderer) drawToolbar() {
	bar := r.theme.Style("toolbar")
	r.backend.Fill(core.RectFromSize(toolbarRow, 0, 1, r.width), core.NewStyledCell(' ', bar))

	label := " " + r.opts.ButtonLabel + " ▾ "
	style := r.theme.Style("button")
	if r.menu != nil && r.menu.IsOpen() {
		style = r.theme.Style("button.open")
	}
	end := r.put(1, toolbarRow, r.width, label, style)
	r.buttonRect = core.ScreenRect{Top: toolbarRow, Bottom: toolbarRow + 1, Left: 1, Right: end}

	if r.opts.Title != "" {
		tw := core.StringWidth(r.opts.Title)
		if x := r.width - tw - 1; x > end+1 {
			r.put(x, toolbarRow, r.width, r.opts.Title, bar.Bold())
		}
	}
}

func (r *Renderer) drawHeader(defs []column.Definition) {
	header := r.theme.Style("header")
	rule := r.theme.Style("rule")
	for _, b := range r.boxes {
		r.put(b.X, headerRow, min(b.X+b.Width, r.width), core.Fit(defs[b.Index].HeaderText(), b.Width), header)
		r.put(b.X+b.Width+1, headerRow, r.width, "│", rule)
	}
	r.backend.Fill(core.RectFromSize(ruleRow, 0, 1, r.width), core.NewStyledCell('─', rule))
}

// drawBody draws the visible rows and reports whether the terminal cursor
// was placed in an edit input.
func (r *Renderer) drawBody(defs []column.Definition, rows grid.Rows) bool {
	rule := r.theme.Style("rule")
	sess := r.sheet.Editing()
	cursorShown := false

	for i := r.vp.Top(); i < r.vp.Bottom(); i++ {
		y := bodyTop + r.vp.RowToScreen(i)
		rec := rows[i]
		base := r.theme.Style("cell")
		if i%2 == 1 {
			base = r.theme.Style("cell.alt")
		}

		for _, b := range r.boxes {
			def := defs[b.Index]
			limit := min(b.X+b.Width, r.width)
			selected := i == r.cursorRow && b.Index == r.cursorCol

			style := base
			if selected {
				style = style.Merge(r.theme.Style("cell.selected"))
			}
			if limit > b.X-1 {
				r.put(b.X-1, y, limit, " ", style)
			}

			text, editing, err := r.sheet.CellText(rec, def)
			switch {
			case editing:
				style = base.Merge(r.theme.Style("cell.editing"))
				if x, ok := r.drawInput(b, y, sess, style); ok {
					r.backend.ShowCursor(x, y)
					cursorShown = true
				}
			case err != nil:
				r.put(b.X, y, limit, core.Fit(text, b.Width), style.Merge(r.theme.Style("error")))
			default:
				raw, _ := rec.Get(def.Key)
				if name := def.Style(raw); name != "" {
					style = style.Merge(r.theme.Style(name))
				}
				r.put(b.X, y, limit, core.Fit(text, b.Width), style)
			}

			if limit == b.X+b.Width && limit < r.width {
				r.put(limit, y, r.width, " ", base)
			}
			r.put(b.X+b.Width+1, y, r.width, "│", rule)
		}
	}
	return cursorShown
}

// drawInput draws an edit input scrolled so the cursor stays inside the
// box and returns the screen column of the cursor.
func (r *Renderer) drawInput(b ColumnBox, y int, sess *celledit.Session, style core.Style) (int, bool) {
	if sess == nil {
		return 0, false
	}
	cc := sess.Input.CursorColumn()
	offset := 0
	if cc >= b.Width {
		offset = cc - b.Width + 1
	}
	limit := min(b.X+b.Width, r.width)
	text := runewidth.Truncate(sliceColumns(sess.Input.String(), offset), b.Width, "")
	r.put(b.X, y, limit, runewidth.FillRight(text, b.Width), style)

	x := b.X + cc - offset
	if x >= r.width {
		return 0, false
	}
	return x, true
}

func (r *Renderer) drawStatus(defs []column.Definition, rows int) {
	mode := "NORMAL"
	switch {
	case r.sheet.Editing() != nil:
		mode = "EDIT"
	case r.menu != nil && r.menu.IsOpen():
		mode = "MENU"
	}
	r.status.SetMode(mode)

	header := ""
	if r.cursorCol < len(defs) {
		header = defs[r.cursorCol].HeaderText()
	}
	row := 0
	if rows > 0 {
		row = r.cursorRow + 1
	}
	r.status.SetPosition(row, rows, header)
	r.status.Render(r.backend, r.height-1, r.width)
}

func (r *Renderer) drawMenu() {
	items := r.menu.Items()
	inner := 0
	labels := make([]string, len(items))
	for i, it := range items {
		mark := "[ ] "
		if it.Checked {
			mark = "[x] "
		}
		labels[i] = mark + it.Label
		inner = max(inner, core.StringWidth(labels[i]))
	}
	inner += 2

	style := r.theme.Style("menu")
	rect := core.RectFromSize(headerRow, r.buttonRect.Left, len(items)+2, inner+2)
	r.menuRect = rect
	r.drawBox(rect, style, "")

	for i, label := range labels {
		s := style
		if i == r.menu.Cursor() {
			s = r.theme.Style("menu.selected")
		}
		r.put(rect.Left+1, rect.Top+1+i, min(rect.Right-1, r.width), core.Fit(" "+label, inner), s)
	}
}

func (r *Renderer) drawModal() {
	maxInner := max(min(r.width-6, 60), 10)
	lines := strings.Split(runewidth.Wrap(r.modal, maxInner), "\n")
	lines = append(lines, "", "Press any key to continue")

	inner := 0
	for _, l := range lines {
		inner = max(inner, core.StringWidth(l))
	}
	inner += 2

	w, h := inner+2, len(lines)+2
	rect := core.RectFromSize(max((r.height-h)/2, 0), max((r.width-w)/2, 0), h, w)
	style := r.theme.Style("modal")
	r.drawBox(rect, style, " Alert ")

	for i, l := range lines {
		r.put(rect.Left+1, rect.Top+1+i, min(rect.Right-1, r.width), core.Fit(" "+l, inner), style)
	}
}

// drawBox fills rect and draws a single line border, with an optional
// title on the top edge.
func (r *Renderer) drawBox(rect core.ScreenRect, style core.Style, title string) {
	if rect.IsEmpty() {
		return
	}
	r.backend.Fill(rect, core.NewStyledCell(' ', style))
	right, bottom := rect.Right-1, rect.Bottom-1
	for x := rect.Left + 1; x < right; x++ {
		r.backend.SetCell(x, rect.Top, core.NewStyledCell('─', style))
		r.backend.SetCell(x, bottom, core.NewStyledCell('─', style))
	}
	for y := rect.Top + 1; y < bottom; y++ {
		r.backend.SetCell(rect.Left, y, core.NewStyledCell('│', style))
		r.backend.SetCell(right, y, core.NewStyledCell('│', style))
	}
	r.backend.SetCell(rect.Left, rect.Top, core.NewStyledCell('┌', style))
	r.backend.SetCell(right, rect.Top, core.NewStyledCell('┐', style))
	r.backend.SetCell(rect.Left, bottom, core.NewStyledCell('└', style))
	r.backend.SetCell(right, bottom, core.NewStyledCell('┘', style))
	if title != "" {
		r.put(rect.Left+2, rect.Top, right, title, r.theme.Style("modal.title"))
	}
}

// put writes text at (x, y) without passing limit and returns the next x.
func (r *Renderer) put(x, y, limit int, text string, style core.Style) int {
	for _, ch := range text {
		w := core.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if x+w > limit {
			break
		}
		r.backend.SetCell(x, y, core.NewStyledCell(ch, style))
		if w == 2 {
			r.backend.SetCell(x+1, y, core.ContinuationCell(style))
		}
		x += w
	}
	return x
}
