package sheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gridedit/internal/celledit"
	"github.com/dshills/gridedit/internal/column"
	"github.com/dshills/gridedit/internal/event"
	"github.com/dshills/gridedit/internal/grid"
	"github.com/dshills/gridedit/internal/input/key"
	"github.com/dshills/gridedit/internal/validate"
)

type update struct {
	row   grid.RowID
	field string
	value any
}

type fixture struct {
	sheet   *Sheet
	alerts  []string
	updates []update
	topics  []event.Topic
}

func roleColumns() []column.Definition {
	return []column.Definition{
		{Key: "id", Header: "ID"},
		{Key: "role", Header: "Role", Editable: true, Enum: []string{"Admin", "Editor", "Viewer"}},
	}
}

func newFixture(t *testing.T, records []*grid.Record, defs []column.Definition, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{}
	bus := event.NewBus()
	_, err := bus.Subscribe("**", func(ev event.Event) { f.topics = append(f.topics, ev.Topic) })
	require.NoError(t, err)

	opts = append([]Option{
		WithBus(bus),
		WithNotifier(NotifierFunc(func(msg string) { f.alerts = append(f.alerts, msg) })),
		WithUpdateCallback(func(row grid.RowID, field string, v any) {
			f.updates = append(f.updates, update{row, field, v})
		}),
	}, opts...)

	s, err := New(records, defs, opts...)
	require.NoError(t, err)
	f.sheet = s
	return f
}

func typeInto(s *Sheet, text string) {
	ed := s.Editing()
	for range ed.Input.Len() {
		s.HandleKey(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	}
	for _, r := range text {
		s.HandleKey(key.NewRuneEvent(r, key.ModNone))
	}
}

func roleOf(t *testing.T, s *Sheet, id grid.RowID) any {
	t.Helper()
	rec, ok := s.Row(id)
	require.True(t, ok)
	v, _ := rec.Get("role")
	return v
}

func TestEnumRejectionLeavesRowUntouched(t *testing.T) {
	row := grid.NewRecord(grid.IntID(1), map[string]any{"role": "Editor"})
	f := newFixture(t, []*grid.Record{row}, roleColumns())
	s := f.sheet

	require.True(t, s.Activate(grid.IntID(1), "role"))
	typeInto(s, "Manager")
	require.True(t, s.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModNone)))

	assert.Equal(t, "Editor", roleOf(t, s, grid.IntID(1)))
	assert.Equal(t, uint64(0), s.Version())
	assert.Empty(t, f.updates)
	require.Len(t, f.alerts, 1)
	assert.Contains(t, f.alerts[0], `Invalid Role "Manager"`)
	assert.Equal(t, celledit.Idle, s.Mode(), "the editor exits whatever the outcome")
	assert.Contains(t, f.topics, event.TopicCellRejected)
}

func TestEnumAcceptanceWritesRow(t *testing.T) {
	row := grid.NewRecord(grid.IntID(1), map[string]any{"role": "Editor"})
	f := newFixture(t, []*grid.Record{row}, roleColumns())
	s := f.sheet

	require.True(t, s.Activate(grid.IntID(1), "role"))
	typeInto(s, "Admin")
	s.Commit()

	assert.Equal(t, "Admin", roleOf(t, s, grid.IntID(1)))
	assert.Empty(t, f.alerts)
	assert.Equal(t, []update{{grid.IntID(1), "role", "Admin"}}, f.updates)
	assert.Contains(t, f.topics, event.TopicCellCommitted)
}

func TestIdentifierColumnNotEditable(t *testing.T) {
	row := grid.NewRecord(grid.IntID(1), map[string]any{"role": "Editor"})
	f := newFixture(t, []*grid.Record{row}, roleColumns())

	assert.False(t, f.sheet.Activate(grid.IntID(1), "id"))
	assert.Nil(t, f.sheet.Editing())
}

func TestCommitThenBlurWritesOnce(t *testing.T) {
	row := grid.NewRecord(grid.IntID(1), map[string]any{"role": "Editor"})
	f := newFixture(t, []*grid.Record{row}, roleColumns())
	s := f.sheet

	s.Activate(grid.IntID(1), "role")
	id := s.Editing().ID
	typeInto(s, "Viewer")
	s.Commit()
	s.Blur(id)

	assert.Len(t, f.updates, 1)
	assert.Equal(t, uint64(1), s.Version())
}

func TestCancelAndBlurDoNotWrite(t *testing.T) {
	row := grid.NewRecord(grid.IntID(1), map[string]any{"role": "Editor"})
	f := newFixture(t, []*grid.Record{row}, roleColumns())
	s := f.sheet

	s.Activate(grid.IntID(1), "role")
	typeInto(s, "Admin")
	s.HandleKey(key.NewSpecialEvent(key.KeyEscape, key.ModNone))

	s.Activate(grid.IntID(1), "role")
	typeInto(s, "Admin")
	s.BlurCurrent()

	assert.Empty(t, f.updates)
	assert.Equal(t, "Editor", roleOf(t, s, grid.IntID(1)))
	assert.Contains(t, f.topics, event.TopicCellCancelled)
}

func TestToggleColumn(t *testing.T) {
	defs := []column.Definition{{Key: "id"}, {Key: "name"}, {Key: "email"}}
	row := grid.NewRecord(grid.IntID(1), map[string]any{"name": "a", "email": "b"})
	f := newFixture(t, []*grid.Record{row}, defs)
	s := f.sheet

	before := s.VisibleColumns()
	s.ToggleColumn("name")
	after := s.VisibleColumns()

	assert.Len(t, before, 3)
	require.Len(t, after, 2)
	assert.Equal(t, "id", after[0].Key)
	assert.Equal(t, "email", after[1].Key)
	assert.False(t, s.IsVisible("name"))
	assert.Equal(t, []event.Topic{event.TopicColumnToggled}, f.topics)

	s.ToggleColumn("name")
	assert.Len(t, s.VisibleColumns(), 3)
}

func TestToggleUnknownColumn(t *testing.T) {
	defs := []column.Definition{{Key: "id"}, {Key: "name"}, {Key: "email"}}
	row := grid.NewRecord(grid.IntID(1), map[string]any{"name": "a", "email": "b"})
	f := newFixture(t, []*grid.Record{row}, defs)
	before := f.sheet.Visibility().Flags()

	f.sheet.ToggleColumn("foo")

	flags := f.sheet.Visibility().Flags()
	assert.Len(t, flags, 4)
	assert.False(t, flags["foo"])
	for k, v := range before {
		assert.Equal(t, v, flags[k])
	}
}

func TestExtraValidatorWithoutTouchingStore(t *testing.T) {
	defs := []column.Definition{{Key: "id"}, {Key: "email", Editable: true}}
	row := grid.NewRecord(grid.IntID(1), map[string]any{"email": "a@example.com"})
	f := newFixture(t, []*grid.Record{row}, defs)
	f.sheet.Policy().Register("email", validate.Email)

	f.sheet.Activate(grid.IntID(1), "email")
	typeInto(f.sheet, "not-an-email")
	f.sheet.Commit()

	require.Len(t, f.alerts, 1)
	assert.Empty(t, f.updates)
}

func TestStaleCommitIsSilent(t *testing.T) {
	records := []*grid.Record{
		grid.NewRecord(grid.IntID(1), map[string]any{"role": "Editor"}),
		grid.NewRecord(grid.IntID(2), map[string]any{"role": "Viewer"}),
	}
	f := newFixture(t, records, roleColumns())
	s := f.sheet

	s.Activate(grid.IntID(2), "role")
	typeInto(s, "Admin")
	require.NoError(t, s.ReplaceRecords(records[:1]))
	s.Commit()

	assert.Empty(t, f.alerts)
	assert.Empty(t, f.updates)
	assert.Contains(t, f.topics, event.TopicCellStale)
	assert.Equal(t, 1, s.Len())
}

func TestCellText(t *testing.T) {
	defs := []column.Definition{
		{Key: "id"},
		{Key: "joinedDate", Editable: true, Format: column.DateFormatter(column.DateLayout)},
	}
	records := []*grid.Record{
		grid.NewRecord(grid.IntID(1), map[string]any{"joinedDate": "2023-01-15T10:00:00Z"}),
		grid.NewRecord(grid.IntID(2), map[string]any{"joinedDate": "garbage"}),
	}
	f := newFixture(t, records, defs)
	s := f.sheet
	date := defs[1]

	text, editing, err := s.CellText(records[0], date)
	require.NoError(t, err)
	assert.False(t, editing)
	assert.Equal(t, "Jan 15, 2023", text)

	text, _, err = s.CellText(records[1], date)
	assert.Error(t, err)
	assert.Equal(t, "garbage", text)

	s.Activate(grid.IntID(1), "joinedDate")
	text, editing, err = s.CellText(records[0], date)
	require.NoError(t, err)
	assert.True(t, editing)
	assert.Equal(t, "2023-01-15T10:00:00Z", text)
}

func TestNumericFieldsStayTyped(t *testing.T) {
	defs := []column.Definition{{Key: "id"}, {Key: "age", Editable: true}}
	row := grid.NewRecord(grid.IntID(1), map[string]any{"age": int64(30)})
	f := newFixture(t, []*grid.Record{row}, defs)

	f.sheet.Activate(grid.IntID(1), "age")
	typeInto(f.sheet, "31")
	f.sheet.Commit()

	rec, _ := f.sheet.Row(grid.IntID(1))
	v, _ := rec.Get("age")
	assert.Equal(t, int64(31), v)
}

func TestNewRejectsUnknownField(t *testing.T) {
	row := grid.NewRecord(grid.IntID(1), map[string]any{"role": "Editor"})
	_, err := New([]*grid.Record{row}, []column.Definition{{Key: "id"}, {Key: "nope"}})
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = New(nil, []column.Definition{{Key: "a"}, {Key: "a"}})
	assert.ErrorIs(t, err, column.ErrDuplicateKey)
}
