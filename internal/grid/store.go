package grid

import (
	"fmt"
	"log/slog"
)

// Rows is an ordered, immutable row collection.
type Rows []*Record

// Index returns the position of the row with the given identifier, or -1.
func (rs Rows) Index(id RowID) int {
	for i, r := range rs {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// UpdateField returns rows with a single field of a single row replaced.
//
// If no row has the identifier, or key is the identifier field, rows is
// returned as is. Otherwise the result is a new slice in which only the
// targeted row is a new *Record; all other elements are the same pointers.
func UpdateField(rows Rows, id RowID, key string, v any) Rows {
	if key == IDField {
		return rows
	}
	i := rows.Index(id)
	if i < 0 {
		return rows
	}
	return replaceAt(rows, i, rows[i].with(key, v))
}

func replaceAt(rows Rows, i int, r *Record) Rows {
	next := make(Rows, len(rows))
	copy(next, rows)
	next[i] = r
	return next
}

// Store owns the current row collection.
//
// A Store is not safe for concurrent use. It is written only from the
// event loop.
type Store struct {
	rows    Rows
	index   map[RowID]int
	version uint64
	logger  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store over records.
// Returns ErrDuplicateID if two records share an identifier and ErrInvalidID
// for a record without one.
func NewStore(records []*Record, opts ...StoreOption) (*Store, error) {
	s := &Store{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	rows, index, err := indexRecords(records)
	if err != nil {
		return nil, err
	}
	s.rows, s.index = rows, index
	return s, nil
}

func indexRecords(records []*Record) (Rows, map[RowID]int, error) {
	rows := make(Rows, 0, len(records))
	index := make(map[RowID]int, len(records))
	for _, r := range records {
		if r == nil || r.ID.IsZero() {
			return nil, nil, ErrInvalidID
		}
		if _, dup := index[r.ID]; dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		index[r.ID] = len(rows)
		rows = append(rows, r)
	}
	return rows, index, nil
}

// Reset replaces the whole collection, e.g. after the data source was
// reloaded. Updates aimed at rows that are gone become stale no-ops.
func (s *Store) Reset(records []*Record) error {
	rows, index, err := indexRecords(records)
	if err != nil {
		return err
	}
	s.rows, s.index = rows, index
	s.version++
	return nil
}

// Rows returns the current collection. Callers must treat it as read-only.
func (s *Store) Rows() Rows {
	return s.rows
}

// Len returns the number of rows.
func (s *Store) Len() int {
	return len(s.rows)
}

// Version increases by one for every update that changed a row.
func (s *Store) Version() uint64 {
	return s.version
}

// Row returns the record with the given identifier.
func (s *Store) Row(id RowID) (*Record, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.rows[i], true
}

// At returns the record at position i.
func (s *Store) At(i int) (*Record, bool) {
	if i < 0 || i >= len(s.rows) {
		return nil, false
	}
	return s.rows[i], true
}

// UpdateField replaces one field of one row and reports whether a row changed.
//
// An identifier that is no longer present is absorbed silently: the edit
// that produced it has already closed and there is nobody to tell.
func (s *Store) UpdateField(id RowID, key string, v any) bool {
	if key == IDField {
		s.logger.Debug("ignoring identifier update", "row", id.String())
		return false
	}
	i, ok := s.index[id]
	if !ok {
		s.logger.Debug("stale row update", "row", id.String(), "field", key)
		return false
	}
	s.rows = replaceAt(s.rows, i, s.rows[i].with(key, v))
	s.version++
	return true
}
