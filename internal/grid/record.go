package grid

import (
	"fmt"
	"strconv"
)

// IDField is the field key that resolves to a record's identifier.
const IDField = "id"

type idKind uint8

const (
	idNone idKind = iota
	idInt
	idString
)

// RowID identifies a record. It is either an integer or a string and is
// comparable, so it can be used as a map key.
type RowID struct {
	kind idKind
	num  int64
	str  string
}

// IntID returns an integer identifier.
func IntID(n int64) RowID {
	return RowID{kind: idInt, num: n}
}

// StringID returns a string identifier.
func StringID(s string) RowID {
	return RowID{kind: idString, str: s}
}

// ParseID converts a decoded dataset value into a RowID.
// Integers (of any width), integral floats and non-empty strings are accepted.
func ParseID(v any) (RowID, error) {
	switch id := v.(type) {
	case int:
		return IntID(int64(id)), nil
	case int32:
		return IntID(int64(id)), nil
	case int64:
		return IntID(id), nil
	case uint64:
		return IntID(int64(id)), nil
	case float64:
		if id != float64(int64(id)) {
			return RowID{}, fmt.Errorf("%w: non-integral number %v", ErrInvalidID, id)
		}
		return IntID(int64(id)), nil
	case string:
		if id == "" {
			return RowID{}, fmt.Errorf("%w: empty string", ErrInvalidID)
		}
		return StringID(id), nil
	case RowID:
		if id.IsZero() {
			return RowID{}, ErrInvalidID
		}
		return id, nil
	default:
		return RowID{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidID, v)
	}
}

// IsZero reports whether the identifier was never set.
func (id RowID) IsZero() bool {
	return id.kind == idNone
}

// Value returns the identifier as it appears in a field: int64 or string.
func (id RowID) Value() any {
	switch id.kind {
	case idInt:
		return id.num
	case idString:
		return id.str
	default:
		return nil
	}
}

// String returns the identifier's default string form.
func (id RowID) String() string {
	switch id.kind {
	case idInt:
		return strconv.FormatInt(id.num, 10)
	case idString:
		return id.str
	default:
		return ""
	}
}

// Record is one row of data.
// Fields must not be modified after the record is handed to a Store.
type Record struct {
	ID     RowID
	Fields map[string]any
}

// NewRecord builds a record, copying fields so later changes by the caller
// cannot leak into the store. An "id" entry in fields is dropped; the
// identifier lives in ID.
func NewRecord(id RowID, fields map[string]any) *Record {
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == IDField {
			continue
		}
		cp[k] = v
	}
	return &Record{ID: id, Fields: cp}
}

// Get returns the raw value stored under key. The key "id" resolves to the
// identifier.
func (r *Record) Get(key string) (any, bool) {
	if key == IDField {
		return r.ID.Value(), true
	}
	v, ok := r.Fields[key]
	return v, ok
}

// Has reports whether key resolves to a value on this record.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// with returns a copy of r with key set to v.
func (r *Record) with(key string, v any) *Record {
	fields := make(map[string]any, len(r.Fields)+1)
	for k, old := range r.Fields {
		fields[k] = old
	}
	fields[key] = v
	return &Record{ID: r.ID, Fields: fields}
}
