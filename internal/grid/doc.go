// Package grid holds the authoritative row collection of a sheet.
//
// Rows are immutable once built. An update never mutates a Record in place;
// it produces a new Rows value in which only the changed row is replaced and
// every other element keeps its pointer identity:
//
//	before := store.Rows()
//	store.UpdateField(grid.IntID(2), "role", "Admin")
//	after := store.Rows()
//	// before[0] == after[0], before[1] != after[1]
//
// Consumers can therefore detect change by comparing pointers instead of
// walking field maps.
//
// The package knows nothing about columns or validation. Deciding whether a
// value is acceptable belongs to the caller.
package grid
