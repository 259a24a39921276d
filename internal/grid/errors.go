package grid

import "errors"

var (
	// ErrInvalidID indicates a value that cannot serve as a row identifier.
	ErrInvalidID = errors.New("invalid row id")

	// ErrDuplicateID indicates two records share an identifier.
	ErrDuplicateID = errors.New("duplicate row id")
)
