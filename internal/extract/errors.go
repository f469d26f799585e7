package extract

import (
	"errors"
	"fmt"
)

// ErrRowSkipped is returned for rows that are not program rows: too few
// cells or no recognizable code. It is a normal outcome, not a failure.
var ErrRowSkipped = errors.New("row skipped")

// errNotRow is wrapped by RowParseError when the input is not a table row.
var errNotRow = errors.New("node is not a table row")

// RowParseError reports a row whose markup could not be turned into a
// record. The crawler logs it and moves on to the next row.
type RowParseError struct {
	// Field names the field being extracted when the failure happened.
	Field string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *RowParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse row: %v", e.Err)
	}
	return fmt.Sprintf("parse row field %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RowParseError) Unwrap() error {
	return e.Err
}
