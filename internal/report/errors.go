package report

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is wrapped by FormatError.
var ErrUnknownFormat = errors.New("unknown report format")

// FormatError reports an unsupported format name.
type FormatError struct {
	Format string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %q (want one of %s)", ErrUnknownFormat, e.Format, strings.Join(Formats(), ", "))
}

// Unwrap returns ErrUnknownFormat.
func (e *FormatError) Unwrap() error {
	return ErrUnknownFormat
}
