package crawler

import (
	"fmt"
	"time"

	"github.com/nao1215/atlasharvest/internal/extract"
	"github.com/nao1215/atlasharvest/internal/model"
)

// RowParseError is the per-row extraction failure. Rows failing this way
// are logged and skipped.
type RowParseError = extract.RowParseError

// ConfigurationWarning reports a configuration step that could not be
// completed. The crawl continues with the page as it is.
type ConfigurationWarning struct {
	// Step is "page size" or "view".
	Step string
	Err  error
}

// Error implements the error interface.
func (e *ConfigurationWarning) Error() string {
	return fmt.Sprintf("could not configure %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationWarning) Unwrap() error {
	return e.Err
}

// NavigationFailure reports a page transition that did not happen: the
// listing could not be opened or the next-page control was present but
// unusable.
type NavigationFailure struct {
	// Page is the page number the crawl was on, 0 for the initial load.
	Page int
	URL  string
	Err  error
}

// Error implements the error interface.
func (e *NavigationFailure) Error() string {
	if e.Page == 0 {
		return fmt.Sprintf("failed to open %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to leave page %d: %v", e.Page, e.Err)
}

// Unwrap returns the underlying cause.
func (e *NavigationFailure) Unwrap() error {
	return e.Err
}

// ProviderTimeoutError reports that the document never reached an expected
// state within the bound.
type ProviderTimeoutError struct {
	// Waiting describes what was awaited, e.g. the listing table.
	Waiting string
	Timeout time.Duration
	Err     error
}

// Error implements the error interface.
func (e *ProviderTimeoutError) Error() string {
	return fmt.Sprintf("gave up waiting for %s after %s: %v", e.Waiting, e.Timeout, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProviderTimeoutError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed checkpoint write.
type PersistenceError struct {
	ScoreType model.ScoreType
	Records   int
	Err       error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %d %s records: %v", e.Records, e.ScoreType, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
