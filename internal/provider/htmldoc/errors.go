package htmldoc

import "errors"

var (
	// ErrPageNotFound is returned by StaticFetcher for an unknown URL.
	ErrPageNotFound = errors.New("page not found")

	// ErrHTTPStatus is returned by HTTPFetcher for non-2xx responses.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrNoAction is returned when a clicked element has nothing to follow.
	ErrNoAction = errors.New("element has no action")

	// ErrNotSelect is returned when SelectOption targets a non-select element.
	ErrNotSelect = errors.New("element is not a select")

	// ErrOptionNotFound is returned when a select has no option with the
	// requested value.
	ErrOptionNotFound = errors.New("option not found")

	// ErrForeignElement is returned when an element from another engine is
	// passed to a Document action.
	ErrForeignElement = errors.New("element does not belong to this document")
)
