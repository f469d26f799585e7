package provider

import "errors"

var (
	// ErrNotFound is returned when a query matches no element.
	ErrNotFound = errors.New("element not found")

	// ErrTimeout is returned by the wait helpers when the condition does not
	// hold before the timeout.
	ErrTimeout = errors.New("timed out waiting for element")

	// ErrNotInteractable is returned when an action targets an element that
	// is disabled or not displayed.
	ErrNotInteractable = errors.New("element is not interactable")

	// ErrNotLoaded is returned when the document is queried before Load.
	ErrNotLoaded = errors.New("document is not loaded")

	// ErrClosed is returned for any operation after Close.
	ErrClosed = errors.New("document is closed")
)
