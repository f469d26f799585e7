package provider

import (
	"context"

	"golang.org/x/net/html"
)

// Element is a node of a loaded document.
type Element interface {
	// Text returns the trimmed text content of the element.
	Text() string

	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)

	// Node returns the underlying parse tree node. The tree must be treated
	// as read-only.
	Node() *html.Node

	// Interactable reports whether the element can receive user actions.
	Interactable() bool

	// FindAll returns the descendants matching q in document order.
	FindAll(q Query) []Element
}

// Document is a page that can be loaded, queried and acted upon.
//
// Elements obtained from a Document are only valid until the next action
// that changes the page (Load, Click, Invoke, SelectOption).
type Document interface {
	// Load navigates to rawURL.
	Load(ctx context.Context, rawURL string) error

	// Find returns the first element matching q, or ErrNotFound.
	Find(q Query) (Element, error)

	// FindAll returns every element matching q in document order.
	FindAll(q Query) ([]Element, error)

	// Click performs a user click. It fails with ErrNotInteractable when
	// the element is disabled or hidden.
	Click(ctx context.Context, el Element) error

	// Invoke activates the element programmatically, bypassing the
	// interactability check a user click is subject to.
	Invoke(ctx context.Context, el Element) error

	// SelectOption chooses the option with the given value on a select
	// element.
	SelectOption(ctx context.Context, el Element, value string) error

	// Close releases the document. Further calls fail with ErrClosed.
	Close() error
}
