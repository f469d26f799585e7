package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultPollInterval is how often the wait helpers re-query the document.
const DefaultPollInterval = 100 * time.Millisecond

// waitConfig holds wait helper settings.
type waitConfig struct {
	pollInterval time.Duration
}

// WaitOption configures WaitUntilPresent and WaitUntilClickable.
type WaitOption func(*waitConfig)

// WithPollInterval sets the polling interval.
func WithPollInterval(d time.Duration) WaitOption {
	return func(c *waitConfig) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WaitUntilPresent polls doc until q matches an element or timeout elapses.
// The returned error wraps ErrTimeout on timeout and is ctx.Err() when the
// context ends first.
func WaitUntilPresent(ctx context.Context, doc Document, q Query, timeout time.Duration, opts ...WaitOption) (Element, error) {
	return waitFor(ctx, doc, q, timeout, func(Element) bool { return true }, opts)
}

// WaitUntilClickable polls doc until q matches an interactable element or
// timeout elapses.
func WaitUntilClickable(ctx context.Context, doc Document, q Query, timeout time.Duration, opts ...WaitOption) (Element, error) {
	return waitFor(ctx, doc, q, timeout, Element.Interactable, opts)
}

func waitFor(ctx context.Context, doc Document, q Query, timeout time.Duration, ready func(Element) bool, opts []WaitOption) (Element, error) {
	cfg := &waitConfig{pollInterval: DefaultPollInterval}
	for _, opt := range opts {
		opt(cfg)
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(cfg.pollInterval)
	defer ticker.Stop()

	for {
		el, err := doc.Find(q)
		switch {
		case err == nil && ready(el):
			return el, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, err
		}

		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, q, timeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
