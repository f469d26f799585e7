package crawler

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/nao1215/atlasharvest/internal/provider"
)

// ErrViewNotDetected is returned by the detect strategy when the table
// still shows the compact layout.
var ErrViewNotDetected = errors.New("detailed view not detected")

// DetailedViewMinCells is the cell count above which a body row is taken
// to be in the detailed layout.
const DetailedViewMinCells = 10

// ViewStrategy is one way of switching the listing to its detailed layout.
type ViewStrategy struct {
	Name string

	// Settle makes the crawler wait for the view settle delay after the
	// strategy succeeds. Strategies that only observe the page leave it
	// unset.
	Settle bool

	Apply func(ctx context.Context, c *Crawler, doc provider.Document) error
}

// Selectors used by the default view strategies.
const (
	toggleViewID = "toggle_view"
)

// AlternateToggleSelectors are tried in order when the toggle control
// cannot be used directly.
var AlternateToggleSelectors = []string{
	"input[type='button'][value*='Detaylı']",
	"button[id='toggle_view']",
	"*[onclick*='toggle']",
	"input[onclick*='toggle']",
}

// DefaultViewStrategies returns the strategies in the order they are tried:
// user click, programmatic invoke, alternate controls, and detection of an
// already detailed table.
func DefaultViewStrategies() []ViewStrategy {
	return []ViewStrategy{
		{Name: "click", Settle: true, Apply: clickToggle},
		{Name: "invoke", Settle: true, Apply: invokeToggle},
		{Name: "alternate", Settle: true, Apply: clickAlternate},
		{Name: "detect", Apply: detectDetailed},
	}
}

func clickToggle(ctx context.Context, c *Crawler, doc provider.Document) error {
	el, err := provider.WaitUntilClickable(ctx, doc, provider.ByID(toggleViewID), c.elementTimeout, c.waitOptions()...)
	if err != nil {
		return err
	}
	return doc.Click(ctx, el)
}

func invokeToggle(ctx context.Context, _ *Crawler, doc provider.Document) error {
	el, err := doc.Find(provider.ByID(toggleViewID))
	if err != nil {
		return err
	}
	return doc.Invoke(ctx, el)
}

func clickAlternate(ctx context.Context, _ *Crawler, doc provider.Document) error {
	var errs []error
	for _, selector := range AlternateToggleSelectors {
		el, err := doc.Find(provider.BySelector(selector))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := doc.Click(ctx, el); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", selector, err))
			continue
		}
		return nil
	}
	return errors.Join(errs...)
}

func detectDetailed(_ context.Context, _ *Crawler, doc provider.Document) error {
	row, err := doc.Find(provider.BySelector(rowSelector))
	if err != nil {
		return err
	}
	if n := countCells(row.Node()); n <= DetailedViewMinCells {
		return fmt.Errorf("%w: first row has %d cells", ErrViewNotDetected, n)
	}
	return nil
}

func countCells(row *html.Node) int {
	if row == nil {
		return 0
	}
	n := 0
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			n++
		}
	}
	return n
}
