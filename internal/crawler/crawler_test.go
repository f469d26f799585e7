package crawler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/nao1215/atlasharvest/internal/model"
	"github.com/nao1215/atlasharvest/internal/provider"
	"github.com/nao1215/atlasharvest/internal/provider/htmldoc"
	"github.com/nao1215/atlasharvest/internal/store"
)

// twoPageSite is a listing whose first page holds 100 program rows and one
// malformed row, and whose second page holds 30 rows, one of them a
// duplicate of a first-page code.
func twoPageSite() *htmldoc.StaticFetcher {
	page1 := slices.Insert(rows(0, 100, programRow), 50, malformedRow)

	page2 := append([]string{programRow(code(5))}, rows(100, 129, programRow)...)

	return site(
		listingPage{rows: page1, next: pageURL(2)},
		listingPage{rows: page2},
	)
}

// TestRunEndToEnd tests a complete two-page crawl.
func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	st := &memoryStore{}
	res, err := run(t, newTestCrawler(twoPageSite(), st))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, saves := st.snapshot()
	if len(records) != 129 {
		t.Errorf("expected 129 records, got %d", len(records))
	}
	if saves != 2 {
		t.Errorf("expected 2 persists, got %d", saves)
	}

	if res.State != StateDone {
		t.Errorf("expected state done, got %s", res.State)
	}
	if res.Pages != 2 || res.NewRecords != 129 || res.TotalRecords != 129 {
		t.Errorf("unexpected counts: %+v", res)
	}
	if res.Duplicates != 1 || res.Skipped != 1 {
		t.Errorf("expected 1 duplicate and 1 skipped row, got %d and %d", res.Duplicates, res.Skipped)
	}
	if res.Degraded || len(res.Warnings) != 0 {
		t.Errorf("expected a clean run, got degraded=%v warnings=%v", res.Degraded, res.Warnings)
	}

	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if seen[r.Code] {
			t.Fatalf("duplicate code %s", r.Code)
		}
		seen[r.Code] = true
		if r.ScoreType != model.ScoreTypeSAY {
			t.Errorf("record %d has score type %q", i, r.ScoreType)
		}
		if len(r.TotalQuota) != 4 || len(r.MinScore) != 4 {
			t.Errorf("record %d has wrong slot count", i)
		}
	}
	if records[0].Code != code(0) || records[128].Code != code(128) {
		t.Errorf("records not in document order: first %s last %s", records[0].Code, records[128].Code)
	}
}

// TestRunResume tests that a rerun over a covered listing adds nothing.
func TestRunResume(t *testing.T) {
	t.Parallel()

	t.Run("full rerun", func(t *testing.T) {
		t.Parallel()

		st := &memoryStore{}
		if _, err := run(t, newTestCrawler(twoPageSite(), st)); err != nil {
			t.Fatalf("first run: %v", err)
		}
		first, _ := st.snapshot()

		res, err := run(t, newTestCrawler(twoPageSite(), st))
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if res.NewRecords != 0 {
			t.Errorf("expected no new records, got %d", res.NewRecords)
		}
		if res.Duplicates != 130 {
			t.Errorf("expected 130 duplicates, got %d", res.Duplicates)
		}

		second, _ := st.snapshot()
		if len(second) != len(first) {
			t.Errorf("record count changed from %d to %d", len(first), len(second))
		}
	})

	t.Run("partial partition", func(t *testing.T) {
		t.Parallel()

		st := &memoryStore{}
		for i := 0; i < 50; i++ {
			st.records = append(st.records, model.NewRecord(code(i), model.ScoreTypeSAY))
		}

		res, err := run(t, newTestCrawler(twoPageSite(), st))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.NewRecords != 79 || res.TotalRecords != 129 {
			t.Errorf("expected 79 new of 129, got %d of %d", res.NewRecords, res.TotalRecords)
		}
	})
}

// TestRunLoadFailures tests runs that end before any data is collected.
func TestRunLoadFailures(t *testing.T) {
	t.Parallel()

	t.Run("table never appears", func(t *testing.T) {
		t.Parallel()

		fetcher := htmldoc.NewStaticFetcher(map[string]string{
			listingURL: listingPage{noTable: true}.String(),
		})
		st := &memoryStore{}
		res, err := run(t, newTestCrawler(fetcher, st))

		perr := requireAs[*ProviderTimeoutError](t, err)
		if !errors.Is(perr, provider.ErrTimeout) {
			t.Errorf("expected wrapped ErrTimeout, got %v", perr.Err)
		}
		if res.State != StateFailed {
			t.Errorf("expected failed state, got %s", res.State)
		}
		if _, saves := st.snapshot(); saves != 0 {
			t.Errorf("expected no persists, got %d", saves)
		}
	})

	t.Run("listing unreachable", func(t *testing.T) {
		t.Parallel()

		res, err := run(t, newTestCrawler(htmldoc.NewStaticFetcher(nil), &memoryStore{}))
		nerr := requireAs[*NavigationFailure](t, err)
		if nerr.Page != 0 || nerr.URL != listingURL {
			t.Errorf("unexpected failure %+v", nerr)
		}
		if !errors.Is(err, htmldoc.ErrPageNotFound) {
			t.Errorf("expected wrapped ErrPageNotFound, got %v", err)
		}
		if res.State != StateFailed {
			t.Errorf("expected failed state, got %s", res.State)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestCrawler(twoPageSite(), &memoryStore{}).Run(ctx, model.ScoreTypeSAY)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestRunNavigationFailure tests a next-page control whose click fails.
func TestRunNavigationFailure(t *testing.T) {
	t.Parallel()

	st := &memoryStore{}
	page1 := listingPage{rows: rows(0, 10, programRow), next: pageURL(7)}
	res, err := run(t, newTestCrawler(site(page1), st))

	nerr := requireAs[*NavigationFailure](t, err)
	if nerr.Page != 1 {
		t.Errorf("expected failure on page 1, got %d", nerr.Page)
	}
	if !errors.Is(err, htmldoc.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
	if res.State != StateFailed {
		t.Errorf("expected failed state, got %s", res.State)
	}

	records, saves := st.snapshot()
	if saves != 1 || len(records) != 10 {
		t.Errorf("expected first page retained: %d saves, %d records", saves, len(records))
	}
}

// TestRunNextPageNotInteractable tests that a hidden next-page control ends
// the crawl normally.
func TestRunNextPageNotInteractable(t *testing.T) {
	t.Parallel()

	st := &memoryStore{}
	page1 := listingPage{rows: rows(0, 10, programRow), next: pageURL(2), nextStyle: "display:none"}
	res, err := run(t, newTestCrawler(site(page1), st))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != StateDone {
		t.Errorf("expected done state, got %s", res.State)
	}
	if res.Pages != 1 {
		t.Errorf("expected 1 page, got %d", res.Pages)
	}

	records, saves := st.snapshot()
	if saves != 1 || len(records) != 10 {
		t.Errorf("expected first page kept: %d saves, %d records", saves, len(records))
	}
}

// TestRunDegradedView tests the best-effort single page scrape.
func TestRunDegradedView(t *testing.T) {
	t.Parallel()

	page := listingPage{rows: rows(0, 5, compactRow), next: listingURL + "&page=2"}
	fetcher := htmldoc.NewStaticFetcher(map[string]string{
		listingURL: page.String(),
		sizedURL:   page.String(),
	})
	st := &memoryStore{}

	res, err := run(t, newTestCrawler(fetcher, st))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Degraded || res.State != StateDone {
		t.Errorf("expected degraded done run, got degraded=%v state=%s", res.Degraded, res.State)
	}
	if res.Pages != 1 {
		t.Errorf("expected a single page, got %d", res.Pages)
	}
	if _, saves := st.snapshot(); saves != 1 {
		t.Errorf("expected one persist, got %d", saves)
	}

	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
	w := requireAs[*ConfigurationWarning](t, res.Warnings[0])
	if w.Step != "view" {
		t.Errorf("expected view warning, got %q", w.Step)
	}
	if !errors.Is(w, ErrViewNotDetected) {
		t.Errorf("expected joined ErrViewNotDetected, got %v", w.Err)
	}
}

// TestRunViewStrategies tests the fallbacks that reach the detailed view.
func TestRunViewStrategies(t *testing.T) {
	t.Parallel()

	detailed := listingPage{rows: rows(0, 3, programRow)}

	tests := []struct {
		name   string
		toggle string
		rows   []string
	}{
		{
			name:   "invoke disabled toggle",
			toggle: `<button id="toggle_view" disabled data-href="` + detailURL + `">Detaylı</button>`,
			rows:   rows(0, 3, compactRow),
		},
		{
			name:   "alternate control",
			toggle: `<input type="button" value="Detaylı Görünüm" data-href="` + detailURL + `">`,
			rows:   rows(0, 3, compactRow),
		},
		{
			name: "already detailed",
			rows: rows(0, 3, programRow),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			landing := listingPage{rows: tt.rows, toggle: tt.toggle}
			fetcher := htmldoc.NewStaticFetcher(map[string]string{
				listingURL: landing.String(),
				sizedURL:   landing.String(),
				detailURL:  detailed.String(),
			})
			st := &memoryStore{}

			res, err := run(t, newTestCrawler(fetcher, st))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Degraded {
				t.Error("expected a configured view")
			}
			if res.NewRecords != 3 {
				t.Errorf("expected 3 records, got %d", res.NewRecords)
			}
		})
	}
}

// TestRunPageSizeWarning tests that a missing page-size control is not fatal.
func TestRunPageSizeWarning(t *testing.T) {
	t.Parallel()

	landing := listingPage{rows: rows(0, 3, compactRow), toggle: toggleButton(detailURL), noPageSize: true}
	fetcher := htmldoc.NewStaticFetcher(map[string]string{
		listingURL: landing.String(),
		detailURL:  listingPage{rows: rows(0, 4, programRow)}.String(),
	})

	res, err := run(t, newTestCrawler(fetcher, &memoryStore{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
	if w := requireAs[*ConfigurationWarning](t, res.Warnings[0]); w.Step != "page size" {
		t.Errorf("expected page size warning, got %q", w.Step)
	}
	if res.NewRecords != 4 {
		t.Errorf("expected 4 records, got %d", res.NewRecords)
	}
}

// TestRunStoreErrors tests partition load and save failures.
func TestRunStoreErrors(t *testing.T) {
	t.Parallel()

	t.Run("corrupt partition starts fresh", func(t *testing.T) {
		t.Parallel()

		st := &memoryStore{loadErr: fmt.Errorf("p.json: %w", store.ErrCorrupt)}
		res, err := run(t, newTestCrawler(twoPageSite(), st))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], store.ErrCorrupt) {
			t.Errorf("expected corrupt partition warning, got %v", res.Warnings)
		}
		if res.TotalRecords != 129 {
			t.Errorf("expected 129 records, got %d", res.TotalRecords)
		}
	})

	t.Run("unreadable partition", func(t *testing.T) {
		t.Parallel()

		st := &memoryStore{loadErr: errors.New("permission denied")}
		_, err := run(t, newTestCrawler(twoPageSite(), st))
		requireAs[*PersistenceError](t, err)
	})

	t.Run("save fails", func(t *testing.T) {
		t.Parallel()

		st := &memoryStore{saveErr: errors.New("disk full")}
		res, err := run(t, newTestCrawler(twoPageSite(), st))
		perr := requireAs[*PersistenceError](t, err)
		if perr.Records != 100 || perr.ScoreType != model.ScoreTypeSAY {
			t.Errorf("unexpected error %+v", perr)
		}
		if res.State != StateFailed || res.Pages != 1 {
			t.Errorf("expected failure after the first page, got %s after %d pages", res.State, res.Pages)
		}
	})
}

// TestRunMaxPages tests the page limit.
func TestRunMaxPages(t *testing.T) {
	t.Parallel()

	st := &memoryStore{}
	res, err := run(t, newTestCrawler(twoPageSite(), st, WithMaxPages(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pages != 1 || res.TotalRecords != 100 {
		t.Errorf("expected one page of 100 records, got %d pages and %d records", res.Pages, res.TotalRecords)
	}
}

// TestRunClosesDocument tests that the document is released on both
// terminal states.
func TestRunClosesDocument(t *testing.T) {
	t.Parallel()

	for _, fetcher := range []*htmldoc.StaticFetcher{twoPageSite(), htmldoc.NewStaticFetcher(nil)} {
		tracker := &closeTracker{}
		c := New(
			func() (provider.Document, error) {
				tracker.Document = htmldoc.New(fetcher)
				return tracker, nil
			},
			func(model.ScoreType) Store { return &memoryStore{} },
			WithBaseURL(testBaseURL),
			WithSettleDelays(0, 0, 0),
			WithLoadTimeout(0),
			WithElementTimeout(0),
		)
		_, _ = run(t, c)
		if !tracker.closed {
			t.Error("document was not closed")
		}
	}
}
