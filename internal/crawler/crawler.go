package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/atlasharvest/internal/extract"
	"github.com/nao1215/atlasharvest/internal/model"
	"github.com/nao1215/atlasharvest/internal/provider"
	"github.com/nao1215/atlasharvest/internal/store"
)

// Listing selectors.
const (
	tableID        = "mydata"
	pageSizeName   = "mydata_length"
	rowSelector    = "#mydata tbody tr"
	nextSelector   = "li.paginate_button.next:not(.disabled) a"
	defaultMaxSize = "100"
)

// Store persists the records of one score type.
type Store interface {
	Load() ([]model.Record, error)
	Save(records []model.Record) error
}

// DocumentFactory opens a fresh document for one run.
type DocumentFactory func() (provider.Document, error)

// StoreFactory returns the store of a score type.
type StoreFactory func(scoreType model.ScoreType) Store

// Result summarizes one run.
type Result struct {
	ScoreType model.ScoreType

	// NewRecords is the number of records added by this run.
	NewRecords int

	// TotalRecords is the size of the persisted set at the end of the run.
	TotalRecords int

	// Duplicates counts extracted rows whose code was already known.
	Duplicates int

	// Skipped counts rows that did not yield a record.
	Skipped int

	// Pages is the number of pages extracted.
	Pages int

	State    State
	Degraded bool

	// Warnings holds recovered problems: configuration warnings and a
	// corrupt partition that was discarded.
	Warnings []error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Crawler collects the records of a score type from the listing.
type Crawler struct {
	documents DocumentFactory
	stores    StoreFactory

	// baseURL is the listing host; score types add their own path.
	baseURL string

	// pageSize is the option value chosen in the page-size select.
	pageSize string

	// loadTimeout bounds the wait for the listing table after a load.
	loadTimeout time.Duration

	// elementTimeout bounds the waits for controls and for the table
	// between pages.
	elementTimeout time.Duration

	pollInterval time.Duration

	sizeSettle time.Duration
	viewSettle time.Duration
	pageSettle time.Duration

	// maxPages stops the crawl after that many pages. 0 means no limit.
	maxPages int

	strategies []ViewStrategy
	logger     *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithBaseURL sets the listing host.
func WithBaseURL(baseURL string) Option {
	return func(c *Crawler) {
		c.baseURL = baseURL
	}
}

// WithPageSize sets the page-size option value to select.
func WithPageSize(size string) Option {
	return func(c *Crawler) {
		c.pageSize = size
	}
}

// WithLoadTimeout sets how long to wait for the listing after loading it.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		c.loadTimeout = d
	}
}

// WithElementTimeout sets how long to wait for controls to become usable.
func WithElementTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		c.elementTimeout = d
	}
}

// WithPollInterval sets how often waits re-check the document.
func WithPollInterval(d time.Duration) Option {
	return func(c *Crawler) {
		c.pollInterval = d
	}
}

// WithSettleDelays sets the pauses after the page-size change, after the
// view switch and after each page transition.
func WithSettleDelays(size, view, page time.Duration) Option {
	return func(c *Crawler) {
		c.sizeSettle = size
		c.viewSettle = view
		c.pageSettle = page
	}
}

// WithMaxPages stops the crawl after n pages. 0 disables the limit.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		c.maxPages = n
	}
}

// WithViewStrategies replaces the view strategies.
func WithViewStrategies(strategies []ViewStrategy) Option {
	return func(c *Crawler) {
		c.strategies = strategies
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler. Every run opens its own document from documents
// and closes it before returning.
func New(documents DocumentFactory, stores StoreFactory, opts ...Option) *Crawler {
	c := &Crawler{
		documents:      documents,
		stores:         stores,
		baseURL:        model.DefaultBaseURL,
		pageSize:       defaultMaxSize,
		loadTimeout:    20 * time.Second,
		elementTimeout: 10 * time.Second,
		pollInterval:   provider.DefaultPollInterval,
		sizeSettle:     3 * time.Second,
		viewSettle:     3 * time.Second,
		pageSettle:     2 * time.Second,
		strategies:     DefaultViewStrategies(),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// session is the mutable state of one run.
type session struct {
	scoreType model.ScoreType
	extractor *extract.Extractor
	store     Store
	dedup     *Deduplicator
	records   []model.Record
	result    Result
	logger    *slog.Logger
}

func (s *session) warn(err error) {
	s.result.Warnings = append(s.result.Warnings, err)
	s.logger.Warn("continuing after warning", "error", err)
}

func (s *session) transition(state State) {
	s.logger.Debug("state", "from", s.result.State, "to", state)
	s.result.State = state
}

// Run crawls every page of the score type's listing. The returned error is
// nil exactly when the run ends in StateDone; the Result is filled in
// either way.
func (c *Crawler) Run(ctx context.Context, scoreType model.ScoreType) (Result, error) {
	logger := c.logger.With("score_type", scoreType.String())
	s := &session{
		scoreType: scoreType,
		extractor: extract.New(scoreType),
		store:     c.stores(scoreType),
		logger:    logger,
		result: Result{
			ScoreType: scoreType,
			State:     StateInit,
			StartedAt: time.Now(),
		},
	}

	err := c.run(ctx, s)

	s.result.TotalRecords = len(s.records)
	s.result.FinishedAt = time.Now()
	if err != nil {
		s.transition(StateFailed)
		logger.Error("crawl failed",
			"error", err,
			"pages", s.result.Pages,
			"records", s.result.TotalRecords,
		)
		return s.result, err
	}

	s.transition(StateDone)
	logger.Info("crawl finished",
		"pages", s.result.Pages,
		"new", s.result.NewRecords,
		"records", s.result.TotalRecords,
		"degraded", s.result.Degraded,
	)
	return s.result, nil
}

func (c *Crawler) run(ctx context.Context, s *session) error {
	existing, err := s.store.Load()
	switch {
	case errors.Is(err, store.ErrCorrupt):
		s.warn(fmt.Errorf("starting fresh: %w", err))
		existing = nil
	case err != nil:
		return &PersistenceError{ScoreType: s.scoreType, Err: err}
	}
	s.records = append(make([]model.Record, 0, len(existing)), existing...)
	s.dedup = NewDeduplicator(existing)
	if len(existing) > 0 {
		s.logger.Info("resuming", "records", len(existing))
	}

	doc, err := c.documents()
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			s.logger.Debug("failed to close document", "error", err)
		}
	}()

	if err := c.load(ctx, s, doc); err != nil {
		return err
	}
	if err := c.configureSize(ctx, s, doc); err != nil {
		return err
	}
	if err := c.configureView(ctx, s, doc); err != nil {
		return err
	}
	return c.scrapePages(ctx, s, doc)
}

// load performs Init -> Loaded.
func (c *Crawler) load(ctx context.Context, s *session, doc provider.Document) error {
	listing := s.scoreType.ListingURL(c.baseURL)
	s.logger.Info("loading listing", "url", listing)

	if err := doc.Load(ctx, listing); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &NavigationFailure{URL: listing, Err: err}
	}
	if _, err := c.waitTable(ctx, doc, c.loadTimeout); err != nil {
		return err
	}

	s.transition(StateLoaded)
	return nil
}

// configureSize performs Loaded -> SizeConfigured.
func (c *Crawler) configureSize(ctx context.Context, s *session, doc provider.Document) error {
	err := func() error {
		el, err := provider.WaitUntilPresent(ctx, doc, provider.ByName(pageSizeName), c.elementTimeout, c.waitOptions()...)
		if err != nil {
			return err
		}
		return doc.SelectOption(ctx, el, c.pageSize)
	}()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err != nil {
		s.warn(&ConfigurationWarning{Step: "page size", Err: err})
	} else {
		s.logger.Debug("page size set", "size", c.pageSize)
		if err := sleep(ctx, c.sizeSettle); err != nil {
			return err
		}
	}

	s.transition(StateSizeConfigured)
	return nil
}

// configureView performs SizeConfigured -> ViewConfigured, or marks the
// run degraded when no strategy works.
func (c *Crawler) configureView(ctx context.Context, s *session, doc provider.Document) error {
	errs := make([]error, 0, len(c.strategies))
	for _, strategy := range c.strategies {
		err := strategy.Apply(ctx, c, doc)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.logger.Debug("view strategy failed", "strategy", strategy.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", strategy.Name, err))
			continue
		}

		s.logger.Debug("detailed view active", "strategy", strategy.Name)
		if strategy.Settle {
			if err := sleep(ctx, c.viewSettle); err != nil {
				return err
			}
		}
		s.transition(StateViewConfigured)
		return nil
	}

	s.result.Degraded = true
	s.warn(&ConfigurationWarning{Step: "view", Err: errors.Join(errs...)})
	return nil
}

// scrapePages runs ScrapingPage(n) until the last page.
func (c *Crawler) scrapePages(ctx context.Context, s *session, doc provider.Document) error {
	for page := 1; ; page++ {
		s.transition(StateScrapingPage)

		if err := c.scrapePage(ctx, s, doc, page); err != nil {
			return err
		}

		if s.result.Degraded {
			s.logger.Warn("degraded view, stopping after first page")
			return nil
		}
		if c.maxPages > 0 && page >= c.maxPages {
			s.logger.Info("page limit reached", "pages", page)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		more, err := c.nextPage(ctx, s, doc, page)
		if err != nil || !more {
			return err
		}
		if err := sleep(ctx, c.pageSettle); err != nil {
			return err
		}
	}
}

func (c *Crawler) scrapePage(ctx context.Context, s *session, doc provider.Document, page int) error {
	if _, err := c.waitTable(ctx, doc, c.elementTimeout); err != nil {
		return err
	}

	rows, err := doc.FindAll(provider.BySelector(rowSelector))
	if err != nil {
		return fmt.Errorf("failed to list rows on page %d: %w", page, err)
	}

	added, dup, skipped := 0, 0, 0
	for i, row := range rows {
		rec, err := s.extractor.Extract(row.Node())
		if err != nil {
			skipped++
			var perr *RowParseError
			if errors.As(err, &perr) {
				s.logger.Warn("skipping unparseable row",
					"page", page,
					"row", i,
					"error", err,
					"markup", renderNode(row.Node()),
				)
			}
			continue
		}

		if s.dedup.Seen(rec.Code) {
			dup++
			continue
		}
		s.dedup.Record(rec.Code)
		s.records = append(s.records, rec)
		added++
	}

	s.result.Pages++
	s.result.NewRecords += added
	s.result.Duplicates += dup
	s.result.Skipped += skipped

	s.logger.Info("page scraped",
		"page", page,
		"rows", len(rows),
		"new", added,
		"duplicates", dup,
		"skipped", skipped,
		"total", len(s.records),
	)

	if err := s.store.Save(s.records); err != nil {
		return &PersistenceError{ScoreType: s.scoreType, Records: len(s.records), Err: err}
	}
	return nil
}

// nextPage moves past page. It reports false when there is no next page.
func (c *Crawler) nextPage(ctx context.Context, s *session, doc provider.Document, page int) (bool, error) {
	next := provider.BySelector(nextSelector)
	if _, err := doc.Find(next); err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			s.logger.Debug("no next page", "page", page)
			return false, nil
		}
		return false, &NavigationFailure{Page: page, Err: err}
	}

	// A control that never becomes usable marks the last page.
	el, err := provider.WaitUntilClickable(ctx, doc, next, c.elementTimeout, c.waitOptions()...)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if errors.Is(err, provider.ErrTimeout) {
			s.logger.Debug("next page control not interactable", "page", page, "error", err)
			return false, nil
		}
		return false, &NavigationFailure{Page: page, Err: err}
	}
	if err := doc.Click(ctx, el); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, &NavigationFailure{Page: page, Err: err}
	}
	return true, nil
}

func (c *Crawler) waitTable(ctx context.Context, doc provider.Document, timeout time.Duration) (provider.Element, error) {
	el, err := provider.WaitUntilPresent(ctx, doc, provider.ByID(tableID), timeout, c.waitOptions()...)
	if errors.Is(err, provider.ErrTimeout) {
		return nil, &ProviderTimeoutError{Waiting: "listing table", Timeout: timeout, Err: err}
	}
	return el, err
}

func (c *Crawler) waitOptions() []provider.WaitOption {
	return []provider.WaitOption{provider.WithPollInterval(c.pollInterval)}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// renderNode returns the markup of n for logs.
func renderNode(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}
