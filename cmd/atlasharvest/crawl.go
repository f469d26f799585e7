package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/atlasharvest/internal/config"
	"github.com/nao1215/atlasharvest/internal/crawler"
	"github.com/nao1215/atlasharvest/internal/model"
	"github.com/nao1215/atlasharvest/internal/pipeline"
	"github.com/nao1215/atlasharvest/internal/provider"
	"github.com/nao1215/atlasharvest/internal/provider/htmldoc"
	"github.com/nao1215/atlasharvest/internal/store"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the program listing of one or all score types",
		Long: `Crawl walks every page of a score type's program listing and stores the
programs in universities_data_<type>.json.

Programs already present in the partition are skipped, so a crawl can be
repeated to resume after an interruption. Each run is recorded in the run
history (see "atlasharvest history").

Examples:
  # Crawl the numerical score type
  atlasharvest crawl -s say

  # Crawl all score types, pausing between them
  atlasharvest crawl --all-types --pause 30s

  # Write the partition to a custom file
  atlasharvest crawl -s tyt -o data/tyt.json

  # Crawl only the first two pages
  atlasharvest crawl -s ea --max-pages 2`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("score-type", "s", string(model.ScoreTypeSAY),
		"Score type to crawl: "+strings.Join(scoreTypeNames(), ", "))
	cmd.Flags().BoolP("all-types", "a", false,
		"Crawl all score types in order")
	cmd.Flags().StringP("output", "o", "",
		"Partition file (one score type) or directory (--all-types)")
	cmd.Flags().Bool("headless", false,
		"Accepted for compatibility; pages are always fetched without a browser window")
	cmd.Flags().String("base-url", "",
		"Listing host (default: "+model.DefaultBaseURL+")")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Stop after this many pages (0: no limit)")
	cmd.Flags().Duration("load-timeout", config.DefaultLoadTimeout,
		"Wait for the listing table after loading")
	cmd.Flags().Duration("element-timeout", config.DefaultElementTimeout,
		"Wait for controls and the table between pages")
	cmd.Flags().Duration("settle", 0,
		"Override all settle delays (page size, view switch, next page)")
	cmd.Flags().Duration("pause", config.DefaultBatchPause,
		"Pause between score types with --all-types")
	cmd.Flags().Bool("no-history", false,
		"Do not record runs in the history database")

	return cmd
}

func scoreTypeNames() []string {
	types := model.AllScoreTypes()
	names := make([]string, len(types))
	for i, st := range types {
		names[i] = st.String()
	}
	return names
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr())
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}

	var recorder pipeline.RunRecorder
	if !noHistory {
		if db := openHistory(cfg, logger); db != nil {
			defer db.Close()
			recorder = db
		}
	}

	return runCrawl(ctx, cmd.OutOrStdout(), cfg, &crawlRunner{cfg: cfg, logger: logger}, recorder, logger)
}

// buildCrawlConfig creates a Config from the crawl flags.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	name, err := flags.GetString("score-type")
	if err != nil {
		return nil, err
	}
	st, err := model.ParseScoreType(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownScoreType, name)
	}
	cfg.ScoreTypes = []model.ScoreType{st}

	if cfg.AllTypes, err = flags.GetBool("all-types"); err != nil {
		return nil, err
	}
	if cfg.OutputPath, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Headless, err = flags.GetBool("headless"); err != nil {
		return nil, err
	}

	baseURL, err := flags.GetString("base-url")
	if err != nil {
		return nil, err
	}
	switch {
	case baseURL != "":
		cfg.BaseURL = baseURL
	case cfg.File != nil && cfg.File.Defaults.BaseURL != "":
		cfg.BaseURL = cfg.File.Defaults.BaseURL
	}

	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.LoadTimeout, err = flags.GetDuration("load-timeout"); err != nil {
		return nil, err
	}
	if cfg.ElementTimeout, err = flags.GetDuration("element-timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchPause, err = flags.GetDuration("pause"); err != nil {
		return nil, err
	}

	if flags.Changed("settle") {
		settle, err := flags.GetDuration("settle")
		if err != nil {
			return nil, err
		}
		cfg.SizeSettle, cfg.ViewSettle, cfg.PageSettle = settle, settle, settle
	}

	if cfg.File != nil && cfg.File.Defaults.PageSize != "" {
		cfg.PageSize = cfg.File.Defaults.PageSize
	}

	return cfg, nil
}

// runCrawl harvests the configured score types in order and prints one
// line per score type. It fails when any score type failed.
func runCrawl(ctx context.Context, out io.Writer, cfg *config.Config, runner pipeline.Runner, recorder pipeline.RunRecorder, logger *slog.Logger) error {
	targets := cfg.Targets()
	logger.Info("starting crawl",
		"score_types", scoreTypeList(targets),
		"base_url", cfg.BaseURL,
		"headless", cfg.Headless,
	)

	batch := pipeline.NewBatch(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(runner, recorder, pipeline.WithLogger(logger))
		},
		pipeline.WithPause(cfg.BatchPause),
		pipeline.WithBatchLogger(logger),
	)

	start := time.Now()
	jobs, err := batch.Run(ctx, targets)
	for _, job := range jobs {
		printJob(out, job)
	}
	fmt.Fprintf(out, "\nCrawl finished in %s\n", time.Since(start).Round(time.Millisecond))

	if err != nil {
		if isCancelled(err) {
			return fmt.Errorf("crawl interrupted: %w", err)
		}
		return err
	}

	if failed := pipeline.FailedJobs(jobs); len(failed) > 0 {
		return fmt.Errorf("%d of %d score types failed", len(failed), len(jobs))
	}
	return nil
}

func printJob(out io.Writer, job *pipeline.Job) {
	res := job.Result
	if job.Failed() {
		fmt.Fprintf(out, "%-4s failed after %d page(s), %d record(s) stored: %v\n",
			job.ScoreType, res.Pages, res.TotalRecords, job.Err)
		return
	}

	note := ""
	if res.Degraded {
		note = " (first page only: detailed view unavailable)"
	}
	fmt.Fprintf(out, "%-4s %d new, %d total, %d duplicate(s), %d skipped row(s), %d page(s)%s\n",
		job.ScoreType, res.NewRecords, res.TotalRecords, res.Duplicates, res.Skipped, res.Pages, note)
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "     warning: %v\n", w)
	}
}

func scoreTypeList(types []model.ScoreType) string {
	names := make([]string, len(types))
	for i, st := range types {
		names[i] = st.String()
	}
	return strings.Join(names, ",")
}

// crawlRunner builds a crawler per score type so that per score type
// overrides from the config file apply.
type crawlRunner struct {
	cfg    *config.Config
	logger *slog.Logger

	// fetcher replaces the HTTP fetcher when set.
	fetcher htmldoc.Fetcher
}

// Run implements pipeline.Runner.
func (r *crawlRunner) Run(ctx context.Context, st model.ScoreType) (crawler.Result, error) {
	return r.newCrawler(st).Run(ctx, st)
}

func (r *crawlRunner) newCrawler(st model.ScoreType) *crawler.Crawler {
	cfg := r.cfg
	sc := cfg.ScoreTypeConfig(st)
	logger := r.logger

	baseURL := cfg.BaseURL
	if sc.BaseURL != "" {
		baseURL = sc.BaseURL
	}
	pageSize := cfg.PageSize
	if sc.PageSize != "" {
		pageSize = sc.PageSize
	}
	maxPages := cfg.MaxPages
	if sc.MaxPages > 0 && maxPages == 0 {
		maxPages = sc.MaxPages
	}

	fetcher := r.fetcher
	if fetcher == nil {
		userAgent := cfg.UserAgent
		if sc.UserAgent != "" {
			userAgent = sc.UserAgent
		}
		fetcher = htmldoc.NewHTTPFetcher(
			htmldoc.WithUserAgent(userAgent),
			htmldoc.WithHeaders(sc.Headers),
			htmldoc.WithCookie(sc.Cookie),
			htmldoc.WithTimeout(cfg.HTTPTimeout),
			htmldoc.WithRetry(cfg.RetryCount),
			htmldoc.WithHTTPLogger(logger),
		)
		logger.Debug("fetcher configured",
			"score_type", st.String(),
			"user_agent", userAgent,
			"cookie", sc.Cookie,
			"headers", len(sc.Headers),
		)
	}

	return crawler.New(
		func() (provider.Document, error) {
			return htmldoc.New(fetcher, htmldoc.WithLogger(logger)), nil
		},
		func(st model.ScoreType) crawler.Store {
			return store.New(cfg.PartitionPath(st), store.WithLogger(logger))
		},
		crawler.WithBaseURL(baseURL),
		crawler.WithPageSize(pageSize),
		crawler.WithLoadTimeout(cfg.LoadTimeout),
		crawler.WithElementTimeout(cfg.ElementTimeout),
		crawler.WithSettleDelays(cfg.SizeSettle, cfg.ViewSettle, cfg.PageSettle),
		crawler.WithMaxPages(maxPages),
		crawler.WithLogger(logger),
	)
}
