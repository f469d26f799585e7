package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/atlasharvest/internal/model"
	"github.com/nao1215/atlasharvest/internal/store"
)

// ErrNoInput is returned when none of the input partitions could be read.
var ErrNoInput = errors.New("no readable partition")

// DefaultPattern matches the partition files written by crawl runs.
const DefaultPattern = "universities_data_*.json"

// Source is the outcome of loading one partition.
type Source struct {
	Path    string
	Records int

	// Err is set when the partition could not be read. Its records are
	// absent from the dataset.
	Err error
}

// Dataset is the canonical merged record set.
type Dataset struct {
	// Records holds every normalized record in input order.
	Records []model.Record

	// Sources has one entry per input path, in input order.
	Sources []Source
}

// Failed returns the sources that could not be read.
func (d *Dataset) Failed() []Source {
	failed := make([]Source, 0)
	for _, s := range d.Sources {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Normalizer loads partitions and normalizes their records.
type Normalizer struct {
	// concurrency limits how many partitions are read at once.
	concurrency int
	logger      *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithConcurrency sets how many partitions are read at once.
func WithConcurrency(n int) Option {
	return func(nz *Normalizer) {
		if n > 0 {
			nz.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(nz *Normalizer) {
		nz.logger = logger
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	nz := &Normalizer{
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(nz)
	}
	return nz
}

// Normalize is New(opts...).Normalize(ctx, paths).
func Normalize(ctx context.Context, paths []string, opts ...Option) (*Dataset, error) {
	return New(opts...).Normalize(ctx, paths)
}

// Normalize reads every partition in paths, normalizes each record and
// concatenates them in input order. Unreadable partitions are logged and
// reported in Dataset.Sources; ErrNoInput is returned when none loads.
func (nz *Normalizer) Normalize(ctx context.Context, paths []string) (*Dataset, error) {
	loaded := make([][]model.Record, len(paths))
	sources := make([]Source, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(nz.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			records, err := store.ReadFile(path)
			sources[i] = Source{Path: path, Records: len(records), Err: err}
			if err != nil {
				nz.logger.Warn("skipping partition", "path", path, "error", err)
				return nil
			}

			normalized := make([]model.Record, 0, len(records))
			for _, r := range records {
				normalized = append(normalized, Record(r))
			}
			loaded[i] = normalized
			nz.logger.Debug("partition normalized", "path", path, "records", len(records))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{
		Records: slices.Concat(loaded...),
		Sources: sources,
	}
	if ds.Records == nil {
		ds.Records = []model.Record{}
	}
	if len(ds.Failed()) == len(paths) {
		return ds, fmt.Errorf("%w: %d of %d partitions failed", ErrNoInput, len(paths), len(paths))
	}
	return ds, nil
}

// FindPartitions returns the partition files in dir matching
// DefaultPattern, sorted by name.
func FindPartitions(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, DefaultPattern))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}
