package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/atlasharvest/internal/model"
)

// DefaultPause is the wait between two score types of a batch.
const DefaultPause = 10 * time.Second

// Batch harvests several score types one after the other.
type Batch struct {
	// pipelineFactory creates a fresh pipeline for each score type.
	pipelineFactory func() *Pipeline

	// pause is the wait between two score types.
	pause time.Duration

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithPause sets the wait between score types. Negative values are
// ignored.
func WithPause(d time.Duration) BatchOption {
	return func(b *Batch) {
		if d >= 0 {
			b.pause = d
		}
	}
}

// NewBatch creates a Batch.
func NewBatch(pipelineFactory func() *Pipeline, opts ...BatchOption) *Batch {
	b := &Batch{
		pipelineFactory: pipelineFactory,
		pause:           DefaultPause,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Run harvests each score type in order. A failed score type is logged and
// the batch moves on; its job carries the error. The returned error is
// non-nil only when ctx ends the batch early, in which case the jobs of
// the score types reached so far are returned.
func (b *Batch) Run(ctx context.Context, scoreTypes []model.ScoreType) ([]*Job, error) {
	b.logger.Info("starting batch", "score_types", len(scoreTypes))
	startTime := time.Now()

	jobs := make([]*Job, 0, len(scoreTypes))
	for i, st := range scoreTypes {
		if i > 0 && b.pause > 0 {
			b.logger.Info("pausing before next score type", "pause", b.pause, "next", st.String())
			if err := wait(ctx, b.pause); err != nil {
				return jobs, err
			}
		}
		if err := ctx.Err(); err != nil {
			return jobs, err
		}

		b.logger.Info("harvesting score type",
			"score_type", st.String(),
			"index", i+1,
			"total", len(scoreTypes),
		)

		job := &Job{ScoreType: st}
		if err := b.pipelineFactory().Execute(ctx, job); err != nil {
			b.logger.Warn("score type failed", "score_type", st.String(), "error", err)
		}
		jobs = append(jobs, job)
	}

	b.logger.Info("batch complete",
		"score_types", len(scoreTypes),
		"failed", len(FailedJobs(jobs)),
		"elapsed", time.Since(startTime),
	)
	return jobs, nil
}

// FailedJobs returns the jobs that ended with an error.
func FailedJobs(jobs []*Job) []*Job {
	failed := make([]*Job, 0)
	for _, j := range jobs {
		if j.Failed() {
			failed = append(failed, j)
		}
	}
	return failed
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
