package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/atlasharvest/internal/crawler"
	"github.com/nao1215/atlasharvest/internal/database"
	"github.com/nao1215/atlasharvest/internal/model"
)

// Runner crawls one score type. *crawler.Crawler implements it.
type Runner interface {
	Run(ctx context.Context, scoreType model.ScoreType) (crawler.Result, error)
}

// RunRecorder stores finished runs. *database.HistoryDB implements it.
type RunRecorder interface {
	InsertRun(ctx context.Context, run *database.Run) (int64, error)
}

// CrawlStep runs the crawler for the job's score type.
type CrawlStep struct {
	runner Runner
}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep(runner Runner) *CrawlStep {
	return &CrawlStep{runner: runner}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do crawls and stores the result on the job.
func (s *CrawlStep) Do(ctx context.Context, job *Job) error {
	res, err := s.runner.Run(ctx, job.ScoreType)
	job.Result = res
	return err
}

// RecordStep writes the job's crawl result to the run history.
type RecordStep struct {
	recorder RunRecorder
	logger   *slog.Logger
}

// RecordStepOption configures a RecordStep.
type RecordStepOption func(*RecordStep)

// WithRecordLogger sets the logger.
func WithRecordLogger(logger *slog.Logger) RecordStepOption {
	return func(s *RecordStep) {
		s.logger = logger
	}
}

// NewRecordStep creates a RecordStep.
func NewRecordStep(recorder RunRecorder, opts ...RecordStepOption) *RecordStep {
	s := &RecordStep{
		recorder: recorder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Do inserts the run. It runs for failed crawls too, so the history shows
// why a score type stopped.
func (s *RecordStep) Do(ctx context.Context, job *Job) error {
	id, err := s.recorder.InsertRun(ctx, RunFromJob(job))
	if err != nil {
		return err
	}
	job.RunID = id
	s.logger.Debug("run recorded", "id", id, "score_type", job.ScoreType.String())
	return nil
}

// RunFromJob converts a job into a history row.
func RunFromJob(job *Job) *database.Run {
	res := job.Result
	run := &database.Run{
		ScoreType:    job.ScoreType.String(),
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		State:        res.State.String(),
		Pages:        res.Pages,
		NewRecords:   res.NewRecords,
		TotalRecords: res.TotalRecords,
		Duplicates:   res.Duplicates,
		Skipped:      res.Skipped,
		Degraded:     res.Degraded,
	}
	if job.Err != nil {
		run.Error = job.Err.Error()
	}
	return run
}

// DefaultPipeline builds the harvest pipeline: crawl, then record the run
// when recorder is not nil. Recording happens even when the crawl fails.
func DefaultPipeline(runner Runner, recorder RunRecorder, opts ...Option) *Pipeline {
	p := New(append([]Option{WithContinueOnError(true)}, opts...)...)
	p.AddStep(NewCrawlStep(runner))
	if recorder != nil {
		p.AddStep(NewRecordStep(recorder, WithRecordLogger(p.logger)))
	}
	return p
}
