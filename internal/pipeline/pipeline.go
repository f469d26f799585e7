package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/atlasharvest/internal/crawler"
	"github.com/nao1215/atlasharvest/internal/model"
)

// Job carries one score type through a pipeline.
type Job struct {
	// ScoreType is the partition being harvested.
	ScoreType model.ScoreType

	// Result is filled in by the crawl step.
	Result crawler.Result

	// Err is the first step error, nil when every step succeeded.
	Err error

	// RunID is the history row written for this job, 0 when none was.
	RunID int64

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string
}

// Failed reports whether any step failed.
func (j *Job) Failed() bool {
	return j.Err != nil
}

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step. A returned error is recorded on the job.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError keeps executing steps after one fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError makes the pipeline run the remaining steps after a
// failure, so a failed crawl is still recorded.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence and returns the first step error.
// Cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			if job.Err == nil {
				job.Err = err
			}
			return job.Err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"score_type", job.ScoreType.String(),
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"score_type", job.ScoreType.String(),
				"error", err,
			)
			if job.Err == nil {
				job.Err = err
			}
			if !p.continueOnError {
				job.PerformedSteps = append(job.PerformedSteps, step.Name())
				return job.Err
			}
		}

		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return job.Err
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
