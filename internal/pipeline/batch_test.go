package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/atlasharvest/internal/crawler"
	"github.com/nao1215/atlasharvest/internal/model"
)

// runnerFunc adapts a function to Runner.
type runnerFunc func(ctx context.Context, st model.ScoreType) (crawler.Result, error)

func (f runnerFunc) Run(ctx context.Context, st model.ScoreType) (crawler.Result, error) {
	return f(ctx, st)
}

// TestNewBatch tests the Batch constructor.
func TestNewBatch(t *testing.T) {
	t.Parallel()

	b := NewBatch(func() *Pipeline { return New() })
	if b.pause != DefaultPause {
		t.Errorf("expected default pause, got %s", b.pause)
	}
	if b.logger == nil {
		t.Error("expected default logger")
	}

	b = NewBatch(func() *Pipeline { return New() }, WithPause(-time.Second))
	if b.pause != DefaultPause {
		t.Errorf("negative pause must be ignored, got %s", b.pause)
	}
}

// TestBatchRun tests sequential harvesting across score types.
func TestBatchRun(t *testing.T) {
	t.Parallel()

	t.Run("continues after a failure", func(t *testing.T) {
		t.Parallel()

		crawlErr := errors.New("navigation failed")
		runner := &fakeRunner{fail: map[model.ScoreType]error{model.ScoreTypeEA: crawlErr}}
		rec := &memoryRecorder{}

		b := NewBatch(func() *Pipeline { return DefaultPipeline(runner, rec) }, WithPause(0))
		jobs, err := b.Run(context.Background(), model.AllScoreTypes())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if diff := cmp.Diff(model.AllScoreTypes(), runner.calls); diff != "" {
			t.Errorf("call order mismatch (-want +got):\n%s", diff)
		}
		if len(jobs) != 5 || len(rec.runs) != 5 {
			t.Errorf("expected 5 jobs and runs, got %d and %d", len(jobs), len(rec.runs))
		}

		failed := FailedJobs(jobs)
		if len(failed) != 1 || failed[0].ScoreType != model.ScoreTypeEA || !errors.Is(failed[0].Err, crawlErr) {
			t.Errorf("unexpected failures %+v", failed)
		}
	})

	t.Run("pauses between score types", func(t *testing.T) {
		t.Parallel()

		b := NewBatch(func() *Pipeline { return DefaultPipeline(&fakeRunner{}, nil) }, WithPause(20*time.Millisecond))

		start := time.Now()
		if _, err := b.Run(context.Background(), []model.ScoreType{model.ScoreTypeSAY, model.ScoreTypeEA, model.ScoreTypeDIL}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
			t.Errorf("expected two pauses, finished in %s", elapsed)
		}
	})

	t.Run("cancel during pause", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		runner := &fakeRunner{}
		b := NewBatch(func() *Pipeline {
			return DefaultPipeline(runnerFunc(func(ctx context.Context, st model.ScoreType) (crawler.Result, error) {
				defer cancel()
				return runner.Run(ctx, st)
			}), nil)
		}, WithPause(time.Minute))

		jobs, err := b.Run(ctx, model.AllScoreTypes())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(jobs) != 1 {
			t.Errorf("expected one job before cancellation, got %d", len(jobs))
		}
	})
}
