package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nao1215/atlasharvest/internal/crawler"
	"github.com/nao1215/atlasharvest/internal/database"
	"github.com/nao1215/atlasharvest/internal/model"
)

// fakeRunner returns a canned result per score type.
type fakeRunner struct {
	calls []model.ScoreType
	fail  map[model.ScoreType]error
}

func (r *fakeRunner) Run(_ context.Context, st model.ScoreType) (crawler.Result, error) {
	r.calls = append(r.calls, st)
	now := time.Now()
	res := crawler.Result{
		ScoreType:    st,
		NewRecords:   10,
		TotalRecords: 10,
		Pages:        1,
		State:        crawler.StateDone,
		StartedAt:    now,
		FinishedAt:   now,
	}
	if err := r.fail[st]; err != nil {
		res.State = crawler.StateFailed
		res.NewRecords = 0
		return res, err
	}
	return res, nil
}

// memoryRecorder collects inserted runs.
type memoryRecorder struct {
	runs []*database.Run
	err  error
}

func (m *memoryRecorder) InsertRun(_ context.Context, run *database.Run) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.runs = append(m.runs, run)
	return int64(len(m.runs)), nil
}

// TestDefaultPipeline tests the crawl and record steps together.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("records successful crawl", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		rec := &memoryRecorder{}
		job := &Job{ScoreType: model.ScoreTypeEA}

		if err := DefaultPipeline(runner, rec).Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.RunID != 1 || len(rec.runs) != 1 {
			t.Fatalf("expected one recorded run, got id %d and %d runs", job.RunID, len(rec.runs))
		}
		run := rec.runs[0]
		if run.ScoreType != "ea" || run.State != "done" || run.NewRecords != 10 || run.Error != "" {
			t.Errorf("unexpected run %+v", run)
		}
	})

	t.Run("records failed crawl", func(t *testing.T) {
		t.Parallel()

		crawlErr := &crawler.ProviderTimeoutError{Waiting: "listing table", Timeout: time.Second, Err: errors.New("timeout")}
		runner := &fakeRunner{fail: map[model.ScoreType]error{model.ScoreTypeTYT: crawlErr}}
		rec := &memoryRecorder{}
		job := &Job{ScoreType: model.ScoreTypeTYT}

		err := DefaultPipeline(runner, rec).Execute(context.Background(), job)
		var perr *crawler.ProviderTimeoutError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ProviderTimeoutError, got %v", err)
		}
		if len(rec.runs) != 1 {
			t.Fatalf("failed crawl was not recorded")
		}
		if rec.runs[0].State != "failed" || rec.runs[0].Error == "" {
			t.Errorf("unexpected run %+v", rec.runs[0])
		}
	})

	t.Run("without recorder", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(&fakeRunner{}, nil)
		if p.StepCount() != 1 {
			t.Errorf("expected only the crawl step, got %v", p.StepNames())
		}
	})

	t.Run("recorder failure", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("database is locked")
		job := &Job{ScoreType: model.ScoreTypeSAY}
		err := DefaultPipeline(&fakeRunner{}, &memoryRecorder{err: dbErr}).Execute(context.Background(), job)
		if !errors.Is(err, dbErr) {
			t.Errorf("expected recorder error, got %v", err)
		}
	})
}
