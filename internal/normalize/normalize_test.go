package normalize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/atlasharvest/internal/model"
	"github.com/nao1215/atlasharvest/internal/store"
)

func writePartition(t *testing.T, dir string, st model.ScoreType, codes ...string) string {
	t.Helper()

	records := make([]model.Record, 0, len(codes))
	for _, c := range codes {
		r := model.NewRecord(c, st)
		r.QuotaStatus = "Doldu#"
		records = append(records, r)
	}
	path := store.PathFor(dir, st)
	if err := store.WriteFile(path, records); err != nil {
		t.Fatalf("failed to write partition: %v", err)
	}
	return path
}

func codes(records []model.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Code)
	}
	return out
}

// TestNormalize tests merging partitions in input order.
func TestNormalize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tyt := writePartition(t, dir, model.ScoreTypeTYT, "100000001", "100000002")
	say := writePartition(t, dir, model.ScoreTypeSAY, "200000001")
	ea := writePartition(t, dir, model.ScoreTypeEA, "300000001", "300000002", "300000003")

	ds, err := Normalize(context.Background(), []string{tyt, say, ea}, WithConcurrency(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"100000001", "100000002", "200000001", "300000001", "300000002", "300000003"}
	if diff := cmp.Diff(want, codes(ds.Records)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	for _, r := range ds.Records {
		if r.QuotaStatus != model.QuotaFilled {
			t.Errorf("%s: quota status not normalized: %q", r.Code, r.QuotaStatus)
		}
	}
	if len(ds.Sources) != 3 || ds.Sources[2].Records != 3 || len(ds.Failed()) != 0 {
		t.Errorf("unexpected sources %+v", ds.Sources)
	}
}

// TestNormalizePartialFailure tests that unreadable partitions are skipped.
func TestNormalizePartialFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	say := writePartition(t, dir, model.ScoreTypeSAY, "200000001")
	corrupt := filepath.Join(dir, "universities_data_ea.json")
	if err := os.WriteFile(corrupt, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "universities_data_dil.json")

	ds, err := Normalize(context.Background(), []string{corrupt, say, missing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"200000001"}, codes(ds.Records)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	failed := ds.Failed()
	if len(failed) != 2 {
		t.Fatalf("expected 2 failed sources, got %+v", failed)
	}
	if failed[0].Path != corrupt || !errors.Is(failed[0].Err, store.ErrCorrupt) {
		t.Errorf("unexpected first failure %+v", failed[0])
	}
	if failed[1].Path != missing || !errors.Is(failed[1].Err, os.ErrNotExist) {
		t.Errorf("unexpected second failure %+v", failed[1])
	}
}

// TestNormalizeNoInput tests the all-failed and empty cases.
func TestNormalizeNoInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Normalize(context.Background(), []string{filepath.Join(dir, "none.json")}); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
	if _, err := Normalize(context.Background(), nil); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput for no paths, got %v", err)
	}
}

// TestNormalizeCanceled tests context cancellation.
func TestNormalizeCanceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writePartition(t, dir, model.ScoreTypeSAY, "200000001")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Normalize(ctx, []string{path}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestFindPartitions tests partition discovery.
func TestFindPartitions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePartition(t, dir, model.ScoreTypeTYT, "100000001")
	writePartition(t, dir, model.ScoreTypeEA, "300000001")
	if err := os.WriteFile(filepath.Join(dir, "data.json"), []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := FindPartitions(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{store.PathFor(dir, model.ScoreTypeEA), store.PathFor(dir, model.ScoreTypeTYT)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("partitions mismatch (-want +got):\n%s", diff)
	}
}
