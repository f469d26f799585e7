package crawler

import "github.com/nao1215/atlasharvest/internal/model"

// Deduplicator is the set of program codes already collected in a run.
// It is not safe for concurrent use; a run owns exactly one.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator returns a Deduplicator seeded with the codes of records.
func NewDeduplicator(records []model.Record) *Deduplicator {
	d := &Deduplicator{seen: make(map[string]struct{}, len(records))}
	for _, r := range records {
		d.Record(r.Code)
	}
	return d
}

// Seen reports whether code was recorded.
func (d *Deduplicator) Seen(code string) bool {
	_, ok := d.seen[code]
	return ok
}

// Record marks code as seen.
func (d *Deduplicator) Record(code string) {
	d.seen[code] = struct{}{}
}

// Len returns the number of distinct codes recorded.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}
