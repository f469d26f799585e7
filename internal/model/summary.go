package model

import (
	"cmp"
	"slices"
)

// Count is a label with the number of records carrying it.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary holds descriptive counts over a record set.
// It is computed after the fact and never feeds back into extraction.
type Summary struct {
	// TotalRecords is the number of records summarized.
	TotalRecords int `json:"total_records"`

	// ScoreTypes counts records per score type, most frequent first.
	ScoreTypes []Count `json:"score_types"`

	// QuotaStatuses counts records per quota status, sorted by label.
	QuotaStatuses []Count `json:"quota_statuses"`

	// Attributes is the sorted set of distinct attribute tokens.
	Attributes []string `json:"attributes"`
}

// NewSummary computes a Summary over records.
func NewSummary(records []Record) *Summary {
	scoreTypes := make(map[string]int)
	statuses := make(map[string]int)
	attributes := make(map[string]struct{})

	for _, r := range records {
		scoreTypes[string(r.ScoreType)]++
		statuses[r.QuotaStatus]++
		for _, a := range r.Attributes {
			attributes[a] = struct{}{}
		}
	}

	s := &Summary{
		TotalRecords:  len(records),
		ScoreTypes:    toCounts(scoreTypes),
		QuotaStatuses: toCounts(statuses),
		Attributes:    make([]string, 0, len(attributes)),
	}

	slices.SortFunc(s.ScoreTypes, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	slices.SortFunc(s.QuotaStatuses, func(a, b Count) int {
		return cmp.Compare(a.Label, b.Label)
	})

	for a := range attributes {
		s.Attributes = append(s.Attributes, a)
	}
	slices.Sort(s.Attributes)

	return s
}

func toCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for label, n := range m {
		counts = append(counts, Count{Label: label, Count: n})
	}
	return counts
}
