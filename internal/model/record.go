package model

import (
	"encoding/json"
	"slices"
)

// Quota status values of a normalized record.
const (
	// QuotaFilled means every seat of the program was taken.
	QuotaFilled = "Doldu"
	// QuotaNotFilled means some seats stayed empty.
	QuotaNotFilled = "Dolmadı"
)

// MinCodeLength is the shortest string accepted as a program code.
const MinCodeLength = 8

// Record is the canonical representation of one program listing.
//
// Field order is the serialization order. List fields are never nil after
// construction through NewRecord or JSON decoding, so they always encode as
// arrays.
type Record struct {
	// Code is the numeric program code. Unique within a score type.
	Code string `json:"code"`

	// UniversityName is the name of the university offering the program.
	UniversityName string `json:"university_name"`

	// ProgramName is the name of the program.
	ProgramName string `json:"program_name"`

	// Attributes are short qualifiers in source order
	// (language of instruction, scholarship class, duration).
	Attributes []string `json:"attributes"`

	City            string `json:"city"`
	UniversityType  string `json:"university_type"`
	ScholarshipType string `json:"scholarship_type"`
	EducationType   string `json:"education_type"`

	// TotalQuota holds one slot per admission category of the variant.
	TotalQuota []string `json:"total_quota"`

	// QuotaStatus is Doldu, Dolmadı, empty, or a raw passthrough value.
	QuotaStatus string `json:"quota_status"`

	FilledQuota []string `json:"filled_quota"`
	MaxRank     []string `json:"max_rank"`
	MinScore    []string `json:"min_score"`

	// ScoreType is the partition the record was extracted from.
	ScoreType ScoreType `json:"score_type"`
}

// NewRecord returns an empty record of the given score type with every
// list field present.
func NewRecord(code string, scoreType ScoreType) Record {
	r := Record{Code: code, ScoreType: scoreType}
	r.ensureLists()
	return r
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	c := r
	c.Attributes = slices.Clone(r.Attributes)
	c.TotalQuota = slices.Clone(r.TotalQuota)
	c.FilledQuota = slices.Clone(r.FilledQuota)
	c.MaxRank = slices.Clone(r.MaxRank)
	c.MinScore = slices.Clone(r.MinScore)
	c.ensureLists()
	return c
}

// ensureLists replaces nil list fields with empty slices.
func (r *Record) ensureLists() {
	if r.Attributes == nil {
		r.Attributes = []string{}
	}
	if r.TotalQuota == nil {
		r.TotalQuota = []string{}
	}
	if r.FilledQuota == nil {
		r.FilledQuota = []string{}
	}
	if r.MaxRank == nil {
		r.MaxRank = []string{}
	}
	if r.MinScore == nil {
		r.MinScore = []string{}
	}
}

// recordAlias has Record's fields without its methods.
type recordAlias Record

// UnmarshalJSON decodes a record and accepts partitions written before the
// program name key was renamed from "name".
func (r *Record) UnmarshalJSON(data []byte) error {
	var aux struct {
		recordAlias
		LegacyName *string `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = Record(aux.recordAlias)
	if r.ProgramName == "" && aux.LegacyName != nil {
		r.ProgramName = *aux.LegacyName
	}
	r.ensureLists()
	return nil
}
