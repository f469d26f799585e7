// Package model defines the core data structures used throughout atlasharvest.
//
// This package contains the following main types:
//   - Record: One program row of the admission listing in canonical shape
//   - ScoreType: The partition key selecting which listing a record came from
//   - Variant: The column layout descriptor shared by a group of score types
//   - Summary: Descriptive counts over a set of records
//
// Models live in their own package because the extractor, crawler, store,
// normalizer and report writers all exchange them.
//
// Records are serialized to JSON with a stable field order so that persisted
// partitions stay human-diffable between runs.
package model
