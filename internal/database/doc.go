// Package database keeps the run history of atlasharvest in SQLite.
//
// Two things are stored:
//   - one row per crawl run (score type, timing, final state, counts);
//   - a sha3-256 fingerprint per canonical record, updated after every
//     normalize, so records that silently changed upstream show up as
//     "changed" in the sync statistics.
//
// The database is a single file (modernc.org/sqlite, no cgo) opened with a
// single connection.
package database
