// Package normalize rebuilds the canonical dataset from persisted
// partitions.
//
// It runs after crawling and never touches a live document. Two fields are
// repaired on every record:
//
//   - quota_status: a trailing "#" is dropped, and an empty status is
//     inferred from the rank and quota slots (see QuotaStatus).
//   - attributes: tokens that swallowed a qualifier boundary, such as
//     "İngilizce)KKTC Uyruklu (4 Yıllık", are split back apart
//     (see SplitAttributes).
//
// Partitions are read concurrently but the dataset keeps input order.
package normalize
