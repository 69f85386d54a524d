// Package docstore implements an indexed document store over an ordered
// key-value engine.
//
// Every entity collection stores each record once under a primary key
// ({collection, id}) and maintains secondary index entries
// ({collection, indexName, segments...} -> id) that locate the record by
// a field other than its id. A secondary entry stores only the id, never
// a copy of the record.
//
// The engine offers no multi-key transactions, so a logical operation is
// a sequence of independent engine calls. Three measures keep primary
// entries and index entries consistent anyway:
//
//   - unique index keys are claimed with an atomic set-if-absent before
//     the record becomes visible, so concurrent writers racing on the
//     same unique value produce exactly one winner;
//   - writes are ordered to favor over-indexing: the primary entry and
//     new index entries are written before stale entries are removed. A
//     dangling entry is detectable and self-heals on the next lookup; a
//     record missing from an index is silently unreachable;
//   - every multi-key operation records a write-ahead intent listing the
//     keys it is about to touch. A crash mid-operation leaves the intent
//     behind, and the Sweeper later completes or rolls back the
//     operation from the current state of the primary entry.
package docstore
