// Package kv defines the ordered key-value engine contract the document
// store is built on, together with the tuple encoding used for keys.
//
// An Engine stores opaque byte values under byte keys and supports point
// reads, upserts, idempotent deletes, an atomic set-if-absent, a guarded
// delete, and ordered prefix scans. Keys are produced by encoding a Key
// (a sequence of UTF-8 string segments) with a tuple codec that preserves
// segment-wise lexicographic order, so a scan over the encoding of a key
// prefix visits exactly the keys that extend it.
//
// Implementations live under internal/kv/<driver>/ (memory, sqlite,
// postgres) and are exercised by the shared suite in internal/kv/kvtest.
package kv
