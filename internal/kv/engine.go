package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no entry exists for the key.
var ErrKeyNotFound = errors.New("kv: key not found")

// ErrUnavailable wraps engine faults that are infrastructure problems
// rather than data conditions; callers may retry with backoff.
var ErrUnavailable = errors.New("kv: engine unavailable")

// Pair is one entry returned by a scan.
type Pair struct {
	Key   []byte
	Value []byte
}

// ScanOptions bound an ordered prefix scan.
type ScanOptions struct {
	// After, when non-nil, resumes the scan strictly after the given
	// encoded key. Callers use the last key of the previous page.
	After []byte
	// Limit caps the number of pairs returned; zero means no cap.
	Limit int
}

// Engine is the ordered key-value store the document layer builds on.
// Implementations must be safe for concurrent use.
type Engine interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set upserts the value under key.
	Set(ctx context.Context, key, value []byte) error

	// SetIfAbsent writes value under key only when no entry exists.
	// It reports whether the write happened. The check and the write
	// are atomic with respect to other engine calls.
	SetIfAbsent(ctx context.Context, key, value []byte) (bool, error)

	// Delete removes the entry under key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key []byte) error

	// CompareAndDelete removes the entry under key only when its
	// current value equals expect, and reports whether it did.
	CompareAndDelete(ctx context.Context, key, expect []byte) (bool, error)

	// Scan returns entries whose key starts with prefix, in ascending
	// byte order of the key, honoring opts.
	Scan(ctx context.Context, prefix []byte, opts ScanOptions) ([]Pair, error)

	// Close releases engine resources.
	Close() error
}
