// Package kvtest holds a compliance suite run against every kv.Engine
// implementation.
package kvtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
)

// Run exercises the engine contract. Implementations should provide a
// clean, isolated engine and return it from makeEngine.
func Run(t *testing.T, makeEngine func(t *testing.T) kv.Engine) {
	t.Helper()

	e := makeEngine(t)
	ctx := context.Background()

	k := kv.Key{"suite", "a"}.Encode()

	// Get on an absent key
	if _, err := e.Get(ctx, k); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("Get absent: want ErrKeyNotFound, got %v", err)
	}

	// Set then Get
	if err := e.Set(ctx, k, []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := e.Get(ctx, k); err != nil || !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("Get: got=%q err=%v", got, err)
	}

	// Set is an upsert
	if err := e.Set(ctx, k, []byte("v2")); err != nil {
		t.Fatalf("Set upsert: %v", err)
	}
	if got, _ := e.Get(ctx, k); !bytes.Equal(got, []byte("v2")) {
		t.Fatalf("Get after upsert: got=%q", got)
	}

	// SetIfAbsent loses against an existing entry and wins on a fresh one
	if ok, err := e.SetIfAbsent(ctx, k, []byte("v3")); err != nil || ok {
		t.Fatalf("SetIfAbsent existing: ok=%v err=%v", ok, err)
	}
	k2 := kv.Key{"suite", "b"}.Encode()
	if ok, err := e.SetIfAbsent(ctx, k2, []byte("w1")); err != nil || !ok {
		t.Fatalf("SetIfAbsent fresh: ok=%v err=%v", ok, err)
	}

	// CompareAndDelete only fires on a matching value
	if ok, err := e.CompareAndDelete(ctx, k2, []byte("other")); err != nil || ok {
		t.Fatalf("CompareAndDelete mismatch: ok=%v err=%v", ok, err)
	}
	if ok, err := e.CompareAndDelete(ctx, k2, []byte("w1")); err != nil || !ok {
		t.Fatalf("CompareAndDelete match: ok=%v err=%v", ok, err)
	}
	if _, err := e.Get(ctx, k2); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("Get after CompareAndDelete: want ErrKeyNotFound, got %v", err)
	}

	// Delete is idempotent
	if err := e.Delete(ctx, k); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := e.Delete(ctx, k); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}

	// Ordered scan with prefix isolation
	for i := 0; i < 5; i++ {
		key := kv.Key{"scan", "inside", fmt.Sprintf("%02d", i)}.Encode()
		if err := e.Set(ctx, key, []byte{byte(i)}); err != nil {
			t.Fatalf("Set scan seed: %v", err)
		}
	}
	if err := e.Set(ctx, kv.Key{"scan", "insider"}.Encode(), []byte("x")); err != nil {
		t.Fatalf("Set sibling: %v", err)
	}

	prefix := kv.Key{"scan", "inside"}.Encode()
	pairs, err := e.Scan(ctx, prefix, kv.ScanOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// "insider" shares leading bytes with "inside" as a string but is a
	// different segment; the tuple encoding must keep it out.
	if len(pairs) != 5 {
		t.Fatalf("Scan: want 5 pairs, got %d", len(pairs))
	}
	for i := 1; i < len(pairs); i++ {
		if bytes.Compare(pairs[i-1].Key, pairs[i].Key) >= 0 {
			t.Fatalf("Scan: keys out of order at %d", i)
		}
	}

	// Limit and resume via After
	page, err := e.Scan(ctx, prefix, kv.ScanOptions{Limit: 2})
	if err != nil || len(page) != 2 {
		t.Fatalf("Scan limit: n=%d err=%v", len(page), err)
	}
	rest, err := e.Scan(ctx, prefix, kv.ScanOptions{After: page[1].Key})
	if err != nil || len(rest) != 3 {
		t.Fatalf("Scan after: n=%d err=%v", len(rest), err)
	}
	if !bytes.Equal(append(page, rest...)[0].Key, pairs[0].Key) {
		t.Fatalf("Scan pagination: pages do not line up")
	}

	// Empty-prefix scan sees everything
	all, err := e.Scan(ctx, nil, kv.ScanOptions{})
	if err != nil || len(all) < 6 {
		t.Fatalf("Scan all: n=%d err=%v", len(all), err)
	}
}
