// Package memory provides an in-memory Engine used by tests and by
// single-process deployments that do not need durability.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
)

// Engine keeps all entries in a map guarded by a RWMutex. Scans sort the
// matching keys on demand; the entity collections this backs are small
// enough that a sorted structure is not worth the complexity.
type Engine struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns an empty in-memory engine.
func New() *Engine {
	return &Engine{data: make(map[string][]byte)}
}

func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.data[string(key)]
	if !ok {
		return nil, kv.ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (e *Engine) Set(ctx context.Context, key, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	e.data[string(key)] = stored
	return nil
}

func (e *Engine) SetIfAbsent(ctx context.Context, key, value []byte) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.data[string(key)]; ok {
		return false, nil
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	e.data[string(key)] = stored
	return true, nil
}

func (e *Engine) Delete(ctx context.Context, key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.data, string(key))
	return nil
}

func (e *Engine) CompareAndDelete(ctx context.Context, key, expect []byte) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, ok := e.data[string(key)]
	if !ok || !bytes.Equal(cur, expect) {
		return false, nil
	}
	delete(e.data, string(key))
	return true, nil
}

func (e *Engine) Scan(ctx context.Context, prefix []byte, opts kv.ScanOptions) ([]kv.Pair, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]string, 0)
	for k := range e.data {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		if opts.After != nil && k <= string(opts.After) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if opts.Limit > 0 && len(keys) > opts.Limit {
		keys = keys[:opts.Limit]
	}

	pairs := make([]kv.Pair, 0, len(keys))
	for _, k := range keys {
		v := e.data[k]
		val := make([]byte, len(v))
		copy(val, v)
		pairs = append(pairs, kv.Pair{Key: []byte(k), Value: val})
	}
	return pairs, nil
}

func (e *Engine) Close() error { return nil }

// HealthPing implements health.HealthPinger.
func (e *Engine) HealthPing(ctx context.Context) error { return nil }

// Len reports the number of stored entries.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.data)
}
