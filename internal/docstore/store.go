package docstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
)

// docPtr constrains T to a pointer to a struct embedding Envelope.
type docPtr[U any] interface {
	*U
	Doc
}

// Store executes the generic operations of one collection against an
// engine. Instantiate once per entity type.
type Store[U any, T docPtr[U]] struct {
	eng   kv.Engine
	col   Collection[T]
	clock *Clock
	newID func() string
	log   zerolog.Logger
}

// New builds a store for the collection. The engine handle is injected
// explicitly; there is no process-wide active engine.
func New[U any, T docPtr[U]](eng kv.Engine, col Collection[T], log zerolog.Logger) (*Store[U, T], error) {
	if err := col.Validate(); err != nil {
		return nil, err
	}
	return &Store[U, T]{
		eng:   eng,
		col:   col,
		clock: &Clock{},
		newID: NewID,
		log:   log.With().Str("collection", col.Name).Logger(),
	}, nil
}

// CollectionName returns the name of the collection this store serves.
func (s *Store[U, T]) CollectionName() string { return s.col.Name }

// Create assigns identity and timestamps to doc, writes the primary
// entry, then claims its unique index keys and writes the remaining
// index entries. The primary must land before any index entry exists:
// an entry written first would let a concurrent reader resolve it, find
// no record, and heal away the in-flight claim. A Create losing a race
// on a unique value rolls its primary back and returns ErrDuplicate.
func (s *Store[U, T]) Create(ctx context.Context, doc T) (T, error) {
	var zero T

	env := doc.Env()
	if env.ID == "" {
		env.ID = s.newID()
	}
	now := s.clock.Now()
	env.CreatedAt, env.UpdatedAt = now, now

	entries := s.col.entriesFor(doc)
	b, err := json.Marshal(doc)
	if err != nil {
		return zero, err
	}
	intent, err := s.writeIntent(ctx, opCreate, env.ID, keysOf(entries), nil)
	if err != nil {
		return zero, err
	}

	if err := s.eng.Set(ctx, s.col.primaryKey(env.ID).Encode(), b); err != nil {
		_ = s.clearIntent(ctx, intent)
		return zero, err
	}

	claimed, err := s.claimUnique(ctx, entries, env.ID)
	if err != nil {
		s.releaseClaims(ctx, claimed, env.ID)
		_ = s.eng.Delete(ctx, s.col.primaryKey(env.ID).Encode())
		_ = s.clearIntent(ctx, intent)
		return zero, err
	}

	var errs []error
	for _, en := range entries {
		if en.unique {
			continue
		}
		if err := s.eng.Set(ctx, en.key.Encode(), []byte(env.ID)); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", en.key, err))
		}
	}
	if len(errs) > 0 {
		// record is stored but some locators are missing; keep the
		// intent so the sweeper can finish the indexing
		perr := &PartialError{Op: "create", Collection: s.col.Name, DocID: env.ID, Errs: errs}
		s.log.Error().Err(perr).Str("id", env.ID).Msg("create left index entries missing")
		return zero, perr
	}

	_ = s.clearIntent(ctx, intent)
	return doc, nil
}

// GetByID is a point lookup under the primary prefix.
func (s *Store[U, T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	b, err := s.eng.Get(ctx, s.col.primaryKey(id).Encode())
	if errors.Is(err, kv.ErrKeyNotFound) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	var u U
	doc := T(&u)
	if err := json.Unmarshal(b, doc); err != nil {
		return zero, fmt.Errorf("docstore: decode %s/%s: %w", s.col.Name, id, err)
	}
	return doc, nil
}

// GetByIndex resolves a fully-specified secondary key to an id and loads
// the record. A dangling entry (record already gone) is removed and
// reported as ErrNotFound rather than surfacing as corruption.
func (s *Store[U, T]) GetByIndex(ctx context.Context, indexName string, segments ...string) (T, error) {
	var zero T
	if !s.col.hasIndex(indexName) {
		return zero, fmt.Errorf("docstore: collection %s has no index %s", s.col.Name, indexName)
	}
	key := kv.Key{s.col.Name, indexName}.Append(segments...)
	idb, err := s.eng.Get(ctx, key.Encode())
	if errors.Is(err, kv.ErrKeyNotFound) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}

	doc, err := s.GetByID(ctx, string(idb))
	if errors.Is(err, ErrNotFound) {
		if ok, derr := s.eng.CompareAndDelete(ctx, key.Encode(), idb); derr == nil && ok {
			s.log.Warn().Str("key", key.String()).Str("id", string(idb)).
				Msg("removed dangling index entry")
		}
		return zero, ErrNotFound
	}
	return doc, err
}

// ListOptions bound a List call. Cursor is the opaque value returned by
// the previous page; Limit zero means no cap.
type ListOptions struct {
	Limit  int
	Cursor string
}

// List scans an index by key prefix, in the index's natural key order,
// resolving each locator to its record. It never materializes the whole
// collection: the engine scan is bounded by Limit and restartable via
// the returned cursor. Dangling entries encountered on the way are
// removed and skipped.
func (s *Store[U, T]) List(ctx context.Context, indexName string, partial []string, opts ListOptions) ([]T, string, error) {
	if !s.col.hasIndex(indexName) {
		return nil, "", fmt.Errorf("docstore: collection %s has no index %s", s.col.Name, indexName)
	}
	prefix := kv.Key{s.col.Name, indexName}.Append(partial...).Encode()

	var after []byte
	if opts.Cursor != "" {
		var err error
		after, err = base64.RawURLEncoding.DecodeString(opts.Cursor)
		if err != nil {
			return nil, "", fmt.Errorf("docstore: malformed cursor: %w", err)
		}
	}

	pairs, err := s.eng.Scan(ctx, prefix, kv.ScanOptions{After: after, Limit: opts.Limit})
	if err != nil {
		return nil, "", err
	}

	docs := make([]T, 0, len(pairs))
	for _, p := range pairs {
		doc, err := s.GetByID(ctx, string(p.Value))
		if errors.Is(err, ErrNotFound) {
			if ok, derr := s.eng.CompareAndDelete(ctx, p.Key, p.Value); derr == nil && ok {
				s.log.Warn().Str("id", string(p.Value)).Msg("removed dangling index entry during scan")
			}
			continue
		}
		if err != nil {
			return nil, "", err
		}
		docs = append(docs, doc)
	}

	next := ""
	if opts.Limit > 0 && len(pairs) == opts.Limit {
		next = base64.RawURLEncoding.EncodeToString(pairs[len(pairs)-1].Key)
	}
	return docs, next, nil
}

// Update loads the record, applies mutate, bumps updatedAt and
// re-indexes. New index entries are written before stale ones are
// removed, so a crash mid-operation over-indexes (detectable and
// self-healing) instead of making the record unreachable.
func (s *Store[U, T]) Update(ctx context.Context, id string, mutate func(T) error) (T, error) {
	var zero T

	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	oldEntries := s.col.entriesFor(doc)
	prev := *doc.Env()

	if err := mutate(doc); err != nil {
		return zero, err
	}
	env := doc.Env()
	// id and createdAt are immutable regardless of what mutate did
	env.ID, env.CreatedAt = prev.ID, prev.CreatedAt
	env.UpdatedAt = s.clock.Now()
	if !env.UpdatedAt.After(prev.UpdatedAt) {
		env.UpdatedAt = prev.UpdatedAt.Add(time.Microsecond)
	}

	newEntries := s.col.entriesFor(doc)
	toAdd, toDrop := diffEntries(oldEntries, newEntries)

	intent, err := s.writeIntent(ctx, opUpdate, id, keysOf(newEntries), keysOf(toDrop))
	if err != nil {
		return zero, err
	}

	claimed, err := s.claimUnique(ctx, toAdd, id)
	if err != nil {
		s.releaseClaims(ctx, claimed, id)
		_ = s.clearIntent(ctx, intent)
		return zero, err
	}

	b, err := json.Marshal(doc)
	if err != nil {
		s.releaseClaims(ctx, claimed, id)
		_ = s.clearIntent(ctx, intent)
		return zero, err
	}
	if err := s.eng.Set(ctx, s.col.primaryKey(id).Encode(), b); err != nil {
		s.releaseClaims(ctx, claimed, id)
		_ = s.clearIntent(ctx, intent)
		return zero, err
	}

	var errs []error
	for _, en := range toAdd {
		if en.unique {
			continue
		}
		if err := s.eng.Set(ctx, en.key.Encode(), []byte(id)); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", en.key, err))
		}
	}
	for _, en := range toDrop {
		// guarded delete: only remove the entry while it still points
		// at this record
		if _, err := s.eng.CompareAndDelete(ctx, en.key.Encode(), []byte(id)); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", en.key, err))
		}
	}
	if len(errs) > 0 {
		perr := &PartialError{Op: "update", Collection: s.col.Name, DocID: id, Errs: errs}
		s.log.Error().Err(perr).Str("id", id).Msg("update left stale index entries")
		return zero, perr
	}

	_ = s.clearIntent(ctx, intent)
	return doc, nil
}

// Delete removes every index entry the record satisfies and then the
// primary entry. Partial index cleanup still attempts the primary
// deletion and surfaces a PartialError; the intent stays behind so the
// sweeper retries the cleanup. Deleting an absent id is ErrNotFound.
func (s *Store[U, T]) Delete(ctx context.Context, id string) error {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	entries := s.col.entriesFor(doc)

	intent, err := s.writeIntent(ctx, opDelete, id, nil, keysOf(entries))
	if err != nil {
		return err
	}

	var errs []error
	for _, en := range entries {
		if _, err := s.eng.CompareAndDelete(ctx, en.key.Encode(), []byte(id)); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", en.key, err))
		}
	}
	if err := s.eng.Delete(ctx, s.col.primaryKey(id).Encode()); err != nil {
		errs = append(errs, fmt.Errorf("primary: %w", err))
	}
	if len(errs) > 0 {
		perr := &PartialError{Op: "delete", Collection: s.col.Name, DocID: id, Errs: errs}
		s.log.Error().Err(perr).Str("id", id).Msg("delete left entries behind")
		return perr
	}

	_ = s.clearIntent(ctx, intent)
	return nil
}

// claimUnique takes the unique index keys among entries via atomic
// set-if-absent. On a conflict it reports ErrDuplicate naming the index;
// the caller releases whatever was already claimed.
func (s *Store[U, T]) claimUnique(ctx context.Context, entries []entry, id string) ([]entry, error) {
	var claimed []entry
	for _, en := range entries {
		if !en.unique {
			continue
		}
		ok, err := s.eng.SetIfAbsent(ctx, en.key.Encode(), []byte(id))
		if err != nil {
			return claimed, err
		}
		if !ok {
			cur, gerr := s.eng.Get(ctx, en.key.Encode())
			if gerr == nil && string(cur) == id {
				continue // already bound to this record
			}
			return claimed, fmt.Errorf("%w: %s (%s)", ErrDuplicate, en.name, en.key)
		}
		claimed = append(claimed, en)
	}
	return claimed, nil
}

func (s *Store[U, T]) releaseClaims(ctx context.Context, claimed []entry, id string) {
	for _, en := range claimed {
		if _, err := s.eng.CompareAndDelete(ctx, en.key.Encode(), []byte(id)); err != nil {
			s.log.Error().Err(err).Str("key", en.key.String()).Msg("failed to release unique claim")
		}
	}
}

func keysOf(entries []entry) []kv.Key {
	keys := make([]kv.Key, 0, len(entries))
	for _, en := range entries {
		keys = append(keys, en.key)
	}
	return keys
}

// diffEntries splits new entries into those to add and old entries into
// those to drop, matching by encoded key.
func diffEntries(prev, next []entry) (toAdd, toDrop []entry) {
	prevSet := make(map[string]bool, len(prev))
	for _, en := range prev {
		prevSet[string(en.key.Encode())] = true
	}
	nextSet := make(map[string]bool, len(next))
	for _, en := range next {
		nextSet[string(en.key.Encode())] = true
	}
	for _, en := range next {
		if !prevSet[string(en.key.Encode())] {
			toAdd = append(toAdd, en)
		}
	}
	for _, en := range prev {
		if !nextSet[string(en.key.Encode())] {
			toDrop = append(toDrop, en)
		}
	}
	return toAdd, toDrop
}
