package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
)

// intentPrefix partitions write-ahead intent records away from entity
// collections.
const intentPrefix = "_intents"

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// intentRecord lists the keys a multi-key operation is about to touch.
// It is written before the first data write and cleared after the last;
// one left behind marks an operation that crashed or partially failed.
type intentRecord struct {
	IntentID   string    `json:"intentId"`
	Op         string    `json:"op"`
	Collection string    `json:"collection"`
	DocID      string    `json:"docId"`
	Put        []kv.Key  `json:"put,omitempty"`
	Del        []kv.Key  `json:"del,omitempty"`
	At         time.Time `json:"at"`
}

func (rec intentRecord) key() kv.Key { return kv.Key{intentPrefix, rec.IntentID} }

func (s *Store[U, T]) writeIntent(ctx context.Context, op, docID string, put, del []kv.Key) (intentRecord, error) {
	rec := intentRecord{
		IntentID:   s.newID(),
		Op:         op,
		Collection: s.col.Name,
		DocID:      docID,
		Put:        put,
		Del:        del,
		At:         s.clock.Now(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return intentRecord{}, err
	}
	if err := s.eng.Set(ctx, rec.key().Encode(), b); err != nil {
		return intentRecord{}, err
	}
	return rec, nil
}

func (s *Store[U, T]) clearIntent(ctx context.Context, rec intentRecord) error {
	return s.eng.Delete(ctx, rec.key().Encode())
}

// Repair reconciles the listed index keys against the current primary
// record of docID. When the primary exists, every key the record's
// fields imply is (re)written and every listed key it does not imply is
// removed while it still points here; an interrupted delete is thereby
// rolled back to a fully consistent record. When the primary is gone,
// all listed keys pointing at docID are removed.
//
// Repair is what the Sweeper calls for abandoned intents; it is part of
// the Repairer contract.
func (s *Store[U, T]) Repair(ctx context.Context, docID string, keys []kv.Key) error {
	idb := []byte(docID)

	doc, err := s.GetByID(ctx, docID)
	if errors.Is(err, ErrNotFound) {
		for _, k := range keys {
			if _, err := s.eng.CompareAndDelete(ctx, k.Encode(), idb); err != nil {
				return err
			}
		}
		return nil
	}
	if err != nil {
		return err
	}

	desired := make(map[string]entry)
	for _, en := range s.col.entriesFor(doc) {
		desired[string(en.key.Encode())] = en
	}

	listed := make(map[string]bool, len(keys))
	for _, k := range keys {
		enc := k.Encode()
		listed[string(enc)] = true
		if _, ok := desired[string(enc)]; ok {
			continue // restored below with the rest of the desired set
		}
		if _, err := s.eng.CompareAndDelete(ctx, enc, idb); err != nil {
			return err
		}
	}

	for _, en := range desired {
		enc := en.key.Encode()
		if en.unique {
			// never clobber a claim another record may hold
			if _, err := s.eng.SetIfAbsent(ctx, enc, idb); err != nil {
				return err
			}
			continue
		}
		if err := s.eng.Set(ctx, enc, idb); err != nil {
			return err
		}
	}
	return nil
}

// Repairer restores index consistency for one collection; *Store
// implements it.
type Repairer interface {
	CollectionName() string
	Repair(ctx context.Context, docID string, keys []kv.Key) error
}

// Sweeper scans abandoned intent records and dispatches them to the
// repairer of their collection. Run it from an operational task (CLI or
// periodic job), not from request handling.
type Sweeper struct {
	eng       kv.Engine
	repairers map[string]Repairer
	minAge    time.Duration
	log       zerolog.Logger
}

// NewSweeper builds a sweeper. Intents younger than minAge are assumed
// to belong to operations still in flight and are left alone.
func NewSweeper(eng kv.Engine, log zerolog.Logger, minAge time.Duration, repairers ...Repairer) *Sweeper {
	byName := make(map[string]Repairer, len(repairers))
	for _, r := range repairers {
		byName[r.CollectionName()] = r
	}
	return &Sweeper{eng: eng, repairers: byName, minAge: minAge, log: log}
}

// Sweep processes every eligible intent once and reports how many were
// repaired and cleared.
func (w *Sweeper) Sweep(ctx context.Context) (int, error) {
	pairs, err := w.eng.Scan(ctx, kv.Key{intentPrefix}.Encode(), kv.ScanOptions{})
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, p := range pairs {
		var rec intentRecord
		if err := json.Unmarshal(p.Value, &rec); err != nil {
			w.log.Error().Err(err).Msg("unreadable intent record, removing")
			_ = w.eng.Delete(ctx, p.Key)
			continue
		}
		if time.Since(rec.At) < w.minAge {
			continue
		}
		r, ok := w.repairers[rec.Collection]
		if !ok {
			w.log.Warn().Str("collection", rec.Collection).Str("docId", rec.DocID).
				Msg("no repairer registered for intent")
			continue
		}
		keys := make([]kv.Key, 0, len(rec.Put)+len(rec.Del))
		keys = append(keys, rec.Put...)
		keys = append(keys, rec.Del...)
		if err := r.Repair(ctx, rec.DocID, keys); err != nil {
			w.log.Error().Err(err).Str("collection", rec.Collection).Str("docId", rec.DocID).
				Msg("intent repair failed")
			continue
		}
		if err := w.eng.Delete(ctx, p.Key); err != nil {
			w.log.Error().Err(err).Msg("failed to clear repaired intent")
			continue
		}
		w.log.Info().Str("collection", rec.Collection).Str("docId", rec.DocID).
			Str("op", rec.Op).Msg("repaired abandoned intent")
		swept++
	}
	return swept, nil
}
