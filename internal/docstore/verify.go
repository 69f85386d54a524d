package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
)

// Dangling is an index entry whose target primary record is missing.
type Dangling struct {
	Key   kv.Key
	DocID string
}

// Missing is an index entry a primary record implies but that is absent
// or bound to a different record.
type Missing struct {
	Key   kv.Key
	DocID string
}

// VerifyReport is the outcome of an index audit.
type VerifyReport struct {
	Collection string
	Index      string
	Scanned    int
	Dangling   []Dangling
	Missing    []Missing
	Repaired   int
}

// Clean reports whether the audit found no violations.
func (r VerifyReport) Clean() bool { return len(r.Dangling) == 0 && len(r.Missing) == 0 }

// VerifyIndex audits one index offline: it scans the index prefix and
// reports entries whose primary record no longer exists, then scans the
// primary records and reports implied entries that are absent. With
// repair set, dangling entries are deleted and missing ones restored.
func (s *Store[U, T]) VerifyIndex(ctx context.Context, indexName string, repair bool) (VerifyReport, error) {
	idx, ok := s.col.index(indexName)
	if !ok {
		return VerifyReport{}, fmt.Errorf("docstore: collection %s has no index %s", s.col.Name, indexName)
	}
	report := VerifyReport{Collection: s.col.Name, Index: indexName}

	// dangling locators (existence violations)
	pairs, err := s.eng.Scan(ctx, kv.Key{s.col.Name, indexName}.Encode(), kv.ScanOptions{})
	if err != nil {
		return report, err
	}
	for _, p := range pairs {
		report.Scanned++
		id := string(p.Value)
		if _, err := s.GetByID(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return report, err
		}
		key, derr := kv.DecodeKey(p.Key)
		if derr != nil {
			key = kv.Key{string(p.Key)}
		}
		report.Dangling = append(report.Dangling, Dangling{Key: key, DocID: id})
		if repair {
			if ok, err := s.eng.CompareAndDelete(ctx, p.Key, p.Value); err == nil && ok {
				report.Repaired++
			}
		}
	}

	// missing locators (completeness violations)
	err = s.scanPrimaries(ctx, func(doc T) error {
		id := doc.Env().ID
		for _, segs := range idx.Keys(doc) {
			key := kv.Key{s.col.Name, indexName}.Append(segs...)
			cur, err := s.eng.Get(ctx, key.Encode())
			if err == nil && string(cur) == id {
				continue
			}
			if err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
				return err
			}
			if err == nil && idx.Unique {
				// key bound to another record: a uniqueness conflict,
				// not repairable automatically
				report.Missing = append(report.Missing, Missing{Key: key, DocID: id})
				continue
			}
			report.Missing = append(report.Missing, Missing{Key: key, DocID: id})
			if repair {
				if err := s.eng.Set(ctx, key.Encode(), []byte(id)); err == nil {
					report.Repaired++
				}
			}
		}
		return nil
	})
	return report, err
}

// scanPrimaries walks every primary record of the collection. Index
// entries share the collection prefix; they are recognized by their
// second key segment being an index name and skipped.
func (s *Store[U, T]) scanPrimaries(ctx context.Context, fn func(T) error) error {
	pairs, err := s.eng.Scan(ctx, kv.Key{s.col.Name}.Encode(), kv.ScanOptions{})
	if err != nil {
		return err
	}
	for _, p := range pairs {
		key, err := kv.DecodeKey(p.Key)
		if err != nil || len(key) != 2 || s.col.hasIndex(key[1]) {
			continue
		}
		doc, err := s.GetByID(ctx, key[1])
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// VerifyAll audits every index of the collection.
func (s *Store[U, T]) VerifyAll(ctx context.Context, repair bool) ([]VerifyReport, error) {
	reports := make([]VerifyReport, 0, len(s.col.Indexes))
	for _, idx := range s.col.Indexes {
		r, err := s.VerifyIndex(ctx, idx.Name, repair)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}
