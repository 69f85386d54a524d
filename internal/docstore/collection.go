package docstore

import (
	"fmt"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
)

// Index declares one secondary mapping of a collection. Keys must be a
// deterministic function of the record and may return zero segments sets
// for records the index does not cover (e.g. unassigned tasks).
//
// For a unique index, each returned segment set binds to at most one
// record. For a non-unique index, the segment set must end with a
// distinguishing segment (normally the record id) so entries for
// different records never collide.
type Index[T Doc] struct {
	Name   string
	Unique bool
	Keys   func(T) [][]string
}

// Collection names a partition of the key space and declares its
// secondary indexes.
type Collection[T Doc] struct {
	Name    string
	Indexes []Index[T]
}

// Validate checks the definition is internally consistent. It runs once
// at store construction.
func (c Collection[T]) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("docstore: collection name is empty")
	}
	seen := make(map[string]bool, len(c.Indexes))
	for _, idx := range c.Indexes {
		if idx.Name == "" {
			return fmt.Errorf("docstore: collection %s: index name is empty", c.Name)
		}
		if idx.Keys == nil {
			return fmt.Errorf("docstore: collection %s: index %s has no key func", c.Name, idx.Name)
		}
		if seen[idx.Name] {
			return fmt.Errorf("docstore: collection %s: duplicate index %s", c.Name, idx.Name)
		}
		seen[idx.Name] = true
	}
	return nil
}

// index returns the named index definition.
func (c Collection[T]) index(name string) (Index[T], bool) {
	for _, idx := range c.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index[T]{}, false
}

// hasIndex reports whether name is one of the collection's index names.
// Primary and index entries share the collection prefix; this is how
// scans tell them apart.
func (c Collection[T]) hasIndex(name string) bool {
	_, ok := c.index(name)
	return ok
}

// primaryKey builds the key the full record is stored under.
func (c Collection[T]) primaryKey(id string) kv.Key {
	return kv.Key{c.Name, id}
}

// entriesFor computes every index entry the record's current field
// values imply.
func (c Collection[T]) entriesFor(doc T) []entry {
	var out []entry
	for _, idx := range c.Indexes {
		for _, segs := range idx.Keys(doc) {
			key := kv.Key{c.Name, idx.Name}.Append(segs...)
			out = append(out, entry{key: key, name: idx.Name, unique: idx.Unique})
		}
	}
	return out
}

// entry is a computed index entry.
type entry struct {
	key    kv.Key
	name   string
	unique bool
}
