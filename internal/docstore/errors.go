package docstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports an absent primary record for the given id or
	// resolved index key.
	ErrNotFound = errors.New("docstore: not found")

	// ErrDuplicate reports that a unique index key is already bound to a
	// different record.
	ErrDuplicate = errors.New("docstore: duplicate value for unique index")
)

// PartialError reports an operation whose engine calls partly succeeded,
// leaving index entries behind. The write-ahead intent for the operation
// is kept so the sweeper can finish the cleanup.
type PartialError struct {
	Op         string
	Collection string
	DocID      string
	Errs       []error
}

func (e *PartialError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("docstore: partial %s on %s/%s: %s",
		e.Op, e.Collection, e.DocID, strings.Join(msgs, "; "))
}

func (e *PartialError) Unwrap() []error { return e.Errs }
