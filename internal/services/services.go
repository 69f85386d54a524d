// Package services layers application rules on top of the store: cascade
// policies for deletes, session expiry, and owner bookkeeping. The store
// keeps single-record writes atomic; cross-record sweeps live here and rely
// on the intent sweeper to mop up after crashes mid-cascade.
package services

import (
	"context"

	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

// Records removed per page while draining an index during a cascade.
const sweepBatch = 200

// drain repeatedly fetches the first page of an index listing and applies fn
// to each record until the listing is empty. fn must remove the record from
// the index (delete it or clear the indexed field), otherwise drain loops.
func drain[T any](ctx context.Context, list func(context.Context, store.ListOptions) ([]T, string, error), fn func(T) error) error {
	for {
		page, _, err := list(ctx, store.ListOptions{Limit: sweepBatch})
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		for _, item := range page {
			if err := fn(item); err != nil {
				return err
			}
		}
	}
}
