package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv/memory"
)

// faultyEngine fails CompareAndDelete for keys containing a marker,
// simulating an engine fault in the middle of a multi-key operation.
type faultyEngine struct {
	*memory.Engine
	failOn []byte
}

func (f *faultyEngine) CompareAndDelete(ctx context.Context, key, expect []byte) (bool, error) {
	if f.failOn != nil && bytes.Contains(key, f.failOn) {
		return false, assert.AnError
	}
	return f.Engine.CompareAndDelete(ctx, key, expect)
}

func seedIntent(t *testing.T, eng kv.Engine, rec intentRecord) {
	t.Helper()
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, eng.Set(context.Background(), rec.key().Encode(), b))
}

func TestSweeperCompletesCrashedCreate(t *testing.T) {
	s, eng := newAccountStore(t)
	ctx := context.Background()

	// simulate a create that crashed after the primary write: primary
	// present, no index entries, intent left behind
	a := &account{Email: "crash@x.com", Team: "core"}
	a.ID = NewID()
	a.CreatedAt = time.Now().UTC().Add(-time.Hour)
	a.UpdatedAt = a.CreatedAt
	b, err := json.Marshal(a)
	require.NoError(t, err)
	require.NoError(t, eng.Set(ctx, kv.Key{"accounts", a.ID}.Encode(), b))

	seedIntent(t, eng, intentRecord{
		IntentID:   NewID(),
		Op:         opCreate,
		Collection: "accounts",
		DocID:      a.ID,
		Put: []kv.Key{
			{"accounts", "by_email", "crash@x.com"},
			{"accounts", "by_team", "core", a.ID},
		},
		At: time.Now().UTC().Add(-time.Hour),
	})

	// unreachable through the index before the sweep
	_, err = s.GetByIndex(ctx, "by_email", "crash@x.com")
	require.ErrorIs(t, err, ErrNotFound)

	sw := NewSweeper(eng, zerolog.Nop(), time.Minute, s)
	swept, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	got, err := s.GetByIndex(ctx, "by_email", "crash@x.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	_, err = s.GetByIndex(ctx, "by_team", "core", a.ID)
	assert.NoError(t, err)

	// intent is cleared
	pairs, err := eng.Scan(ctx, kv.Key{intentPrefix}.Encode(), kv.ScanOptions{})
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestSweeperFinishesCrashedDelete(t *testing.T) {
	s, eng := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "gone@x.com", Team: "core"})
	require.NoError(t, err)

	// simulate a delete that removed the primary but crashed before the
	// index entries went away
	require.NoError(t, eng.Delete(ctx, kv.Key{"accounts", created.ID}.Encode()))
	seedIntent(t, eng, intentRecord{
		IntentID:   NewID(),
		Op:         opDelete,
		Collection: "accounts",
		DocID:      created.ID,
		Del: []kv.Key{
			{"accounts", "by_email", "gone@x.com"},
			{"accounts", "by_team", "core", created.ID},
		},
		At: time.Now().UTC().Add(-time.Hour),
	})

	sw := NewSweeper(eng, zerolog.Nop(), time.Minute, s)
	swept, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	_, err = eng.Get(ctx, kv.Key{"accounts", "by_email", "gone@x.com"}.Encode())
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	_, err = eng.Get(ctx, kv.Key{"accounts", "by_team", "core", created.ID}.Encode())
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestSweeperRollsBackInterruptedUpdate(t *testing.T) {
	s, eng := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "old@x.com", Team: "core"})
	require.NoError(t, err)

	// simulate an update that claimed the new unique key but crashed
	// before touching the primary: the primary still carries the old
	// values, so the claim must be rolled back and the old entry kept
	newKey := kv.Key{"accounts", "by_email", "new@x.com"}
	require.NoError(t, eng.Set(ctx, newKey.Encode(), []byte(created.ID)))
	seedIntent(t, eng, intentRecord{
		IntentID:   NewID(),
		Op:         opUpdate,
		Collection: "accounts",
		DocID:      created.ID,
		Put:        []kv.Key{newKey, {"accounts", "by_team", "core", created.ID}},
		Del:        []kv.Key{{"accounts", "by_email", "old@x.com"}},
		At:         time.Now().UTC().Add(-time.Hour),
	})

	sw := NewSweeper(eng, zerolog.Nop(), time.Minute, s)
	swept, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	// reconciled to the primary's actual values
	got, err := s.GetByIndex(ctx, "by_email", "old@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	_, err = eng.Get(ctx, newKey.Encode())
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestSweeperLeavesFreshIntentsAlone(t *testing.T) {
	s, eng := newAccountStore(t)
	ctx := context.Background()

	seedIntent(t, eng, intentRecord{
		IntentID:   NewID(),
		Op:         opCreate,
		Collection: "accounts",
		DocID:      "someone",
		At:         time.Now().UTC(),
	})

	sw := NewSweeper(eng, zerolog.Nop(), time.Hour, s)
	swept, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, swept)

	pairs, err := eng.Scan(ctx, kv.Key{intentPrefix}.Encode(), kv.ScanOptions{})
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

func TestDeletePartialFailureThenSweepRepairs(t *testing.T) {
	inner := memory.New()
	eng := &faultyEngine{Engine: inner, failOn: []byte("by_team")}
	s, err := New[account](kv.Engine(eng), accountCollection(), zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "p@x.com", Team: "core"})
	require.NoError(t, err)

	err = s.Delete(ctx, created.ID)
	var perr *PartialError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "delete", perr.Op)

	// the primary must be gone even though index cleanup failed
	_, err = s.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// the intent survived; sweeping with a healthy engine finishes the
	// cleanup
	healthy, err := New[account](kv.Engine(inner), accountCollection(), zerolog.Nop())
	require.NoError(t, err)
	sw := NewSweeper(inner, zerolog.Nop(), 0, healthy)
	swept, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	_, err = inner.Get(ctx, kv.Key{"accounts", "by_team", "core", created.ID}.Encode())
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	assert.Equal(t, 0, inner.Len())
}

func TestSweeperSkipsUnknownCollection(t *testing.T) {
	s, eng := newAccountStore(t)
	_ = s
	ctx := context.Background()

	seedIntent(t, eng, intentRecord{
		IntentID:   NewID(),
		Op:         opDelete,
		Collection: "widgets",
		DocID:      "w1",
		At:         time.Now().UTC().Add(-time.Hour),
	})

	sw := NewSweeper(eng, zerolog.Nop(), time.Minute)
	swept, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, swept)
}
