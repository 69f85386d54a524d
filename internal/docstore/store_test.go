package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv/memory"
)

// account is the fixture entity: one unique index, one non-unique index
// and one index that covers only some records.
type account struct {
	Envelope
	Email string `json:"email"`
	Team  string `json:"team"`
	Badge string `json:"badge,omitempty"`
}

func accountCollection() Collection[*account] {
	return Collection[*account]{
		Name: "accounts",
		Indexes: []Index[*account]{
			{
				Name:   "by_email",
				Unique: true,
				Keys:   func(a *account) [][]string { return [][]string{{a.Email}} },
			},
			{
				Name: "by_team",
				Keys: func(a *account) [][]string { return [][]string{{a.Team, a.ID}} },
			},
			{
				Name: "by_badge",
				Keys: func(a *account) [][]string {
					if a.Badge == "" {
						return nil
					}
					return [][]string{{a.Badge}}
				},
				Unique: true,
			},
		},
	}
}

func newAccountStore(t *testing.T) (*Store[account, *account], *memory.Engine) {
	t.Helper()
	eng := memory.New()
	s, err := New[account](eng, accountCollection(), zerolog.Nop())
	require.NoError(t, err)
	return s, eng
}

func TestCreateRoundTrip(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "a@x.com", Team: "core"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())
	require.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "core", got.Team)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
}

func TestGetByIDNotFound(t *testing.T) {
	s, _ := newAccountStore(t)
	_, err := s.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIndexCompleteness(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "a@x.com", Team: "core"})
	require.NoError(t, err)

	byEmail, err := s.GetByIndex(ctx, "by_email", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byTeam, err := s.GetByIndex(ctx, "by_team", "core", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byTeam.ID)
}

func TestGetByIndexUnknownIndex(t *testing.T) {
	s, _ := newAccountStore(t)
	_, err := s.GetByIndex(context.Background(), "by_phone", "555")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUniqueConstraintSequential(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &account{Email: "a@x.com", Team: "core"})
	require.NoError(t, err)

	_, err = s.Create(ctx, &account{Email: "a@x.com", Team: "other"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// the loser must leave nothing behind
	winner, err := s.GetByIndex(ctx, "by_email", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "core", winner.Team)

	docs, _, err := s.List(ctx, "by_team", nil, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUniqueConstraintUnderConcurrency(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	const racers = 12
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(ctx, &account{Email: "same@x.com", Team: fmt.Sprintf("t%d", i)})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, duplicates int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDuplicate):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent create may win")
	assert.Equal(t, racers-1, duplicates)

	// losers must not have claimed the key or left partial records
	doc, err := s.GetByIndex(ctx, "by_email", "same@x.com")
	require.NoError(t, err)
	docs, _, err := s.List(ctx, "by_team", nil, ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
}

func TestUpdateReindexes(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "v1@x.com", Team: "core"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, func(a *account) error {
		a.Email = "v2@x.com"
		a.Team = "infra"
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt))

	_, err = s.GetByIndex(ctx, "by_email", "v1@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetByIndex(ctx, "by_email", "v2@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = s.GetByIndex(ctx, "by_team", "core", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetByIndex(ctx, "by_team", "infra", created.ID)
	assert.NoError(t, err)
}

func TestUpdateKeepsEnvelopeImmutable(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "a@x.com", Team: "core"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, func(a *account) error {
		a.ID = "hijacked"
		a.CreatedAt = a.CreatedAt.AddDate(-1, 0, 0)
		a.Team = "infra"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestUpdateUniqueConflict(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &account{Email: "held@x.com", Team: "core"})
	require.NoError(t, err)
	second, err := s.Create(ctx, &account{Email: "free@x.com", Team: "core"})
	require.NoError(t, err)

	_, err = s.Update(ctx, second.ID, func(a *account) error {
		a.Email = "held@x.com"
		return nil
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	// record is unchanged and still reachable by its old value
	got, err := s.GetByIndex(ctx, "by_email", "free@x.com")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := newAccountStore(t)
	_, err := s.Update(context.Background(), "ghost", func(a *account) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMutatorError(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "a@x.com", Team: "core"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.Update(ctx, created.ID, func(a *account) error { return boom })
	assert.ErrorIs(t, err, boom)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(created.UpdatedAt))
}

func TestDeleteRemovesEverything(t *testing.T) {
	s, eng := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "a@x.com", Team: "core", Badge: "b-1"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))

	_, err = s.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetByIndex(ctx, "by_email", "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetByIndex(ctx, "by_badge", "b-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, eng.Len(), "no entries may remain after delete")

	reports, err := s.VerifyAll(ctx, false)
	require.NoError(t, err)
	for _, r := range reports {
		assert.True(t, r.Clean(), "index %s", r.Index)
	}
}

func TestDeleteIsNotFoundTwice(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "a@x.com", Team: "core"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))
	assert.ErrorIs(t, s.Delete(ctx, created.ID), ErrNotFound)
}

func TestSparseIndexCoversOnlySomeRecords(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &account{Email: "plain@x.com", Team: "core"})
	require.NoError(t, err)
	badged, err := s.Create(ctx, &account{Email: "badge@x.com", Team: "core", Badge: "b-9"})
	require.NoError(t, err)

	got, err := s.GetByIndex(ctx, "by_badge", "b-9")
	require.NoError(t, err)
	assert.Equal(t, badged.ID, got.ID)

	// clearing the field drops the entry
	_, err = s.Update(ctx, badged.ID, func(a *account) error {
		a.Badge = ""
		return nil
	})
	require.NoError(t, err)
	_, err = s.GetByIndex(ctx, "by_badge", "b-9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByPrefixAndCursor(t *testing.T) {
	s, _ := newAccountStore(t)
	ctx := context.Background()

	var coreIDs []string
	for i := 0; i < 5; i++ {
		a, err := s.Create(ctx, &account{Email: fmt.Sprintf("c%d@x.com", i), Team: "core"})
		require.NoError(t, err)
		coreIDs = append(coreIDs, a.ID)
	}
	_, err := s.Create(ctx, &account{Email: "other@x.com", Team: "infra"})
	require.NoError(t, err)

	// prefix isolates the team
	all, next, err := s.List(ctx, "by_team", []string{"core"}, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Empty(t, next)

	// pages are disjoint, ordered and complete
	var paged []string
	cursor := ""
	for {
		docs, next, err := s.List(ctx, "by_team", []string{"core"}, ListOptions{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, d := range docs {
			paged = append(paged, d.ID)
		}
		if next == "" {
			break
		}
		cursor = next
	}
	assert.ElementsMatch(t, coreIDs, paged)

	// empty result for an unused prefix
	none, _, err := s.List(ctx, "by_team", []string{"ghost-team"}, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListMalformedCursor(t *testing.T) {
	s, _ := newAccountStore(t)
	_, _, err := s.List(context.Background(), "by_team", nil, ListOptions{Cursor: "not!base64!!"})
	assert.Error(t, err)
}

// claimObserver lets a test run code in the window right after a unique
// index entry lands in the engine, before the create returns.
type claimObserver struct {
	kv.Engine
	onClaim func(key []byte)
}

func (c *claimObserver) SetIfAbsent(ctx context.Context, key, value []byte) (bool, error) {
	ok, err := c.Engine.SetIfAbsent(ctx, key, value)
	if ok && c.onClaim != nil {
		c.onClaim(key)
	}
	return ok, err
}

func TestLookupDuringCreateSeesRecordAndKeepsClaim(t *testing.T) {
	base := memory.New()
	obs := &claimObserver{Engine: base}
	s, err := New[account](obs, accountCollection(), zerolog.Nop())
	require.NoError(t, err)
	reader, err := New[account](base, accountCollection(), zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	var raced *account
	var racedErr error
	obs.onClaim = func(key []byte) {
		if !bytes.Contains(key, []byte("by_email")) {
			return
		}
		obs.onClaim = nil
		raced, racedErr = reader.GetByIndex(ctx, "by_email", "a@x.com")
	}

	created, err := s.Create(ctx, &account{Email: "a@x.com", Team: "core"})
	require.NoError(t, err)

	// the lookup ran while the create was still in flight; the primary
	// is written before the claim, so it resolves instead of healing the
	// entry away
	require.NoError(t, racedErr)
	require.NotNil(t, raced)
	assert.Equal(t, created.ID, raced.ID)

	// the claim survived the concurrent lookup
	got, err := s.GetByIndex(ctx, "by_email", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	_, err = s.Create(ctx, &account{Email: "a@x.com", Team: "infra"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGetByIndexSelfHealsDanglingEntry(t *testing.T) {
	s, eng := newAccountStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &account{Email: "a@x.com", Team: "core"})
	require.NoError(t, err)

	// rip out the primary behind the store's back, as a crashed delete
	// would have
	require.NoError(t, eng.Delete(ctx, kv.Key{"accounts", created.ID}.Encode()))

	_, err = s.GetByIndex(ctx, "by_email", "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// the dangling entry itself is gone now
	_, err = eng.Get(ctx, kv.Key{"accounts", "by_email", "a@x.com"}.Encode())
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestListSkipsAndHealsDanglingEntries(t *testing.T) {
	s, eng := newAccountStore(t)
	ctx := context.Background()

	keep, err := s.Create(ctx, &account{Email: "keep@x.com", Team: "core"})
	require.NoError(t, err)
	drop, err := s.Create(ctx, &account{Email: "drop@x.com", Team: "core"})
	require.NoError(t, err)

	require.NoError(t, eng.Delete(ctx, kv.Key{"accounts", drop.ID}.Encode()))

	docs, _, err := s.List(ctx, "by_team", []string{"core"}, ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, keep.ID, docs[0].ID)

	_, err = eng.Get(ctx, kv.Key{"accounts", "by_team", "core", drop.ID}.Encode())
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestClockIsMonotonic(t *testing.T) {
	var c Clock
	prev := c.Now()
	for i := 0; i < 1000; i++ {
		now := c.Now()
		require.True(t, now.After(prev))
		prev = now
	}
}

func TestCollectionValidate(t *testing.T) {
	bad := Collection[*account]{Name: ""}
	assert.Error(t, bad.Validate())

	dup := Collection[*account]{
		Name: "accounts",
		Indexes: []Index[*account]{
			{Name: "by_email", Keys: func(a *account) [][]string { return nil }},
			{Name: "by_email", Keys: func(a *account) [][]string { return nil }},
		},
	}
	assert.Error(t, dup.Validate())

	nokeys := Collection[*account]{
		Name:    "accounts",
		Indexes: []Index[*account]{{Name: "by_email"}},
	}
	assert.Error(t, nokeys.Validate())
}
