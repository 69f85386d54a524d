package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv/kvtest"
)

func TestEngineCompliance(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Engine {
		return New()
	})
}

func TestSetIfAbsentRace(t *testing.T) {
	e := New()
	ctx := context.Background()
	key := kv.Key{"race", "slot"}.Encode()

	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan int, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := e.SetIfAbsent(ctx, key, []byte{byte(i)})
			require.NoError(t, err)
			if ok {
				wins <- i
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []int
	for i := range wins {
		winners = append(winners, i)
	}
	require.Len(t, winners, 1, "exactly one SetIfAbsent must win")

	got, err := e.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte{byte(winners[0])}, got)
}

func TestGetReturnsCopy(t *testing.T) {
	e := New()
	ctx := context.Background()
	key := kv.Key{"copy"}.Encode()
	require.NoError(t, e.Set(ctx, key, []byte("abc")))

	got, err := e.Get(ctx, key)
	require.NoError(t, err)
	got[0] = 'z'

	again, err := e.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}
