package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_GetOrLoad_LoadsOnce(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var loads atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := store.GetOrLoad(context.Background(), "leaderboard:2025-2026", func(context.Context) (any, error) {
				loads.Add(1)
				return 42, nil
			})
			require.NoError(t, err)
			require.Equal(t, 42, value)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), loads.Load())
}

func TestStore_Invalidate(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "key", "value")
	_, ok := store.Get(ctx, "key")
	require.True(t, ok)

	store.Invalidate(ctx, "key")
	_, ok = store.Get(ctx, "key")
	require.False(t, ok)
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore(10 * time.Millisecond)
	ctx := context.Background()

	store.Set(ctx, "key", "value")
	time.Sleep(25 * time.Millisecond)

	_, ok := store.Get(ctx, "key")
	require.False(t, ok)
}
