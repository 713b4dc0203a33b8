package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IdoCohen138/league-predictions/internal/domain/standings"
	"github.com/IdoCohen138/league-predictions/internal/infrastructure/repository/memory"
	"github.com/IdoCohen138/league-predictions/internal/platform/cache"
)

func seedAggregates(t *testing.T, repo *memory.StandingsRepository, items []standings.Aggregate) {
	t.Helper()
	for _, item := range items {
		if err := repo.Replace(context.Background(), item); err != nil {
			t.Fatalf("seed aggregate %s: %v", item.UserID, err)
		}
	}
}

func TestStandingsService_Leaderboard_OrderAndTies(t *testing.T) {
	t.Parallel()

	repo := memory.NewStandingsRepository()
	seedAggregates(t, repo, []standings.Aggregate{
		{SeasonID: testSeasonID, UserID: "u-carol", TotalPoints: 12},
		{SeasonID: testSeasonID, UserID: "u-bob", TotalPoints: 20, ExactCount: 3},
		{SeasonID: testSeasonID, UserID: "u-alice", TotalPoints: 12},
		{SeasonID: testSeasonID, UserID: "u-dave", TotalPoints: 7},
	})
	service := NewStandingsService(repo, nil)

	entries, err := service.Leaderboard(context.Background(), testSeasonID)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	require.Equal(t, "u-bob", entries[0].UserID)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, 3, entries[0].ExactCount)

	// Equal totals share a rank; user id breaks the display order.
	require.Equal(t, "u-alice", entries[1].UserID)
	require.Equal(t, "u-carol", entries[2].UserID)
	require.Equal(t, 2, entries[1].Rank)
	require.Equal(t, 2, entries[2].Rank)

	require.Equal(t, "u-dave", entries[3].UserID)
	require.Equal(t, 4, entries[3].Rank)
}

func TestStandingsService_Leaderboard_CacheInvalidation(t *testing.T) {
	t.Parallel()

	repo := memory.NewStandingsRepository()
	seedAggregates(t, repo, []standings.Aggregate{
		{SeasonID: testSeasonID, UserID: "u1", TotalPoints: 5},
	})
	service := NewStandingsService(repo, cache.NewStore(time.Minute))
	ctx := context.Background()

	entries, err := service.Leaderboard(ctx, testSeasonID)
	require.NoError(t, err)
	require.Equal(t, 5, entries[0].TotalPoints)

	// A write behind the cache is invisible until invalidation.
	require.NoError(t, repo.ApplyDelta(ctx, testSeasonID, "u1", standings.Delta{RoundNumber: 1, TotalPoints: 3, RoundPoints: 3}))

	entries, err = service.Leaderboard(ctx, testSeasonID)
	require.NoError(t, err)
	require.Equal(t, 5, entries[0].TotalPoints)

	service.InvalidateSeason(ctx, testSeasonID)

	entries, err = service.Leaderboard(ctx, testSeasonID)
	require.NoError(t, err)
	require.Equal(t, 8, entries[0].TotalPoints)
}

func TestStandingsService_GetUserScore(t *testing.T) {
	t.Parallel()

	repo := memory.NewStandingsRepository()
	seedAggregates(t, repo, []standings.Aggregate{
		{
			SeasonID:        testSeasonID,
			UserID:          "u1",
			TotalPoints:     18,
			PreseasonPoints: 10,
			RoundPoints:     map[int]int{1: 6, 2: 2},
			ExactCount:      2,
			DirectionCount:  2,
		},
	})
	service := NewStandingsService(repo, nil)

	score, err := service.GetUserScore(context.Background(), testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 18, score.TotalPoints)
	require.Equal(t, 10, score.PreseasonPoints)
	require.Equal(t, map[int]int{1: 6, 2: 2}, score.RoundPoints)

	_, err = service.GetUserScore(context.Background(), testSeasonID, "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
