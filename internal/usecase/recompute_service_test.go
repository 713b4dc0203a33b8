package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
	"github.com/IdoCohen138/league-predictions/internal/domain/round"
	"github.com/IdoCohen138/league-predictions/internal/domain/season"
	"github.com/IdoCohen138/league-predictions/internal/domain/standings"
	"github.com/IdoCohen138/league-predictions/internal/platform/logging"
)

func newRecomputeService(f *scoringFixture) *RecomputeService {
	return NewRecomputeService(f.seasonRepo, f.roundRepo, f.predictionRepo, f.standingsRepo, f.locks, logging.NewNop())
}

func TestRecomputeService_DeleteRound_RestoresPriorTotals(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{
			matchWithResult("m1", 2, 1),
			matchWithResult("m2", 1, 1),
		},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 2, 1),
			predictionFor("u1", "m2", 1, 1),
			predictionFor("u2", "m1", 0, 1),
		},
	)
	recompute := newRecomputeService(f)
	ctx := context.Background()

	// Preseason points predate the round and must survive the rollback.
	require.NoError(t, f.standingsRepo.SetPreseasonPoints(ctx, testSeasonID, "u1", 10))

	_, err := f.scoring.ScoreRound(ctx, ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)

	agg, _, err := f.standingsRepo.Get(ctx, testSeasonID, "u1")
	require.NoError(t, err)
	require.Greater(t, agg.TotalPoints, 10)

	result, err := recompute.DeleteRound(ctx, testSeasonID, 1)
	require.NoError(t, err)
	require.Equal(t, 2, result.UsersAdjusted)

	agg, _, err = f.standingsRepo.Get(ctx, testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 10, agg.TotalPoints)
	require.Equal(t, 0, agg.ExactCount)
	require.Equal(t, 0, agg.DirectionCount)
	if _, exists := agg.RoundPoints[1]; exists {
		t.Fatalf("round entry must be dropped on deletion")
	}
	require.True(t, agg.Consistent())

	// The round and its matches are gone, the predictions stay but carry no
	// cached points.
	_, exists, err := f.roundRepo.GetRound(ctx, testSeasonID, 1)
	require.NoError(t, err)
	require.False(t, exists)

	preds, err := f.predictionRepo.ListRoundPredictions(ctx, testSeasonID, 1)
	require.NoError(t, err)
	require.Len(t, preds, 3)
	for _, p := range preds {
		if p.Points != 0 || p.Scored() {
			t.Fatalf("prediction %s/%s still carries a score after deletion", p.UserID, p.MatchID)
		}
	}
}

func TestRecomputeService_DeleteRound_NotFound(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(nil, nil, nil)
	recompute := newRecomputeService(f)

	_, err := recompute.DeleteRound(context.Background(), testSeasonID, 3)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecomputeService_RecomputeUser_MatchesIncrementalScoring(t *testing.T) {
	t.Parallel()

	rounds := []round.Round{
		roundOne(),
		{SeasonID: testSeasonID, Number: 2, StartAt: roundOne().StartAt.AddDate(0, 0, 7)},
	}
	m3 := matchWithResult("m3", 0, 2)
	m3.RoundNumber = 2
	matches := []round.Match{
		matchWithResult("m1", 2, 1),
		matchWithResult("m2", 1, 1),
		m3,
	}
	p5 := predictionFor("u2", "m3", 1, 2)
	p5.RoundNumber = 2
	p6 := predictionFor("u1", "m3", 2, 0)
	p6.RoundNumber = 2
	predictions := []prediction.MatchPrediction{
		predictionFor("u1", "m1", 2, 1),
		predictionFor("u1", "m2", 0, 0),
		predictionFor("u2", "m1", 1, 0),
		predictionFor("u2", "m2", 1, 1),
		p5,
		p6,
	}

	f := newScoringFixture(rounds, matches, predictions)
	recompute := newRecomputeService(f)
	ctx := context.Background()

	_, err := f.scoring.ScoreRound(ctx, ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)
	_, err = f.scoring.ScoreRound(ctx, ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 2})
	require.NoError(t, err)

	for _, userID := range []string{"u1", "u2"} {
		incremental, _, err := f.standingsRepo.Get(ctx, testSeasonID, userID)
		require.NoError(t, err)

		replayed, err := recompute.RecomputeUser(ctx, testSeasonID, userID)
		require.NoError(t, err)

		require.Equal(t, incremental.TotalPoints, replayed.TotalPoints, "user %s", userID)
		require.Equal(t, incremental.RoundPoints, replayed.RoundPoints, "user %s", userID)
		require.Equal(t, incremental.ExactCount, replayed.ExactCount, "user %s", userID)
		require.Equal(t, incremental.DirectionCount, replayed.DirectionCount, "user %s", userID)
		require.True(t, replayed.Consistent())
	}
}

func TestRecomputeService_RecomputeUser_RepairsCorruptedAggregate(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 2, 1)},
		[]prediction.MatchPrediction{predictionFor("u1", "m1", 2, 1)},
	)
	recompute := newRecomputeService(f)
	ctx := context.Background()

	_, err := f.scoring.ScoreRound(ctx, ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)

	// Simulate drift: a stray delta corrupts the total.
	require.NoError(t, f.standingsRepo.ApplyDelta(ctx, testSeasonID, "u1", standings.Delta{TotalPoints: 99}))

	replayed, err := recompute.RecomputeUser(ctx, testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 6, replayed.TotalPoints)
	require.True(t, replayed.Consistent())

	stored, _, err := f.standingsRepo.Get(ctx, testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 6, stored.TotalPoints)
}

func TestRecomputeService_RecomputeUser_ClearsPointsOfLateCancelledMatch(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 2, 1)},
		[]prediction.MatchPrediction{predictionFor("u1", "m1", 2, 1)},
	)
	recompute := newRecomputeService(f)
	ctx := context.Background()

	_, err := f.scoring.ScoreRound(ctx, ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)

	// The match is cancelled after it was scored; its result is retracted.
	cancelled := matchWithResult("m1", 0, 0)
	cancelled.HomeScore = nil
	cancelled.AwayScore = nil
	cancelled.IsCancelled = true
	require.NoError(t, f.roundRepo.UpsertMatch(ctx, cancelled))

	replayed, err := recompute.RecomputeUser(ctx, testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 0, replayed.TotalPoints)
	require.True(t, replayed.Consistent())

	// The replay also wiped the cached points, so rolling the round back
	// afterwards subtracts nothing.
	preds, err := f.predictionRepo.ListRoundPredictions(ctx, testSeasonID, 1)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	require.Equal(t, 0, preds[0].Points)
	require.False(t, preds[0].Scored())

	_, err = recompute.DeleteRound(ctx, testSeasonID, 1)
	require.NoError(t, err)

	agg, _, err := f.standingsRepo.Get(ctx, testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 0, agg.TotalPoints)
	require.Empty(t, agg.RoundPoints)
	require.True(t, agg.Consistent())
}

func TestRecomputeService_RecomputeUser_IncludesPreseason(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 1, 0)},
		[]prediction.MatchPrediction{predictionFor("u1", "m1", 1, 0)},
	)
	recompute := newRecomputeService(f)
	ctx := context.Background()

	require.NoError(t, f.seasonRepo.SetOutcomes(ctx, testSeasonID, season.Outcomes{
		ChampionTeamID:    "team-red",
		TopScorerPlayerID: "player-9",
	}))
	require.NoError(t, f.predictionRepo.UpsertPreseasonPicks(ctx, prediction.PreseasonPicks{
		SeasonID:          testSeasonID,
		UserID:            "u1",
		ChampionTeamID:    "team-red",
		TopScorerPlayerID: "player-9",
	}))

	replayed, err := recompute.RecomputeUser(ctx, testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 17, replayed.PreseasonPoints)
	require.Equal(t, 17+6, replayed.TotalPoints)
	require.True(t, replayed.Consistent())
}

func TestRecomputeService_RecomputeSeason_ReportsPerUser(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 2, 0)},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 2, 0),
			predictionFor("u2", "m1", 0, 0),
			predictionFor("u3", "m1", 1, 0),
		},
	)
	recompute := newRecomputeService(f)

	result, err := recompute.RecomputeSeason(context.Background(), testSeasonID)
	require.NoError(t, err)
	require.Equal(t, 3, result.UserCount)
	require.Equal(t, 3, result.SuccessCount)
	require.Equal(t, 0, result.FailedCount)
	require.Len(t, result.Tasks, 3)
	require.Equal(t, "u1", result.Tasks[0].UserID)

	aggregates, err := f.standingsRepo.ListBySeason(context.Background(), testSeasonID)
	require.NoError(t, err)
	require.Len(t, aggregates, 3)
	for _, agg := range aggregates {
		require.True(t, agg.Consistent())
	}
}
