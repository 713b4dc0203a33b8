package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
	"github.com/IdoCohen138/league-predictions/internal/domain/round"
	"github.com/IdoCohen138/league-predictions/internal/domain/season"
	"github.com/IdoCohen138/league-predictions/internal/infrastructure/repository/memory"
	"github.com/IdoCohen138/league-predictions/internal/platform/logging"
	"github.com/IdoCohen138/league-predictions/internal/platform/resilience"
)

const testSeasonID = "2025-2026"

func intPtr(v int) *int { return &v }

type scoringFixture struct {
	seasonRepo     *memory.SeasonRepository
	roundRepo      *memory.RoundRepository
	predictionRepo *memory.PredictionRepository
	standingsRepo  *memory.StandingsRepository
	locks          *resilience.KeyedMutex
	scoring        *RoundScoringService
}

func newScoringFixture(rounds []round.Round, matches []round.Match, predictions []prediction.MatchPrediction) *scoringFixture {
	f := &scoringFixture{
		seasonRepo:     memory.NewSeasonRepository([]season.Season{{ID: testSeasonID}}),
		roundRepo:      memory.NewRoundRepository(rounds, matches),
		predictionRepo: memory.NewPredictionRepository(predictions, nil),
		standingsRepo:  memory.NewStandingsRepository(),
		locks:          &resilience.KeyedMutex{},
	}
	f.scoring = NewRoundScoringService(f.roundRepo, f.predictionRepo, f.standingsRepo, f.locks, logging.NewNop())
	return f
}

func roundOne() round.Round {
	return round.Round{
		SeasonID: testSeasonID,
		Number:   1,
		StartAt:  time.Date(2025, time.August, 16, 14, 0, 0, 0, time.UTC),
		IsActive: true,
	}
}

func matchWithResult(id string, home, away int) round.Match {
	return round.Match{
		ID:          id,
		SeasonID:    testSeasonID,
		RoundNumber: 1,
		HomeTeamID:  "team-" + id + "-h",
		AwayTeamID:  "team-" + id + "-a",
		HomeScore:   intPtr(home),
		AwayScore:   intPtr(away),
	}
}

func predictionFor(userID, matchID string, home, away int) prediction.MatchPrediction {
	return prediction.MatchPrediction{
		SeasonID:    testSeasonID,
		RoundNumber: 1,
		MatchID:     matchID,
		UserID:      userID,
		HomeGoals:   home,
		AwayGoals:   away,
	}
}

func TestRoundScoringService_ScoreRound_UniqueExactDoubles(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 2, 1)},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 2, 1), // exact, sole home predictor
			predictionFor("u2", "m1", 0, 2), // away, miss
			predictionFor("u3", "m1", 1, 1), // draw, miss
		},
	)

	result, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"m1"}, result.ScoredMatchIDs)
	require.Equal(t, 3, result.UsersUpdated)
	require.False(t, result.RequiresConfirmation)

	agg, ok, err := f.standingsRepo.Get(context.Background(), testSeasonID, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 6, agg.TotalPoints, "sole correct-outcome exact prediction is doubled")
	require.Equal(t, 6, agg.RoundPoints[1])
	require.Equal(t, 1, agg.ExactCount)
	require.Equal(t, 0, agg.DirectionCount)

	// A miss still materializes the round entry at zero.
	agg2, ok, err := f.standingsRepo.Get(context.Background(), testSeasonID, "u2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, agg2.TotalPoints)
	points, entryExists := agg2.RoundPoints[1]
	require.True(t, entryExists)
	require.Equal(t, 0, points)

	preds, err := f.predictionRepo.ListUserRoundPredictions(context.Background(), testSeasonID, 1, "u1")
	require.NoError(t, err)
	require.Len(t, preds, 1)
	require.Equal(t, 6, preds[0].Points)
	require.True(t, preds[0].IsExact)
	require.False(t, preds[0].IsDirection)
	require.True(t, preds[0].Scored())

	matches, err := f.roundRepo.ListMatches(context.Background(), testSeasonID, 1)
	require.NoError(t, err)
	require.True(t, matches[0].PointsCalculated)
}

func TestRoundScoringService_ScoreRound_BonusResolvedPerTier(t *testing.T) {
	t.Parallel()

	// Actual 2-1. The sole exact predictor doubles even though two more
	// users share the home outcome; those two share the direction tier and
	// keep base points.
	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 2, 1)},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 2, 1), // exact, alone in the exact tier
			predictionFor("u2", "m1", 1, 0), // home, direction
			predictionFor("u3", "m1", 3, 0), // home, direction
		},
	)

	_, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)

	for userID, want := range map[string]int{"u1": 6, "u2": 1, "u3": 1} {
		agg, ok, err := f.standingsRepo.Get(context.Background(), testSeasonID, userID)
		if err != nil || !ok {
			t.Fatalf("get aggregate %s: ok=%v err=%v", userID, ok, err)
		}
		if agg.TotalPoints != want {
			t.Fatalf("user %s: expected %d points, got %d", userID, want, agg.TotalPoints)
		}
	}
}

func TestRoundScoringService_ScoreRound_SoleDirectionPredictorDoubles(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 2, 1)},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 1, 0), // home, alone in the direction tier
			predictionFor("u2", "m1", 0, 2), // away, miss
			predictionFor("u3", "m1", 1, 1), // draw, miss
		},
	)

	_, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)

	agg, ok, err := f.standingsRepo.Get(context.Background(), testSeasonID, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, agg.TotalPoints)
	require.Equal(t, 1, agg.DirectionCount)
}

func TestRoundScoringService_ScoreRound_Idempotent(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{
			matchWithResult("m1", 2, 1),
			matchWithResult("m2", 0, 0),
		},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 2, 1),
			predictionFor("u1", "m2", 1, 1),
			predictionFor("u2", "m1", 3, 1),
			predictionFor("u2", "m2", 0, 0),
		},
	)

	input := ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1}
	_, err := f.scoring.ScoreRound(context.Background(), input)
	require.NoError(t, err)

	first, err := f.standingsRepo.ListBySeason(context.Background(), testSeasonID)
	require.NoError(t, err)

	_, err = f.scoring.ScoreRound(context.Background(), input)
	require.NoError(t, err)

	second, err := f.standingsRepo.ListBySeason(context.Background(), testSeasonID)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, first[i].TotalPoints, second[i].TotalPoints)
		require.Equal(t, first[i].RoundPoints, second[i].RoundPoints)
		require.Equal(t, first[i].ExactCount, second[i].ExactCount)
		require.Equal(t, first[i].DirectionCount, second[i].DirectionCount)
	}
}

func TestRoundScoringService_ScoreRound_ResultCorrectionConverges(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 2, 1)},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 2, 1),
			predictionFor("u2", "m1", 1, 1),
		},
	)

	input := ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1}
	_, err := f.scoring.ScoreRound(context.Background(), input)
	require.NoError(t, err)

	// The result is corrected to a draw and the round rescored: the prior
	// contribution is subtracted, the fresh one added.
	require.NoError(t, f.roundRepo.SetMatchResult(context.Background(), testSeasonID, 1, "m1", 1, 1))
	_, err = f.scoring.ScoreRound(context.Background(), input)
	require.NoError(t, err)

	agg1, _, err := f.standingsRepo.Get(context.Background(), testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 0, agg1.TotalPoints)
	require.Equal(t, 0, agg1.ExactCount)

	agg2, _, err := f.standingsRepo.Get(context.Background(), testSeasonID, "u2")
	require.NoError(t, err)
	require.Equal(t, 6, agg2.TotalPoints, "now the sole correct predictor with the exact score")
	require.True(t, agg2.Consistent())
}

func TestRoundScoringService_ScoreRound_RequiresConfirmation(t *testing.T) {
	t.Parallel()

	pending := round.Match{
		ID:          "m2",
		SeasonID:    testSeasonID,
		RoundNumber: 1,
		HomeTeamID:  "team-x",
		AwayTeamID:  "team-y",
	}
	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 2, 1), pending},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 2, 1),
			predictionFor("u1", "m2", 1, 0),
		},
	)

	result, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)
	require.True(t, result.RequiresConfirmation)
	require.Equal(t, []string{"m2"}, result.SkippedMatchIDs)
	require.Empty(t, result.ScoredMatchIDs)

	// Nothing was written without confirmation.
	aggregates, err := f.standingsRepo.ListBySeason(context.Background(), testSeasonID)
	require.NoError(t, err)
	require.Empty(t, aggregates)

	result, err = f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1, Confirm: true})
	require.NoError(t, err)
	require.False(t, result.RequiresConfirmation)
	require.Equal(t, []string{"m1"}, result.ScoredMatchIDs)
	require.Equal(t, []string{"m2"}, result.SkippedMatchIDs)

	agg, _, err := f.standingsRepo.Get(context.Background(), testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 6, agg.TotalPoints)

	// The skipped match stays eligible for a later pass.
	preds, err := f.predictionRepo.ListUserRoundPredictions(context.Background(), testSeasonID, 1, "u1")
	require.NoError(t, err)
	for _, p := range preds {
		if p.MatchID == "m2" && p.Scored() {
			t.Fatalf("prediction for the skipped match must stay unscored")
		}
	}
}

func TestRoundScoringService_ScoreRound_InvalidStates(t *testing.T) {
	t.Parallel()

	t.Run("round not found", func(t *testing.T) {
		t.Parallel()
		f := newScoringFixture([]round.Round{roundOne()}, nil, nil)

		_, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 9})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("partial result", func(t *testing.T) {
		t.Parallel()
		partial := round.Match{
			ID:          "m1",
			SeasonID:    testSeasonID,
			RoundNumber: 1,
			HomeScore:   intPtr(2),
		}
		f := newScoringFixture([]round.Round{roundOne()}, []round.Match{partial}, nil)

		_, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("cancelled match with score", func(t *testing.T) {
		t.Parallel()
		cancelled := matchWithResult("m1", 1, 0)
		cancelled.IsCancelled = true
		f := newScoringFixture([]round.Round{roundOne()}, []round.Match{cancelled}, nil)

		_, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()
		f := newScoringFixture(nil, nil, nil)

		_, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: "", RoundNumber: 1})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestRoundScoringService_ScoreRound_CancelledMatchIgnored(t *testing.T) {
	t.Parallel()

	cancelled := round.Match{
		ID:          "m2",
		SeasonID:    testSeasonID,
		RoundNumber: 1,
		IsCancelled: true,
	}
	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 1, 0), cancelled},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 1, 0),
			predictionFor("u1", "m2", 2, 0),
		},
	)

	result, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"m2"}, result.CancelledMatchIDs)
	require.False(t, result.RequiresConfirmation, "cancelled matches never demand confirmation")

	agg, _, err := f.standingsRepo.Get(context.Background(), testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 6, agg.TotalPoints, "exact and sole correct on the one played match")
	require.True(t, agg.Consistent())
}

func TestRoundScoringService_ScoreRound_ConservationInvariant(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{
			matchWithResult("m1", 2, 1),
			matchWithResult("m2", 0, 3),
			matchWithResult("m3", 1, 1),
		},
		[]prediction.MatchPrediction{
			predictionFor("u1", "m1", 2, 1),
			predictionFor("u1", "m2", 1, 2),
			predictionFor("u1", "m3", 0, 0),
			predictionFor("u2", "m1", 1, 0),
			predictionFor("u2", "m2", 0, 3),
			predictionFor("u3", "m3", 2, 2),
		},
	)

	_, err := f.scoring.ScoreRound(context.Background(), ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)

	aggregates, err := f.standingsRepo.ListBySeason(context.Background(), testSeasonID)
	require.NoError(t, err)
	require.Len(t, aggregates, 3)
	for _, agg := range aggregates {
		if !agg.Consistent() {
			t.Fatalf("user %s: total %d != preseason %d + rounds %d", agg.UserID, agg.TotalPoints, agg.PreseasonPoints, agg.RoundPointsSum())
		}
	}
}
