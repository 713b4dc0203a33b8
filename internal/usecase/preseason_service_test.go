package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
	"github.com/IdoCohen138/league-predictions/internal/domain/round"
	"github.com/IdoCohen138/league-predictions/internal/domain/season"
)

func finalOutcomes() season.Outcomes {
	return season.Outcomes{
		ChampionTeamID:     "team-red",
		CupWinnerTeamID:    "team-blue",
		RelegatedTeamID1:   "team-down1",
		RelegatedTeamID2:   "team-down2",
		TopScorerPlayerID:  "player-9",
		TopAssistsPlayerID: "player-10",
	}
}

func TestPreseasonPointsFor(t *testing.T) {
	t.Parallel()

	outcomes := finalOutcomes()
	tests := []struct {
		name  string
		picks prediction.PreseasonPicks
		want  int
	}{
		{
			name: "everything right",
			picks: prediction.PreseasonPicks{
				ChampionTeamID:     "team-red",
				CupWinnerTeamID:    "team-blue",
				RelegatedTeamID1:   "team-down1",
				RelegatedTeamID2:   "team-down2",
				TopScorerPlayerID:  "player-9",
				TopAssistsPlayerID: "player-10",
			},
			want: 10 + 5 + 5 + 7 + 5,
		},
		{
			name: "cup winner pick carries no award",
			picks: prediction.PreseasonPicks{
				CupWinnerTeamID: "team-blue",
			},
			want: 0,
		},
		{
			name: "one relegation slot in either position",
			picks: prediction.PreseasonPicks{
				RelegatedTeamID1: "team-down2",
				RelegatedTeamID2: "team-elsewhere",
			},
			want: 5,
		},
		{
			name: "champion only",
			picks: prediction.PreseasonPicks{
				ChampionTeamID: "team-red",
			},
			want: 10,
		},
		{
			name:  "no picks",
			picks: prediction.PreseasonPicks{},
			want:  0,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := preseasonPointsFor(tc.picks, outcomes); got != tc.want {
				t.Fatalf("expected %d points, got %d", tc.want, got)
			}
		})
	}
}

func TestPreseasonService_ScorePreseason_IdempotentAndRebalancing(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(
		[]round.Round{roundOne()},
		[]round.Match{matchWithResult("m1", 2, 1)},
		[]prediction.MatchPrediction{predictionFor("u1", "m1", 2, 1)},
	)
	service := NewPreseasonService(f.seasonRepo, f.predictionRepo, f.standingsRepo, nil)
	ctx := context.Background()

	require.NoError(t, service.FinalizeOutcomes(ctx, testSeasonID, finalOutcomes()))
	require.NoError(t, f.predictionRepo.UpsertPreseasonPicks(ctx, prediction.PreseasonPicks{
		SeasonID:       testSeasonID,
		UserID:         "u1",
		ChampionTeamID: "team-red",
	}))

	// Round points land first; preseason settlement must add on top without
	// disturbing them.
	_, err := f.scoring.ScoreRound(ctx, ScoreRoundInput{SeasonID: testSeasonID, RoundNumber: 1})
	require.NoError(t, err)

	result, err := service.ScorePreseason(ctx, testSeasonID)
	require.NoError(t, err)
	require.Equal(t, 1, result.UsersUpdated)

	agg, _, err := f.standingsRepo.Get(ctx, testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 10, agg.PreseasonPoints)
	require.Equal(t, 16, agg.TotalPoints)
	require.True(t, agg.Consistent())

	// Settling again converges instead of doubling.
	_, err = service.ScorePreseason(ctx, testSeasonID)
	require.NoError(t, err)

	agg, _, err = f.standingsRepo.Get(ctx, testSeasonID, "u1")
	require.NoError(t, err)
	require.Equal(t, 10, agg.PreseasonPoints)
	require.Equal(t, 16, agg.TotalPoints)
}

func TestPreseasonService_ScorePreseason_RequiresFinalizedOutcomes(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(nil, nil, nil)
	service := NewPreseasonService(f.seasonRepo, f.predictionRepo, f.standingsRepo, nil)

	_, err := service.ScorePreseason(context.Background(), testSeasonID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestPreseasonService_FinalizeOutcomes_UnknownSeason(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(nil, nil, nil)
	service := NewPreseasonService(f.seasonRepo, f.predictionRepo, f.standingsRepo, nil)

	err := service.FinalizeOutcomes(context.Background(), "1999-2000", finalOutcomes())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
