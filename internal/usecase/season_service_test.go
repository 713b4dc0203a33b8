package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IdoCohen138/league-predictions/internal/domain/round"
)

func TestSeasonService_CurrentContext(t *testing.T) {
	t.Parallel()

	firstKickoff := time.Date(2025, time.August, 16, 14, 0, 0, 0, time.UTC)
	rounds := []round.Round{
		{SeasonID: "2025-2026", Number: 1, StartAt: firstKickoff},
		{SeasonID: "2025-2026", Number: 2, StartAt: firstKickoff.AddDate(0, 0, 7)},
		{SeasonID: "2025-2026", Number: 3}, // unscheduled, skipped
	}

	tests := []struct {
		name       string
		now        time.Time
		wantRound  int
		wantHasRnd bool
		wantSeason string
	}{
		{
			name:       "between round one and two",
			now:        firstKickoff.AddDate(0, 0, 3),
			wantSeason: "2025-2026",
			wantRound:  1,
			wantHasRnd: true,
		},
		{
			name:       "after the last scheduled round",
			now:        firstKickoff.AddDate(0, 2, 0),
			wantSeason: "2025-2026",
			wantRound:  2,
			wantHasRnd: true,
		},
		{
			name:       "june still belongs to the previous season",
			now:        time.Date(2026, time.June, 30, 12, 0, 0, 0, time.UTC),
			wantSeason: "2025-2026",
			wantRound:  2,
			wantHasRnd: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newScoringFixture(rounds, nil, nil)
			service := NewSeasonService(f.seasonRepo, f.roundRepo)
			service.now = func() time.Time { return tc.now }

			got, err := service.CurrentContext(context.Background())
			require.NoError(t, err)
			require.Equal(t, tc.wantSeason, got.SeasonID)
			require.Equal(t, tc.wantHasRnd, got.HasRound)
			require.Equal(t, tc.wantRound, got.RoundNumber)
		})
	}
}

func TestSeasonService_CurrentContext_NoScheduledRounds(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(nil, nil, nil)
	service := NewSeasonService(f.seasonRepo, f.roundRepo)
	service.now = func() time.Time { return time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC) }

	got, err := service.CurrentContext(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-2026", got.SeasonID)
	require.False(t, got.HasRound)
}

func TestSeasonService_RecordMatchResult(t *testing.T) {
	t.Parallel()

	t.Run("stores the score", func(t *testing.T) {
		t.Parallel()
		f := newScoringFixture([]round.Round{roundOne()}, []round.Match{openMatch("m1")}, nil)
		service := NewSeasonService(f.seasonRepo, f.roundRepo)

		require.NoError(t, service.RecordMatchResult(context.Background(), testSeasonID, 1, "m1", 3, 2))

		matches, err := f.roundRepo.ListMatches(context.Background(), testSeasonID, 1)
		require.NoError(t, err)
		require.True(t, matches[0].HasResult())
		require.Equal(t, 3, *matches[0].HomeScore)
		require.Equal(t, 2, *matches[0].AwayScore)
	})

	t.Run("unknown match", func(t *testing.T) {
		t.Parallel()
		f := newScoringFixture([]round.Round{roundOne()}, nil, nil)
		service := NewSeasonService(f.seasonRepo, f.roundRepo)

		err := service.RecordMatchResult(context.Background(), testSeasonID, 1, "nope", 1, 0)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("cancelled match rejects a score", func(t *testing.T) {
		t.Parallel()
		cancelled := openMatch("m1")
		cancelled.IsCancelled = true
		f := newScoringFixture([]round.Round{roundOne()}, []round.Match{cancelled}, nil)
		service := NewSeasonService(f.seasonRepo, f.roundRepo)

		err := service.RecordMatchResult(context.Background(), testSeasonID, 1, "m1", 1, 0)
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("negative score", func(t *testing.T) {
		t.Parallel()
		f := newScoringFixture([]round.Round{roundOne()}, []round.Match{openMatch("m1")}, nil)
		service := NewSeasonService(f.seasonRepo, f.roundRepo)

		err := service.RecordMatchResult(context.Background(), testSeasonID, 1, "m1", -1, 0)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSeasonService_UpsertMatch_RequiresRound(t *testing.T) {
	t.Parallel()

	f := newScoringFixture(nil, nil, nil)
	service := NewSeasonService(f.seasonRepo, f.roundRepo)

	err := service.UpsertMatch(context.Background(), openMatch("m1"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeasonService_UpsertMatch_CancelledMatchRejectsScore(t *testing.T) {
	t.Parallel()

	f := newScoringFixture([]round.Round{roundOne()}, nil, nil)
	service := NewSeasonService(f.seasonRepo, f.roundRepo)

	item := matchWithResult("m1", 2, 1)
	item.IsCancelled = true
	err := service.UpsertMatch(context.Background(), item)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
