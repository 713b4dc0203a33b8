package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/round"
	"github.com/IdoCohen138/league-predictions/internal/domain/season"
)

// SeasonService resolves the active season and round from wall-clock time and
// manages the round/match schedule.
type SeasonService struct {
	seasonRepo season.Repository
	roundRepo  round.Repository
	now        func() time.Time
}

type SeasonContext struct {
	SeasonID    string
	RoundNumber int
	// HasRound is false when no round of the season has a start time yet.
	HasRound bool
}

func NewSeasonService(seasonRepo season.Repository, roundRepo round.Repository) *SeasonService {
	return &SeasonService{
		seasonRepo: seasonRepo,
		roundRepo:  roundRepo,
		now:        time.Now,
	}
}

// CurrentContext derives the active season id from the clock and resolves the
// round currently in play from the stored schedule.
func (s *SeasonService) CurrentContext(ctx context.Context) (SeasonContext, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.CurrentContext")
	defer span.End()

	now := s.now().UTC()
	seasonID := season.CurrentSeasonID(now)

	rounds, err := s.roundRepo.ListRounds(ctx, seasonID)
	if err != nil {
		return SeasonContext{}, fmt.Errorf("list rounds for current context: %w", err)
	}

	number, ok := season.CurrentRoundNumber(rounds, now)
	return SeasonContext{SeasonID: seasonID, RoundNumber: number, HasRound: ok}, nil
}

func (s *SeasonService) UpsertSeason(ctx context.Context, item season.Season) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.UpsertSeason")
	defer span.End()

	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if err := s.seasonRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert season %s: %w", item.ID, err)
	}
	return nil
}

func (s *SeasonService) UpsertRound(ctx context.Context, item round.Round) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.UpsertRound")
	defer span.End()

	if strings.TrimSpace(item.SeasonID) == "" {
		return fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if item.Number <= 0 {
		return fmt.Errorf("%w: round number must be greater than zero", ErrInvalidInput)
	}
	if err := s.roundRepo.UpsertRound(ctx, item); err != nil {
		return fmt.Errorf("upsert round %d season=%s: %w", item.Number, item.SeasonID, err)
	}
	return nil
}

func (s *SeasonService) UpsertMatch(ctx context.Context, item round.Match) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.UpsertMatch")
	defer span.End()

	if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.SeasonID) == "" {
		return fmt.Errorf("%w: match id and season id are required", ErrInvalidInput)
	}
	if item.RoundNumber <= 0 {
		return fmt.Errorf("%w: round number must be greater than zero", ErrInvalidInput)
	}
	if item.IsCancelled && (item.HomeScore != nil || item.AwayScore != nil) {
		return fmt.Errorf("%w: cancelled match %s cannot carry a score", ErrInvalidState, item.ID)
	}

	_, exists, err := s.roundRepo.GetRound(ctx, item.SeasonID, item.RoundNumber)
	if err != nil {
		return fmt.Errorf("get round for match upsert: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: round %d season=%s", ErrNotFound, item.RoundNumber, item.SeasonID)
	}

	if err := s.roundRepo.UpsertMatch(ctx, item); err != nil {
		return fmt.Errorf("upsert match %s: %w", item.ID, err)
	}
	return nil
}

// RecordMatchResult stores a match's final score. Cancelled matches never
// carry scores.
func (s *SeasonService) RecordMatchResult(ctx context.Context, seasonID string, roundNumber int, matchID string, homeScore, awayScore int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.RecordMatchResult")
	defer span.End()

	if homeScore < 0 || awayScore < 0 {
		return fmt.Errorf("%w: scores must not be negative", ErrInvalidInput)
	}

	matches, err := s.roundRepo.ListMatches(ctx, seasonID, roundNumber)
	if err != nil {
		return fmt.Errorf("list matches for result entry: %w", err)
	}
	var target *round.Match
	for i := range matches {
		if matches[i].ID == matchID {
			target = &matches[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: match %s round=%d season=%s", ErrNotFound, matchID, roundNumber, seasonID)
	}
	if target.IsCancelled {
		return fmt.Errorf("%w: match %s is cancelled", ErrInvalidState, matchID)
	}

	if err := s.roundRepo.SetMatchResult(ctx, seasonID, roundNumber, matchID, homeScore, awayScore); err != nil {
		return fmt.Errorf("set match result %s: %w", matchID, err)
	}
	return nil
}

func (s *SeasonService) ListRoundMatches(ctx context.Context, seasonID string, roundNumber int) ([]round.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ListRoundMatches")
	defer span.End()

	_, exists, err := s.roundRepo.GetRound(ctx, seasonID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("get round for match listing: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: round %d season=%s", ErrNotFound, roundNumber, seasonID)
	}

	matches, err := s.roundRepo.ListMatches(ctx, seasonID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}
