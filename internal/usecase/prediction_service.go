package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
	"github.com/IdoCohen138/league-predictions/internal/domain/round"
	"github.com/IdoCohen138/league-predictions/internal/domain/season"
)

// PredictionService accepts user predictions and enforces the submission
// locks: a round locks at its start time, preseason picks lock at season
// start.
type PredictionService struct {
	seasonRepo     season.Repository
	roundRepo      round.Repository
	predictionRepo prediction.Repository
	now            func() time.Time
}

type MatchPredictionInput struct {
	MatchID   string `validate:"required"`
	HomeGoals int    `validate:"gte=0"`
	AwayGoals int    `validate:"gte=0"`
}

type SubmitRoundPredictionsInput struct {
	SeasonID    string
	RoundNumber int
	UserID      string
	Predictions []MatchPredictionInput
}

func NewPredictionService(
	seasonRepo season.Repository,
	roundRepo round.Repository,
	predictionRepo prediction.Repository,
) *PredictionService {
	return &PredictionService{
		seasonRepo:     seasonRepo,
		roundRepo:      roundRepo,
		predictionRepo: predictionRepo,
		now:            time.Now,
	}
}

// SubmitRoundPredictions stores or replaces the user's predictions for a
// round. The round lock guarantees no scored prediction is ever replaced,
// so the reset cached scoring fields on an upsert are always zero-valued.
func (s *PredictionService) SubmitRoundPredictions(ctx context.Context, input SubmitRoundPredictionsInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitRoundPredictions")
	defer span.End()

	if strings.TrimSpace(input.SeasonID) == "" || strings.TrimSpace(input.UserID) == "" {
		return fmt.Errorf("%w: season id and user id are required", ErrInvalidInput)
	}
	if input.RoundNumber <= 0 {
		return fmt.Errorf("%w: round number must be greater than zero", ErrInvalidInput)
	}
	if len(input.Predictions) == 0 {
		return fmt.Errorf("%w: at least one prediction is required", ErrInvalidInput)
	}

	item, exists, err := s.roundRepo.GetRound(ctx, input.SeasonID, input.RoundNumber)
	if err != nil {
		return fmt.Errorf("get round for prediction submit: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: round %d season=%s", ErrNotFound, input.RoundNumber, input.SeasonID)
	}
	if item.HasStart() && !s.now().UTC().Before(item.StartAt) {
		return fmt.Errorf("%w: round %d is locked for predictions", ErrInvalidState, input.RoundNumber)
	}

	matches, err := s.roundRepo.ListMatches(ctx, input.SeasonID, input.RoundNumber)
	if err != nil {
		return fmt.Errorf("list matches for prediction submit: %w", err)
	}
	matchIDs := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		matchIDs[m.ID] = struct{}{}
	}

	for _, p := range input.Predictions {
		if strings.TrimSpace(p.MatchID) == "" {
			return fmt.Errorf("%w: match id is required", ErrInvalidInput)
		}
		if p.HomeGoals < 0 || p.AwayGoals < 0 {
			return fmt.Errorf("%w: predicted goals must not be negative", ErrInvalidInput)
		}
		if _, ok := matchIDs[p.MatchID]; !ok {
			return fmt.Errorf("%w: match %s does not belong to round %d", ErrInvalidInput, p.MatchID, input.RoundNumber)
		}
	}

	for _, p := range input.Predictions {
		if err := s.predictionRepo.UpsertMatchPrediction(ctx, prediction.MatchPrediction{
			SeasonID:    input.SeasonID,
			RoundNumber: input.RoundNumber,
			MatchID:     p.MatchID,
			UserID:      input.UserID,
			HomeGoals:   p.HomeGoals,
			AwayGoals:   p.AwayGoals,
		}); err != nil {
			return fmt.Errorf("upsert prediction match=%s user=%s: %w", p.MatchID, input.UserID, err)
		}
	}
	return nil
}

// SubmitPreseasonPicks stores the user's fixed-category picks. Picks lock once
// the season has started.
func (s *PredictionService) SubmitPreseasonPicks(ctx context.Context, picks prediction.PreseasonPicks) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitPreseasonPicks")
	defer span.End()

	if strings.TrimSpace(picks.SeasonID) == "" || strings.TrimSpace(picks.UserID) == "" {
		return fmt.Errorf("%w: season id and user id are required", ErrInvalidInput)
	}

	item, exists, err := s.seasonRepo.Get(ctx, picks.SeasonID)
	if err != nil {
		return fmt.Errorf("get season for preseason picks: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: season %s", ErrNotFound, picks.SeasonID)
	}
	if !item.StartAt.IsZero() && !s.now().UTC().Before(item.StartAt) {
		return fmt.Errorf("%w: season %s has started, preseason picks are locked", ErrInvalidState, picks.SeasonID)
	}

	if err := s.predictionRepo.UpsertPreseasonPicks(ctx, picks); err != nil {
		return fmt.Errorf("upsert preseason picks user=%s: %w", picks.UserID, err)
	}
	return nil
}

func (s *PredictionService) GetUserRoundPredictions(ctx context.Context, seasonID string, roundNumber int, userID string) ([]prediction.MatchPrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetUserRoundPredictions")
	defer span.End()

	items, err := s.predictionRepo.ListUserRoundPredictions(ctx, seasonID, roundNumber, userID)
	if err != nil {
		return nil, fmt.Errorf("list user round predictions: %w", err)
	}
	return items, nil
}

func (s *PredictionService) GetPreseasonPicks(ctx context.Context, seasonID, userID string) (prediction.PreseasonPicks, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetPreseasonPicks")
	defer span.End()

	picks, exists, err := s.predictionRepo.GetPreseasonPicks(ctx, seasonID, userID)
	if err != nil {
		return prediction.PreseasonPicks{}, fmt.Errorf("get preseason picks: %w", err)
	}
	if !exists {
		return prediction.PreseasonPicks{}, fmt.Errorf("%w: preseason picks user=%s season=%s", ErrNotFound, userID, seasonID)
	}
	return picks, nil
}
