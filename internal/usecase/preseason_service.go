package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
	"github.com/IdoCohen138/league-predictions/internal/domain/scoring"
	"github.com/IdoCohen138/league-predictions/internal/domain/season"
	"github.com/IdoCohen138/league-predictions/internal/platform/logging"
)

// PreseasonService finalizes season outcomes and settles the season-long
// category awards. Settling rewrites each user's preseason scalar instead of
// adding to it, so a second pass converges.
type PreseasonService struct {
	seasonRepo     season.Repository
	predictionRepo prediction.Repository
	standingsRepo  standingsWriter
	logger         *logging.Logger
	now            func() time.Time
}

// standingsWriter is the slice of the standings contract the preseason
// engine needs.
type standingsWriter interface {
	SetPreseasonPoints(ctx context.Context, seasonID, userID string, points int) error
}

type ScorePreseasonResult struct {
	SeasonID     string `json:"season_id"`
	UsersUpdated int    `json:"users_updated"`
}

func NewPreseasonService(
	seasonRepo season.Repository,
	predictionRepo prediction.Repository,
	standingsRepo standingsWriter,
	logger *logging.Logger,
) *PreseasonService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PreseasonService{
		seasonRepo:     seasonRepo,
		predictionRepo: predictionRepo,
		standingsRepo:  standingsRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// FinalizeOutcomes records the season's final category outcomes.
func (s *PreseasonService) FinalizeOutcomes(ctx context.Context, seasonID string, outcomes season.Outcomes) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PreseasonService.FinalizeOutcomes")
	defer span.End()

	if strings.TrimSpace(seasonID) == "" {
		return fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	_, exists, err := s.seasonRepo.Get(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("get season for outcome finalization: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: season %s", ErrNotFound, seasonID)
	}

	if err := s.seasonRepo.SetOutcomes(ctx, seasonID, outcomes); err != nil {
		return fmt.Errorf("set season outcomes %s: %w", seasonID, err)
	}
	return nil
}

// ScorePreseason settles the category awards for every user with picks.
func (s *PreseasonService) ScorePreseason(ctx context.Context, seasonID string) (ScorePreseasonResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PreseasonService.ScorePreseason")
	defer span.End()

	if strings.TrimSpace(seasonID) == "" {
		return ScorePreseasonResult{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	item, exists, err := s.seasonRepo.Get(ctx, seasonID)
	if err != nil {
		return ScorePreseasonResult{}, fmt.Errorf("get season for preseason scoring: %w", err)
	}
	if !exists {
		return ScorePreseasonResult{}, fmt.Errorf("%w: season %s", ErrNotFound, seasonID)
	}
	if !item.Outcomes.Finalized() {
		return ScorePreseasonResult{}, fmt.Errorf("%w: season %s outcomes are not finalized", ErrInvalidState, seasonID)
	}

	picks, err := s.predictionRepo.ListPreseasonPicksBySeason(ctx, seasonID)
	if err != nil {
		return ScorePreseasonResult{}, fmt.Errorf("list preseason picks for scoring: %w", err)
	}

	result := ScorePreseasonResult{SeasonID: seasonID}
	for _, userPicks := range picks {
		points := preseasonPointsFor(userPicks, item.Outcomes)
		if err := s.standingsRepo.SetPreseasonPoints(ctx, seasonID, userPicks.UserID, points); err != nil {
			return result, fmt.Errorf("set preseason points user=%s: %w", userPicks.UserID, err)
		}
		result.UsersUpdated++
	}

	s.logger.InfoContext(ctx, "preseason scored",
		"season_id", seasonID,
		"users_updated", result.UsersUpdated,
	)
	return result, nil
}

// preseasonPointsFor awards champion 10, each correctly picked relegated team
// 5, top scorer 7 and top assists 5. The cup winner pick is stored for
// display only and never scores.
func preseasonPointsFor(picks prediction.PreseasonPicks, outcomes season.Outcomes) int {
	points := 0
	if picks.ChampionTeamID != "" && picks.ChampionTeamID == outcomes.ChampionTeamID {
		points += scoring.AwardChampion
	}
	for _, relegated := range []string{outcomes.RelegatedTeamID1, outcomes.RelegatedTeamID2} {
		if relegated == "" {
			continue
		}
		if picks.RelegatedTeamID1 == relegated || picks.RelegatedTeamID2 == relegated {
			points += scoring.AwardRelegation
		}
	}
	if picks.TopScorerPlayerID != "" && picks.TopScorerPlayerID == outcomes.TopScorerPlayerID {
		points += scoring.AwardTopScorer
	}
	if picks.TopAssistsPlayerID != "" && picks.TopAssistsPlayerID == outcomes.TopAssistsPlayerID {
		points += scoring.AwardTopAssists
	}
	return points
}
