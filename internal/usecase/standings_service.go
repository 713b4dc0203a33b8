package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/IdoCohen138/league-predictions/internal/domain/standings"
	"github.com/IdoCohen138/league-predictions/internal/platform/cache"
)

// StandingsService serves the leaderboard and per-user score views. The
// leaderboard is cached with a short TTL; writes that move points call
// InvalidateSeason.
type StandingsService struct {
	standingsRepo standings.Repository
	leaderboards  *cache.Store
}

type LeaderboardEntry struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"user_id"`
	TotalPoints     int    `json:"total_points"`
	PreseasonPoints int    `json:"preseason_points"`
	ExactCount      int    `json:"exact_count"`
	DirectionCount  int    `json:"direction_count"`
}

type UserScore struct {
	SeasonID        string      `json:"season_id"`
	UserID          string      `json:"user_id"`
	TotalPoints     int         `json:"total_points"`
	PreseasonPoints int         `json:"preseason_points"`
	RoundPoints     map[int]int `json:"round_points"`
	ExactCount      int         `json:"exact_count"`
	DirectionCount  int         `json:"direction_count"`
}

func NewStandingsService(standingsRepo standings.Repository, leaderboards *cache.Store) *StandingsService {
	return &StandingsService{
		standingsRepo: standingsRepo,
		leaderboards:  leaderboards,
	}
}

func leaderboardCacheKey(seasonID string) string {
	return "leaderboard:" + seasonID
}

// Leaderboard ranks the season's users by total points descending, ties
// broken by user id ascending. Users on equal points share a rank.
func (s *StandingsService) Leaderboard(ctx context.Context, seasonID string) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Leaderboard")
	defer span.End()

	if strings.TrimSpace(seasonID) == "" {
		return nil, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	if s.leaderboards == nil {
		return s.loadLeaderboard(ctx, seasonID)
	}

	value, err := s.leaderboards.GetOrLoad(ctx, leaderboardCacheKey(seasonID), func(ctx context.Context) (any, error) {
		return s.loadLeaderboard(ctx, seasonID)
	})
	if err != nil {
		return nil, err
	}
	entries, ok := value.([]LeaderboardEntry)
	if !ok {
		return s.loadLeaderboard(ctx, seasonID)
	}
	return entries, nil
}

func (s *StandingsService) loadLeaderboard(ctx context.Context, seasonID string) ([]LeaderboardEntry, error) {
	aggregates, err := s.standingsRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list aggregates for leaderboard: %w", err)
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		if aggregates[i].TotalPoints != aggregates[j].TotalPoints {
			return aggregates[i].TotalPoints > aggregates[j].TotalPoints
		}
		return aggregates[i].UserID < aggregates[j].UserID
	})

	entries := make([]LeaderboardEntry, 0, len(aggregates))
	lastPoints := 0
	rank := 0
	for idx, item := range aggregates {
		if idx == 0 || item.TotalPoints != lastPoints {
			rank = idx + 1
			lastPoints = item.TotalPoints
		}
		entries = append(entries, LeaderboardEntry{
			Rank:            rank,
			UserID:          item.UserID,
			TotalPoints:     item.TotalPoints,
			PreseasonPoints: item.PreseasonPoints,
			ExactCount:      item.ExactCount,
			DirectionCount:  item.DirectionCount,
		})
	}
	return entries, nil
}

// GetUserScore returns one user's aggregate view.
func (s *StandingsService) GetUserScore(ctx context.Context, seasonID, userID string) (UserScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetUserScore")
	defer span.End()

	if strings.TrimSpace(seasonID) == "" || strings.TrimSpace(userID) == "" {
		return UserScore{}, fmt.Errorf("%w: season id and user id are required", ErrInvalidInput)
	}

	item, exists, err := s.standingsRepo.Get(ctx, seasonID, userID)
	if err != nil {
		return UserScore{}, fmt.Errorf("get aggregate for user score: %w", err)
	}
	if !exists {
		return UserScore{}, fmt.Errorf("%w: no score for user %s season=%s", ErrNotFound, userID, seasonID)
	}

	return UserScore{
		SeasonID:        item.SeasonID,
		UserID:          item.UserID,
		TotalPoints:     item.TotalPoints,
		PreseasonPoints: item.PreseasonPoints,
		RoundPoints:     item.RoundPoints,
		ExactCount:      item.ExactCount,
		DirectionCount:  item.DirectionCount,
	}, nil
}

// InvalidateSeason drops the cached leaderboard after a write moved points.
func (s *StandingsService) InvalidateSeason(ctx context.Context, seasonID string) {
	if s.leaderboards == nil {
		return
	}
	s.leaderboards.Invalidate(ctx, leaderboardCacheKey(seasonID))
}
