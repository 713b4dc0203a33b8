package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
	"github.com/IdoCohen138/league-predictions/internal/domain/round"
	"github.com/IdoCohen138/league-predictions/internal/domain/scoring"
	"github.com/IdoCohen138/league-predictions/internal/domain/standings"
	"github.com/IdoCohen138/league-predictions/internal/platform/logging"
	"github.com/IdoCohen138/league-predictions/internal/platform/resilience"
)

const defaultScoringMaxConcurrentUsers = 8

// RoundScoringService reconciles a round's match results into user points.
// A pass is re-runnable: the cached prior contribution of every prediction is
// subtracted before the fresh points are added, so a second run converges
// instead of double counting.
type RoundScoringService struct {
	roundRepo      round.Repository
	predictionRepo prediction.Repository
	standingsRepo  standings.Repository
	locks          *resilience.KeyedMutex
	logger         *logging.Logger
	now            func() time.Time

	maxConcurrentUsers int
}

type ScoreRoundInput struct {
	SeasonID    string
	RoundNumber int
	// Confirm acknowledges that matches still missing a result are skipped
	// and stay eligible for a later pass.
	Confirm bool
}

type ScoreRoundResult struct {
	SeasonID          string   `json:"season_id"`
	RoundNumber       int      `json:"round_number"`
	ScoredMatchIDs    []string `json:"scored_match_ids"`
	SkippedMatchIDs   []string `json:"skipped_match_ids"`
	CancelledMatchIDs []string `json:"cancelled_match_ids"`
	UsersUpdated      int      `json:"users_updated"`
	// RequiresConfirmation is set when unscored matches lack a result and
	// the caller did not confirm skipping them. Nothing was written.
	RequiresConfirmation bool `json:"requires_confirmation"`
}

func NewRoundScoringService(
	roundRepo round.Repository,
	predictionRepo prediction.Repository,
	standingsRepo standings.Repository,
	locks *resilience.KeyedMutex,
	logger *logging.Logger,
) *RoundScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RoundScoringService{
		roundRepo:          roundRepo,
		predictionRepo:     predictionRepo,
		standingsRepo:      standingsRepo,
		locks:              locks,
		logger:             logger,
		now:                time.Now,
		maxConcurrentUsers: defaultScoringMaxConcurrentUsers,
	}
}

// SetMaxConcurrentUsers bounds the per-user fan-out of a scoring pass.
// Values below 1 are ignored.
func (s *RoundScoringService) SetMaxConcurrentUsers(n int) {
	if n >= 1 {
		s.maxConcurrentUsers = n
	}
}

func reconcileLockKey(seasonID string, roundNumber int) string {
	return fmt.Sprintf("reconcile:%s:%d", seasonID, roundNumber)
}

// ScoreRound scores every resulted match of the round and merges the point
// differences into the affected users' aggregates. Failures for one user do
// not abort the others; the joined error reports every failed user and the
// pass can simply be re-run.
func (s *RoundScoringService) ScoreRound(ctx context.Context, input ScoreRoundInput) (ScoreRoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundScoringService.ScoreRound")
	defer span.End()

	if strings.TrimSpace(input.SeasonID) == "" {
		return ScoreRoundResult{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if input.RoundNumber <= 0 {
		return ScoreRoundResult{}, fmt.Errorf("%w: round number must be greater than zero", ErrInvalidInput)
	}

	key := reconcileLockKey(input.SeasonID, input.RoundNumber)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	_, exists, err := s.roundRepo.GetRound(ctx, input.SeasonID, input.RoundNumber)
	if err != nil {
		return ScoreRoundResult{}, fmt.Errorf("get round for scoring: %w", err)
	}
	if !exists {
		return ScoreRoundResult{}, fmt.Errorf("%w: round %d season=%s", ErrNotFound, input.RoundNumber, input.SeasonID)
	}

	matches, err := s.roundRepo.ListMatches(ctx, input.SeasonID, input.RoundNumber)
	if err != nil {
		return ScoreRoundResult{}, fmt.Errorf("list matches for scoring: %w", err)
	}

	result := ScoreRoundResult{
		SeasonID:          input.SeasonID,
		RoundNumber:       input.RoundNumber,
		ScoredMatchIDs:    []string{},
		SkippedMatchIDs:   []string{},
		CancelledMatchIDs: []string{},
	}

	scorable := make(map[string]round.Match)
	for _, m := range matches {
		switch {
		case m.IsCancelled:
			if m.HomeScore != nil || m.AwayScore != nil {
				return ScoreRoundResult{}, fmt.Errorf("%w: cancelled match %s carries a score", ErrInvalidState, m.ID)
			}
			result.CancelledMatchIDs = append(result.CancelledMatchIDs, m.ID)
		case m.HasPartialResult():
			return ScoreRoundResult{}, fmt.Errorf("%w: match %s has a partial result", ErrInvalidState, m.ID)
		case m.HasResult():
			scorable[m.ID] = m
			result.ScoredMatchIDs = append(result.ScoredMatchIDs, m.ID)
		default:
			result.SkippedMatchIDs = append(result.SkippedMatchIDs, m.ID)
		}
	}
	sort.Strings(result.ScoredMatchIDs)
	sort.Strings(result.SkippedMatchIDs)
	sort.Strings(result.CancelledMatchIDs)

	if len(result.SkippedMatchIDs) > 0 && !input.Confirm {
		result.ScoredMatchIDs = []string{}
		result.RequiresConfirmation = true
		return result, nil
	}
	if len(scorable) == 0 {
		return result, nil
	}

	predictions, err := s.predictionRepo.ListRoundPredictions(ctx, input.SeasonID, input.RoundNumber)
	if err != nil {
		return ScoreRoundResult{}, fmt.Errorf("list round predictions for scoring: %w", err)
	}

	plans := buildUserScorePlans(scorable, predictions)
	if len(plans) == 0 {
		if err := s.markMatchesScored(ctx, input.SeasonID, input.RoundNumber, result.ScoredMatchIDs); err != nil {
			return ScoreRoundResult{}, err
		}
		return result, nil
	}

	scoredAt := s.now().UTC()
	var usersUpdated atomic.Int32

	workers := pool.New().WithErrors().WithMaxGoroutines(s.maxConcurrentUsers)
	for _, plan := range plans {
		plan := plan
		workers.Go(func() error {
			if err := s.applyUserPlan(ctx, input.SeasonID, input.RoundNumber, plan, scoredAt); err != nil {
				return err
			}
			usersUpdated.Add(1)
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		result.UsersUpdated = int(usersUpdated.Load())
		return result, fmt.Errorf("score round %d season=%s: %w", input.RoundNumber, input.SeasonID, err)
	}
	result.UsersUpdated = int(usersUpdated.Load())

	if err := s.markMatchesScored(ctx, input.SeasonID, input.RoundNumber, result.ScoredMatchIDs); err != nil {
		return ScoreRoundResult{}, err
	}

	s.logger.InfoContext(ctx, "round scored",
		"season_id", input.SeasonID,
		"round_number", input.RoundNumber,
		"scored_matches", len(result.ScoredMatchIDs),
		"skipped_matches", len(result.SkippedMatchIDs),
		"users_updated", result.UsersUpdated,
	)
	return result, nil
}

// scoredPrediction pairs a stored prediction with its freshly computed score.
type scoredPrediction struct {
	stored prediction.MatchPrediction
	score  scoring.MatchScore
}

type userScorePlan struct {
	userID string
	rows   []scoredPrediction
}

// buildUserScorePlans computes fresh scores for every prediction on a
// resulted match, uniqueness bonus included, and groups them per user. The
// bonus is resolved per tier: exact predictors against the other exact
// predictions, direction predictors against the other correct-outcome
// predictions that were not exact.
func buildUserScorePlans(scorable map[string]round.Match, predictions []prediction.MatchPrediction) []userScorePlan {
	baseScores := make([]scoring.MatchScore, len(predictions))
	scoresByMatch := make(map[string][]scoring.MatchScore, len(scorable))
	for i, p := range predictions {
		m, ok := scorable[p.MatchID]
		if !ok {
			continue
		}
		score := scoring.ScoreMatch(p.HomeGoals, p.AwayGoals, *m.HomeScore, *m.AwayScore)
		baseScores[i] = score
		scoresByMatch[p.MatchID] = append(scoresByMatch[p.MatchID], score)
	}

	tiersByMatch := make(map[string]scoring.TierCounts, len(scoresByMatch))
	for matchID, scores := range scoresByMatch {
		tiersByMatch[matchID] = scoring.CountTiers(scores)
	}

	byUser := make(map[string][]scoredPrediction)
	for i, p := range predictions {
		if _, ok := scorable[p.MatchID]; !ok {
			continue
		}
		score := scoring.ApplyUniqueBonus(baseScores[i], tiersByMatch[p.MatchID])
		byUser[p.UserID] = append(byUser[p.UserID], scoredPrediction{stored: p, score: score})
	}

	userIDs := make([]string, 0, len(byUser))
	for userID := range byUser {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	out := make([]userScorePlan, 0, len(userIDs))
	for _, userID := range userIDs {
		out = append(out, userScorePlan{userID: userID, rows: byUser[userID]})
	}
	return out
}

// applyUserPlan merges one user's score differences into their aggregate and
// refreshes the cached prediction fields, one prediction at a time: subtract
// the cached prior contribution, add the fresh one. When refreshing the cache
// fails after the aggregate moved, a compensating delta rolls the aggregate
// back so a re-run stays convergent.
func (s *RoundScoringService) applyUserPlan(ctx context.Context, seasonID string, roundNumber int, plan userScorePlan, scoredAt time.Time) error {
	for _, row := range plan.rows {
		delta := standings.Delta{
			RoundNumber:    roundNumber,
			TotalPoints:    row.score.Points - row.stored.Points,
			RoundPoints:    row.score.Points - row.stored.Points,
			ExactCount:     boolToInt(row.score.IsExact()) - boolToInt(row.stored.IsExact),
			DirectionCount: boolToInt(row.score.IsDirection()) - boolToInt(row.stored.IsDirection),
		}
		if err := s.standingsRepo.ApplyDelta(ctx, seasonID, plan.userID, delta); err != nil {
			return fmt.Errorf("apply score delta user=%s match=%s: %w", plan.userID, row.stored.MatchID, err)
		}

		updated := row.stored
		updated.Points = row.score.Points
		updated.IsExact = row.score.IsExact()
		updated.IsDirection = row.score.IsDirection()
		updated.ScoredAt = &scoredAt
		if err := s.predictionRepo.SaveMatchPredictionScore(ctx, updated); err != nil {
			compensation := standings.Delta{
				RoundNumber:    roundNumber,
				TotalPoints:    -delta.TotalPoints,
				RoundPoints:    -delta.RoundPoints,
				ExactCount:     -delta.ExactCount,
				DirectionCount: -delta.DirectionCount,
			}
			if compErr := s.standingsRepo.ApplyDelta(ctx, seasonID, plan.userID, compensation); compErr != nil {
				s.logger.ErrorContext(ctx, "score compensation failed, aggregate needs recompute",
					"season_id", seasonID,
					"user_id", plan.userID,
					"match_id", row.stored.MatchID,
					"error", compErr,
				)
				return fmt.Errorf("save prediction score user=%s match=%s (compensation also failed: %v): %w", plan.userID, row.stored.MatchID, compErr, err)
			}
			return fmt.Errorf("save prediction score user=%s match=%s: %w", plan.userID, row.stored.MatchID, err)
		}
	}
	return nil
}

func (s *RoundScoringService) markMatchesScored(ctx context.Context, seasonID string, roundNumber int, matchIDs []string) error {
	for _, matchID := range matchIDs {
		if err := s.roundRepo.MarkMatchScored(ctx, seasonID, roundNumber, matchID); err != nil {
			return fmt.Errorf("mark match scored %s: %w", matchID, err)
		}
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
