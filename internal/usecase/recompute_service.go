package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
	"github.com/IdoCohen138/league-predictions/internal/domain/round"
	"github.com/IdoCohen138/league-predictions/internal/domain/season"
	"github.com/IdoCohen138/league-predictions/internal/domain/standings"
	"github.com/IdoCohen138/league-predictions/internal/platform/logging"
	"github.com/IdoCohen138/league-predictions/internal/platform/resilience"
)

const defaultRecomputeMaxWorkers = 4

// RecomputeService is the repair path: it rolls rounds back out of the
// ledger and rebuilds aggregates from scratch. Rollback only ever subtracts
// what is currently cached on the predictions; it never re-runs scoring.
type RecomputeService struct {
	seasonRepo     season.Repository
	roundRepo      round.Repository
	predictionRepo prediction.Repository
	standingsRepo  standings.Repository
	locks          *resilience.KeyedMutex
	logger         *logging.Logger
	now            func() time.Time

	maxWorkers int
}

type DeleteRoundResult struct {
	SeasonID      string `json:"season_id"`
	RoundNumber   int    `json:"round_number"`
	UsersAdjusted int    `json:"users_adjusted"`
}

const (
	recomputeStatusSuccess = "success"
	recomputeStatusFailed  = "failed"
)

type UserRecomputeResult struct {
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

type SeasonRecomputeResult struct {
	SeasonID     string                `json:"season_id"`
	UserCount    int                   `json:"user_count"`
	SuccessCount int                   `json:"success_count"`
	FailedCount  int                   `json:"failed_count"`
	WorkerCount  int                   `json:"worker_count"`
	Tasks        []UserRecomputeResult `json:"tasks"`
}

func NewRecomputeService(
	seasonRepo season.Repository,
	roundRepo round.Repository,
	predictionRepo prediction.Repository,
	standingsRepo standings.Repository,
	locks *resilience.KeyedMutex,
	logger *logging.Logger,
) *RecomputeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecomputeService{
		seasonRepo:     seasonRepo,
		roundRepo:      roundRepo,
		predictionRepo: predictionRepo,
		standingsRepo:  standingsRepo,
		locks:          locks,
		logger:         logger,
		now:            time.Now,
		maxWorkers:     defaultRecomputeMaxWorkers,
	}
}

// SetMaxWorkers bounds the season-wide recompute pool. Values below 1 are
// ignored.
func (s *RecomputeService) SetMaxWorkers(n int) {
	if n >= 1 {
		s.maxWorkers = n
	}
}

// DeleteRound rolls a round back out of every affected aggregate and then
// removes the round and its matches. The subtraction uses the points cached
// on each prediction at deletion time, so totals return to their pre-round
// values even when the scoring rule has changed since.
func (s *RecomputeService) DeleteRound(ctx context.Context, seasonID string, roundNumber int) (DeleteRoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.DeleteRound")
	defer span.End()

	if strings.TrimSpace(seasonID) == "" {
		return DeleteRoundResult{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if roundNumber <= 0 {
		return DeleteRoundResult{}, fmt.Errorf("%w: round number must be greater than zero", ErrInvalidInput)
	}

	key := reconcileLockKey(seasonID, roundNumber)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	_, exists, err := s.roundRepo.GetRound(ctx, seasonID, roundNumber)
	if err != nil {
		return DeleteRoundResult{}, fmt.Errorf("get round for deletion: %w", err)
	}
	if !exists {
		return DeleteRoundResult{}, fmt.Errorf("%w: round %d season=%s", ErrNotFound, roundNumber, seasonID)
	}

	predictions, err := s.predictionRepo.ListRoundPredictions(ctx, seasonID, roundNumber)
	if err != nil {
		return DeleteRoundResult{}, fmt.Errorf("list predictions for round deletion: %w", err)
	}

	type rollback struct {
		points    int
		exact     int
		direction int
	}
	byUser := make(map[string]rollback)
	for _, p := range predictions {
		entry := byUser[p.UserID]
		entry.points += p.Points
		entry.exact += boolToInt(p.IsExact)
		entry.direction += boolToInt(p.IsDirection)
		byUser[p.UserID] = entry
	}

	userIDs := make([]string, 0, len(byUser))
	for userID := range byUser {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	result := DeleteRoundResult{SeasonID: seasonID, RoundNumber: roundNumber}
	for _, userID := range userIDs {
		entry := byUser[userID]
		delta := standings.Delta{
			RoundNumber:    roundNumber,
			TotalPoints:    -entry.points,
			ExactCount:     -entry.exact,
			DirectionCount: -entry.direction,
			DropRoundEntry: true,
		}
		if err := s.standingsRepo.ApplyDelta(ctx, seasonID, userID, delta); err != nil {
			return result, fmt.Errorf("roll back round %d user=%s: %w", roundNumber, userID, err)
		}
		result.UsersAdjusted++
	}

	// The predictions survive the round for audit; their cached scoring
	// fields are cleared so nothing counts them again.
	for _, p := range predictions {
		cleared := p
		cleared.Points = 0
		cleared.IsExact = false
		cleared.IsDirection = false
		cleared.ScoredAt = nil
		if err := s.predictionRepo.SaveMatchPredictionScore(ctx, cleared); err != nil {
			return result, fmt.Errorf("clear prediction score user=%s match=%s: %w", p.UserID, p.MatchID, err)
		}
	}

	if err := s.roundRepo.DeleteRound(ctx, seasonID, roundNumber); err != nil {
		return result, fmt.Errorf("delete round %d season=%s: %w", roundNumber, seasonID, err)
	}

	s.logger.InfoContext(ctx, "round deleted",
		"season_id", seasonID,
		"round_number", roundNumber,
		"users_adjusted", result.UsersAdjusted,
	)
	return result, nil
}

// RecomputeUser rebuilds one user's aggregate from zero: every round is
// replayed against current results and predictions (uniqueness sets rebuilt
// from all users), preseason is resettled, and the aggregate is overwritten.
func (s *RecomputeService) RecomputeUser(ctx context.Context, seasonID, userID string) (standings.Aggregate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RecomputeUser")
	defer span.End()

	if strings.TrimSpace(seasonID) == "" || strings.TrimSpace(userID) == "" {
		return standings.Aggregate{}, fmt.Errorf("%w: season id and user id are required", ErrInvalidInput)
	}

	rounds, err := s.roundRepo.ListRounds(ctx, seasonID)
	if err != nil {
		return standings.Aggregate{}, fmt.Errorf("list rounds for recompute: %w", err)
	}

	unlock := s.lockRounds(seasonID, rounds)
	defer unlock()

	return s.recomputeUserLocked(ctx, seasonID, userID, rounds)
}

// RecomputeSeason fans RecomputeUser out over every user who participated in
// the season. Failures are reported per user; one failure does not stop the
// others.
func (s *RecomputeService) RecomputeSeason(ctx context.Context, seasonID string) (SeasonRecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RecomputeSeason")
	defer span.End()

	if strings.TrimSpace(seasonID) == "" {
		return SeasonRecomputeResult{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	rounds, err := s.roundRepo.ListRounds(ctx, seasonID)
	if err != nil {
		return SeasonRecomputeResult{}, fmt.Errorf("list rounds for season recompute: %w", err)
	}
	userIDs, err := s.predictionRepo.ListUserIDsBySeason(ctx, seasonID)
	if err != nil {
		return SeasonRecomputeResult{}, fmt.Errorf("list users for season recompute: %w", err)
	}

	workerCount := s.maxWorkers
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(userIDs) && len(userIDs) > 0 {
		workerCount = len(userIDs)
	}

	result := SeasonRecomputeResult{
		SeasonID:    seasonID,
		UserCount:   len(userIDs),
		WorkerCount: workerCount,
		Tasks:       make([]UserRecomputeResult, 0, len(userIDs)),
	}
	if len(userIDs) == 0 {
		return result, nil
	}

	unlock := s.lockRounds(seasonID, rounds)
	defer unlock()

	results := make(chan UserRecomputeResult, len(userIDs))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return result, fmt.Errorf("create recompute worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, userID := range userIDs {
		userID := userID
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := UserRecomputeResult{UserID: userID, Status: recomputeStatusSuccess}
			if _, err := s.recomputeUserLocked(ctx, seasonID, userID, rounds); err != nil {
				row.Status = recomputeStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
			} else {
				successCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()
			results <- row
		}); err != nil {
			workers.Done()
			return result, fmt.Errorf("submit recompute task user=%s: %w", userID, err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].UserID < result.Tasks[j].UserID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "season recomputed",
		"season_id", seasonID,
		"users", result.UserCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

// lockRounds takes every round's reconcile lock in ascending order so a
// full replay cannot interleave with incremental scoring or deletion.
func (s *RecomputeService) lockRounds(seasonID string, rounds []round.Round) func() {
	numbers := make([]int, 0, len(rounds))
	for _, item := range rounds {
		numbers = append(numbers, item.Number)
	}
	sort.Ints(numbers)

	keys := make([]string, 0, len(numbers))
	for _, number := range numbers {
		key := reconcileLockKey(seasonID, number)
		s.locks.Lock(key)
		keys = append(keys, key)
	}
	return func() {
		for i := len(keys) - 1; i >= 0; i-- {
			s.locks.Unlock(keys[i])
		}
	}
}

func (s *RecomputeService) recomputeUserLocked(ctx context.Context, seasonID, userID string, rounds []round.Round) (standings.Aggregate, error) {
	scoredAt := s.now().UTC()
	aggregate := standings.Aggregate{
		SeasonID:    seasonID,
		UserID:      userID,
		RoundPoints: make(map[int]int),
	}

	for _, item := range rounds {
		matches, err := s.roundRepo.ListMatches(ctx, seasonID, item.Number)
		if err != nil {
			return standings.Aggregate{}, fmt.Errorf("list matches round=%d: %w", item.Number, err)
		}
		scorable := make(map[string]round.Match)
		for _, m := range matches {
			if m.IsCancelled || !m.HasResult() {
				continue
			}
			scorable[m.ID] = m
		}

		predictions, err := s.predictionRepo.ListRoundPredictions(ctx, seasonID, item.Number)
		if err != nil {
			return standings.Aggregate{}, fmt.Errorf("list predictions round=%d: %w", item.Number, err)
		}

		// A match can stop being scorable after it was scored, typically a
		// late cancellation. The replay excludes it, so the stale cached
		// points must go too or a later rollback would subtract them again.
		for _, p := range predictions {
			if p.UserID != userID {
				continue
			}
			if _, ok := scorable[p.MatchID]; ok {
				continue
			}
			if p.Points == 0 && !p.IsExact && !p.IsDirection && !p.Scored() {
				continue
			}
			cleared := p
			cleared.Points = 0
			cleared.IsExact = false
			cleared.IsDirection = false
			cleared.ScoredAt = nil
			if err := s.predictionRepo.SaveMatchPredictionScore(ctx, cleared); err != nil {
				return standings.Aggregate{}, fmt.Errorf("clear stale prediction score match=%s: %w", p.MatchID, err)
			}
		}
		if len(scorable) == 0 {
			continue
		}

		var userPlan *userScorePlan
		for _, plan := range buildUserScorePlans(scorable, predictions) {
			if plan.userID == userID {
				plan := plan
				userPlan = &plan
				break
			}
		}
		if userPlan == nil {
			continue
		}

		roundPoints := 0
		for _, row := range userPlan.rows {
			roundPoints += row.score.Points
			aggregate.ExactCount += boolToInt(row.score.IsExact())
			aggregate.DirectionCount += boolToInt(row.score.IsDirection())

			updated := row.stored
			updated.Points = row.score.Points
			updated.IsExact = row.score.IsExact()
			updated.IsDirection = row.score.IsDirection()
			updated.ScoredAt = &scoredAt
			if err := s.predictionRepo.SaveMatchPredictionScore(ctx, updated); err != nil {
				return standings.Aggregate{}, fmt.Errorf("refresh prediction score match=%s: %w", row.stored.MatchID, err)
			}
		}
		aggregate.RoundPoints[item.Number] = roundPoints
	}

	seasonItem, exists, err := s.seasonRepo.Get(ctx, seasonID)
	if err != nil {
		return standings.Aggregate{}, fmt.Errorf("get season for recompute: %w", err)
	}
	if exists && seasonItem.Outcomes.Finalized() {
		picks, hasPicks, err := s.predictionRepo.GetPreseasonPicks(ctx, seasonID, userID)
		if err != nil {
			return standings.Aggregate{}, fmt.Errorf("get preseason picks for recompute: %w", err)
		}
		if hasPicks {
			aggregate.PreseasonPoints = preseasonPointsFor(picks, seasonItem.Outcomes)
		}
	}

	aggregate.TotalPoints = aggregate.PreseasonPoints + aggregate.RoundPointsSum()
	aggregate.UpdatedAt = scoredAt

	if err := s.standingsRepo.Replace(ctx, aggregate); err != nil {
		return standings.Aggregate{}, fmt.Errorf("replace aggregate user=%s: %w", userID, err)
	}
	return aggregate, nil
}
