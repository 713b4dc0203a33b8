package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
)

type predictionKey struct {
	seasonID string
	matchID  string
	userID   string
}

type picksKey struct {
	seasonID string
	userID   string
}

type PredictionRepository struct {
	mu          sync.RWMutex
	predictions map[predictionKey]prediction.MatchPrediction
	picks       map[picksKey]prediction.PreseasonPicks
}

func NewPredictionRepository(predictions []prediction.MatchPrediction, picks []prediction.PreseasonPicks) *PredictionRepository {
	r := &PredictionRepository{
		predictions: make(map[predictionKey]prediction.MatchPrediction, len(predictions)),
		picks:       make(map[picksKey]prediction.PreseasonPicks, len(picks)),
	}
	for _, item := range predictions {
		r.predictions[predictionKeyOf(item)] = item
	}
	for _, item := range picks {
		r.picks[picksKey{seasonID: item.SeasonID, userID: item.UserID}] = item
	}
	return r
}

func predictionKeyOf(item prediction.MatchPrediction) predictionKey {
	return predictionKey{seasonID: item.SeasonID, matchID: item.MatchID, userID: item.UserID}
}

func (r *PredictionRepository) ListRoundPredictions(_ context.Context, seasonID string, roundNumber int) ([]prediction.MatchPrediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.MatchPrediction, 0)
	for _, item := range r.predictions {
		if item.SeasonID == seasonID && item.RoundNumber == roundNumber {
			out = append(out, item)
		}
	}
	sortPredictions(out)
	return out, nil
}

func (r *PredictionRepository) ListUserRoundPredictions(_ context.Context, seasonID string, roundNumber int, userID string) ([]prediction.MatchPrediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.MatchPrediction, 0)
	for _, item := range r.predictions {
		if item.SeasonID == seasonID && item.RoundNumber == roundNumber && item.UserID == userID {
			out = append(out, item)
		}
	}
	sortPredictions(out)
	return out, nil
}

func (r *PredictionRepository) UpsertMatchPrediction(_ context.Context, item prediction.MatchPrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.predictions[predictionKeyOf(item)] = item
	return nil
}

func (r *PredictionRepository) SaveMatchPredictionScore(_ context.Context, item prediction.MatchPrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKeyOf(item)
	current, ok := r.predictions[key]
	if !ok {
		return nil
	}
	current.Points = item.Points
	current.IsExact = item.IsExact
	current.IsDirection = item.IsDirection
	current.ScoredAt = item.ScoredAt
	r.predictions[key] = current
	return nil
}

func (r *PredictionRepository) GetPreseasonPicks(_ context.Context, seasonID, userID string) (prediction.PreseasonPicks, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.picks[picksKey{seasonID: seasonID, userID: userID}]
	if !ok {
		return prediction.PreseasonPicks{}, false, nil
	}
	return item, true, nil
}

func (r *PredictionRepository) UpsertPreseasonPicks(_ context.Context, item prediction.PreseasonPicks) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.picks[picksKey{seasonID: item.SeasonID, userID: item.UserID}] = item
	return nil
}

func (r *PredictionRepository) ListPreseasonPicksBySeason(_ context.Context, seasonID string) ([]prediction.PreseasonPicks, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.PreseasonPicks, 0)
	for _, item := range r.picks {
		if item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *PredictionRepository) ListUserIDsBySeason(_ context.Context, seasonID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, item := range r.predictions {
		if item.SeasonID == seasonID {
			seen[item.UserID] = struct{}{}
		}
	}
	for key := range r.picks {
		if key.seasonID == seasonID {
			seen[key.userID] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for userID := range seen {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out, nil
}

func sortPredictions(items []prediction.MatchPrediction) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].UserID != items[j].UserID {
			return items[i].UserID < items[j].UserID
		}
		return items[i].MatchID < items[j].MatchID
	})
}

var _ prediction.Repository = (*PredictionRepository)(nil)
