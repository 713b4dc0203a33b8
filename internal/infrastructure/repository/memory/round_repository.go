package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/IdoCohen138/league-predictions/internal/domain/round"
)

type roundKey struct {
	seasonID string
	number   int
}

type RoundRepository struct {
	mu      sync.RWMutex
	rounds  map[roundKey]round.Round
	matches map[roundKey][]round.Match
}

func NewRoundRepository(rounds []round.Round, matches []round.Match) *RoundRepository {
	r := &RoundRepository{
		rounds:  make(map[roundKey]round.Round, len(rounds)),
		matches: make(map[roundKey][]round.Match),
	}
	for _, item := range rounds {
		r.rounds[roundKey{seasonID: item.SeasonID, number: item.Number}] = item
	}
	for _, item := range matches {
		key := roundKey{seasonID: item.SeasonID, number: item.RoundNumber}
		r.matches[key] = append(r.matches[key], item)
	}
	return r
}

func (r *RoundRepository) GetRound(_ context.Context, seasonID string, number int) (round.Round, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.rounds[roundKey{seasonID: seasonID, number: number}]
	if !ok {
		return round.Round{}, false, nil
	}
	return item, true, nil
}

func (r *RoundRepository) ListRounds(_ context.Context, seasonID string) ([]round.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]round.Round, 0)
	for key, item := range r.rounds {
		if key.seasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *RoundRepository) UpsertRound(_ context.Context, item round.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rounds[roundKey{seasonID: item.SeasonID, number: item.Number}] = item
	return nil
}

func (r *RoundRepository) DeleteRound(_ context.Context, seasonID string, number int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := roundKey{seasonID: seasonID, number: number}
	delete(r.rounds, key)
	delete(r.matches, key)
	return nil
}

func (r *RoundRepository) ListMatches(_ context.Context, seasonID string, roundNumber int) ([]round.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.matches[roundKey{seasonID: seasonID, number: roundNumber}]
	out := make([]round.Match, len(items))
	copy(out, items)
	return out, nil
}

func (r *RoundRepository) UpsertMatch(_ context.Context, item round.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := roundKey{seasonID: item.SeasonID, number: item.RoundNumber}
	items := r.matches[key]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return nil
		}
	}
	r.matches[key] = append(items, item)
	return nil
}

func (r *RoundRepository) SetMatchResult(_ context.Context, seasonID string, roundNumber int, matchID string, homeScore, awayScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := roundKey{seasonID: seasonID, number: roundNumber}
	items := r.matches[key]
	for i := range items {
		if items[i].ID == matchID {
			home := homeScore
			away := awayScore
			items[i].HomeScore = &home
			items[i].AwayScore = &away
			return nil
		}
	}
	return fmt.Errorf("%w: %s round=%d season=%s", round.ErrMatchNotFound, matchID, roundNumber, seasonID)
}

func (r *RoundRepository) MarkMatchScored(_ context.Context, seasonID string, roundNumber int, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := roundKey{seasonID: seasonID, number: roundNumber}
	items := r.matches[key]
	for i := range items {
		if items[i].ID == matchID {
			items[i].PointsCalculated = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s round=%d season=%s", round.ErrMatchNotFound, matchID, roundNumber, seasonID)
}

var _ round.Repository = (*RoundRepository)(nil)
