package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/standings"
)

type aggregateKey struct {
	seasonID string
	userID   string
}

type StandingsRepository struct {
	mu    sync.Mutex
	items map[aggregateKey]standings.Aggregate
	now   func() time.Time
}

func NewStandingsRepository() *StandingsRepository {
	return &StandingsRepository{
		items: make(map[aggregateKey]standings.Aggregate),
		now:   time.Now,
	}
}

func (r *StandingsRepository) Get(_ context.Context, seasonID, userID string) (standings.Aggregate, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[aggregateKey{seasonID: seasonID, userID: userID}]
	if !ok {
		return standings.Aggregate{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *StandingsRepository) ApplyDelta(_ context.Context, seasonID, userID string, delta standings.Delta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := aggregateKey{seasonID: seasonID, userID: userID}
	item, ok := r.items[key]
	if !ok {
		item = standings.Aggregate{SeasonID: seasonID, UserID: userID, RoundPoints: make(map[int]int)}
	} else {
		item = item.Clone()
	}

	item.Apply(delta)
	item.UpdatedAt = r.now().UTC()
	r.items[key] = item
	return nil
}

func (r *StandingsRepository) SetPreseasonPoints(_ context.Context, seasonID, userID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := aggregateKey{seasonID: seasonID, userID: userID}
	item, ok := r.items[key]
	if !ok {
		item = standings.Aggregate{SeasonID: seasonID, UserID: userID, RoundPoints: make(map[int]int)}
	} else {
		item = item.Clone()
	}

	item.PreseasonPoints = points
	item.TotalPoints = points + item.RoundPointsSum()
	item.UpdatedAt = r.now().UTC()
	r.items[key] = item
	return nil
}

func (r *StandingsRepository) Replace(_ context.Context, item standings.Aggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := item.Clone()
	stored.UpdatedAt = r.now().UTC()
	r.items[aggregateKey{seasonID: item.SeasonID, userID: item.UserID}] = stored
	return nil
}

func (r *StandingsRepository) ListBySeason(_ context.Context, seasonID string) ([]standings.Aggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]standings.Aggregate, 0)
	for key, item := range r.items {
		if key.seasonID == seasonID {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

var _ standings.Repository = (*StandingsRepository)(nil)
