package memory

import (
	"context"
	"sync"

	"github.com/IdoCohen138/league-predictions/internal/domain/season"
)

type SeasonRepository struct {
	mu    sync.RWMutex
	items map[string]season.Season
}

func NewSeasonRepository(seasons []season.Season) *SeasonRepository {
	items := make(map[string]season.Season, len(seasons))
	for _, item := range seasons {
		items[item.ID] = item
	}
	return &SeasonRepository{items: items}
}

func (r *SeasonRepository) Get(_ context.Context, seasonID string) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[seasonID]
	if !ok {
		return season.Season{}, false, nil
	}
	return item, true, nil
}

func (r *SeasonRepository) Upsert(_ context.Context, item season.Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}

func (r *SeasonRepository) SetOutcomes(_ context.Context, seasonID string, outcomes season.Outcomes) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[seasonID]
	if !ok {
		item = season.Season{ID: seasonID}
	}
	item.Outcomes = outcomes
	r.items[seasonID] = item
	return nil
}

var _ season.Repository = (*SeasonRepository)(nil)
