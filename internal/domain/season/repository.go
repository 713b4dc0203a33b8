package season

import "context"

type Repository interface {
	Get(ctx context.Context, seasonID string) (Season, bool, error)
	Upsert(ctx context.Context, item Season) error
	// SetOutcomes replaces the season's finalized outcome fields.
	SetOutcomes(ctx context.Context, seasonID string, outcomes Outcomes) error
}
