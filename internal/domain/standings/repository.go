package standings

import "context"

type Repository interface {
	Get(ctx context.Context, seasonID, userID string) (Aggregate, bool, error)
	// ApplyDelta merges the delta into the user's aggregate with
	// read-current/merge-write semantics, creating the aggregate when the
	// user has never been scored.
	ApplyDelta(ctx context.Context, seasonID, userID string, delta Delta) error
	// SetPreseasonPoints replaces the preseason scalar and rebalances the
	// total so the conservation invariant keeps holding.
	SetPreseasonPoints(ctx context.Context, seasonID, userID string, points int) error
	// Replace overwrites the whole aggregate. Recompute uses this; the
	// scoring engines never do.
	Replace(ctx context.Context, item Aggregate) error
	ListBySeason(ctx context.Context, seasonID string) ([]Aggregate, error)
}
