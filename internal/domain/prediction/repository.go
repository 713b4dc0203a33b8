package prediction

import "context"

type Repository interface {
	// ListRoundPredictions returns every user's predictions for the round.
	ListRoundPredictions(ctx context.Context, seasonID string, roundNumber int) ([]MatchPrediction, error)
	ListUserRoundPredictions(ctx context.Context, seasonID string, roundNumber int, userID string) ([]MatchPrediction, error)
	UpsertMatchPrediction(ctx context.Context, item MatchPrediction) error
	// SaveMatchPredictionScore updates the cached scoring fields of an
	// existing prediction.
	SaveMatchPredictionScore(ctx context.Context, item MatchPrediction) error

	GetPreseasonPicks(ctx context.Context, seasonID, userID string) (PreseasonPicks, bool, error)
	UpsertPreseasonPicks(ctx context.Context, item PreseasonPicks) error
	ListPreseasonPicksBySeason(ctx context.Context, seasonID string) ([]PreseasonPicks, error)

	// ListUserIDsBySeason returns the ids of every user holding any round or
	// preseason prediction in the season.
	ListUserIDsBySeason(ctx context.Context, seasonID string) ([]string, error)
}
