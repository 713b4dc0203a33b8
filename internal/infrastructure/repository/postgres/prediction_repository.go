package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListRoundPredictions(ctx context.Context, seasonID string, roundNumber int) ([]prediction.MatchPrediction, error) {
	var rows []matchPredictionTableModel
	err := r.db.SelectContext(ctx, &rows, `
SELECT * FROM match_predictions
WHERE season_id = $1 AND round_number = $2
ORDER BY user_id, match_id`, seasonID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("list round predictions: %w", err)
	}

	out := make([]prediction.MatchPrediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PredictionRepository) ListUserRoundPredictions(ctx context.Context, seasonID string, roundNumber int, userID string) ([]prediction.MatchPrediction, error) {
	var rows []matchPredictionTableModel
	err := r.db.SelectContext(ctx, &rows, `
SELECT * FROM match_predictions
WHERE season_id = $1 AND round_number = $2 AND user_id = $3
ORDER BY match_id`, seasonID, roundNumber, userID)
	if err != nil {
		return nil, fmt.Errorf("list user round predictions: %w", err)
	}

	out := make([]prediction.MatchPrediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PredictionRepository) UpsertMatchPrediction(ctx context.Context, item prediction.MatchPrediction) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO match_predictions (season_id, round_number, match_id, user_id, home_goals, away_goals, points, is_exact, is_direction, scored_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (season_id, match_id, user_id) DO UPDATE SET
    round_number = EXCLUDED.round_number,
    home_goals = EXCLUDED.home_goals,
    away_goals = EXCLUDED.away_goals,
    points = EXCLUDED.points,
    is_exact = EXCLUDED.is_exact,
    is_direction = EXCLUDED.is_direction,
    scored_at = EXCLUDED.scored_at`,
		item.SeasonID,
		item.RoundNumber,
		item.MatchID,
		item.UserID,
		item.HomeGoals,
		item.AwayGoals,
		item.Points,
		item.IsExact,
		item.IsDirection,
		item.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert match prediction: %w", err)
	}
	return nil
}

// SaveMatchPredictionScore refreshes only the cached scoring fields. A
// prediction that no longer exists is not an error; there is nothing to cache.
func (r *PredictionRepository) SaveMatchPredictionScore(ctx context.Context, item prediction.MatchPrediction) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE match_predictions SET
    points = $4,
    is_exact = $5,
    is_direction = $6,
    scored_at = $7
WHERE season_id = $1 AND match_id = $2 AND user_id = $3`,
		item.SeasonID,
		item.MatchID,
		item.UserID,
		item.Points,
		item.IsExact,
		item.IsDirection,
		item.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("save match prediction score: %w", err)
	}
	return nil
}

func (r *PredictionRepository) GetPreseasonPicks(ctx context.Context, seasonID, userID string) (prediction.PreseasonPicks, bool, error) {
	var row preseasonPicksTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM preseason_picks WHERE season_id = $1 AND user_id = $2`, seasonID, userID)
	if err != nil {
		if isNotFound(err) {
			return prediction.PreseasonPicks{}, false, nil
		}
		return prediction.PreseasonPicks{}, false, fmt.Errorf("get preseason picks: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PredictionRepository) UpsertPreseasonPicks(ctx context.Context, item prediction.PreseasonPicks) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO preseason_picks (season_id, user_id, champion_team_id, cup_winner_team_id, relegated_team_id1, relegated_team_id2, top_scorer_player_id, top_assists_player_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (season_id, user_id) DO UPDATE SET
    champion_team_id = EXCLUDED.champion_team_id,
    cup_winner_team_id = EXCLUDED.cup_winner_team_id,
    relegated_team_id1 = EXCLUDED.relegated_team_id1,
    relegated_team_id2 = EXCLUDED.relegated_team_id2,
    top_scorer_player_id = EXCLUDED.top_scorer_player_id,
    top_assists_player_id = EXCLUDED.top_assists_player_id`,
		item.SeasonID,
		item.UserID,
		item.ChampionTeamID,
		item.CupWinnerTeamID,
		item.RelegatedTeamID1,
		item.RelegatedTeamID2,
		item.TopScorerPlayerID,
		item.TopAssistsPlayerID,
	)
	if err != nil {
		return fmt.Errorf("upsert preseason picks: %w", err)
	}
	return nil
}

func (r *PredictionRepository) ListPreseasonPicksBySeason(ctx context.Context, seasonID string) ([]prediction.PreseasonPicks, error) {
	var rows []preseasonPicksTableModel
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM preseason_picks WHERE season_id = $1 ORDER BY user_id`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list preseason picks: %w", err)
	}

	out := make([]prediction.PreseasonPicks, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PredictionRepository) ListUserIDsBySeason(ctx context.Context, seasonID string) ([]string, error) {
	var userIDs []string
	err := r.db.SelectContext(ctx, &userIDs, `
SELECT user_id FROM match_predictions WHERE season_id = $1
UNION
SELECT user_id FROM preseason_picks WHERE season_id = $1
ORDER BY user_id`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list season user ids: %w", err)
	}
	return userIDs, nil
}

var _ prediction.Repository = (*PredictionRepository)(nil)
