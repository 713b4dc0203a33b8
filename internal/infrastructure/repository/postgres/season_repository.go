package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/IdoCohen138/league-predictions/internal/domain/season"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) Get(ctx context.Context, seasonID string) (season.Season, bool, error) {
	var row seasonTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM seasons WHERE id = $1`, seasonID)
	if err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SeasonRepository) Upsert(ctx context.Context, item season.Season) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO seasons (id, start_at, champion_team_id, cup_winner_team_id, relegated_team_id1, relegated_team_id2, top_scorer_player_id, top_assists_player_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    start_at = EXCLUDED.start_at,
    champion_team_id = EXCLUDED.champion_team_id,
    cup_winner_team_id = EXCLUDED.cup_winner_team_id,
    relegated_team_id1 = EXCLUDED.relegated_team_id1,
    relegated_team_id2 = EXCLUDED.relegated_team_id2,
    top_scorer_player_id = EXCLUDED.top_scorer_player_id,
    top_assists_player_id = EXCLUDED.top_assists_player_id`,
		item.ID,
		item.StartAt,
		item.Outcomes.ChampionTeamID,
		item.Outcomes.CupWinnerTeamID,
		item.Outcomes.RelegatedTeamID1,
		item.Outcomes.RelegatedTeamID2,
		item.Outcomes.TopScorerPlayerID,
		item.Outcomes.TopAssistsPlayerID,
	)
	if err != nil {
		return fmt.Errorf("upsert season: %w", err)
	}
	return nil
}

func (r *SeasonRepository) SetOutcomes(ctx context.Context, seasonID string, outcomes season.Outcomes) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE seasons SET
    champion_team_id = $2,
    cup_winner_team_id = $3,
    relegated_team_id1 = $4,
    relegated_team_id2 = $5,
    top_scorer_player_id = $6,
    top_assists_player_id = $7
WHERE id = $1`,
		seasonID,
		outcomes.ChampionTeamID,
		outcomes.CupWinnerTeamID,
		outcomes.RelegatedTeamID1,
		outcomes.RelegatedTeamID2,
		outcomes.TopScorerPlayerID,
		outcomes.TopAssistsPlayerID,
	)
	if err != nil {
		return fmt.Errorf("set season outcomes: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set season outcomes rows affected: %w", err)
	}
	if affected == 0 {
		return r.Upsert(ctx, season.Season{ID: seasonID, Outcomes: outcomes})
	}
	return nil
}

var _ season.Repository = (*SeasonRepository)(nil)
