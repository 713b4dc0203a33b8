package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/IdoCohen138/league-predictions/internal/domain/round"
)

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) GetRound(ctx context.Context, seasonID string, number int) (round.Round, bool, error) {
	var row roundTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM rounds WHERE season_id = $1 AND number = $2`, seasonID, number)
	if err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get round: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *RoundRepository) ListRounds(ctx context.Context, seasonID string) ([]round.Round, error) {
	var rows []roundTableModel
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM rounds WHERE season_id = $1 ORDER BY number`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	out := make([]round.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RoundRepository) UpsertRound(ctx context.Context, item round.Round) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO rounds (season_id, number, start_at, is_active)
VALUES ($1, $2, $3, $4)
ON CONFLICT (season_id, number) DO UPDATE SET
    start_at = EXCLUDED.start_at,
    is_active = EXCLUDED.is_active`,
		item.SeasonID, item.Number, nullableTime(item.StartAt), item.IsActive,
	)
	if err != nil {
		return fmt.Errorf("upsert round: %w", err)
	}
	return nil
}

// DeleteRound removes the round together with its matches.
func (r *RoundRepository) DeleteRound(ctx context.Context, seasonID string, number int) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE season_id = $1 AND round_number = $2`, seasonID, number); err != nil {
			return fmt.Errorf("delete round matches: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM rounds WHERE season_id = $1 AND number = $2`, seasonID, number); err != nil {
			return fmt.Errorf("delete round: %w", err)
		}
		return nil
	})
}

func (r *RoundRepository) ListMatches(ctx context.Context, seasonID string, roundNumber int) ([]round.Match, error) {
	var rows []matchTableModel
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM matches WHERE season_id = $1 AND round_number = $2 ORDER BY id`, seasonID, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]round.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RoundRepository) UpsertMatch(ctx context.Context, item round.Match) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO matches (id, season_id, round_number, home_team_id, away_team_id, home_score, away_score, is_cancelled, points_calculated)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    season_id = EXCLUDED.season_id,
    round_number = EXCLUDED.round_number,
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    is_cancelled = EXCLUDED.is_cancelled,
    points_calculated = EXCLUDED.points_calculated`,
		item.ID,
		item.SeasonID,
		item.RoundNumber,
		item.HomeTeamID,
		item.AwayTeamID,
		item.HomeScore,
		item.AwayScore,
		item.IsCancelled,
		item.PointsCalculated,
	)
	if err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

func (r *RoundRepository) SetMatchResult(ctx context.Context, seasonID string, roundNumber int, matchID string, homeScore, awayScore int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE matches SET home_score = $4, away_score = $5
WHERE season_id = $1 AND round_number = $2 AND id = $3`,
		seasonID, roundNumber, matchID, homeScore, awayScore,
	)
	if err != nil {
		return fmt.Errorf("set match result: %w", err)
	}
	return requireMatchUpdated(res, matchID)
}

func (r *RoundRepository) MarkMatchScored(ctx context.Context, seasonID string, roundNumber int, matchID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE matches SET points_calculated = TRUE
WHERE season_id = $1 AND round_number = $2 AND id = $3`,
		seasonID, roundNumber, matchID,
	)
	if err != nil {
		return fmt.Errorf("mark match scored: %w", err)
	}
	return requireMatchUpdated(res, matchID)
}

func requireMatchUpdated(res sql.Result, matchID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("match update rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", round.ErrMatchNotFound, matchID)
	}
	return nil
}

var _ round.Repository = (*RoundRepository)(nil)
