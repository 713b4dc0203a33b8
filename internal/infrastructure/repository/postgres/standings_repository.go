package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/IdoCohen138/league-predictions/internal/domain/standings"
)

type StandingsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStandingsRepository(db *sqlx.DB) *StandingsRepository {
	return &StandingsRepository{db: db, now: time.Now}
}

func (r *StandingsRepository) Get(ctx context.Context, seasonID, userID string) (standings.Aggregate, bool, error) {
	var row playerAggregateTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM player_aggregates WHERE season_id = $1 AND user_id = $2`, seasonID, userID)
	if err != nil {
		if isNotFound(err) {
			return standings.Aggregate{}, false, nil
		}
		return standings.Aggregate{}, false, fmt.Errorf("get aggregate: %w", err)
	}

	var roundRows []playerRoundPointsTableModel
	err = r.db.SelectContext(ctx, &roundRows, `
SELECT * FROM player_round_points
WHERE season_id = $1 AND user_id = $2
ORDER BY round_number`, seasonID, userID)
	if err != nil {
		return standings.Aggregate{}, false, fmt.Errorf("get aggregate round points: %w", err)
	}

	return row.toDomain(roundRows), true, nil
}

// ApplyDelta merges the delta under a row lock so concurrent scoring passes
// for the same user serialize at the database.
func (r *StandingsRepository) ApplyDelta(ctx context.Context, seasonID, userID string, delta standings.Delta) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		item, err := lockAggregate(ctx, tx, seasonID, userID, r.now().UTC())
		if err != nil {
			return err
		}

		item.Apply(delta)
		item.UpdatedAt = r.now().UTC()

		if err := updateAggregateRow(ctx, tx, item); err != nil {
			return err
		}
		if delta.RoundNumber <= 0 {
			return nil
		}
		if delta.DropRoundEntry {
			if _, err := tx.ExecContext(ctx, `
DELETE FROM player_round_points
WHERE season_id = $1 AND user_id = $2 AND round_number = $3`, seasonID, userID, delta.RoundNumber); err != nil {
				return fmt.Errorf("delete round points entry: %w", err)
			}
			return nil
		}
		return upsertRoundPointsRow(ctx, tx, seasonID, userID, delta.RoundNumber, item.RoundPoints[delta.RoundNumber])
	})
}

// SetPreseasonPoints replaces the preseason scalar and rebalances the total
// against the stored per-round sum.
func (r *StandingsRepository) SetPreseasonPoints(ctx context.Context, seasonID, userID string, points int) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := lockAggregate(ctx, tx, seasonID, userID, r.now().UTC()); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE player_aggregates SET
    preseason_points = $3,
    total_points = $3 + COALESCE((
        SELECT SUM(points) FROM player_round_points
        WHERE season_id = $1 AND user_id = $2
    ), 0),
    updated_at = $4
WHERE season_id = $1 AND user_id = $2`, seasonID, userID, points, r.now().UTC()); err != nil {
			return fmt.Errorf("set preseason points: %w", err)
		}
		return nil
	})
}

// Replace overwrites the whole aggregate, round entries included.
func (r *StandingsRepository) Replace(ctx context.Context, item standings.Aggregate) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := r.now().UTC()
		if _, err := tx.ExecContext(ctx, `
INSERT INTO player_aggregates (season_id, user_id, total_points, preseason_points, direction_count, exact_count, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (season_id, user_id) DO UPDATE SET
    total_points = EXCLUDED.total_points,
    preseason_points = EXCLUDED.preseason_points,
    direction_count = EXCLUDED.direction_count,
    exact_count = EXCLUDED.exact_count,
    updated_at = EXCLUDED.updated_at`,
			item.SeasonID, item.UserID, item.TotalPoints, item.PreseasonPoints, item.DirectionCount, item.ExactCount, now,
		); err != nil {
			return fmt.Errorf("replace aggregate: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
DELETE FROM player_round_points WHERE season_id = $1 AND user_id = $2`, item.SeasonID, item.UserID); err != nil {
			return fmt.Errorf("clear round points: %w", err)
		}
		for roundNumber, points := range item.RoundPoints {
			if err := upsertRoundPointsRow(ctx, tx, item.SeasonID, item.UserID, roundNumber, points); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *StandingsRepository) ListBySeason(ctx context.Context, seasonID string) ([]standings.Aggregate, error) {
	var rows []playerAggregateTableModel
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM player_aggregates WHERE season_id = $1 ORDER BY user_id`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}

	var roundRows []playerRoundPointsTableModel
	err = r.db.SelectContext(ctx, &roundRows, `
SELECT * FROM player_round_points WHERE season_id = $1 ORDER BY user_id, round_number`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list round points: %w", err)
	}
	roundsByUser := make(map[string][]playerRoundPointsTableModel, len(rows))
	for _, row := range roundRows {
		roundsByUser[row.UserID] = append(roundsByUser[row.UserID], row)
	}

	out := make([]standings.Aggregate, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(roundsByUser[row.UserID]))
	}
	return out, nil
}

// lockAggregate ensures the aggregate row exists and returns it locked for
// the duration of the transaction.
func lockAggregate(ctx context.Context, tx *sqlx.Tx, seasonID, userID string, now time.Time) (standings.Aggregate, error) {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO player_aggregates (season_id, user_id, total_points, preseason_points, direction_count, exact_count, updated_at)
VALUES ($1, $2, 0, 0, 0, 0, $3)
ON CONFLICT (season_id, user_id) DO NOTHING`, seasonID, userID, now); err != nil {
		return standings.Aggregate{}, fmt.Errorf("ensure aggregate row: %w", err)
	}

	var row playerAggregateTableModel
	if err := tx.GetContext(ctx, &row, `
SELECT * FROM player_aggregates WHERE season_id = $1 AND user_id = $2 FOR UPDATE`, seasonID, userID); err != nil {
		return standings.Aggregate{}, fmt.Errorf("lock aggregate row: %w", err)
	}

	var roundRows []playerRoundPointsTableModel
	if err := tx.SelectContext(ctx, &roundRows, `
SELECT * FROM player_round_points
WHERE season_id = $1 AND user_id = $2
ORDER BY round_number`, seasonID, userID); err != nil {
		return standings.Aggregate{}, fmt.Errorf("load round points: %w", err)
	}

	return row.toDomain(roundRows), nil
}

func updateAggregateRow(ctx context.Context, tx *sqlx.Tx, item standings.Aggregate) error {
	if _, err := tx.ExecContext(ctx, `
UPDATE player_aggregates SET
    total_points = $3,
    preseason_points = $4,
    direction_count = $5,
    exact_count = $6,
    updated_at = $7
WHERE season_id = $1 AND user_id = $2`,
		item.SeasonID, item.UserID, item.TotalPoints, item.PreseasonPoints, item.DirectionCount, item.ExactCount, item.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update aggregate row: %w", err)
	}
	return nil
}

func upsertRoundPointsRow(ctx context.Context, tx *sqlx.Tx, seasonID, userID string, roundNumber, points int) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO player_round_points (season_id, user_id, round_number, points)
VALUES ($1, $2, $3, $4)
ON CONFLICT (season_id, user_id, round_number) DO UPDATE SET points = EXCLUDED.points`,
		seasonID, userID, roundNumber, points,
	); err != nil {
		return fmt.Errorf("upsert round points entry: %w", err)
	}
	return nil
}

var _ standings.Repository = (*StandingsRepository)(nil)
