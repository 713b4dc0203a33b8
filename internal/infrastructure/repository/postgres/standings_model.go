package postgres

import (
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/standings"
)

type playerAggregateTableModel struct {
	SeasonID        string    `db:"season_id"`
	UserID          string    `db:"user_id"`
	TotalPoints     int       `db:"total_points"`
	PreseasonPoints int       `db:"preseason_points"`
	DirectionCount  int       `db:"direction_count"`
	ExactCount      int       `db:"exact_count"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type playerRoundPointsTableModel struct {
	SeasonID    string `db:"season_id"`
	UserID      string `db:"user_id"`
	RoundNumber int    `db:"round_number"`
	Points      int    `db:"points"`
}

func (m playerAggregateTableModel) toDomain(roundRows []playerRoundPointsTableModel) standings.Aggregate {
	out := standings.Aggregate{
		SeasonID:        m.SeasonID,
		UserID:          m.UserID,
		TotalPoints:     m.TotalPoints,
		PreseasonPoints: m.PreseasonPoints,
		RoundPoints:     make(map[int]int, len(roundRows)),
		DirectionCount:  m.DirectionCount,
		ExactCount:      m.ExactCount,
		UpdatedAt:       m.UpdatedAt,
	}
	for _, row := range roundRows {
		out.RoundPoints[row.RoundNumber] = row.Points
	}
	return out
}
