package postgres

import (
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/round"
)

type roundTableModel struct {
	SeasonID string     `db:"season_id"`
	Number   int        `db:"number"`
	StartAt  *time.Time `db:"start_at"`
	IsActive bool       `db:"is_active"`
}

func (m roundTableModel) toDomain() round.Round {
	out := round.Round{
		SeasonID: m.SeasonID,
		Number:   m.Number,
		IsActive: m.IsActive,
	}
	if m.StartAt != nil {
		out.StartAt = *m.StartAt
	}
	return out
}

func nullableTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	return &value
}

type matchTableModel struct {
	ID               string `db:"id"`
	SeasonID         string `db:"season_id"`
	RoundNumber      int    `db:"round_number"`
	HomeTeamID       string `db:"home_team_id"`
	AwayTeamID       string `db:"away_team_id"`
	HomeScore        *int   `db:"home_score"`
	AwayScore        *int   `db:"away_score"`
	IsCancelled      bool   `db:"is_cancelled"`
	PointsCalculated bool   `db:"points_calculated"`
}

func (m matchTableModel) toDomain() round.Match {
	return round.Match{
		ID:               m.ID,
		SeasonID:         m.SeasonID,
		RoundNumber:      m.RoundNumber,
		HomeTeamID:       m.HomeTeamID,
		AwayTeamID:       m.AwayTeamID,
		HomeScore:        m.HomeScore,
		AwayScore:        m.AwayScore,
		IsCancelled:      m.IsCancelled,
		PointsCalculated: m.PointsCalculated,
	}
}
