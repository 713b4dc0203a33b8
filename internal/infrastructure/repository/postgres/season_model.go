package postgres

import (
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/season"
)

type seasonTableModel struct {
	ID                 string    `db:"id"`
	StartAt            time.Time `db:"start_at"`
	ChampionTeamID     string    `db:"champion_team_id"`
	CupWinnerTeamID    string    `db:"cup_winner_team_id"`
	RelegatedTeamID1   string    `db:"relegated_team_id1"`
	RelegatedTeamID2   string    `db:"relegated_team_id2"`
	TopScorerPlayerID  string    `db:"top_scorer_player_id"`
	TopAssistsPlayerID string    `db:"top_assists_player_id"`
}

func (m seasonTableModel) toDomain() season.Season {
	return season.Season{
		ID:      m.ID,
		StartAt: m.StartAt,
		Outcomes: season.Outcomes{
			ChampionTeamID:     m.ChampionTeamID,
			CupWinnerTeamID:    m.CupWinnerTeamID,
			RelegatedTeamID1:   m.RelegatedTeamID1,
			RelegatedTeamID2:   m.RelegatedTeamID2,
			TopScorerPlayerID:  m.TopScorerPlayerID,
			TopAssistsPlayerID: m.TopAssistsPlayerID,
		},
	}
}
