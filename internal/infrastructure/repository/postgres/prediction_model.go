package postgres

import (
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
)

type matchPredictionTableModel struct {
	SeasonID    string     `db:"season_id"`
	RoundNumber int        `db:"round_number"`
	MatchID     string     `db:"match_id"`
	UserID      string     `db:"user_id"`
	HomeGoals   int        `db:"home_goals"`
	AwayGoals   int        `db:"away_goals"`
	Points      int        `db:"points"`
	IsExact     bool       `db:"is_exact"`
	IsDirection bool       `db:"is_direction"`
	ScoredAt    *time.Time `db:"scored_at"`
}

func (m matchPredictionTableModel) toDomain() prediction.MatchPrediction {
	return prediction.MatchPrediction{
		SeasonID:    m.SeasonID,
		RoundNumber: m.RoundNumber,
		MatchID:     m.MatchID,
		UserID:      m.UserID,
		HomeGoals:   m.HomeGoals,
		AwayGoals:   m.AwayGoals,
		Points:      m.Points,
		IsExact:     m.IsExact,
		IsDirection: m.IsDirection,
		ScoredAt:    m.ScoredAt,
	}
}

type preseasonPicksTableModel struct {
	SeasonID           string `db:"season_id"`
	UserID             string `db:"user_id"`
	ChampionTeamID     string `db:"champion_team_id"`
	CupWinnerTeamID    string `db:"cup_winner_team_id"`
	RelegatedTeamID1   string `db:"relegated_team_id1"`
	RelegatedTeamID2   string `db:"relegated_team_id2"`
	TopScorerPlayerID  string `db:"top_scorer_player_id"`
	TopAssistsPlayerID string `db:"top_assists_player_id"`
}

func (m preseasonPicksTableModel) toDomain() prediction.PreseasonPicks {
	return prediction.PreseasonPicks{
		SeasonID:           m.SeasonID,
		UserID:             m.UserID,
		ChampionTeamID:     m.ChampionTeamID,
		CupWinnerTeamID:    m.CupWinnerTeamID,
		RelegatedTeamID1:   m.RelegatedTeamID1,
		RelegatedTeamID2:   m.RelegatedTeamID2,
		TopScorerPlayerID:  m.TopScorerPlayerID,
		TopAssistsPlayerID: m.TopAssistsPlayerID,
	}
}
