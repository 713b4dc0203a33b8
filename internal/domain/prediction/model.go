package prediction

import "time"

// MatchPrediction is one user's predicted scoreline for one match. Points,
// IsExact and IsDirection are caches of the last scoring pass; the
// recompute engine is authoritative when they disagree with the ledger.
type MatchPrediction struct {
	SeasonID    string
	RoundNumber int
	MatchID     string
	UserID      string
	HomeGoals   int
	AwayGoals   int

	Points      int
	IsExact     bool
	IsDirection bool
	ScoredAt    *time.Time
}

func (p MatchPrediction) Scored() bool {
	return p.ScoredAt != nil
}

// PreseasonPicks holds a user's fixed-category season-long predictions.
// Empty values mean no pick was made for that category.
type PreseasonPicks struct {
	SeasonID           string
	UserID             string
	ChampionTeamID     string
	CupWinnerTeamID    string
	RelegatedTeamID1   string
	RelegatedTeamID2   string
	TopScorerPlayerID  string
	TopAssistsPlayerID string
}
