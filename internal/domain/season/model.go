package season

import "time"

// Outcome categories for preseason predictions. An empty value means the
// outcome is not finalized (or the user made no pick).
type Outcomes struct {
	ChampionTeamID     string
	CupWinnerTeamID    string
	RelegatedTeamID1   string
	RelegatedTeamID2   string
	TopScorerPlayerID  string
	TopAssistsPlayerID string
}

// Finalized reports whether any outcome has been recorded. Preseason
// settlement requires at least one finalized category.
func (o Outcomes) Finalized() bool {
	return o != Outcomes{}
}

type Season struct {
	ID       string
	StartAt  time.Time
	Outcomes Outcomes
}
