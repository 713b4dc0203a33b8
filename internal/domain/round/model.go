package round

import "time"

// Round is a numbered batch of matches inside a season. StartAt doubles as
// the prediction lock instant; a zero StartAt means the round is not
// scheduled yet.
type Round struct {
	SeasonID string
	Number   int
	StartAt  time.Time
	IsActive bool
}

func (r Round) HasStart() bool {
	return !r.StartAt.IsZero()
}

// Match belongs to exactly one round. HomeScore and AwayScore are either
// both set or both nil; a single set score is an invalid state that blocks
// scoring.
type Match struct {
	ID               string
	SeasonID         string
	RoundNumber      int
	HomeTeamID       string
	AwayTeamID       string
	HomeScore        *int
	AwayScore        *int
	IsCancelled      bool
	PointsCalculated bool
}

func (m Match) HasResult() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

func (m Match) HasPartialResult() bool {
	return (m.HomeScore != nil) != (m.AwayScore != nil)
}
