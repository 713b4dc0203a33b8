package standings

import "time"

// Aggregate is a user's running totals for one season. RoundPoints keeps one
// entry per scored round even when the round contributed zero points; the
// absence of an entry means the round never counted for this user.
type Aggregate struct {
	SeasonID        string
	UserID          string
	TotalPoints     int
	PreseasonPoints int
	RoundPoints     map[int]int
	DirectionCount  int
	ExactCount      int
	UpdatedAt       time.Time
}

// RoundPointsSum sums all per-round entries.
func (a Aggregate) RoundPointsSum() int {
	total := 0
	for _, points := range a.RoundPoints {
		total += points
	}
	return total
}

// Consistent reports whether the conservation invariant holds:
// total points equal preseason points plus the sum of round points.
func (a Aggregate) Consistent() bool {
	return a.TotalPoints == a.PreseasonPoints+a.RoundPointsSum()
}

// Clone returns a deep copy, detaching the RoundPoints map.
func (a Aggregate) Clone() Aggregate {
	out := a
	out.RoundPoints = make(map[int]int, len(a.RoundPoints))
	for number, points := range a.RoundPoints {
		out.RoundPoints[number] = points
	}
	return out
}

// Delta is a merge instruction for one user's aggregate. When
// DropRoundEntry is set the round entry is removed instead of adjusted.
type Delta struct {
	RoundNumber    int
	TotalPoints    int
	RoundPoints    int
	DirectionCount int
	ExactCount     int
	DropRoundEntry bool
}

func (d Delta) IsZero() bool {
	return d.TotalPoints == 0 && d.RoundPoints == 0 && d.DirectionCount == 0 && d.ExactCount == 0 && !d.DropRoundEntry
}

// Apply merges the delta into the aggregate. A delta carrying a round number
// always materializes the round entry, so a user scoring zero still gets an
// entry distinguishing "scored zero" from "never scored".
func (a *Aggregate) Apply(delta Delta) {
	if a.RoundPoints == nil {
		a.RoundPoints = make(map[int]int)
	}

	a.TotalPoints += delta.TotalPoints
	a.DirectionCount += delta.DirectionCount
	a.ExactCount += delta.ExactCount

	if delta.RoundNumber <= 0 {
		return
	}
	if delta.DropRoundEntry {
		delete(a.RoundPoints, delta.RoundNumber)
		return
	}
	a.RoundPoints[delta.RoundNumber] += delta.RoundPoints
}
