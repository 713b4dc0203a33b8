package scoring

// Outcome is the win/draw/loss classification of a scoreline.
type Outcome string

const (
	OutcomeHome Outcome = "HOME"
	OutcomeAway Outcome = "AWAY"
	OutcomeDraw Outcome = "DRAW"
)

// Classification describes how a prediction relates to the actual result.
// An exact prediction always implies the correct direction but is reported
// as exact only.
type Classification string

const (
	ClassificationExact     Classification = "EXACT"
	ClassificationDirection Classification = "DIRECTION"
	ClassificationMiss      Classification = "MISS"
)

const (
	PointsExact     = 3
	PointsDirection = 1

	// UniqueBonusMultiplier doubles a user's match points when they are
	// alone in their scoring tier for that match.
	UniqueBonusMultiplier = 2
)

// Preseason category awards. The cup winner pick is stored for display but
// carries no award.
const (
	AwardChampion   = 10
	AwardRelegation = 5
	AwardTopScorer  = 7
	AwardTopAssists = 5
)

// MatchScore is the outcome of scoring a single prediction against a result.
type MatchScore struct {
	Points         int
	Classification Classification
}

func (s MatchScore) IsExact() bool {
	return s.Classification == ClassificationExact
}

func (s MatchScore) IsDirection() bool {
	return s.Classification == ClassificationDirection
}

// ClassifyOutcome maps a scoreline to its outcome.
func ClassifyOutcome(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHome
	case home < away:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// ScoreMatch scores one predicted scoreline against the actual result:
// 3 points for the exact score, 1 for the correct direction, 0 otherwise.
func ScoreMatch(predictedHome, predictedAway, actualHome, actualAway int) MatchScore {
	if predictedHome == actualHome && predictedAway == actualAway {
		return MatchScore{Points: PointsExact, Classification: ClassificationExact}
	}
	if ClassifyOutcome(predictedHome, predictedAway) == ClassifyOutcome(actualHome, actualAway) {
		return MatchScore{Points: PointsDirection, Classification: ClassificationDirection}
	}
	return MatchScore{Points: 0, Classification: ClassificationMiss}
}

// TierCounts tallies, for one match, how many users predicted the exact
// score and how many got only the outcome right.
type TierCounts struct {
	Exact     int
	Direction int
}

// CountTiers builds the uniqueness tiers for one match from every user's
// base score on it. Misses never count.
func CountTiers(scores []MatchScore) TierCounts {
	var out TierCounts
	for _, score := range scores {
		switch score.Classification {
		case ClassificationExact:
			out.Exact++
		case ClassificationDirection:
			out.Direction++
		}
	}
	return out
}

// ApplyUniqueBonus doubles the score when the user is alone in their tier:
// an exact predictor when nobody else hit the exact score, a direction
// predictor when no other non-exact user got the outcome right. Users with
// zero points are never eligible.
func ApplyUniqueBonus(score MatchScore, tiers TierCounts) MatchScore {
	switch {
	case score.IsExact() && tiers.Exact == 1:
		score.Points *= UniqueBonusMultiplier
	case score.IsDirection() && tiers.Direction == 1:
		score.Points *= UniqueBonusMultiplier
	}
	return score
}
