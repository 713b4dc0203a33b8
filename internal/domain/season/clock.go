package season

import (
	"fmt"
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/round"
)

// CurrentSeasonID derives the season identifier from wall-clock time. The
// season rolls over in July: June 2026 still belongs to "2025-2026", July
// 2026 opens "2026-2027".
func CurrentSeasonID(now time.Time) string {
	year := now.Year()
	if now.Month() >= time.July {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// CurrentRoundNumber returns the greatest round number whose successor has
// not started yet. Rounds without a start time are skipped when determining
// boundaries. The second return value is false when no scheduled round
// exists.
func CurrentRoundNumber(rounds []round.Round, now time.Time) (int, bool) {
	scheduled := make([]round.Round, 0, len(rounds))
	for _, item := range rounds {
		if !item.HasStart() {
			continue
		}
		scheduled = append(scheduled, item)
	}
	if len(scheduled) == 0 {
		return 0, false
	}

	for i, item := range scheduled {
		if i == len(scheduled)-1 {
			return item.Number, true
		}
		if scheduled[i+1].StartAt.After(now) {
			return item.Number, true
		}
	}
	return 0, false
}
