package round

import (
	"context"
	"errors"
)

// ErrMatchNotFound reports a match write against an id the store does not
// hold. Surfacing it beats silently updating nothing when the schedule and
// the caller have drifted apart.
var ErrMatchNotFound = errors.New("match not found")

type Repository interface {
	GetRound(ctx context.Context, seasonID string, number int) (Round, bool, error)
	// ListRounds returns all rounds of a season ordered by round number.
	ListRounds(ctx context.Context, seasonID string) ([]Round, error)
	UpsertRound(ctx context.Context, item Round) error
	// DeleteRound removes the round and all of its matches.
	DeleteRound(ctx context.Context, seasonID string, number int) error

	ListMatches(ctx context.Context, seasonID string, roundNumber int) ([]Match, error)
	UpsertMatch(ctx context.Context, item Match) error
	// SetMatchResult records the final score of a match. Callers validate
	// state (cancelled matches keep nil scores) before writing.
	SetMatchResult(ctx context.Context, seasonID string, roundNumber int, matchID string, homeScore, awayScore int) error
	MarkMatchScored(ctx context.Context, seasonID string, roundNumber int, matchID string) error
}
