package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/IdoCohen138/league-predictions/internal/usecase"
)

// ScheduleRoundScoring publishes a deferred scoring job for one round. The
// queue calls back into RunScoreRoundJob when the delay elapses.
func (h *Handler) ScheduleRoundScoring(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScheduleRoundScoring")
	defer span.End()

	if h.scoringJobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: scoring job publisher is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req scheduleRoundScoringRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	delay := time.Duration(req.DelaySeconds) * time.Second
	if err := h.scoringJobs.EnqueueRoundScoring(ctx, req.SeasonID, req.RoundNumber, delay); err != nil {
		h.logger.WarnContext(ctx, "schedule round scoring failed",
			"season_id", req.SeasonID, "round_number", req.RoundNumber, "error", err)
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err))
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]any{
		"season_id":     req.SeasonID,
		"round_number":  req.RoundNumber,
		"delay_seconds": req.DelaySeconds,
	})
}

// RunScoreRoundJob is the queue callback: it runs the scoring pass directly.
// Skipped matches are confirmed, a later delivery picks them up once their
// results land.
func (h *Handler) RunScoreRoundJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreRoundJob")
	defer span.End()

	var req scoreRoundJobRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.ScoreRound(ctx, usecase.ScoreRoundInput{
		SeasonID:    req.SeasonID,
		RoundNumber: req.RoundNumber,
		Confirm:     req.Confirm,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "score round job failed",
			"season_id", req.SeasonID, "round_number", req.RoundNumber, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !result.RequiresConfirmation {
		h.standingsService.InvalidateSeason(ctx, req.SeasonID)
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type scheduleRoundScoringRequest struct {
	SeasonID     string `json:"season_id" validate:"required"`
	RoundNumber  int    `json:"round_number" validate:"gt=0"`
	DelaySeconds int    `json:"delay_seconds" validate:"gte=0"`
}

type scoreRoundJobRequest struct {
	SeasonID    string `json:"season_id" validate:"required"`
	RoundNumber int    `json:"round_number" validate:"gt=0"`
	Confirm     bool   `json:"confirm"`
}
