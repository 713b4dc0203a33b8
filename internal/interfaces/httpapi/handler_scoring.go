package httpapi

import (
	"net/http"
	"strings"

	"github.com/IdoCohen138/league-predictions/internal/domain/season"
	"github.com/IdoCohen138/league-predictions/internal/usecase"
)

func (h *Handler) ScoreRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreRound")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	roundNumber, err := parseRoundNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req scoreRoundRequest
	if err := decodeJSONBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.ScoreRound(ctx, usecase.ScoreRoundInput{
		SeasonID:    seasonID,
		RoundNumber: roundNumber,
		Confirm:     req.Confirm,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "score round failed", "season_id", seasonID, "round_number", roundNumber, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !result.RequiresConfirmation {
		h.standingsService.InvalidateSeason(ctx, seasonID)
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) DeleteRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteRound")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	roundNumber, err := parseRoundNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.recomputeService.DeleteRound(ctx, seasonID, roundNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "delete round failed", "season_id", seasonID, "round_number", roundNumber, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.standingsService.InvalidateSeason(ctx, seasonID)

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RecomputeUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeUser")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	userID := strings.TrimSpace(r.PathValue("userID"))

	aggregate, err := h.recomputeService.RecomputeUser(ctx, seasonID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute user failed", "season_id", seasonID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.standingsService.InvalidateSeason(ctx, seasonID)

	writeSuccess(ctx, w, http.StatusOK, usecase.UserScore{
		SeasonID:        aggregate.SeasonID,
		UserID:          aggregate.UserID,
		TotalPoints:     aggregate.TotalPoints,
		PreseasonPoints: aggregate.PreseasonPoints,
		RoundPoints:     aggregate.RoundPoints,
		ExactCount:      aggregate.ExactCount,
		DirectionCount:  aggregate.DirectionCount,
	})
}

func (h *Handler) RecomputeSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeSeason")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))

	result, err := h.recomputeService.RecomputeSeason(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.standingsService.InvalidateSeason(ctx, seasonID)

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) FinalizeOutcomes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeOutcomes")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	var req finalizeOutcomesRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcomes := season.Outcomes{
		ChampionTeamID:     req.ChampionTeamID,
		CupWinnerTeamID:    req.CupWinnerTeamID,
		RelegatedTeamID1:   req.RelegatedTeamID1,
		RelegatedTeamID2:   req.RelegatedTeamID2,
		TopScorerPlayerID:  req.TopScorerPlayerID,
		TopAssistsPlayerID: req.TopAssistsPlayerID,
	}
	if err := h.preseasonService.FinalizeOutcomes(ctx, seasonID, outcomes); err != nil {
		h.logger.WarnContext(ctx, "finalize outcomes failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"season_id": seasonID})
}

func (h *Handler) ScorePreseason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScorePreseason")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))

	result, err := h.preseasonService.ScorePreseason(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "score preseason failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}
	h.standingsService.InvalidateSeason(ctx, seasonID)

	writeSuccess(ctx, w, http.StatusOK, result)
}

type scoreRoundRequest struct {
	Confirm bool `json:"confirm"`
}

type finalizeOutcomesRequest struct {
	ChampionTeamID     string `json:"champion_team_id"`
	CupWinnerTeamID    string `json:"cup_winner_team_id"`
	RelegatedTeamID1   string `json:"relegated_team_id1"`
	RelegatedTeamID2   string `json:"relegated_team_id2"`
	TopScorerPlayerID  string `json:"top_scorer_player_id"`
	TopAssistsPlayerID string `json:"top_assists_player_id"`
}
