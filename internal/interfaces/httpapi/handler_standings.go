package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	entries, err := h.standingsService.Leaderboard(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, entries)
}

func (h *Handler) GetUserScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserScore")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	userID := strings.TrimSpace(r.PathValue("userID"))
	score, err := h.standingsService.GetUserScore(ctx, seasonID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user score failed", "season_id", seasonID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, score)
}
