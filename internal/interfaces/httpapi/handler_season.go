package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/round"
	"github.com/IdoCohen138/league-predictions/internal/domain/season"
	"github.com/IdoCohen138/league-predictions/internal/usecase"
)

func (h *Handler) GetCurrentContext(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentContext")
	defer span.End()

	current, err := h.seasonService.CurrentContext(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve current context failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, currentContextDTO{
		SeasonID:    current.SeasonID,
		RoundNumber: current.RoundNumber,
		HasRound:    current.HasRound,
	})
}

func (h *Handler) UpsertSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertSeason")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	var req upsertSeasonRequest
	if err := decodeJSONBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	startAt, err := parseOptionalRFC3339(req.StartAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: start_at: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.seasonService.UpsertSeason(ctx, season.Season{ID: seasonID, StartAt: startAt}); err != nil {
		h.logger.WarnContext(ctx, "upsert season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"season_id": seasonID})
}

func (h *Handler) UpsertRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertRound")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	roundNumber, err := parseRoundNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req upsertRoundRequest
	if err := decodeJSONBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	startAt, err := parseOptionalRFC3339(req.StartAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: start_at: %v", usecase.ErrInvalidInput, err))
		return
	}

	item := round.Round{
		SeasonID: seasonID,
		Number:   roundNumber,
		StartAt:  startAt,
		IsActive: req.IsActive,
	}
	if err := h.seasonService.UpsertRound(ctx, item); err != nil {
		h.logger.WarnContext(ctx, "upsert round failed", "season_id", seasonID, "round_number", roundNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(item))
}

func (h *Handler) UpsertMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertMatch")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))
	roundNumber, err := parseRoundNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req upsertMatchRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item := round.Match{
		ID:          matchID,
		SeasonID:    seasonID,
		RoundNumber: roundNumber,
		HomeTeamID:  req.HomeTeamID,
		AwayTeamID:  req.AwayTeamID,
		IsCancelled: req.IsCancelled,
	}
	if err := h.seasonService.UpsertMatch(ctx, item); err != nil {
		h.logger.WarnContext(ctx, "upsert match failed", "season_id", seasonID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) RecordMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatchResult")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))
	roundNumber, err := parseRoundNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req matchResultRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.seasonService.RecordMatchResult(ctx, seasonID, roundNumber, matchID, req.HomeScore, req.AwayScore); err != nil {
		h.logger.WarnContext(ctx, "record match result failed", "season_id", seasonID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"match_id": matchID})
}

func (h *Handler) ListRoundMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRoundMatches")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	roundNumber, err := parseRoundNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.seasonService.ListRoundMatches(ctx, seasonID, roundNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "list round matches failed", "season_id", seasonID, "round_number", roundNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func parseRoundNumber(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("roundNumber"))
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("%w: invalid round number %q", usecase.ErrInvalidInput, raw)
	}
	return number, nil
}

func parseOptionalRFC3339(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

type currentContextDTO struct {
	SeasonID    string `json:"season_id"`
	RoundNumber int    `json:"round_number"`
	HasRound    bool   `json:"has_round"`
}

type upsertSeasonRequest struct {
	StartAt string `json:"start_at"`
}

type upsertRoundRequest struct {
	StartAt  string `json:"start_at"`
	IsActive bool   `json:"is_active"`
}

type upsertMatchRequest struct {
	HomeTeamID  string `json:"home_team_id" validate:"required"`
	AwayTeamID  string `json:"away_team_id" validate:"required"`
	IsCancelled bool   `json:"is_cancelled"`
}

type matchResultRequest struct {
	HomeScore int `json:"home_score" validate:"gte=0"`
	AwayScore int `json:"away_score" validate:"gte=0"`
}

type roundDTO struct {
	SeasonID string `json:"season_id"`
	Number   int    `json:"number"`
	StartAt  string `json:"start_at,omitempty"`
	IsActive bool   `json:"is_active"`
}

type matchDTO struct {
	ID               string `json:"id"`
	SeasonID         string `json:"season_id"`
	RoundNumber      int    `json:"round_number"`
	HomeTeamID       string `json:"home_team_id"`
	AwayTeamID       string `json:"away_team_id"`
	HomeScore        *int   `json:"home_score"`
	AwayScore        *int   `json:"away_score"`
	IsCancelled      bool   `json:"is_cancelled"`
	PointsCalculated bool   `json:"points_calculated"`
}

func roundToDTO(v round.Round) roundDTO {
	dto := roundDTO{
		SeasonID: v.SeasonID,
		Number:   v.Number,
		IsActive: v.IsActive,
	}
	if v.HasStart() {
		dto.StartAt = v.StartAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func matchToDTO(v round.Match) matchDTO {
	return matchDTO{
		ID:               v.ID,
		SeasonID:         v.SeasonID,
		RoundNumber:      v.RoundNumber,
		HomeTeamID:       v.HomeTeamID,
		AwayTeamID:       v.AwayTeamID,
		HomeScore:        v.HomeScore,
		AwayScore:        v.AwayScore,
		IsCancelled:      v.IsCancelled,
		PointsCalculated: v.PointsCalculated,
	}
}
