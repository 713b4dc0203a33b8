package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
	"github.com/IdoCohen138/league-predictions/internal/usecase"
)

func (h *Handler) SubmitRoundPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitRoundPredictions")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	userID := strings.TrimSpace(r.PathValue("userID"))
	roundNumber, err := parseRoundNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPredictionsRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.SubmitRoundPredictionsInput{
		SeasonID:    seasonID,
		RoundNumber: roundNumber,
		UserID:      userID,
		Predictions: make([]usecase.MatchPredictionInput, 0, len(req.Predictions)),
	}
	for _, p := range req.Predictions {
		input.Predictions = append(input.Predictions, usecase.MatchPredictionInput{
			MatchID:   p.MatchID,
			HomeGoals: p.HomeGoals,
			AwayGoals: p.AwayGoals,
		})
	}

	if err := h.predictionService.SubmitRoundPredictions(ctx, input); err != nil {
		h.logger.WarnContext(ctx, "submit round predictions failed",
			"season_id", seasonID, "round_number", roundNumber, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"season_id":    seasonID,
		"round_number": roundNumber,
		"user_id":      userID,
		"predictions":  len(input.Predictions),
	})
}

func (h *Handler) GetUserRoundPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserRoundPredictions")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	userID := strings.TrimSpace(r.PathValue("userID"))
	roundNumber, err := parseRoundNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	predictions, err := h.predictionService.GetUserRoundPredictions(ctx, seasonID, roundNumber, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get round predictions failed",
			"season_id", seasonID, "round_number", roundNumber, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchPredictionDTO, 0, len(predictions))
	for _, p := range predictions {
		items = append(items, matchPredictionToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SubmitPreseasonPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPreseasonPicks")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	userID := strings.TrimSpace(r.PathValue("userID"))

	var req preseasonPicksRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	picks := prediction.PreseasonPicks{
		SeasonID:           seasonID,
		UserID:             userID,
		ChampionTeamID:     req.ChampionTeamID,
		CupWinnerTeamID:    req.CupWinnerTeamID,
		RelegatedTeamID1:   req.RelegatedTeamID1,
		RelegatedTeamID2:   req.RelegatedTeamID2,
		TopScorerPlayerID:  req.TopScorerPlayerID,
		TopAssistsPlayerID: req.TopAssistsPlayerID,
	}
	if err := h.predictionService.SubmitPreseasonPicks(ctx, picks); err != nil {
		h.logger.WarnContext(ctx, "submit preseason picks failed", "season_id", seasonID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, preseasonPicksToDTO(picks))
}

func (h *Handler) GetPreseasonPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPreseasonPicks")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	userID := strings.TrimSpace(r.PathValue("userID"))

	picks, err := h.predictionService.GetPreseasonPicks(ctx, seasonID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get preseason picks failed", "season_id", seasonID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, preseasonPicksToDTO(picks))
}

type submitPredictionsRequest struct {
	Predictions []matchPredictionRequest `json:"predictions" validate:"required,min=1,dive"`
}

type matchPredictionRequest struct {
	MatchID   string `json:"match_id" validate:"required"`
	HomeGoals int    `json:"home_goals" validate:"gte=0"`
	AwayGoals int    `json:"away_goals" validate:"gte=0"`
}

type preseasonPicksRequest struct {
	ChampionTeamID     string `json:"champion_team_id"`
	CupWinnerTeamID    string `json:"cup_winner_team_id"`
	RelegatedTeamID1   string `json:"relegated_team_id1"`
	RelegatedTeamID2   string `json:"relegated_team_id2"`
	TopScorerPlayerID  string `json:"top_scorer_player_id"`
	TopAssistsPlayerID string `json:"top_assists_player_id"`
}

type matchPredictionDTO struct {
	SeasonID    string `json:"season_id"`
	RoundNumber int    `json:"round_number"`
	MatchID     string `json:"match_id"`
	UserID      string `json:"user_id"`
	HomeGoals   int    `json:"home_goals"`
	AwayGoals   int    `json:"away_goals"`
	Points      int    `json:"points"`
	IsExact     bool   `json:"is_exact"`
	IsDirection bool   `json:"is_direction"`
	ScoredAt    string `json:"scored_at,omitempty"`
}

type preseasonPicksDTO struct {
	SeasonID           string `json:"season_id"`
	UserID             string `json:"user_id"`
	ChampionTeamID     string `json:"champion_team_id"`
	CupWinnerTeamID    string `json:"cup_winner_team_id"`
	RelegatedTeamID1   string `json:"relegated_team_id1"`
	RelegatedTeamID2   string `json:"relegated_team_id2"`
	TopScorerPlayerID  string `json:"top_scorer_player_id"`
	TopAssistsPlayerID string `json:"top_assists_player_id"`
}

func matchPredictionToDTO(v prediction.MatchPrediction) matchPredictionDTO {
	dto := matchPredictionDTO{
		SeasonID:    v.SeasonID,
		RoundNumber: v.RoundNumber,
		MatchID:     v.MatchID,
		UserID:      v.UserID,
		HomeGoals:   v.HomeGoals,
		AwayGoals:   v.AwayGoals,
		Points:      v.Points,
		IsExact:     v.IsExact,
		IsDirection: v.IsDirection,
	}
	if v.ScoredAt != nil {
		dto.ScoredAt = v.ScoredAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func preseasonPicksToDTO(v prediction.PreseasonPicks) preseasonPicksDTO {
	return preseasonPicksDTO{
		SeasonID:           v.SeasonID,
		UserID:             v.UserID,
		ChampionTeamID:     v.ChampionTeamID,
		CupWinnerTeamID:    v.CupWinnerTeamID,
		RelegatedTeamID1:   v.RelegatedTeamID1,
		RelegatedTeamID2:   v.RelegatedTeamID2,
		TopScorerPlayerID:  v.TopScorerPlayerID,
		TopAssistsPlayerID: v.TopAssistsPlayerID,
	}
}
