// Package httpapi exposes the prediction pool over HTTP: public reads for
// leaderboards and predictions, token-guarded internal writes for scoring
// and repair.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/IdoCohen138/league-predictions/internal/platform/logging"
	"github.com/IdoCohen138/league-predictions/internal/usecase"
)

// ScoringJobPublisher schedules a deferred scoring pass for one round.
type ScoringJobPublisher interface {
	EnqueueRoundScoring(ctx context.Context, seasonID string, roundNumber int, delay time.Duration) error
}

type Handler struct {
	seasonService     *usecase.SeasonService
	predictionService *usecase.PredictionService
	scoringService    *usecase.RoundScoringService
	preseasonService  *usecase.PreseasonService
	recomputeService  *usecase.RecomputeService
	standingsService  *usecase.StandingsService
	scoringJobs       ScoringJobPublisher
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	seasonService *usecase.SeasonService,
	predictionService *usecase.PredictionService,
	scoringService *usecase.RoundScoringService,
	preseasonService *usecase.PreseasonService,
	recomputeService *usecase.RecomputeService,
	standingsService *usecase.StandingsService,
	scoringJobs ScoringJobPublisher,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		seasonService:     seasonService,
		predictionService: predictionService,
		scoringService:    scoringService,
		preseasonService:  preseasonService,
		recomputeService:  recomputeService,
		standingsService:  standingsService,
		scoringJobs:       scoringJobs,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSONBody decodes a request body into dst. An empty body is allowed
// when allowEmpty is set; dst keeps its zero values.
func decodeJSONBody(r *http.Request, dst any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
