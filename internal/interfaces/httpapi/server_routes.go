package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/context", handler.GetCurrentContext)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/users/{userID}/score", handler.GetUserScore)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/rounds/{roundNumber}/matches", handler.ListRoundMatches)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/rounds/{roundNumber}/predictions/{userID}", handler.GetUserRoundPredictions)
	mux.HandleFunc("PUT /v1/seasons/{seasonID}/rounds/{roundNumber}/predictions/{userID}", handler.SubmitRoundPredictions)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/preseason-picks/{userID}", handler.GetPreseasonPicks)
	mux.HandleFunc("PUT /v1/seasons/{seasonID}/preseason-picks/{userID}", handler.SubmitPreseasonPicks)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	guard := func(h http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, h)
	}

	mux.Handle("PUT /v1/internal/seasons/{seasonID}", guard(handler.UpsertSeason))
	mux.Handle("PUT /v1/internal/seasons/{seasonID}/rounds/{roundNumber}", guard(handler.UpsertRound))
	mux.Handle("DELETE /v1/internal/seasons/{seasonID}/rounds/{roundNumber}", guard(handler.DeleteRound))
	mux.Handle("PUT /v1/internal/seasons/{seasonID}/rounds/{roundNumber}/matches/{matchID}", guard(handler.UpsertMatch))
	mux.Handle("POST /v1/internal/seasons/{seasonID}/rounds/{roundNumber}/matches/{matchID}/result", guard(handler.RecordMatchResult))
	mux.Handle("POST /v1/internal/seasons/{seasonID}/rounds/{roundNumber}/score", guard(handler.ScoreRound))
	mux.Handle("POST /v1/internal/seasons/{seasonID}/outcomes", guard(handler.FinalizeOutcomes))
	mux.Handle("POST /v1/internal/seasons/{seasonID}/preseason/score", guard(handler.ScorePreseason))
	mux.Handle("POST /v1/internal/seasons/{seasonID}/recompute", guard(handler.RecomputeSeason))
	mux.Handle("POST /v1/internal/seasons/{seasonID}/users/{userID}/recompute", guard(handler.RecomputeUser))
	mux.Handle("POST /v1/internal/jobs/score-round", guard(handler.ScheduleRoundScoring))
	mux.Handle("POST /v1/internal/jobs/score-round/run", guard(handler.RunScoreRoundJob))
}
