// Package app assembles repositories, services and the HTTP router from
// configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/IdoCohen138/league-predictions/internal/config"
	"github.com/IdoCohen138/league-predictions/internal/domain/prediction"
	"github.com/IdoCohen138/league-predictions/internal/domain/round"
	"github.com/IdoCohen138/league-predictions/internal/domain/season"
	"github.com/IdoCohen138/league-predictions/internal/domain/standings"
	"github.com/IdoCohen138/league-predictions/internal/infrastructure/jobqueue"
	"github.com/IdoCohen138/league-predictions/internal/infrastructure/repository/memory"
	"github.com/IdoCohen138/league-predictions/internal/infrastructure/repository/postgres"
	"github.com/IdoCohen138/league-predictions/internal/interfaces/httpapi"
	"github.com/IdoCohen138/league-predictions/internal/platform/cache"
	idgen "github.com/IdoCohen138/league-predictions/internal/platform/id"
	"github.com/IdoCohen138/league-predictions/internal/platform/logging"
	"github.com/IdoCohen138/league-predictions/internal/platform/resilience"
	"github.com/IdoCohen138/league-predictions/internal/usecase"
)

// NewHTTPServer wires the full service. The returned cleanup releases
// resources the server holds (today: the database pool) and must run after
// the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		seasonRepo     season.Repository
		roundRepo      round.Repository
		predictionRepo prediction.Repository
		standingsRepo  standings.Repository
	)
	cleanup := func(context.Context) error { return nil }

	if cfg.DBURL != "" {
		db, err := otelsqlx.Connect("postgres", cfg.DBURL,
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		seasonRepo = postgres.NewSeasonRepository(db)
		roundRepo = postgres.NewRoundRepository(db)
		predictionRepo = postgres.NewPredictionRepository(db)
		standingsRepo = postgres.NewStandingsRepository(db)
		cleanup = func(context.Context) error { return db.Close() }
		logger.Info("postgres repositories enabled", "db_name", dbNameFromURL(cfg.DBURL))
	} else {
		seasonRepo = memory.NewSeasonRepository(nil)
		roundRepo = memory.NewRoundRepository(nil, nil)
		predictionRepo = memory.NewPredictionRepository(nil, nil)
		standingsRepo = memory.NewStandingsRepository()
		logger.Info("in-memory repositories enabled", "reason", "DB_URL empty")
	}

	locks := &resilience.KeyedMutex{}
	var leaderboards *cache.Store
	if cfg.CacheEnabled {
		leaderboards = cache.NewStore(cfg.CacheTTL)
	}

	seasonSvc := usecase.NewSeasonService(seasonRepo, roundRepo)
	predictionSvc := usecase.NewPredictionService(seasonRepo, roundRepo, predictionRepo)
	scoringSvc := usecase.NewRoundScoringService(roundRepo, predictionRepo, standingsRepo, locks, logger)
	scoringSvc.SetMaxConcurrentUsers(cfg.ScoringMaxConcurrentUsers)
	preseasonSvc := usecase.NewPreseasonService(seasonRepo, predictionRepo, standingsRepo, logger)
	recomputeSvc := usecase.NewRecomputeService(seasonRepo, roundRepo, predictionRepo, standingsRepo, locks, logger)
	recomputeSvc.SetMaxWorkers(cfg.RecomputeMaxWorkers)
	standingsSvc := usecase.NewStandingsService(standingsRepo, leaderboards)

	var scoringJobs httpapi.ScoringJobPublisher
	if cfg.QStashEnabled {
		scoringJobs = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
		}, logger)
	}

	handler := httpapi.NewHandler(
		seasonSvc,
		predictionSvc,
		scoringSvc,
		preseasonSvc,
		recomputeSvc,
		standingsSvc,
		scoringJobs,
		logger,
	)
	router := httpapi.NewRouter(handler, idgen.NewRandomGenerator(), logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup(context.Background())
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}
