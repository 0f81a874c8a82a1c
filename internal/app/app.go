package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/bolaohq/bolao-server/internal/config"
	"github.com/bolaohq/bolao-server/internal/domain/match"
	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/prediction"
	"github.com/bolaohq/bolao-server/internal/infrastructure/account/gatekeeper"
	cacherepo "github.com/bolaohq/bolao-server/internal/infrastructure/repository/cache"
	"github.com/bolaohq/bolao-server/internal/infrastructure/repository/memory"
	"github.com/bolaohq/bolao-server/internal/infrastructure/repository/postgres"
	"github.com/bolaohq/bolao-server/internal/interfaces/httpapi"
	"github.com/bolaohq/bolao-server/internal/platform/cache"
	idgen "github.com/bolaohq/bolao-server/internal/platform/id"
	"github.com/bolaohq/bolao-server/internal/platform/logging"
	"github.com/bolaohq/bolao-server/internal/platform/resilience"
	"github.com/bolaohq/bolao-server/internal/usecase"
)

// NewHTTPServer wires repositories, services and the router. When DB_URL is
// empty the service runs on in-memory repositories, which is enough for local
// development and tests. The returned cleanup closes the database pool.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		poolRepo        pool.Repository
		matchRepo       match.Repository
		participantRepo participant.Repository
		predictionRepo  prediction.Repository
		cleanup         = func(context.Context) error { return nil }
	)

	if cfg.DBURL != "" {
		db, err := openDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		poolRepo = postgres.NewPoolRepository(db)
		matchRepo = postgres.NewMatchRepository(db)
		participantRepo = postgres.NewParticipantRepository(db)
		predictionRepo = postgres.NewPredictionRepository(db)
		cleanup = func(context.Context) error { return db.Close() }
		logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL))
	} else {
		poolRepo = memory.NewPoolRepository()
		matchRepo = memory.NewMatchRepository()
		participantRepo = memory.NewParticipantRepository()
		predictionRepo = memory.NewPredictionRepository()
		logger.Info("running with in-memory repositories", "reason", "DB_URL empty")
	}

	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL)
		poolRepo = cacherepo.NewPoolRepository(poolRepo, store)
		participantRepo = cacherepo.NewParticipantRepository(participantRepo, store)
		logger.Info("repository cache enabled", "ttl", cfg.CacheTTL.String())
	}

	ids := idgen.NewRandomGenerator()
	recomputeSvc := usecase.NewRecomputeService(poolRepo, matchRepo, predictionRepo, participantRepo, logger)
	recomputeSvc.SetScoreWorkers(cfg.RecomputeWorkers)

	poolSvc := usecase.NewPoolService(poolRepo, participantRepo, recomputeSvc, ids, logger)
	matchSvc := usecase.NewMatchService(poolRepo, matchRepo, recomputeSvc, ids, logger)
	predictionSvc := usecase.NewPredictionService(poolRepo, matchRepo, participantRepo, predictionRepo, ids, logger)
	rankingSvc := usecase.NewRankingService(poolRepo, participantRepo)

	verifier := gatekeeper.NewClient(gatekeeper.ClientConfig{
		BaseURL:        cfg.GatekeeperBaseURL,
		IntrospectPath: cfg.GatekeeperIntrospectPath,
		Timeout:        cfg.GatekeeperTimeout,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GatekeeperCircuitEnabled,
			FailureThreshold: cfg.GatekeeperCircuitFailures,
			OpenTimeout:      cfg.GatekeeperCircuitOpenWindow,
			HalfOpenMaxReq:   cfg.GatekeeperCircuitHalfOpenReq,
		},
		CacheTTL:     cfg.GatekeeperCacheTTL,
		CacheMaxSize: cfg.GatekeeperCacheMaxSize,
	})

	handler := httpapi.NewHandler(poolSvc, matchSvc, predictionSvc, rankingSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
