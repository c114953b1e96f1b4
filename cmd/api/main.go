// Package main is the entry point for the TrailHop API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ldevries/trailhop/internal/classify"
	"github.com/ldevries/trailhop/internal/config"
	"github.com/ldevries/trailhop/internal/handler"
	"github.com/ldevries/trailhop/internal/lock"
	"github.com/ldevries/trailhop/internal/middleware"
	"github.com/ldevries/trailhop/internal/repo"
	"github.com/ldevries/trailhop/internal/service"
)

// maxBodyBytes caps incoming request bodies. 1 MiB is generous for this API:
// the largest legitimate payload is a route plan request of a few hundred bytes.
const maxBodyBytes = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Hike locks -------------------------------------------------------
	// Per-hike serialization. With REDIS_URL set, locks are held in Redis so
	// multiple server instances agree on them; otherwise an in-process mutex
	// table serves a single instance.
	var locks lock.Locker
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(context.Background()).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		locks = lock.NewMutex(client)
		slog.Info("redis connection established, using distributed hike locks")
	} else {
		locks = lock.NewKeyed()
		slog.Info("REDIS_URL not set, using in-process hike locks")
	}

	// --- Repositories -----------------------------------------------------
	stopRepo := repo.NewTransitStopRepo(pool)
	trailRepo := repo.NewTrailRepo(pool)
	trailheadRepo := repo.NewTrailheadRepo(pool)
	routeRepo := repo.NewRouteRepo(pool)
	hikeRepo := repo.NewHikeRepo(pool)
	completedRepo := repo.NewCompletedHikeRepo(pool)
	exitPointRepo := repo.NewExitPointRepo(pool)
	strategyRepo := repo.NewExitStrategyRepo(pool)

	// --- Services ---------------------------------------------------------
	// classify.Keyword serves both optional collaborators: the scenic trail
	// classifier for route planning and the exit point scorer for ranking.
	keyword := classify.Keyword{}

	plannerSvc := service.NewPlannerService(trailheadRepo, trailRepo, stopRepo, routeRepo, keyword)
	alternativeSvc := service.NewAlternativeService(routeRepo, plannerSvc)
	exitSvc := service.NewExitService(exitPointRepo, strategyRepo, keyword)
	hikeSvc := service.NewHikeService(hikeRepo, completedRepo, exitPointRepo, exitSvc, locks)
	exportSvc := service.NewExportService(completedRepo)

	api := handler.NewServer(handler.Deps{
		Planner:      plannerSvc,
		Alternatives: alternativeSvc,
		Routes:       routeRepo,
		Hikes:        hikeSvc,
		Export:       exportSvc,
		Stops:        stopRepo,
		Trailheads:   trailheadRepo,
		Trails:       trailRepo,
		ExitPoints:   exitPointRepo,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	r.Mount("/", api.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
