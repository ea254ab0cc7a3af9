package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edustack/assess-backend/internal/config"
	"github.com/edustack/assess-backend/internal/database"
	"github.com/edustack/assess-backend/internal/handler"
	"github.com/edustack/assess-backend/internal/logger"
	"github.com/edustack/assess-backend/internal/router"
	"github.com/edustack/assess-backend/internal/service"
	"github.com/edustack/assess-backend/internal/session"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/edustack/assess-backend/internal/validator"
	"github.com/edustack/assess-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Assess Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Stores ─────────────────────────────────────────────
	catalogStore := store.NewPostgresCatalogStore(pool, log)
	resultStore := store.NewPostgresResultStore(pool)
	ledgerStore := store.NewPostgresLedgerStore(pool, log)
	userStore := store.NewPostgresUserStore(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	recorder := session.NewRecorder(resultStore, ledgerStore, nil, log)

	authService := service.NewAuthService(cfg, userStore, rdb)
	catalogService := service.NewCatalogService(catalogStore, resultStore, log)
	sessionService := service.NewSessionService(catalogStore, recorder, rdb, session.SystemClock, log)
	analyticsService := service.NewAnalyticsService(resultStore, ledgerStore, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userStore),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Session:   handler.NewSessionHandler(sessionService),
		Practice:  handler.NewPracticeHandler(analyticsService, log),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Monitor:   handler.NewMonitorHandler(rdb, catalogService, sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	autosaveWorker := worker.NewAutosaveWorker(pool, rdb, log)
	flagWorker := worker.NewFlagWorker(pool, rdb, log)

	go autosaveWorker.Start(workerCtx)
	go flagWorker.Start(workerCtx)
	go sessionService.StartReaper(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
