package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/repetit/testflow-backend/internal/config"
	"github.com/repetit/testflow-backend/internal/countdown"
	"github.com/repetit/testflow-backend/internal/database"
	"github.com/repetit/testflow-backend/internal/handler"
	"github.com/repetit/testflow-backend/internal/journal"
	"github.com/repetit/testflow-backend/internal/logger"
	"github.com/repetit/testflow-backend/internal/router"
	"github.com/repetit/testflow-backend/internal/session"
	"github.com/repetit/testflow-backend/internal/store"
	"github.com/repetit/testflow-backend/internal/upstream"
	"github.com/repetit/testflow-backend/internal/validator"
	"github.com/repetit/testflow-backend/internal/worker"
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
		Msg("Starting TestFlow Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Connect to PostgreSQL (optional) ──────────────────────────────
	// The journal is supplemental. Without DATABASE_URL the service runs
	// fully, it just keeps no attempt history.
	var recorder *journal.Recorder
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		recorder = journal.NewRecorder(pool, log)
	} else {
		log.Warn().Msg("DATABASE_URL not set, submission journal disabled")
	}

	// ─── Initialize Core ───────────────────────────────────────────────
	sessionStore := store.NewRedisStore(rdb, log)
	upstreamClient := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, log)

	opts := []session.Option{}
	if recorder != nil {
		opts = append(opts, session.WithJournal(recorder))
	}
	ctrl := session.NewController(sessionStore, upstreamClient, countdown.TickerScheduler{}, log, opts...)
	defer ctrl.Close()

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Flow:   handler.NewFlowHandler(ctrl, log),
		Stream: handler.NewStreamHandler(ctrl, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	resolver := worker.NewBackupResolver(sessionStore, recorder, cfg.ResolverInterval, log)
	go resolver.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctrl, handlers, cfg)

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

	// 2. Stop the background worker.
	workerCancel()

	// 3. Stop countdowns and close session streams. Snapshots are already
	// persisted on every mutation, so restart resumes where takers left off.
	ctrl.Close()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
