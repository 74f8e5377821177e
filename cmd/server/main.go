package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/database"
	"github.com/certlab/certprep-backend/internal/handler"
	"github.com/certlab/certprep-backend/internal/logger"
	"github.com/certlab/certprep-backend/internal/progress"
	"github.com/certlab/certprep-backend/internal/quiz"
	"github.com/certlab/certprep-backend/internal/repository"
	"github.com/certlab/certprep-backend/internal/router"
	"github.com/certlab/certprep-backend/internal/service"
	"github.com/certlab/certprep-backend/internal/validator"
	"github.com/certlab/certprep-backend/internal/websocket"
	"github.com/certlab/certprep-backend/internal/worker"
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
		Msg("Starting CertPrep Backend")

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

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	studyRepo := repository.NewStudyProgressRepository(pool)
	mockRepo := repository.NewMockResultRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	hub := websocket.NewHub(log)
	manager := quiz.NewManager()
	synchronizer := progress.NewSynchronizer(rdb, log)

	authService := service.NewAuthService(cfg, rdb, userRepo)
	catalogService := service.NewCatalogService(testRepo, questionRepo, rdb, log)
	sessionService := service.NewSessionService(cfg, manager, catalogService, studyRepo, synchronizer, hub, rdb, log)
	progressService := service.NewProgressService(studyRepo, mockRepo, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userRepo),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Session:  handler.NewSessionHandler(sessionService),
		Progress: handler.NewProgressHandler(progressService),
		Stream:   handler.NewStreamHandler(sessionService, hub, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	studyWorker := worker.NewStudyProgressWorker(pool, rdb, log)
	mockWorker := worker.NewMockResultWorker(pool, rdb, log)

	go studyWorker.Start(workerCtx)
	go mockWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load every test's validated question pool into Redis BEFORE accepting
	// traffic, so session creation never races a cold cache.
	if err := catalogService.Prewarm(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

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

	// 2. Tear down live sessions so no timer goroutine keeps ticking.
	sessionService.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
