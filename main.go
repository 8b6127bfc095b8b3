// @title        Feedback API
// @version      1.0
// @description  Collects user feedback and lets admins list and delete it.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/feedback-backend/config"
	"github.com/NomadCrew/feedback-backend/handlers"
	"github.com/NomadCrew/feedback-backend/internal/store/backend"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/NomadCrew/feedback-backend/router"
	"github.com/NomadCrew/feedback-backend/services"
	"github.com/NomadCrew/feedback-backend/validation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opened, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer opened.Close()

	// A failed Initialize is not fatal; each request retries it and reports 500.
	if err := opened.Store.Initialize(ctx); err != nil {
		log.Warnw("Storage initialization failed at startup", "backend", opened.Backend, "error", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
		if err := config.PingRedis(ctx, redisClient, 5, 2*time.Second); err != nil {
			log.Warnw("Redis unreachable, submission rate limiting fails open", "error", err)
		}
		defer func() { _ = redisClient.Close() }()
	}

	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.Email.Enabled {
		notifier = services.NewResendNotifier(&cfg.Email)
		log.Infow("Feedback notifications enabled", "to", logger.MaskEmail(cfg.Email.NotifyAddress))
	}

	feedbackService := services.NewFeedbackService(
		opened.Store,
		validation.Policy{RequireRating: cfg.Feedback.RequireRating},
		services.NewFeedbackMetrics(prometheus.DefaultRegisterer),
		notifier,
	)
	healthService := services.NewHealthService(opened.Store, opened.Backend, redisClient, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:          cfg,
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackService),
		HealthHandler:   handlers.NewHealthHandler(healthService),
		RedisClient:     redisClient,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting feedback server", "port", cfg.Server.Port, "backend", opened.Backend, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Graceful shutdown failed", "error", err)
		return
	}
	log.Info("Server stopped")
}
