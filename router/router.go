package router

import (
	"net/http"
	"time"

	"github.com/NomadCrew/feedback-backend/config"
	_ "github.com/NomadCrew/feedback-backend/docs"
	"github.com/NomadCrew/feedback-backend/handlers"
	"github.com/NomadCrew/feedback-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config          *config.Config
	FeedbackHandler *handlers.FeedbackHandler
	HealthHandler   *handlers.HealthHandler
	// RedisClient enables the submission rate limiter when non-nil.
	RedisClient *redis.Client
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
	Logger   *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.HandleMethodNotAllowed = true

	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil && deps.Logger != nil {
		deps.Logger.Warnw("Invalid trusted proxies, ignoring forwarded headers", "error", err)
	}

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(&deps.Config.Server))
	r.Use(middleware.JSONContentType())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.ErrorHandler())

	r.NoRoute(handlers.NotFound)
	r.NoMethod(handlers.MethodNotAllowed)

	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	fh := deps.FeedbackHandler
	submit := func(methods ...string) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{middleware.AllowMethods(methods...)}
		if deps.RedisClient != nil {
			rl := deps.Config.RateLimit
			chain = append(chain, middleware.SubmissionRateLimiter(deps.RedisClient, rl.SubmitRequestsPerWindow, time.Duration(rl.WindowSeconds)*time.Second))
		}
		return append(chain, fh.SubmitFeedback)
	}
	collectionMethods := []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	deleteMethods := middleware.AllowMethods(http.MethodDelete, http.MethodOptions)

	// Canonical routes and the aliases older clients call.
	r.GET("/feedback", middleware.AllowMethods(collectionMethods...), fh.ListFeedback)
	r.POST("/feedback", submit(collectionMethods...)...)
	r.DELETE("/feedback", deleteMethods, fh.DeleteFeedback)
	r.DELETE("/feedback/:id", deleteMethods, fh.DeleteFeedback)

	r.GET("/get-feedbacks", middleware.AllowMethods(http.MethodGet, http.MethodOptions), fh.ListFeedback)
	r.POST("/submit-feedback", submit(http.MethodPost, http.MethodOptions)...)
	r.DELETE("/delete-feedback", deleteMethods, fh.DeleteFeedback)
	r.DELETE("/delete-feedback/:id", deleteMethods, fh.DeleteFeedback)

	for _, path := range []string{"/feedback", "/feedback/:id", "/get-feedbacks", "/submit-feedback", "/delete-feedback", "/delete-feedback/:id"} {
		r.OPTIONS(path, fh.Preflight)
	}

	return r
}
