package services

import (
	"context"
	"time"

	"github.com/NomadCrew/feedback-backend/internal/store"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type HealthService struct {
	store       store.FeedbackStore
	backend     string
	redisClient *redis.Client
	version     string
	startTime   time.Time
	log         *zap.SugaredLogger
}

// NewHealthService reports on st and, when redisClient is non-nil, on Redis.
func NewHealthService(st store.FeedbackStore, backend string, redisClient *redis.Client, version string) *HealthService {
	return &HealthService{
		store:       st,
		backend:     backend,
		redisClient: redisClient,
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger(),
	}
}

// CheckHealth pings every dependency. The store is critical; Redis only guards
// the rate limiter, so a Redis failure degrades the service rather than downing it.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overallStatus := types.HealthStatusUp

	storeStatus := h.checkStore(ctx)
	components["storage"] = storeStatus
	if storeStatus.Status == types.HealthStatusDown {
		overallStatus = types.HealthStatusDown
	}

	if h.redisClient != nil {
		redisStatus := h.checkRedis(ctx)
		components["redis"] = redisStatus
		if redisStatus.Status != types.HealthStatusUp && overallStatus == types.HealthStatusUp {
			overallStatus = types.HealthStatusDegraded
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Backend:    h.backend,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkStore(ctx context.Context) types.HealthComponent {
	if err := h.store.Ping(ctx); err != nil {
		h.log.Errorw("Storage health check failed", "backend", h.backend, "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Storage unavailable",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
