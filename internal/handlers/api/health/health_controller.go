package health

import (
	"net/http"
	"time"

	"educate/internal/cache"
	"educate/internal/database"
	"educate/internal/response"

	"go.uber.org/zap"
)

// Controller reports service health for load balancers and monitors.
type Controller struct {
	db              *database.Manager
	cache           cache.Cache
	logger          *zap.Logger
	responseBuilder *response.Builder
	startedAt       time.Time
}

// NewController creates the health controller.
func NewController(db *database.Manager, cacheClient cache.Cache, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		db:              db,
		cache:           cacheClient,
		logger:          logger,
		responseBuilder: builder,
		startedAt:       time.Now(),
	}
}

// Check handles GET /api/health
func (c *Controller) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"database": "ok",
		"cache":    "ok",
	}
	healthy := true

	if err := c.db.HealthCheck(ctx); err != nil {
		checks["database"] = "unreachable"
		healthy = false
	}
	if err := c.cache.Health(ctx); err != nil {
		checks["cache"] = "unreachable"
	}

	payload := response.Payload{
		"status":    "healthy",
		"uptime":    time.Since(c.startedAt).Round(time.Second).String(),
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if !healthy {
		payload["status"] = "unhealthy"
		c.responseBuilder.WriteStatus(w, r, http.StatusServiceUnavailable, false, "", payload)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, "", payload)
}
