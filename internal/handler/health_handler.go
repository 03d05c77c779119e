package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentallab/backend/pkg/database"
	pkgredis "github.com/dentallab/backend/pkg/redis"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db      *database.PostgresDB
	redis   *pkgredis.Client
	version string
}

// NewHealthHandler creates a new HealthHandler. The redis client may be
// nil when rate limiting runs without a backing store.
func NewHealthHandler(db *database.PostgresDB, redis *pkgredis.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, version: version}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "dentallab-api",
		"version": h.version,
	})
}

// Ready checks if the service is ready to accept traffic. Postgres is
// required; Redis is reported but does not fail readiness.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}

	if h.redis != nil {
		checks["redis"] = "connected"
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			checks["redis"] = "disconnected"
		}
	}

	if err := h.db.Ping(c.Request.Context()); err != nil {
		checks["database"] = "disconnected"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"service": "dentallab-api",
			"version": h.version,
			"checks":  checks,
			"error":   err.Error(),
		})
		return
	}
	checks["database"] = "connected"

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "dentallab-api",
		"version": h.version,
		"checks":  checks,
	})
}
