package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/pkg/database"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/redis"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	redis *redis.Client
	db    *database.PostgresDB
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the audit
// log is disabled.
func NewHealthHandler(redisClient *redis.Client, db *database.PostgresDB) *HealthHandler {
	return &HealthHandler{redis: redisClient, db: db}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "rh-console",
	})
}

// Ready checks if the service is ready to accept traffic
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{
		"status":  "ready",
		"service": "rh-console",
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"service": "rh-console",
				"redis":   "disconnected",
				"error":   err.Error(),
			})
			return
		}
		checks["redis"] = "connected"
	}

	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"service":  "rh-console",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}
		checks["database"] = "connected"
	}

	c.JSON(http.StatusOK, checks)
}
