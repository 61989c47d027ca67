package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devboard-io/devboard/internal/infrastructure/database"
	"github.com/devboard-io/devboard/internal/infrastructure/session"
)

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	db       *database.Database
	sessions *session.Store
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(db *database.Database, sessions *session.Store) *HealthHandler {
	return &HealthHandler{
		db:       db,
		sessions: sessions,
	}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz handles GET /readyz
// Checks that both backing stores answer
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{"database": "ok", "redis": "ok"}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "unreachable"
		healthy = false
	}
	if err := h.sessions.Ping(ctx); err != nil {
		checks["redis"] = "unreachable"
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
