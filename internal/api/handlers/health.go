package handlers

import (
	"time"

	"github.com/helixgrid/quotedesk/internal/utils"
	"github.com/helixgrid/quotedesk/internal/version"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		startedAt: time.Now(),
	}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	utils.HandleSuccess(c, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.startedAt).String(),
	})
}

// Version handles GET /api/v1/version
func (h *HealthHandler) Version(c *gin.Context) {
	utils.HandleSuccess(c, version.GetBuildInfo())
}
