package routes

import (
	"github.com/helixgrid/quotedesk/internal/api/middleware"
	"github.com/helixgrid/quotedesk/internal/config"
	"github.com/helixgrid/quotedesk/internal/logging"

	"github.com/gin-gonic/gin"
)

// Setup configures all route groups
func Setup(router *gin.Engine, h *Handlers, m *Middleware) {
	logger := logging.GetGlobalLogger()

	// Create base API v1 group
	v1 := router.Group("/api/v1")

	// Health routes (public)
	SetupHealthRoutes(router, h.Health)

	// Version route (public)
	v1.GET("/version", h.Health.Version)

	// Quote routes (public)
	SetupQuoteRoutes(v1, h.Quote, m)

	logger.Info("All routes have been set up successfully")
}

// SetupGlobalMiddleware configures middleware that applies to all routes
func SetupGlobalMiddleware(router *gin.Engine, cfg *config.Config, logger *logging.Logger) {
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.Environment, cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	}))
}
