package routes

import (
	"github.com/helixgrid/quotedesk/internal/api/handlers"
	"github.com/helixgrid/quotedesk/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// SetupQuoteRoutes configures quote submission routes
func SetupQuoteRoutes(router *gin.RouterGroup, quote *handlers.QuoteHandler, m *Middleware) {
	// Public endpoint with its own tight rate limit on top of the global
	// one. A legitimate visitor submits the form once, maybe twice.
	router.POST("/quote",
		middleware.RateLimitMiddleware(middleware.RateLimitConfig{
			RPS:   1,
			Burst: 5,
		}),
		m.Validation.ValidateQuoteRequest(),
		quote.Submit,
	)
}
