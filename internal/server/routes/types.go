package routes

import (
	"github.com/helixgrid/quotedesk/internal/api/handlers"
	"github.com/helixgrid/quotedesk/internal/api/middleware"
)

// Handlers contains all the route handlers
type Handlers struct {
	Quote  *handlers.QuoteHandler
	Health *handlers.HealthHandler
}

// Middleware contains all the middleware
type Middleware struct {
	Validation *middleware.ValidationMiddleware
}
