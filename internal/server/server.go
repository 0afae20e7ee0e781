package server

import (
	"io"
	"net/http"

	"github.com/helixgrid/quotedesk/internal/api/dto/common"
	"github.com/helixgrid/quotedesk/internal/api/handlers"
	"github.com/helixgrid/quotedesk/internal/api/middleware"
	"github.com/helixgrid/quotedesk/internal/config"
	"github.com/helixgrid/quotedesk/internal/logging"
	"github.com/helixgrid/quotedesk/internal/server/routes"
	"github.com/helixgrid/quotedesk/internal/service"

	"github.com/gin-gonic/gin"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	cfg    *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Disable Gin's default logger entirely because we're using our custom logger
	gin.DisableConsoleColor()
	gin.DefaultWriter = io.Discard

	// Create a new engine without default middleware
	router := gin.New()

	// Always add recovery middleware for panic handling
	router.Use(gin.Recovery())

	// The quote endpoint is POST-only; anything else on a known path gets a
	// proper 405 instead of gin's default 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, common.NewErrorResponse(
			common.ErrCodeMethodNotAllowed, "Method not allowed", nil))
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse(
			common.ErrCodeNotFound, "Resource not found", nil))
	})

	return &Server{
		router: router,
		cfg:    cfg,
	}
}

// Init wires the services, handlers and routes
func (s *Server) Init() error {
	logger := logging.GetGlobalLogger()

	captchaService := service.NewTurnstileService(s.cfg.TurnstileSecret, s.cfg.TurnstileVerifyURL, s.cfg.CaptchaTimeout)
	geoService := service.NewGeoIPService(s.cfg.GeoLookupURL, s.cfg.GeoTimeout)
	emailService := service.NewResendService(s.cfg.EmailAPIKey, s.cfg.EmailBaseURL, s.cfg.EmailTimeout, s.cfg.EmailRetryMax)

	quoteService := service.NewQuoteService(service.QuoteServiceConfig{
		FromEmail:      s.cfg.FromEmail,
		SalesEmail:     s.cfg.SalesEmail,
		AllowedCountry: s.cfg.AllowedCountry,
		MinFillTime:    s.cfg.MinFillTime,
	}, captchaService, geoService, emailService, logger)

	h := &routes.Handlers{
		Quote:  handlers.NewQuoteHandler(quoteService),
		Health: handlers.NewHealthHandler(),
	}

	m := &routes.Middleware{
		Validation: middleware.NewValidationMiddleware(),
	}

	routes.SetupGlobalMiddleware(s.router, s.cfg, logger)
	routes.Setup(s.router, h, m)

	return nil
}

// Start starts the server
func (s *Server) Start() error {
	return s.router.Run(":" + s.cfg.Port)
}

// Router exposes the underlying engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
