package middleware

import (
	"time"

	"github.com/helixgrid/quotedesk/internal/logging"
	"github.com/helixgrid/quotedesk/internal/utils"

	"github.com/gin-gonic/gin"
)

// RequestLogger is a middleware that logs request information through the
// application logger.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		clientIP := utils.GetRealIP(c)

		logger.LogHTTPRequest(
			method,
			path,
			clientIP,
			statusCode,
			c.Writer.Size(),
			latency.String(),
		)
	}
}
