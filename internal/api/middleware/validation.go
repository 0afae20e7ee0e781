package middleware

import (
	"net/http"

	"github.com/helixgrid/quotedesk/internal/api/constants"
	"github.com/helixgrid/quotedesk/internal/api/dto/common"
	"github.com/helixgrid/quotedesk/internal/api/dto/v1/quote"
	"github.com/helixgrid/quotedesk/internal/api/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationMiddleware handles request validation
type ValidationMiddleware struct{}

// NewValidationMiddleware creates a new validation middleware and registers
// the custom validators on gin's binding engine.
func NewValidationMiddleware() *ValidationMiddleware {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}
	return &ValidationMiddleware{}
}

// ValidateQuoteRequest binds and validates a quote submission, then stashes
// the parsed request in the context for the handler. Field-level failures
// are reported here, before any downstream dependency is touched.
func (m *ValidationMiddleware) ValidateQuoteRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quote.QuoteRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(
				common.ErrCodeValidation,
				"Missing or invalid fields",
				validation.FormatValidationError(err),
			))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyQuote, &req)
		c.Next()
	}
}
