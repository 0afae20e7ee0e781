package handlers

import (
	"net/http"

	"github.com/helixgrid/quotedesk/internal/api/constants"
	"github.com/helixgrid/quotedesk/internal/api/dto/common"
	"github.com/helixgrid/quotedesk/internal/api/dto/v1/quote"
	"github.com/helixgrid/quotedesk/internal/service"
	"github.com/helixgrid/quotedesk/internal/utils"

	"github.com/gin-gonic/gin"
)

// QuoteHandler handles quote form submissions
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// Submit handles POST /api/v1/quote
func (h *QuoteHandler) Submit(c *gin.Context) {
	// Get quote data from context (set by validation middleware)
	quoteData, exists := c.Get(constants.ContextKeyQuote)
	if !exists {
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Quote data not found in context")
		return
	}

	quotePtr, ok := quoteData.(*quote.QuoteRequest)
	if !ok {
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Invalid quote data format")
		return
	}

	clientIP := utils.GetRealIP(c)

	if err := h.quoteService.Submit(c.Request.Context(), quotePtr, clientIP); err != nil {
		if qe, ok := service.AsQuoteError(err); ok {
			utils.HandleAPIError(c, qe.Err, qe.Status, qe.Code, qe.Message)
			return
		}
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeInternalServer, "Failed to process quote request")
		return
	}

	utils.HandleSuccess(c, nil)
}
