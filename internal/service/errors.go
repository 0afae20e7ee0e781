package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/helixgrid/quotedesk/internal/api/dto/common"
)

// QuoteError is a domain error carrying the HTTP status and machine-readable
// code for the failure, so handlers map errors without matching on message
// text.
type QuoteError struct {
	Status  int
	Code    common.ErrorCode
	Message string
	Err     error
}

func (e *QuoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

// NewQuoteError creates a new domain error
func NewQuoteError(status int, code common.ErrorCode, message string, err error) *QuoteError {
	return &QuoteError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// AsQuoteError extracts a *QuoteError from an error chain. The second return
// is false for unclassified errors, which callers should surface as a
// generic 500.
func AsQuoteError(err error) (*QuoteError, bool) {
	var qe *QuoteError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// Validation failure constructors used by the submission pipeline.
func errMissingFields() *QuoteError {
	return NewQuoteError(http.StatusBadRequest, common.ErrCodeValidation, "Missing fields", nil)
}

func errInvalidEmail() *QuoteError {
	return NewQuoteError(http.StatusBadRequest, common.ErrCodeValidation, "Invalid email address", nil)
}
