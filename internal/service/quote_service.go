package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/helixgrid/quotedesk/internal/api/dto/common"
	"github.com/helixgrid/quotedesk/internal/api/dto/v1/quote"
	"github.com/helixgrid/quotedesk/internal/api/validation"
	"github.com/helixgrid/quotedesk/internal/logging"

	"github.com/google/uuid"
)

// priceTolerance is the largest acceptable difference between the submitted
// total and planPrice * quantity. Client-side totals are computed in floating
// point, so sub-cent drift is legitimate; anything larger is treated as
// tampering or a client bug.
const priceTolerance = 0.01

// maxQuantity caps a single quote request
const maxQuantity = 1000

// QuoteServiceConfig holds the addresses and policy knobs for the
// submission pipeline.
type QuoteServiceConfig struct {
	FromEmail      string
	SalesEmail     string
	AllowedCountry string        // empty disables the region gate
	MinFillTime    time.Duration // submissions faster than this are rejected
}

// QuoteService runs the quote submission pipeline: field validation, bot
// heuristics, captcha verification, the optional region gate, and the two
// outbound emails. Each submission is independent; the service holds no
// state between calls.
type QuoteService struct {
	cfg     QuoteServiceConfig
	captcha CaptchaVerifier
	geo     GeoLocator
	email   EmailSender
	logger  *logging.Logger
}

// NewQuoteService creates a new quote submission service
func NewQuoteService(cfg QuoteServiceConfig, captcha CaptchaVerifier, geo GeoLocator, email EmailSender, logger *logging.Logger) *QuoteService {
	return &QuoteService{
		cfg:     cfg,
		captcha: captcha,
		geo:     geo,
		email:   email,
		logger:  logger,
	}
}

// Submit processes one quote submission. Checks run in order and
// short-circuit on the first failure, so no side effect happens unless every
// gate passes. The returned error is always a *QuoteError for classified
// failures.
func (s *QuoteService) Submit(ctx context.Context, req *quote.QuoteRequest, clientIP string) error {
	if err := s.validate(req); err != nil {
		return err
	}

	if err := s.verifyCaptcha(ctx, req.TurnstileToken, clientIP); err != nil {
		return err
	}

	if err := s.checkRegion(ctx, clientIP); err != nil {
		return err
	}

	return s.sendEmails(ctx, req, clientIP)
}

// validate applies the field and bot checks. These all run before any
// network call so that rejected submissions never touch a downstream
// dependency.
func (s *QuoteService) validate(req *quote.QuoteRequest) error {
	// Hidden field that humans never fill. Respond with a generic 400 so
	// the bot learns nothing from the rejection.
	if req.Honeypot != "" {
		return NewQuoteError(http.StatusBadRequest, common.ErrCodeBadRequest, "Bad request", nil)
	}

	name := strings.TrimSpace(req.FormData.Name)
	email := strings.TrimSpace(req.FormData.Email)
	address := strings.TrimSpace(req.FormData.Address)
	planName := strings.TrimSpace(req.PlanName)
	token := strings.TrimSpace(req.TurnstileToken)

	if name == "" || email == "" || address == "" || planName == "" || token == "" {
		return errMissingFields()
	}

	if !validation.IsValidEmail(email) {
		return errInvalidEmail()
	}

	if req.PlanPrice <= 0 {
		return NewQuoteError(http.StatusBadRequest, common.ErrCodeValidation, "Invalid plan price", nil)
	}

	if req.Quantity < 1 || req.Quantity > maxQuantity {
		return NewQuoteError(http.StatusBadRequest, common.ErrCodeValidation, "Invalid quantity", nil)
	}

	expected := req.PlanPrice * float64(req.Quantity)
	if math.Abs(req.TotalPrice-expected) > priceTolerance {
		return NewQuoteError(http.StatusBadRequest, common.ErrCodeValidation, "Price mismatch", nil)
	}

	// Soft bot heuristic: humans do not fill a quote form this fast.
	if time.Duration(req.TTF)*time.Millisecond < s.cfg.MinFillTime {
		return NewQuoteError(http.StatusBadRequest, common.ErrCodeBotDetected, "Form submitted too quickly", nil)
	}

	return nil
}

// verifyCaptcha maps each captcha failure mode to its own user-facing
// outcome: an explicit rejection is the client's fault (400), an unreachable
// or garbled provider is not (502).
func (s *QuoteService) verifyCaptcha(ctx context.Context, token, clientIP string) error {
	err := s.captcha.Verify(ctx, token, clientIP)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrCaptchaRejected):
		return NewQuoteError(http.StatusBadRequest, common.ErrCodeCaptchaFailed, "Captcha verification failed", err)
	case errors.Is(err, ErrCaptchaMalformed):
		return NewQuoteError(http.StatusBadGateway, common.ErrCodeCaptchaUnverifiable, "Captcha service returned an unexpected response", err)
	default:
		return NewQuoteError(http.StatusBadGateway, common.ErrCodeCaptchaUnverifiable, "Could not reach captcha service", err)
	}
}

// checkRegion enforces the country policy gate. A failed lookup is logged
// and lets the submission through: the gate is business policy, not a
// security control, and a flaky geo provider must not drop real leads.
func (s *QuoteService) checkRegion(ctx context.Context, clientIP string) error {
	if s.cfg.AllowedCountry == "" || clientIP == "" {
		return nil
	}

	country, err := s.geo.Country(ctx, clientIP)
	if err != nil {
		s.logger.Warn("Geolocation lookup failed for %s, allowing submission: %v", clientIP, err)
		return nil
	}

	if country != s.cfg.AllowedCountry {
		return NewQuoteError(http.StatusForbidden, common.ErrCodeRegionNotAllowed, "Service not available in your region", nil)
	}

	return nil
}

// sendEmails dispatches the sales notification and then the requester
// receipt. The sends are sequential; the receipt is only attempted after the
// notification is accepted. There is no compensation if the receipt fails
// after the notification succeeded - the team has been notified but the
// client still sees an error.
func (s *QuoteService) sendEmails(ctx context.Context, req *quote.QuoteRequest, clientIP string) error {
	refID := strings.ReplaceAll(uuid.NewString(), "-", "")

	notification := s.buildNotification(req, clientIP, refID)
	if err := s.email.Send(ctx, notification); err != nil {
		return NewQuoteError(http.StatusServiceUnavailable, common.ErrCodeEmailSendFailed,
			"Failed to submit your request. Please try again later.", err)
	}

	receipt := s.buildReceipt(req)
	if err := s.email.Send(ctx, receipt); err != nil {
		s.logger.Error("Receipt send failed after sales notification %s was delivered: %v", refID, err)
		return NewQuoteError(http.StatusServiceUnavailable, common.ErrCodeEmailSendFailed,
			"Failed to submit your request. Please try again later.", err)
	}

	s.logger.Info("Quote request %s processed: plan=%s quantity=%d", refID, req.PlanName, req.Quantity)
	return nil
}

// buildNotification composes the internal sales notification. Reply-to is
// the requester so the team can answer directly, and X-Entity-Ref-ID keeps
// provider-side retries from producing duplicate threads.
func (s *QuoteService) buildNotification(req *quote.QuoteRequest, clientIP, refID string) *Message {
	esc := html.EscapeString
	ip := clientIP
	if ip == "" {
		ip = "n/a"
	}

	htmlBody := fmt.Sprintf(`
		<h2>Quote Request</h2>
		<p><b>Name:</b> %s</p>
		<p><b>Email:</b> %s</p>
		<p><b>Address:</b> %s</p>
		<p><b>Plan:</b> %s</p>
		<p><b>Quantity:</b> %d</p>
		<p><b>Total Price:</b> $%.2f</p>
		<hr/>
		<small>IP: %s</small>`,
		esc(req.FormData.Name),
		esc(req.FormData.Email),
		esc(req.FormData.Address),
		esc(req.PlanName),
		req.Quantity,
		req.TotalPrice,
		esc(ip),
	)

	textBody := fmt.Sprintf(
		"Quote Request\n\nName: %s\nEmail: %s\nAddress: %s\nPlan: %s\nQuantity: %d\nTotal Price: $%.2f\n\nIP: %s\n",
		req.FormData.Name,
		req.FormData.Email,
		req.FormData.Address,
		req.PlanName,
		req.Quantity,
		req.TotalPrice,
		ip,
	)

	return &Message{
		From:    s.cfg.FromEmail,
		To:      []string{s.cfg.SalesEmail},
		ReplyTo: strings.TrimSpace(req.FormData.Email),
		Subject: fmt.Sprintf("New Quote Request — %s (%s)", req.FormData.Name, req.PlanName),
		HTML:    htmlBody,
		Text:    textBody,
		Headers: map[string]string{"X-Entity-Ref-ID": refID},
	}
}

// buildReceipt composes the requester's confirmation. Kept neutral; no
// pricing or address details are echoed back.
func (s *QuoteService) buildReceipt(req *quote.QuoteRequest) *Message {
	esc := html.EscapeString

	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Thanks - we have received your request for %s (qty %d). Our team will follow up soon.</p>
		<p>If this wasn't you, you can ignore this email.</p>
		<p>- HelixGrid Managed IT</p>`,
		esc(req.FormData.Name),
		esc(req.PlanName),
		req.Quantity,
	)

	textBody := fmt.Sprintf(
		"Hi %s,\n\nThanks - we have received your request for %s (qty %d). Our team will follow up soon.\n\nIf this wasn't you, you can ignore this email.\n\n- HelixGrid Managed IT\n",
		req.FormData.Name,
		req.PlanName,
		req.Quantity,
	)

	return &Message{
		From:    s.cfg.FromEmail,
		To:      []string{strings.TrimSpace(req.FormData.Email)},
		Subject: "We received your quote request",
		HTML:    htmlBody,
		Text:    textBody,
	}
}
