package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors distinguishing the captcha failure modes. Callers use
// errors.Is to decide which user-facing outcome each one maps to.
var (
	ErrCaptchaRejected  = errors.New("captcha token rejected")
	ErrCaptchaNetwork   = errors.New("captcha service unreachable")
	ErrCaptchaMalformed = errors.New("captcha service returned malformed response")
)

// CaptchaVerifier confirms server-side that a client-supplied token proves
// human interaction.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// TurnstileService verifies Cloudflare Turnstile tokens
type TurnstileService struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// NewTurnstileService creates a new Turnstile verification service.
// Verification is a single attempt with a short timeout; a slow captcha
// provider should fail the submission rather than stall it.
func NewTurnstileService(secret, verifyURL string, timeout time.Duration) *TurnstileService {
	return &TurnstileService{
		secret:    secret,
		verifyURL: verifyURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// turnstileResponse represents the response from the siteverify endpoint
type turnstileResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
}

// Verify checks the token against the siteverify endpoint. remoteIP is
// forwarded when known so the provider can cross-check the challenge origin.
func (s *TurnstileService) Verify(ctx context.Context, token, remoteIP string) error {
	if s.secret == "" {
		return fmt.Errorf("%w: secret not configured", ErrCaptchaNetwork)
	}
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrCaptchaRejected)
	}

	data := url.Values{}
	data.Set("secret", s.secret)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.verifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptchaNetwork, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptchaNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrCaptchaMalformed, resp.StatusCode)
	}

	var result turnstileResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: %v", ErrCaptchaMalformed, err)
	}

	if !result.Success {
		return fmt.Errorf("%w: %v", ErrCaptchaRejected, result.ErrorCodes)
	}

	return nil
}
