package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Message represents an outbound transactional email. Success means the
// provider accepted the request, not that the recipient received it.
type Message struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	ReplyTo string            `json:"reply_to,omitempty"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html,omitempty"`
	Text    string            `json:"text,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// EmailSender dispatches a single email message.
type EmailSender interface {
	Send(ctx context.Context, msg *Message) error
}

// ResendService sends email through a Resend-compatible HTTP API.
type ResendService struct {
	apiKey  string
	baseURL string
	client  *retryablehttp.Client
}

// NewResendService creates a new email sending service. Sends are retried
// once on transient network failure; the provider's X-Entity-Ref-ID header
// keeps a retried send from producing duplicate emails.
func NewResendService(apiKey, baseURL string, timeout time.Duration, retryMax int) *ResendService {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	return &ResendService{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
	}
}

// Send posts the message to the provider and returns an error when the
// provider does not accept it.
func (s *ResendService) Send(ctx context.Context, msg *Message) error {
	if s.apiKey == "" {
		return fmt.Errorf("email api key not configured")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", payload)
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
