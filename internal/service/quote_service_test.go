package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/helixgrid/quotedesk/internal/api/dto/common"
	"github.com/helixgrid/quotedesk/internal/api/dto/v1/quote"
	"github.com/helixgrid/quotedesk/internal/logging"
)

// Mock CaptchaVerifier
type mockCaptcha struct {
	verifyFunc func(ctx context.Context, token, remoteIP string) error
	calls      int
}

func (m *mockCaptcha) Verify(ctx context.Context, token, remoteIP string) error {
	m.calls++
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, token, remoteIP)
	}
	return nil
}

// Mock GeoLocator
type mockGeo struct {
	countryFunc func(ctx context.Context, ip string) (string, error)
	calls       int
}

func (m *mockGeo) Country(ctx context.Context, ip string) (string, error) {
	m.calls++
	if m.countryFunc != nil {
		return m.countryFunc(ctx, ip)
	}
	return "US", nil
}

// Mock EmailSender that records every message it was asked to send
type mockEmail struct {
	sendFunc func(ctx context.Context, msg *Message) error
	sent     []*Message
}

func (m *mockEmail) Send(ctx context.Context, msg *Message) error {
	m.sent = append(m.sent, msg)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, msg)
	}
	return nil
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	if err := logging.InitLogger(&logging.LogConfig{
		Level:      "info",
		File:       filepath.Join(t.TempDir(), "test.log"),
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	}); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return logging.GetGlobalLogger()
}

func testConfig() QuoteServiceConfig {
	return QuoteServiceConfig{
		FromEmail:      "Quotes <quotes@helixgrid.io>",
		SalesEmail:     "sales@helixgrid.io",
		AllowedCountry: "US",
		MinFillTime:    1500 * time.Millisecond,
	}
}

func validRequest() *quote.QuoteRequest {
	return &quote.QuoteRequest{
		PlanName:   "Starter",
		PlanPrice:  75,
		Quantity:   2,
		TotalPrice: 150,
		FormData: quote.ContactDetails{
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Address: "1 Main St",
		},
		TurnstileToken: "tok",
		Honeypot:       "",
		TTF:            5000,
	}
}

func newTestService(t *testing.T, cfg QuoteServiceConfig, captcha *mockCaptcha, geo *mockGeo, email *mockEmail) *QuoteService {
	t.Helper()
	return NewQuoteService(cfg, captcha, geo, email, testLogger(t))
}

func assertQuoteError(t *testing.T, err error, wantStatus int, wantCode common.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	qe, ok := AsQuoteError(err)
	if !ok {
		t.Fatalf("expected *QuoteError, got %T: %v", err, err)
	}
	if qe.Status != wantStatus {
		t.Errorf("status = %d, want %d", qe.Status, wantStatus)
	}
	if qe.Code != wantCode {
		t.Errorf("code = %s, want %s", qe.Code, wantCode)
	}
}

func TestSubmit_HappyPath(t *testing.T) {
	captcha := &mockCaptcha{}
	geo := &mockGeo{}
	email := &mockEmail{}
	svc := newTestService(t, testConfig(), captcha, geo, email)

	err := svc.Submit(context.Background(), validRequest(), "203.0.113.7")
	if err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	if captcha.calls != 1 {
		t.Errorf("captcha calls = %d, want 1", captcha.calls)
	}
	if len(email.sent) != 2 {
		t.Fatalf("email sends = %d, want 2", len(email.sent))
	}

	notification := email.sent[0]
	if notification.ReplyTo != "jane@example.com" {
		t.Errorf("notification reply-to = %q, want requester email", notification.ReplyTo)
	}
	if len(notification.To) != 1 || notification.To[0] != "sales@helixgrid.io" {
		t.Errorf("notification to = %v, want sales address", notification.To)
	}
	if notification.Headers["X-Entity-Ref-ID"] == "" {
		t.Error("notification is missing the X-Entity-Ref-ID header")
	}

	receipt := email.sent[1]
	if len(receipt.To) != 1 || receipt.To[0] != "jane@example.com" {
		t.Errorf("receipt to = %v, want requester email", receipt.To)
	}
	if receipt.ReplyTo != "" {
		t.Errorf("receipt reply-to = %q, want empty", receipt.ReplyTo)
	}
}

func TestSubmit_HoneypotRejectsBeforeDependencies(t *testing.T) {
	captcha := &mockCaptcha{}
	geo := &mockGeo{}
	email := &mockEmail{}
	svc := newTestService(t, testConfig(), captcha, geo, email)

	req := validRequest()
	req.Honeypot = "gotcha"

	err := svc.Submit(context.Background(), req, "203.0.113.7")
	assertQuoteError(t, err, http.StatusBadRequest, common.ErrCodeBadRequest)

	if captcha.calls != 0 {
		t.Errorf("captcha calls = %d, want 0", captcha.calls)
	}
	if geo.calls != 0 {
		t.Errorf("geo calls = %d, want 0", geo.calls)
	}
	if len(email.sent) != 0 {
		t.Errorf("email sends = %d, want 0", len(email.sent))
	}
}

func TestSubmit_FieldValidation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *quote.QuoteRequest)
		wantStatus int
		wantCode   common.ErrorCode
	}{
		{
			name:       "blank name",
			mutate:     func(r *quote.QuoteRequest) { r.FormData.Name = "   " },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "blank address",
			mutate:     func(r *quote.QuoteRequest) { r.FormData.Address = "" },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "blank plan name",
			mutate:     func(r *quote.QuoteRequest) { r.PlanName = "" },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "missing captcha token",
			mutate:     func(r *quote.QuoteRequest) { r.TurnstileToken = " " },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "email without at sign",
			mutate:     func(r *quote.QuoteRequest) { r.FormData.Email = "jane.example.com" },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "email without tld",
			mutate:     func(r *quote.QuoteRequest) { r.FormData.Email = "jane@example" },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "zero plan price",
			mutate:     func(r *quote.QuoteRequest) { r.PlanPrice = 0; r.TotalPrice = 0 },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "quantity zero",
			mutate:     func(r *quote.QuoteRequest) { r.Quantity = 0; r.TotalPrice = 0 },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "quantity above cap",
			mutate:     func(r *quote.QuoteRequest) { r.Quantity = 1001; r.TotalPrice = 75 * 1001 },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "total price mismatch",
			mutate:     func(r *quote.QuoteRequest) { r.TotalPrice = 151 },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeValidation,
		},
		{
			name:       "too fast submission",
			mutate:     func(r *quote.QuoteRequest) { r.TTF = 200 },
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeBotDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captcha := &mockCaptcha{}
			email := &mockEmail{}
			svc := newTestService(t, testConfig(), captcha, &mockGeo{}, email)

			req := validRequest()
			tt.mutate(req)

			err := svc.Submit(context.Background(), req, "203.0.113.7")
			assertQuoteError(t, err, tt.wantStatus, tt.wantCode)

			// Validation failures must never reach a downstream dependency
			if captcha.calls != 0 {
				t.Errorf("captcha calls = %d, want 0", captcha.calls)
			}
			if len(email.sent) != 0 {
				t.Errorf("email sends = %d, want 0", len(email.sent))
			}
		})
	}
}

func TestSubmit_QuantityBoundaries(t *testing.T) {
	for _, quantity := range []int{1, 1000} {
		t.Run(fmt.Sprintf("quantity_%d", quantity), func(t *testing.T) {
			email := &mockEmail{}
			svc := newTestService(t, testConfig(), &mockCaptcha{}, &mockGeo{}, email)

			req := validRequest()
			req.Quantity = quantity
			req.TotalPrice = req.PlanPrice * float64(quantity)

			if err := svc.Submit(context.Background(), req, "203.0.113.7"); err != nil {
				t.Fatalf("Submit() with quantity %d returned error: %v", quantity, err)
			}
			if len(email.sent) != 2 {
				t.Errorf("email sends = %d, want 2", len(email.sent))
			}
		})
	}
}

func TestSubmit_TotalPriceToleratesRounding(t *testing.T) {
	svc := newTestService(t, testConfig(), &mockCaptcha{}, &mockGeo{}, &mockEmail{})

	req := validRequest()
	req.PlanPrice = 19.99
	req.Quantity = 3
	// Client-side float arithmetic can drift below a cent
	req.TotalPrice = 59.970000000000006

	if err := svc.Submit(context.Background(), req, "203.0.113.7"); err != nil {
		t.Fatalf("Submit() rejected sub-cent rounding drift: %v", err)
	}
}

func TestSubmit_CaptchaFailures(t *testing.T) {
	tests := []struct {
		name       string
		verifyErr  error
		wantStatus int
		wantCode   common.ErrorCode
	}{
		{
			name:       "token rejected",
			verifyErr:  fmt.Errorf("%w: [invalid-input-response]", ErrCaptchaRejected),
			wantStatus: http.StatusBadRequest,
			wantCode:   common.ErrCodeCaptchaFailed,
		},
		{
			name:       "provider unreachable",
			verifyErr:  fmt.Errorf("%w: connection refused", ErrCaptchaNetwork),
			wantStatus: http.StatusBadGateway,
			wantCode:   common.ErrCodeCaptchaUnverifiable,
		},
		{
			name:       "malformed provider response",
			verifyErr:  fmt.Errorf("%w: invalid character", ErrCaptchaMalformed),
			wantStatus: http.StatusBadGateway,
			wantCode:   common.ErrCodeCaptchaUnverifiable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captcha := &mockCaptcha{
				verifyFunc: func(ctx context.Context, token, remoteIP string) error {
					return tt.verifyErr
				},
			}
			email := &mockEmail{}
			svc := newTestService(t, testConfig(), captcha, &mockGeo{}, email)

			err := svc.Submit(context.Background(), validRequest(), "203.0.113.7")
			assertQuoteError(t, err, tt.wantStatus, tt.wantCode)

			if len(email.sent) != 0 {
				t.Errorf("email sends = %d, want 0", len(email.sent))
			}
		})
	}
}

func TestSubmit_CaptchaReceivesTokenAndIP(t *testing.T) {
	var gotToken, gotIP string
	captcha := &mockCaptcha{
		verifyFunc: func(ctx context.Context, token, remoteIP string) error {
			gotToken = token
			gotIP = remoteIP
			return nil
		},
	}
	svc := newTestService(t, testConfig(), captcha, &mockGeo{}, &mockEmail{})

	if err := svc.Submit(context.Background(), validRequest(), "203.0.113.7"); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}
	if gotToken != "tok" {
		t.Errorf("captcha token = %q, want %q", gotToken, "tok")
	}
	if gotIP != "203.0.113.7" {
		t.Errorf("captcha remote ip = %q, want %q", gotIP, "203.0.113.7")
	}
}

func TestSubmit_RegionGate(t *testing.T) {
	t.Run("blocked country", func(t *testing.T) {
		geo := &mockGeo{
			countryFunc: func(ctx context.Context, ip string) (string, error) {
				return "DE", nil
			},
		}
		email := &mockEmail{}
		svc := newTestService(t, testConfig(), &mockCaptcha{}, geo, email)

		err := svc.Submit(context.Background(), validRequest(), "203.0.113.7")
		assertQuoteError(t, err, http.StatusForbidden, common.ErrCodeRegionNotAllowed)

		if len(email.sent) != 0 {
			t.Errorf("email sends = %d, want 0", len(email.sent))
		}
	})

	t.Run("lookup failure fails open", func(t *testing.T) {
		geo := &mockGeo{
			countryFunc: func(ctx context.Context, ip string) (string, error) {
				return "", errors.New("lookup timed out")
			},
		}
		email := &mockEmail{}
		svc := newTestService(t, testConfig(), &mockCaptcha{}, geo, email)

		if err := svc.Submit(context.Background(), validRequest(), "203.0.113.7"); err != nil {
			t.Fatalf("Submit() returned error on geo failure: %v", err)
		}
		if len(email.sent) != 2 {
			t.Errorf("email sends = %d, want 2", len(email.sent))
		}
	})

	t.Run("gate disabled", func(t *testing.T) {
		geo := &mockGeo{}
		cfg := testConfig()
		cfg.AllowedCountry = ""
		svc := newTestService(t, cfg, &mockCaptcha{}, geo, &mockEmail{})

		if err := svc.Submit(context.Background(), validRequest(), "203.0.113.7"); err != nil {
			t.Fatalf("Submit() returned error: %v", err)
		}
		if geo.calls != 0 {
			t.Errorf("geo calls = %d, want 0 when gate disabled", geo.calls)
		}
	})

	t.Run("unknown client ip skips lookup", func(t *testing.T) {
		geo := &mockGeo{}
		svc := newTestService(t, testConfig(), &mockCaptcha{}, geo, &mockEmail{})

		if err := svc.Submit(context.Background(), validRequest(), ""); err != nil {
			t.Fatalf("Submit() returned error: %v", err)
		}
		if geo.calls != 0 {
			t.Errorf("geo calls = %d, want 0 without a client ip", geo.calls)
		}
	})
}

func TestSubmit_FirstSendFails(t *testing.T) {
	email := &mockEmail{
		sendFunc: func(ctx context.Context, msg *Message) error {
			return errors.New("provider 500")
		},
	}
	svc := newTestService(t, testConfig(), &mockCaptcha{}, &mockGeo{}, email)

	err := svc.Submit(context.Background(), validRequest(), "203.0.113.7")
	assertQuoteError(t, err, http.StatusServiceUnavailable, common.ErrCodeEmailSendFailed)

	// The receipt must not be attempted after the notification failed
	if len(email.sent) != 1 {
		t.Errorf("email sends = %d, want 1", len(email.sent))
	}
}

// Known split-failure scenario: the sales notification is already out when
// the receipt send fails, so the team has been notified but the client sees
// an error. There is no compensating action; this test documents the
// behavior rather than asserting any rollback.
func TestSubmit_SplitFailureOnSecondSend(t *testing.T) {
	calls := 0
	email := &mockEmail{
		sendFunc: func(ctx context.Context, msg *Message) error {
			calls++
			if calls == 2 {
				return errors.New("provider timeout")
			}
			return nil
		},
	}
	svc := newTestService(t, testConfig(), &mockCaptcha{}, &mockGeo{}, email)

	err := svc.Submit(context.Background(), validRequest(), "203.0.113.7")
	assertQuoteError(t, err, http.StatusServiceUnavailable, common.ErrCodeEmailSendFailed)

	if len(email.sent) != 2 {
		t.Errorf("email sends = %d, want 2", len(email.sent))
	}
}

func TestSubmit_EscapesHTMLInNotification(t *testing.T) {
	email := &mockEmail{}
	svc := newTestService(t, testConfig(), &mockCaptcha{}, &mockGeo{}, email)

	req := validRequest()
	req.FormData.Name = `<script>alert("x")</script>`

	if err := svc.Submit(context.Background(), req, "203.0.113.7"); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	notification := email.sent[0]
	if strings.Contains(notification.HTML, "<script>") {
		t.Error("notification HTML contains unescaped script tag")
	}
	if !strings.Contains(notification.HTML, "&lt;script&gt;") {
		t.Error("notification HTML is missing the escaped name")
	}
}
