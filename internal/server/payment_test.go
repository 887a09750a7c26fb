package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	sessiondomain "github.com/SeredDEV/store-payments/internal/session/domain"
)

func TestCreateCollectionValidation(t *testing.T) {
	engine := newTestEngine(&stubWebhookService{}, &stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/payment-collections", strings.NewReader(`{"amount":0,"currency":"COP"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-positive amount, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_amount") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestCreateCollection(t *testing.T) {
	engine := newTestEngine(&stubWebhookService{}, &stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/payment-collections", strings.NewReader(`{"amount":50000,"currency":"cop"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"currency":"COP"`) {
		t.Fatalf("currency should be upper-cased: %s", w.Body.String())
	}
}

func TestAuthorizeWithoutBody(t *testing.T) {
	checkout := &stubCheckoutService{
		session: &sessiondomain.PaymentSession{Status: gatewaydomain.StatusAuthorized},
	}
	engine := newTestEngine(&stubWebhookService{}, checkout)

	req := httptest.NewRequest(http.MethodPost, "/v1/payment-sessions/1234/authorize", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("authorize must accept an empty body, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSessionErrorsMapToStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", sessiondomain.ErrSessionNotFound, http.StatusNotFound},
		{"state conflict", gatewaydomain.ErrStateConflict, http.StatusConflict},
		{"missing card", gatewaydomain.ErrMissingCardInput, http.StatusBadRequest},
		{"remote timeout", gatewaydomain.ErrRemoteTimeout, http.StatusBadGateway},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(&stubWebhookService{}, &stubCheckoutService{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/v1/payment-sessions/1234/authorize", strings.NewReader(`{"context":{}}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRemoteFaultsHideProviderInternals(t *testing.T) {
	engine := newTestEngine(&stubWebhookService{}, &stubCheckoutService{err: gatewaydomain.ErrRemoteUnavailable})

	req := httptest.NewRequest(http.MethodPost, "/v1/payment-sessions/1234/authorize", strings.NewReader(`{"context":{}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "payment temporarily unavailable") {
		t.Fatalf("expected generic message, got: %s", w.Body.String())
	}
}

func TestInvalidSessionID(t *testing.T) {
	engine := newTestEngine(&stubWebhookService{}, &stubCheckoutService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/payment-sessions/not-a-number", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
