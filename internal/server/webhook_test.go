package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	checkoutdomain "github.com/SeredDEV/store-payments/internal/checkout/domain"
	"github.com/SeredDEV/store-payments/internal/config"
	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	sessiondomain "github.com/SeredDEV/store-payments/internal/session/domain"
	webhookdomain "github.com/SeredDEV/store-payments/internal/webhook/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubWebhookService struct {
	result *webhookdomain.IngestResult
	err    error
	calls  int
}

func (s *stubWebhookService) Ingest(ctx context.Context, provider string, payload []byte, headers http.Header) (*webhookdomain.IngestResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubCheckoutService struct {
	session *sessiondomain.PaymentSession
	err     error
}

func (s *stubCheckoutService) CreateCollection(ctx context.Context, req checkoutdomain.CreateCollectionRequest) (*sessiondomain.PaymentCollection, error) {
	return &sessiondomain.PaymentCollection{Amount: req.Amount, Currency: req.Currency}, s.err
}

func (s *stubCheckoutService) GetCollection(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentCollection, error) {
	return &sessiondomain.PaymentCollection{ID: id}, s.err
}

func (s *stubCheckoutService) CreateSession(ctx context.Context, req checkoutdomain.CreateSessionRequest) (*sessiondomain.PaymentSession, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) UpdateSession(ctx context.Context, id snowflake.ID, paymentContext gatewaydomain.Data) (*sessiondomain.PaymentSession, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) DeleteSession(ctx context.Context, id snowflake.ID) error {
	return s.err
}

func (s *stubCheckoutService) GetSession(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) ListSessions(ctx context.Context, collectionID snowflake.ID) ([]sessiondomain.PaymentSession, error) {
	return nil, s.err
}

func (s *stubCheckoutService) Authorize(ctx context.Context, id snowflake.ID, paymentContext gatewaydomain.Data) (*sessiondomain.PaymentSession, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) Capture(ctx context.Context, id snowflake.ID, amount int64) (*sessiondomain.PaymentSession, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) Refund(ctx context.Context, id snowflake.ID, amount int64) (*sessiondomain.PaymentSession, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) Cancel(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) RefreshStatus(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, error) {
	return s.session, s.err
}

func (s *stubCheckoutService) CompleteOrder(ctx context.Context, collectionID snowflake.ID) (*sessiondomain.PaymentCollection, error) {
	now := time.Now().UTC()
	return &sessiondomain.PaymentCollection{ID: collectionID, CompletedAt: &now}, s.err
}

func newTestEngine(webhookSvc webhookdomain.Service, checkoutSvc checkoutdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := NewServer(Params{
		Log:      zap.NewNop(),
		Cfg:      config.Config{HTTPAddr: ":0"},
		Checkout: checkoutSvc,
		Webhook:  webhookSvc,
	})
	return NewEngine(s)
}

func TestWebhookAcknowledgesApplied(t *testing.T) {
	webhookSvc := &stubWebhookService{
		result: &webhookdomain.IngestResult{
			Action:    gatewaydomain.ActionAuthorized,
			Reference: "pay_1",
			Applied:   true,
		},
	}
	engine := newTestEngine(webhookSvc, &stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment/pp_payu/payu", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"action":"authorized"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestWebhookBadSignatureIsRejected(t *testing.T) {
	webhookSvc := &stubWebhookService{err: gatewaydomain.ErrInvalidSignature}
	engine := newTestEngine(webhookSvc, &stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment/pp_payu/payu", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("signature mismatch must be 400, got %d", w.Code)
	}
}

func TestWebhookInternalFaultStillAcknowledged(t *testing.T) {
	webhookSvc := &stubWebhookService{err: gatewaydomain.ErrRemoteUnavailable}
	engine := newTestEngine(webhookSvc, &stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment/pp_payu/payu", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("internal faults must not trigger provider retries, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"error"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestWebhookUnknownProvider(t *testing.T) {
	webhookSvc := &stubWebhookService{err: gatewaydomain.ErrProviderNotFound}
	engine := newTestEngine(webhookSvc, &stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment/pp_stripe/stripe", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
