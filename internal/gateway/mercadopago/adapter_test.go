package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/SeredDEV/store-payments/internal/gateway/signature"
	"go.uber.org/zap"
)

type fakeAPI struct {
	*httptest.Server
	paymentStatus   string
	captured        bool
	paymentCalls    int
	prefCalls       int
	refundCalls     int
	lastExternalRef string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{paymentStatus: paymentApproved, captured: true}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /checkout/preferences", func(w http.ResponseWriter, r *http.Request) {
		f.prefCalls++
		var req preferenceRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastExternalRef = req.ExternalReference
		_ = json.NewEncoder(w).Encode(preferenceResponse{
			ID:               "pref-001",
			InitPoint:        "https://wallet.example/redirect?pref_id=pref-001",
			SandboxInitPoint: "https://sandbox.wallet.example/redirect?pref_id=pref-001",
		})
	})
	mux.HandleFunc("GET /v1/payments/", func(w http.ResponseWriter, r *http.Request) {
		f.paymentCalls++
		_ = json.NewEncoder(w).Encode(paymentInfo{
			ID:                json.Number("777"),
			Status:            f.paymentStatus,
			StatusDetail:      "accredited",
			TransactionAmount: 500,
			CurrencyID:        "COP",
			Captured:          f.captured,
			ExternalReference: "medusa-1700000000",
		})
	})
	mux.HandleFunc("POST /v1/payments/777/refunds", func(w http.ResponseWriter, r *http.Request) {
		f.refundCalls++
		_ = json.NewEncoder(w).Encode(refundResponse{ID: json.Number("9001"), Status: "approved"})
	})
	f.Server = httptest.NewServer(mux)
	return f
}

func newAdapter(t *testing.T, api *fakeAPI) *Adapter {
	t.Helper()
	a := New(Options{
		AccessToken:   "TEST-token",
		PublicKey:     "TEST-pub",
		WebhookSecret: "whsec_test",
		StoreURL:      "https://store.example",
		TestMode:      true,
	}, api.Client(), zap.NewNop())
	a.client.apiURL = api.URL
	return a
}

func TestInitiateCreatesPreference(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()
	a := newAdapter(t, api)

	res, err := a.Initiate(context.Background(), domain.InitiateRequest{
		Amount:    50000,
		Currency:  "COP",
		Reference: "medusa-1700000000",
		Email:     "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if res.ExternalID != "pref-001" {
		t.Fatalf("expected preference id, got %q", res.ExternalID)
	}
	if res.Data.String("init_point") == "" {
		t.Fatal("expected redirect init_point in provider data")
	}
	if api.lastExternalRef != "medusa-1700000000" {
		t.Fatalf("external reference not forwarded: %q", api.lastExternalRef)
	}
}

func TestInitiateRedirectFollowsTestMode(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()

	req := domain.InitiateRequest{Amount: 50000, Currency: "COP", Reference: "medusa-1700000000"}

	sandbox := newAdapter(t, api)
	res, err := sandbox.Initiate(context.Background(), req)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if got := res.Data.String("redirect_url"); got != "https://sandbox.wallet.example/redirect?pref_id=pref-001" {
		t.Fatalf("test mode should redirect to the sandbox checkout, got %q", got)
	}

	live := New(Options{AccessToken: "APP-token", StoreURL: "https://store.example"}, api.Client(), zap.NewNop())
	live.client.apiURL = api.URL
	res, err = live.Initiate(context.Background(), req)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if got := res.Data.String("redirect_url"); got != "https://wallet.example/redirect?pref_id=pref-001" {
		t.Fatalf("live mode should redirect to the real checkout, got %q", got)
	}
}

func TestAuthorizePendingWithoutPayment(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()
	a := newAdapter(t, api)

	res, err := a.Authorize(context.Background(), domain.AuthorizeRequest{
		Data:    domain.Data{"preference_id": "pref-001", "external_reference": "medusa-1700000000"},
		Context: domain.Data{},
	})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if res.Status != domain.StatusPending {
		t.Fatalf("expected pending before redirect completes, got %s", res.Status)
	}
	if api.paymentCalls != 0 {
		t.Fatal("no payment lookup should happen without a payment id")
	}
}

func TestAuthorizeApproved(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()
	a := newAdapter(t, api)

	res, err := a.Authorize(context.Background(), domain.AuthorizeRequest{
		Data:    domain.Data{"preference_id": "pref-001", "amount": 50000, "currency": "COP"},
		Context: domain.Data{"payment_id": "777"},
	})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if res.Status != domain.StatusAuthorized {
		t.Fatalf("expected authorized, got %s", res.Status)
	}
	if res.Data.String("captured_at") == "" {
		t.Fatal("captured payment should stamp captured_at")
	}
}

func TestAuthorizeRejectedIsRequiresMore(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()
	api.paymentStatus = paymentRejected
	api.captured = false
	a := newAdapter(t, api)

	res, err := a.Authorize(context.Background(), domain.AuthorizeRequest{
		Data:    domain.Data{"preference_id": "pref-001"},
		Context: domain.Data{"payment_id": "777"},
	})
	if err != nil {
		t.Fatalf("rejection is expected behavior, not an error: %v", err)
	}
	if res.Status != domain.StatusRequiresMore {
		t.Fatalf("expected requires_more, got %s", res.Status)
	}
	if res.Data.String("status") != paymentRejected {
		t.Fatal("provider status should be preserved in data")
	}
}

func TestRefundRequiresCapture(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()
	a := newAdapter(t, api)

	_, err := a.Refund(context.Background(), domain.Data{"payment_id": "777"}, 50000)
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Fatalf("expected state_conflict, got %v", err)
	}
}

func TestRefundRequiresPaymentID(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()
	a := newAdapter(t, api)

	_, err := a.Refund(context.Background(), domain.Data{"captured_at": "2026-01-01T00:00:00Z"}, 50000)
	if !errors.Is(err, domain.ErrMissingTransactionID) {
		t.Fatalf("expected missing_transaction_id, got %v", err)
	}
}

func TestCancelAfterCaptureRejected(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()
	a := newAdapter(t, api)

	_, err := a.Cancel(context.Background(), domain.Data{"payment_id": "777", "captured_at": "2026-01-01T00:00:00Z"})
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Fatalf("expected state_conflict, got %v", err)
	}
}

func TestParseWebhookUsesCachedPaymentLookup(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()
	a := newAdapter(t, api)

	payload := []byte(`{"id":"evt-1","action":"payment.updated","type":"payment","data":{"id":"777"}}`)

	res, err := a.ParseWebhook(context.Background(), payload, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Action != domain.ActionAuthorized {
		t.Fatalf("expected authorized action, got %s", res.Action)
	}
	if res.Reference != "medusa-1700000000" {
		t.Fatalf("expected external reference, got %q", res.Reference)
	}
	if res.Amount != 50000 {
		t.Fatalf("expected 50000 minor units, got %d", res.Amount)
	}

	// A replayed notification inside the TTL reuses the fetched resource.
	if _, err := a.ParseWebhook(context.Background(), payload, nil); err != nil {
		t.Fatalf("replayed parse: %v", err)
	}
	if api.paymentCalls != 1 {
		t.Fatalf("expected a single payment lookup, got %d", api.paymentCalls)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	api := newFakeAPI(t)
	defer api.Close()
	a := newAdapter(t, api)

	payload := []byte(`{"id":"evt-1","action":"payment.updated","type":"payment","data":{"id":"777"}}`)
	manifest := "id:777;request-id:req-1;ts:1700000000;"
	sig := signature.SignHMAC("whsec_test", []byte(manifest))

	headers := http.Header{}
	headers.Set("x-signature", "ts=1700000000,v1="+sig)
	headers.Set("x-request-id", "req-1")

	if err := a.VerifyWebhook(context.Background(), payload, headers); err != nil {
		t.Fatalf("expected signature to verify: %v", err)
	}

	headers.Set("x-signature", "ts=1700000000,v1=deadbeef")
	if err := a.VerifyWebhook(context.Background(), payload, headers); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected invalid_signature, got %v", err)
	}
}
