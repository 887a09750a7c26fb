package payu

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/SeredDEV/store-payments/internal/gateway/signature"
	"go.uber.org/zap"
)

func testOptions(apiURL string) Options {
	return Options{
		APIKey:     "4Vj8eK4rloUd272L48hsrarnUA",
		APILogin:   "pRRXKOl8ikMmt9u",
		MerchantID: "508029",
		AccountID:  "512321",
		APIURL:     apiURL,
		TestMode:   true,
	}
}

func cardContext() domain.Data {
	return domain.Data{
		"card_number":     "4111111111111111",
		"card_cvv":        "123",
		"card_expiration": "2030/12",
		"card_holder":     "APPROVED",
		"payment_method":  "VISA",
		"email":           "buyer@example.com",
	}
}

// fakeProvider answers SUBMIT_TRANSACTION with the state chosen by the card
// holder name marker, the way the sandbox does.
func fakeProvider(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		var req apiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		state := stateApproved
		code := "APPROVED"
		if req.Transaction != nil && req.Transaction.CreditCard != nil && req.Transaction.CreditCard.Name == "REJECTED" {
			state = stateDeclined
			code = "ANTIFRAUD_REJECTED"
		}

		resp := apiResponse{
			Code: responseCodeSuccess,
			TransactionResponse: &transactionResponse{
				OrderID:           json.Number("843234"),
				TransactionID:     "txn-001",
				State:             state,
				ResponseCode:      code,
				AuthorizationCode: "auth-001",
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func initiated(t *testing.T, a *Adapter) domain.Data {
	t.Helper()
	res, err := a.Initiate(context.Background(), domain.InitiateRequest{
		Amount:    50000,
		Currency:  "COP",
		Reference: "medusa-1700000000",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	return res.Data
}

func TestAuthorizeDeclined(t *testing.T) {
	calls := 0
	srv := fakeProvider(t, &calls)
	defer srv.Close()

	a := New(testOptions(srv.URL), srv.Client(), zap.NewNop())
	data := initiated(t, a)

	ctx := cardContext()
	ctx["card_holder"] = "REJECTED"
	res, err := a.Authorize(context.Background(), domain.AuthorizeRequest{Data: data, Context: ctx})
	if err != nil {
		t.Fatalf("authorize returned error for an expected rejection: %v", err)
	}
	if res.Status != domain.StatusRequiresMore {
		t.Fatalf("expected requires_more, got %s", res.Status)
	}
	if got := res.Data.String("status"); got != stateDeclined {
		t.Fatalf("expected provider status DECLINED, got %q", got)
	}
}

func TestAuthorizeApprovedCapturesInOneCall(t *testing.T) {
	calls := 0
	srv := fakeProvider(t, &calls)
	defer srv.Close()

	a := New(testOptions(srv.URL), srv.Client(), zap.NewNop())
	data := initiated(t, a)

	res, err := a.Authorize(context.Background(), domain.AuthorizeRequest{Data: data, Context: cardContext()})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if res.Status != domain.StatusAuthorized {
		t.Fatalf("expected authorized, got %s", res.Status)
	}
	capturedAt := res.Data.String("captured_at")
	if capturedAt == "" {
		t.Fatal("expected captured_at to be stamped on single-call authorize")
	}

	// Explicit capture after the single-call charge is a no-op.
	after, err := a.Capture(context.Background(), res.Data, 50000)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if got := after.String("captured_at"); got != capturedAt {
		t.Fatalf("capture changed captured_at: %q -> %q", capturedAt, got)
	}

	again, err := a.Capture(context.Background(), after, 50000)
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}
	if got := again.String("captured_at"); got != capturedAt {
		t.Fatalf("second capture not idempotent: %q -> %q", capturedAt, got)
	}
}

func TestAuthorizeDeclinedRetryWithoutNewCardFailsFast(t *testing.T) {
	calls := 0
	srv := fakeProvider(t, &calls)
	defer srv.Close()

	a := New(testOptions(srv.URL), srv.Client(), zap.NewNop())
	data := initiated(t, a)

	ctx := cardContext()
	ctx["card_holder"] = "REJECTED"
	res, err := a.Authorize(context.Background(), domain.AuthorizeRequest{Data: data, Context: ctx})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	callsAfterDecline := calls

	res, err = a.Authorize(context.Background(), domain.AuthorizeRequest{Data: res.Data, Context: domain.Data{}})
	if err != nil {
		t.Fatalf("retry without input should not error: %v", err)
	}
	if res.Status != domain.StatusRequiresMore {
		t.Fatalf("expected requires_more, got %s", res.Status)
	}
	if calls != callsAfterDecline {
		t.Fatalf("declined attempt was re-submitted to the provider: %d calls", calls)
	}
}

func TestAuthorizeMissingCardInput(t *testing.T) {
	a := New(testOptions("http://unused.invalid"), http.DefaultClient, zap.NewNop())
	data := initiated(t, a)

	_, err := a.Authorize(context.Background(), domain.AuthorizeRequest{Data: data, Context: domain.Data{}})
	if !errors.Is(err, domain.ErrMissingCardInput) {
		t.Fatalf("expected missing_card_input, got %v", err)
	}
}

func TestAuthorizeIdempotentWhenAlreadyApproved(t *testing.T) {
	calls := 0
	srv := fakeProvider(t, &calls)
	defer srv.Close()

	a := New(testOptions(srv.URL), srv.Client(), zap.NewNop())
	data := initiated(t, a)

	res, err := a.Authorize(context.Background(), domain.AuthorizeRequest{Data: data, Context: cardContext()})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	callsAfterAuthorize := calls

	// A webhook for the same transaction applies authorize again: no-op.
	res2, err := a.Authorize(context.Background(), domain.AuthorizeRequest{
		Data:    res.Data,
		Context: domain.Data{"transaction_id": "txn-001"},
	})
	if err != nil {
		t.Fatalf("replayed authorize: %v", err)
	}
	if res2.Status != domain.StatusAuthorized {
		t.Fatalf("expected authorized, got %s", res2.Status)
	}
	if calls != callsAfterAuthorize {
		t.Fatalf("replayed authorize reached the provider: %d calls", calls)
	}
}

func TestAuthorizeTimeoutSurfacesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	httpClient := &http.Client{Timeout: 20 * time.Millisecond}
	a := New(testOptions(srv.URL), httpClient, zap.NewNop())
	data := initiated(t, a)

	res, err := a.Authorize(context.Background(), domain.AuthorizeRequest{Data: data, Context: cardContext()})
	if err != nil {
		t.Fatalf("timeout must map to error status, not an error: %v", err)
	}
	if res.Status != domain.StatusError {
		t.Fatalf("expected error status on timeout, got %s", res.Status)
	}
}

func TestRefundBeforeCapture(t *testing.T) {
	a := New(testOptions("http://unused.invalid"), http.DefaultClient, zap.NewNop())
	data := initiated(t, a)

	_, err := a.Refund(context.Background(), data, 50000)
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Fatalf("expected state_conflict, got %v", err)
	}
}

func TestRefundWithoutTransactionID(t *testing.T) {
	a := New(testOptions("http://unused.invalid"), http.DefaultClient, zap.NewNop())

	data := domain.Data{
		"reference":   "medusa-1700000000",
		"status":      stateApproved,
		"captured_at": time.Now().UTC().Format(time.RFC3339),
	}
	_, err := a.Refund(context.Background(), data, 50000)
	if !errors.Is(err, domain.ErrMissingTransactionID) {
		t.Fatalf("expected missing_transaction_id, got %v", err)
	}
}

func TestCancelUnsupported(t *testing.T) {
	a := New(testOptions("http://unused.invalid"), http.DefaultClient, zap.NewNop())
	data := initiated(t, a)

	out, err := a.Cancel(context.Background(), data)
	if !errors.Is(err, domain.ErrCancelNotSupported) {
		t.Fatalf("expected cancel_not_supported, got %v", err)
	}
	if out.String("status") != statePending {
		t.Fatal("cancel must not mutate provider data")
	}
}

func TestCaptureRejectsUnauthorizedSession(t *testing.T) {
	a := New(testOptions("http://unused.invalid"), http.DefaultClient, zap.NewNop())
	data := initiated(t, a)

	_, err := a.Capture(context.Background(), data, 50000)
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Fatalf("expected state_conflict, got %v", err)
	}
}

func webhookForm(opts Options, reference, value, currency, statePol string) []byte {
	sign := signature.Digest(
		opts.APIKey,
		opts.MerchantID,
		reference,
		signature.CanonicalNumber(value),
		currency,
		statePol,
	)
	form := url.Values{}
	form.Set("merchant_id", opts.MerchantID)
	form.Set("reference_sale", reference)
	form.Set("value", value)
	form.Set("currency", currency)
	form.Set("state_pol", statePol)
	form.Set("sign", sign)
	form.Set("transaction_id", "txn-001")
	form.Set("reference_pol", "843234")
	form.Set("authorization_code", "auth-001")
	return []byte(form.Encode())
}

func TestVerifyWebhook(t *testing.T) {
	opts := testOptions("http://unused.invalid")
	a := New(opts, http.DefaultClient, zap.NewNop())

	// Trailing-zero variance in the echoed value must not break the digest.
	payload := webhookForm(opts, "medusa-1700000000", "50000.00", "COP", "4")
	if err := a.VerifyWebhook(context.Background(), payload, nil); err != nil {
		t.Fatalf("expected signature to verify: %v", err)
	}

	tampered := webhookForm(opts, "medusa-1700000000", "50000.00", "COP", "4")
	tampered = []byte(string(tampered[:len(tampered)-1]) + "x")
	if err := a.VerifyWebhook(context.Background(), tampered, nil); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected invalid_signature, got %v", err)
	}
}

func TestParseWebhookStateMapping(t *testing.T) {
	opts := testOptions("http://unused.invalid")
	a := New(opts, http.DefaultClient, zap.NewNop())

	cases := map[string]domain.WebhookAction{
		"4":   domain.ActionAuthorized,
		"5":   domain.ActionFailed,
		"6":   domain.ActionFailed,
		"7":   domain.ActionNotSupported,
		"104": domain.ActionFailed,
		"99":  domain.ActionNotSupported,
	}
	for statePol, want := range cases {
		payload := webhookForm(opts, "medusa-1700000000", "50000.0", "COP", statePol)
		res, err := a.ParseWebhook(context.Background(), payload, nil)
		if err != nil {
			t.Fatalf("parse state %s: %v", statePol, err)
		}
		if res.Action != want {
			t.Fatalf("state %s: expected %s, got %s", statePol, want, res.Action)
		}
		if res.Reference != "medusa-1700000000" {
			t.Fatalf("state %s: wrong reference %q", statePol, res.Reference)
		}
		if res.Amount != 50000 {
			t.Fatalf("state %s: wrong amount %d", statePol, res.Amount)
		}
	}
}
