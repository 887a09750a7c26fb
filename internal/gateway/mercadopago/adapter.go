// Package mercadopago implements the wallet/redirect gateway adapter. The
// customer is sent to the provider's checkout via a preference redirect URL,
// and the payment materializes asynchronously: the synchronous authorize call
// polls the payment resource while the webhook races it.
package mercadopago

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SeredDEV/store-payments/internal/cache"
	"github.com/SeredDEV/store-payments/internal/gateway/domain"
	"go.uber.org/zap"
)

// Provider is the identifier this adapter registers under.
const Provider = "mercadopago"

// paymentInfoTTL bounds how long a fetched payment resource is reused when
// the webhook and the synchronous authorize race each other.
const paymentInfoTTL = 30 * time.Second

// Options configures the adapter.
type Options struct {
	AccessToken   string
	PublicKey     string
	WebhookSecret string
	StoreURL      string
	TestMode      bool
}

type Adapter struct {
	opts     Options
	log      *zap.Logger
	client   *client
	payments cache.Cache[string, *paymentInfo]
}

func New(opts Options, httpClient *http.Client, log *zap.Logger) *Adapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Adapter{
		opts: opts,
		log:  log.Named("gateway.mercadopago"),
		client: &client{
			httpClient:  httpClient,
			apiURL:      defaultAPIURL,
			accessToken: opts.AccessToken,
		},
		payments: cache.NewTTLCache[string, *paymentInfo](),
	}
}

func (a *Adapter) Provider() string { return Provider }

// Funds only move after an explicit capture unless the preference opted into
// auto-capture, so the auto-capture reactor leaves this adapter alone.
func (a *Adapter) CaptureMode() domain.CaptureMode { return domain.CaptureModeManual }

// Initiate creates a checkout preference and hands back the redirect URL.
func (a *Adapter) Initiate(ctx context.Context, req domain.InitiateRequest) (domain.InitiateResult, error) {
	reference := req.Reference
	if reference == "" {
		reference = fmt.Sprintf("store-%d", time.Now().Unix())
	}
	description := req.Description
	if description == "" {
		description = "Store payment"
	}

	pref, err := a.client.createPreference(ctx, &preferenceRequest{
		Items: []preferenceItem{{
			Title:      description,
			Quantity:   1,
			UnitPrice:  minorToMajor(req.Amount),
			CurrencyID: req.Currency,
		}},
		ExternalReference: reference,
		Payer:             &preferencePayer{Email: req.Email},
		BackURLs: &backURLs{
			Success: a.opts.StoreURL + "/checkout/success",
			Failure: a.opts.StoreURL + "/checkout/failure",
			Pending: a.opts.StoreURL + "/checkout/pending",
		},
		AutoReturn: "approved",
	})
	if err != nil {
		return domain.InitiateResult{}, err
	}

	data := sessionData{
		PreferenceID:      pref.ID,
		InitPoint:         pref.InitPoint,
		SandboxInitPoint:  pref.SandboxInitPoint,
		RedirectURL:       a.redirectURL(pref),
		ExternalReference: reference,
		Amount:            req.Amount,
		Currency:          req.Currency,
		Status:            paymentPending,
	}

	a.log.Info("checkout preference created",
		zap.String("preference_id", pref.ID),
		zap.String("reference", reference))

	return domain.InitiateResult{ExternalID: pref.ID, Data: data.toData()}, nil
}

// Update creates a fresh preference: the provider does not allow editing one
// in place. The external reference survives so webhooks still correlate, and
// terminal error markers are cleared for the retry.
func (a *Adapter) Update(ctx context.Context, req domain.UpdateRequest) (domain.Data, error) {
	data, err := decodeData(req.Data)
	if err != nil {
		return nil, err
	}

	pref, err := a.client.createPreference(ctx, &preferenceRequest{
		Items: []preferenceItem{{
			Title:      "Store payment",
			Quantity:   1,
			UnitPrice:  minorToMajor(req.Amount),
			CurrencyID: req.Currency,
		}},
		ExternalReference: data.ExternalReference,
	})
	if err != nil {
		return nil, err
	}

	data.PreferenceID = pref.ID
	data.InitPoint = pref.InitPoint
	data.SandboxInitPoint = pref.SandboxInitPoint
	data.RedirectURL = a.redirectURL(pref)
	data.Amount = req.Amount
	data.Currency = req.Currency
	data.Error = ""
	if data.Status == paymentRejected {
		data.Status = paymentPending
		data.StatusDetail = ""
	}
	data.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	return data.toData(), nil
}

// Delete is local: preferences expire on their own.
func (a *Adapter) Delete(ctx context.Context, data domain.Data) error {
	decoded, err := decodeData(data)
	if err != nil {
		return err
	}
	a.log.Info("payment session deleted", zap.String("preference_id", decoded.PreferenceID))
	return nil
}

// Authorize reconciles against the payment resource. Until the customer
// finishes the redirect there is no payment id and the session stays pending.
func (a *Adapter) Authorize(ctx context.Context, req domain.AuthorizeRequest) (domain.AuthorizeResult, error) {
	data, err := decodeData(req.Data)
	if err != nil {
		return domain.AuthorizeResult{}, err
	}

	// The webhook may have completed this session already.
	if data.Status == paymentApproved {
		return domain.AuthorizeResult{Status: domain.StatusAuthorized, Data: req.Data.Clone()}, nil
	}

	paymentID := req.Context.String("payment_id")
	if paymentID == "" {
		paymentID = data.PaymentID
	}
	if paymentID == "" {
		data.Status = paymentPending
		return domain.AuthorizeResult{Status: domain.StatusPending, Data: data.toData()}, nil
	}

	payment, err := a.paymentInfo(ctx, paymentID)
	if err != nil {
		data.Error = err.Error()
		a.log.Warn("payment lookup failed",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return domain.AuthorizeResult{Status: domain.StatusError, Data: data.toData()}, nil
	}

	data.PaymentID = payment.ID.String()
	data.Status = payment.Status
	data.StatusDetail = payment.StatusDetail
	data.PaymentMethodID = payment.PaymentMethodID
	data.PaymentTypeID = payment.PaymentTypeID

	switch payment.Status {
	case paymentApproved, paymentAuthorized:
		now := time.Now().UTC().Format(time.RFC3339)
		data.AuthorizedAt = now
		data.Captured = payment.Captured
		if payment.Captured {
			data.CapturedAt = now
			data.CapturedAmount = majorToMinor(payment.TransactionAmount)
		}
		return domain.AuthorizeResult{Status: domain.StatusAuthorized, Data: data.toData()}, nil
	case paymentPending, paymentInProcess:
		return domain.AuthorizeResult{Status: domain.StatusPending, Data: data.toData()}, nil
	case paymentRejected:
		a.log.Info("payment rejected",
			zap.String("payment_id", data.PaymentID),
			zap.String("status_detail", payment.StatusDetail))
		return domain.AuthorizeResult{Status: domain.StatusRequiresMore, Data: data.toData()}, nil
	default:
		data.Error = "unexpected payment status " + payment.Status
		return domain.AuthorizeResult{Status: domain.StatusError, Data: data.toData()}, nil
	}
}

// Capture charges a previously reserved payment. Already-captured payments
// are a local no-op.
func (a *Adapter) Capture(ctx context.Context, data domain.Data, amount int64) (domain.Data, error) {
	decoded, err := decodeData(data)
	if err != nil {
		return nil, err
	}
	if decoded.CapturedAt != "" {
		return data.Clone(), nil
	}
	if decoded.PaymentID == "" {
		return nil, domain.ErrMissingTransactionID
	}
	if decoded.Status != paymentApproved && decoded.Status != paymentAuthorized {
		return nil, domain.ErrStateConflict
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if decoded.Captured {
		decoded.CapturedAt = now
		decoded.CapturedAmount = amountOrDefault(amount, decoded.Amount)
		return decoded.toData(), nil
	}

	payment, err := a.client.capturePayment(ctx, decoded.PaymentID)
	if err != nil {
		return nil, err
	}
	a.payments.Delete(decoded.PaymentID)

	decoded.Status = payment.Status
	decoded.Captured = true
	decoded.CapturedAt = now
	decoded.CapturedAmount = amountOrDefault(amount, decoded.Amount)
	return decoded.toData(), nil
}

// Refund issues a full or partial refund against the payment.
func (a *Adapter) Refund(ctx context.Context, data domain.Data, amount int64) (domain.Data, error) {
	decoded, err := decodeData(data)
	if err != nil {
		return nil, err
	}
	if decoded.CapturedAt == "" {
		return nil, domain.ErrStateConflict
	}
	if decoded.PaymentID == "" {
		return nil, domain.ErrMissingTransactionID
	}

	refund, err := a.client.refundPayment(ctx, decoded.PaymentID, minorToMajor(amount))
	if err != nil {
		return nil, err
	}
	a.payments.Delete(decoded.PaymentID)

	decoded.RefundID = refund.ID.String()
	decoded.RefundedAt = time.Now().UTC().Format(time.RFC3339)
	decoded.RefundedAmount += amount
	a.log.Info("refund submitted",
		zap.String("payment_id", decoded.PaymentID),
		zap.String("refund_id", decoded.RefundID),
		zap.Int64("amount", amount))
	return decoded.toData(), nil
}

// Cancel voids a payment that has not been captured yet. With no payment id
// there is nothing remote to void; the preference just expires.
func (a *Adapter) Cancel(ctx context.Context, data domain.Data) (domain.Data, error) {
	decoded, err := decodeData(data)
	if err != nil {
		return nil, err
	}
	if decoded.CapturedAt != "" {
		return nil, domain.ErrStateConflict
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if decoded.PaymentID == "" {
		decoded.Status = paymentCancelled
		decoded.CanceledAt = now
		return decoded.toData(), nil
	}

	payment, err := a.client.cancelPayment(ctx, decoded.PaymentID)
	if err != nil {
		return nil, err
	}
	a.payments.Delete(decoded.PaymentID)

	decoded.Status = payment.Status
	decoded.CanceledAt = now
	return decoded.toData(), nil
}

// Retrieve refreshes provider data from the payment resource when one exists.
func (a *Adapter) Retrieve(ctx context.Context, data domain.Data) (domain.Data, error) {
	decoded, err := decodeData(data)
	if err != nil {
		return nil, err
	}
	if decoded.PaymentID == "" {
		return data.Clone(), nil
	}

	payment, err := a.paymentInfo(ctx, decoded.PaymentID)
	if err != nil {
		return nil, err
	}

	decoded.Status = payment.Status
	decoded.StatusDetail = payment.StatusDetail
	decoded.Captured = payment.Captured
	decoded.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return decoded.toData(), nil
}

// Status maps the stored provider vocabulary to the canonical set.
func (a *Adapter) Status(ctx context.Context, data domain.Data) (domain.Status, error) {
	decoded, err := decodeData(data)
	if err != nil {
		return domain.StatusError, err
	}
	if decoded.RefundedAt != "" && decoded.RefundedAmount >= decoded.CapturedAmount && decoded.CapturedAmount > 0 {
		return domain.StatusRefunded, nil
	}
	if decoded.CapturedAt != "" {
		return domain.StatusCaptured, nil
	}
	return statusFromPayment(decoded.Status), nil
}

// redirectURL picks where the customer is sent: test-mode accounts must use
// the sandbox checkout when the provider offers one.
func (a *Adapter) redirectURL(pref *preferenceResponse) string {
	if a.opts.TestMode && pref.SandboxInitPoint != "" {
		return pref.SandboxInitPoint
	}
	return pref.InitPoint
}

// paymentInfo fetches the payment resource with a short-lived cache so the
// webhook and the synchronous authorize path racing on the same transaction
// do not hammer the provider.
func (a *Adapter) paymentInfo(ctx context.Context, paymentID string) (*paymentInfo, error) {
	if cached, ok := a.payments.Get(paymentID); ok {
		return cached, nil
	}
	payment, err := a.client.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	a.payments.Set(paymentID, payment, paymentInfoTTL)
	return payment, nil
}

func minorToMajor(minor int64) float64 { return float64(minor) / 100 }

func majorToMinor(major float64) int64 { return int64(major*100 + 0.5) }

func amountOrDefault(amount, fallback int64) int64 {
	if amount > 0 {
		return amount
	}
	return fallback
}
