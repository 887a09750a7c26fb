// Package payu implements the card-processing gateway adapter. The provider
// charges in a single AUTHORIZATION_AND_CAPTURE call, so capture is a local
// stamp and cancel-after-authorize is a documented capability gap.
package payu

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/SeredDEV/store-payments/internal/gateway/signature"
	"go.uber.org/zap"
)

// Provider is the identifier this adapter registers under.
const Provider = "payu"

const paymentCountry = "CO"

// Options configures the adapter. All fields come from the environment via
// the config module and are passed in explicitly.
type Options struct {
	APIKey     string
	APILogin   string
	MerchantID string
	AccountID  string
	APIURL     string
	TestMode   bool
}

type Adapter struct {
	opts   Options
	log    *zap.Logger
	client *client
}

func New(opts Options, httpClient *http.Client, log *zap.Logger) *Adapter {
	apiURL := opts.APIURL
	if apiURL == "" {
		if opts.TestMode {
			apiURL = sandboxAPIURL
		} else {
			apiURL = productionAPIURL
		}
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Adapter{
		opts: opts,
		log:  log.Named("gateway.payu"),
		client: &client{
			httpClient: httpClient,
			apiURL:     apiURL,
			merchant:   merchantAuth{APIKey: opts.APIKey, APILogin: opts.APILogin},
			test:       opts.TestMode,
		},
	}
}

func (a *Adapter) Provider() string { return Provider }

func (a *Adapter) CaptureMode() domain.CaptureMode { return domain.CaptureModeAutomatic }

// Initiate records the reference and amount for the later charge. The
// provider has no intent object, so nothing leaves the process and repeated
// calls for the same cart are harmless.
func (a *Adapter) Initiate(ctx context.Context, req domain.InitiateRequest) (domain.InitiateResult, error) {
	reference := req.Reference
	if reference == "" {
		reference = fmt.Sprintf("store-%d", time.Now().Unix())
	}

	data := sessionData{
		Reference: reference,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    statePending,
	}

	a.log.Info("payment session initiated",
		zap.String("reference", reference),
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)

	return domain.InitiateResult{ExternalID: reference, Data: data.toData()}, nil
}

// Update refreshes amount and currency and clears terminal error markers so a
// retry with new input can go through. Fields unrelated to the failure stay.
func (a *Adapter) Update(ctx context.Context, req domain.UpdateRequest) (domain.Data, error) {
	data, err := decodeData(req.Data)
	if err != nil {
		return nil, err
	}

	data.Amount = req.Amount
	data.Currency = req.Currency
	data.Error = ""
	if data.Status == stateDeclined || data.Status == stateError {
		data.Status = statePending
		data.ResponseCode = ""
		data.ResponseMessage = ""
	}
	data.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	return data.toData(), nil
}

// Delete has no provider side: unauthorized attempts simply expire remotely.
func (a *Adapter) Delete(ctx context.Context, data domain.Data) error {
	decoded, err := decodeData(data)
	if err != nil {
		return err
	}
	a.log.Info("payment session deleted", zap.String("reference", decoded.Reference))
	return nil
}

// Authorize performs the full charge. Approved responses are captured in the
// same call, which is recorded in provider data so Capture can short-circuit.
// The call is idempotent against webhook replays: an already-approved session
// is a no-op.
func (a *Adapter) Authorize(ctx context.Context, req domain.AuthorizeRequest) (domain.AuthorizeResult, error) {
	data, err := decodeData(req.Data)
	if err != nil {
		return domain.AuthorizeResult{}, err
	}

	// A concurrent webhook may have completed this session already.
	if data.Status == stateApproved {
		return domain.AuthorizeResult{Status: domain.StatusAuthorized, Data: req.Data.Clone()}, nil
	}

	// Webhook completion path: the notification carries the transaction id,
	// no remote call is made.
	if txn := req.Context.String("transaction_id"); txn != "" {
		return a.completeFromWebhook(data, req.Context), nil
	}

	card := cardFromContext(req.Context)
	if card == nil {
		if data.Status == stateDeclined {
			// Declined and no new card input: fail fast instead of
			// re-submitting the same attempt to the provider.
			a.log.Warn("authorize skipped, attempt already declined",
				zap.String("reference", data.Reference))
			return domain.AuthorizeResult{Status: domain.StatusRequiresMore, Data: data.toData()}, nil
		}
		return domain.AuthorizeResult{}, domain.ErrMissingCardInput
	}

	sig := signature.Digest(
		a.opts.APIKey,
		a.opts.MerchantID,
		data.Reference,
		signature.FormatAmount(data.Amount),
		data.Currency,
	)

	tx := &transactionPayload{
		Order: &orderPayload{
			AccountID:     a.opts.AccountID,
			ReferenceCode: data.Reference,
			Description:   "Store payment",
			Signature:     sig,
			AdditionalValues: map[string]txValue{
				"TX_VALUE": {Value: data.Amount, Currency: data.Currency},
			},
		},
		Type:           transactionTypeAuthorizeAndCapture,
		PaymentMethod:  req.Context.String("payment_method"),
		PaymentCountry: paymentCountry,
		CreditCard:     card,
		Payer:          &payer{EmailAddress: req.Context.String("email"), FullName: req.Context.String("card_holder")},
	}

	resp, err := a.client.submit(ctx, tx)
	if err != nil {
		// Timeouts and transport failures surface as canonical error
		// status; the caller owns the bounded retry with the same
		// reference.
		data.Error = err.Error()
		a.log.Warn("authorize call failed",
			zap.String("reference", data.Reference),
			zap.Error(err))
		return domain.AuthorizeResult{Status: domain.StatusError, Data: data.toData()}, nil
	}

	data.OrderID = resp.OrderID.String()
	data.TransactionID = resp.TransactionID
	data.Status = resp.State
	data.ResponseCode = resp.ResponseCode
	data.ResponseMessage = resp.ResponseMessage

	now := time.Now().UTC().Format(time.RFC3339)
	switch resp.State {
	case stateApproved:
		data.AuthorizationCode = resp.AuthorizationCode
		data.AuthorizedAt = now
		// Single-call charge: funds are already captured.
		data.CapturedAt = now
		data.CapturedAmount = data.Amount
		return domain.AuthorizeResult{Status: domain.StatusAuthorized, Data: data.toData()}, nil
	case stateDeclined:
		a.log.Info("payment declined",
			zap.String("reference", data.Reference),
			zap.String("response_code", resp.ResponseCode))
		return domain.AuthorizeResult{Status: domain.StatusRequiresMore, Data: data.toData()}, nil
	case statePending, stateSubmitted:
		return domain.AuthorizeResult{Status: domain.StatusPending, Data: data.toData()}, nil
	default:
		data.Error = resp.ResponseMessage
		return domain.AuthorizeResult{Status: domain.StatusError, Data: data.toData()}, nil
	}
}

func (a *Adapter) completeFromWebhook(data sessionData, ctx domain.Data) domain.AuthorizeResult {
	data.TransactionID = ctx.String("transaction_id")
	if orderID := ctx.String("reference_pol"); orderID != "" {
		data.OrderID = orderID
	}
	if code := ctx.String("authorization_code"); code != "" {
		data.AuthorizationCode = code
	}
	if code := ctx.String("response_code_pol"); code != "" {
		data.ResponseCode = code
	}
	if msg := ctx.String("response_message_pol"); msg != "" {
		data.ResponseMessage = msg
	}
	if method := ctx.String("payment_method_name"); method != "" {
		data.PaymentMethod = method
	}
	data.Status = stateApproved
	now := time.Now().UTC().Format(time.RFC3339)
	data.AuthorizedAt = now
	data.CapturedAt = now
	data.CapturedAmount = data.Amount
	return domain.AuthorizeResult{Status: domain.StatusAuthorized, Data: data.toData()}
}

// Capture stamps captured_at locally: the authorize call already moved the
// funds. A second call is a no-op returning the data unchanged.
func (a *Adapter) Capture(ctx context.Context, data domain.Data, amount int64) (domain.Data, error) {
	decoded, err := decodeData(data)
	if err != nil {
		return nil, err
	}
	if decoded.CapturedAt != "" {
		return data.Clone(), nil
	}
	if decoded.Status != stateApproved {
		return nil, domain.ErrStateConflict
	}

	decoded.CapturedAt = time.Now().UTC().Format(time.RFC3339)
	if amount > 0 {
		decoded.CapturedAmount = amount
	} else {
		decoded.CapturedAmount = decoded.Amount
	}
	return decoded.toData(), nil
}

// Refund submits a full or partial refund against the original transaction.
func (a *Adapter) Refund(ctx context.Context, data domain.Data, amount int64) (domain.Data, error) {
	decoded, err := decodeData(data)
	if err != nil {
		return nil, err
	}
	if decoded.CapturedAt == "" {
		return nil, domain.ErrStateConflict
	}
	if decoded.OrderID == "" || decoded.TransactionID == "" {
		return nil, domain.ErrMissingTransactionID
	}

	tx := &transactionPayload{
		Order:               &orderPayload{ReferenceCode: decoded.Reference, AccountID: a.opts.AccountID, AdditionalValues: map[string]txValue{}},
		ParentTransactionID: decoded.TransactionID,
		Type:                transactionTypeRefund,
		Reason:              "Requested by store",
	}

	resp, err := a.client.submit(ctx, tx)
	if err != nil {
		return nil, err
	}

	decoded.RefundID = resp.TransactionID
	decoded.RefundedAt = time.Now().UTC().Format(time.RFC3339)
	decoded.RefundedAmount += amount
	a.log.Info("refund submitted",
		zap.String("reference", decoded.Reference),
		zap.String("refund_id", decoded.RefundID),
		zap.Int64("amount", amount))
	return decoded.toData(), nil
}

// Cancel is not supported by this provider once a charge was authorized: the
// single-call flow leaves nothing to void. The operation is a logged no-op
// surfaced as unsupported; refund is the documented path.
func (a *Adapter) Cancel(ctx context.Context, data domain.Data) (domain.Data, error) {
	decoded, err := decodeData(data)
	if err != nil {
		return nil, err
	}
	a.log.Warn("cancel not supported, use refund",
		zap.String("reference", decoded.Reference))
	return data.Clone(), domain.ErrCancelNotSupported
}

// Retrieve returns the current provider data. The provider has no cheap
// read endpoint on the payments API; reconciliation relies on webhooks, so
// this echoes the stored view with a fresh timestamp.
func (a *Adapter) Retrieve(ctx context.Context, data domain.Data) (domain.Data, error) {
	decoded, err := decodeData(data)
	if err != nil {
		return nil, err
	}
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
	return statusFromState(decoded.Status), nil
}

func cardFromContext(ctx domain.Data) *creditCard {
	number := ctx.String("card_number")
	cvv := ctx.String("card_cvv")
	expiration := ctx.String("card_expiration")
	holder := ctx.String("card_holder")
	if number == "" || cvv == "" || expiration == "" {
		return nil
	}
	return &creditCard{
		Number:         number,
		SecurityCode:   cvv,
		ExpirationDate: expiration,
		Name:           holder,
	}
}
