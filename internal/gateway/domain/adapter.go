package domain

import (
	"context"
	"net/http"
)

// CaptureMode describes how a provider moves money on authorize.
type CaptureMode string

const (
	// CaptureModeAutomatic providers charge in a single authorize call;
	// capture is a local stamp and the auto-capture reactor targets them.
	CaptureModeAutomatic CaptureMode = "automatic"
	// CaptureModeManual providers hold funds on authorize and need an
	// explicit capture call.
	CaptureModeManual CaptureMode = "manual"
)

// InitiateRequest creates a provider-side payment intent. No money moves.
type InitiateRequest struct {
	Amount      int64
	Currency    string
	Reference   string
	Description string
	Email       string
}

// InitiateResult carries the provider's session handle and the initial
// provider data to persist.
type InitiateResult struct {
	ExternalID string
	Data       Data
}

// UpdateRequest re-shapes an existing intent after the cart total or payment
// input changed. Adapters must clear terminal error markers so a retry is
// possible while preserving unrelated fields.
type UpdateRequest struct {
	Amount   int64
	Currency string
	Data     Data
	Context  Data
}

// AuthorizeRequest drives the charge. Context carries caller-supplied input:
// card fields on the synchronous path, or the provider transaction id on the
// webhook completion path.
type AuthorizeRequest struct {
	Data    Data
	Context Data
}

// AuthorizeResult reports the canonical outcome of an authorize attempt.
// Expected provider rejections come back as a status, not an error.
type AuthorizeResult struct {
	Status Status
	Data   Data
}

// WebhookAction is what the ingress endpoint should do with an inbound event.
type WebhookAction string

const (
	ActionAuthorized   WebhookAction = "authorized"
	ActionFailed       WebhookAction = "failed"
	ActionNotSupported WebhookAction = "not_supported"
)

// WebhookResult is the pure mapping of a provider notification. Parsing never
// mutates state; the ingress endpoint applies the action.
type WebhookResult struct {
	Action    WebhookAction
	EventID   string
	Reference string
	Amount    int64
	Data      Data
}

// Adapter is the capability set every payment provider implements. All
// operations are stateless remote-call wrappers; retry policy lives in the
// caller and every network call carries the context deadline, single attempt.
type Adapter interface {
	Provider() string
	CaptureMode() CaptureMode

	Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error)
	Update(ctx context.Context, req UpdateRequest) (Data, error)
	Delete(ctx context.Context, data Data) error

	Authorize(ctx context.Context, req AuthorizeRequest) (AuthorizeResult, error)
	Capture(ctx context.Context, data Data, amount int64) (Data, error)
	Refund(ctx context.Context, data Data, amount int64) (Data, error)
	Cancel(ctx context.Context, data Data) (Data, error)

	Retrieve(ctx context.Context, data Data) (Data, error)
	Status(ctx context.Context, data Data) (Status, error)

	VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) error
	ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookResult, error)
}
