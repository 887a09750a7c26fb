package domain

import "errors"

var (
	ErrInvalidProvider  = errors.New("invalid_provider")
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrInvalidPayload   = errors.New("invalid_payload")

	// ErrInvalidSignature marks a webhook or callback whose digest does not
	// match. Never processed further, always rejected.
	ErrInvalidSignature = errors.New("invalid_signature")

	// ErrMissingCardInput is a validation failure: the authorize call had no
	// card data and no recovery path. Never retried automatically.
	ErrMissingCardInput = errors.New("missing_card_input")

	// ErrMissingTransactionID marks a refund or capture that lacks the
	// provider transaction id it needs.
	ErrMissingTransactionID = errors.New("missing_transaction_id")

	// ErrRemoteTimeout and ErrRemoteUnavailable surface as canonical error
	// status; the caller may retry with the identical reference so the
	// provider's own idempotency can dedupe.
	ErrRemoteTimeout     = errors.New("remote_timeout")
	ErrRemoteUnavailable = errors.New("remote_unavailable")

	// ErrDeclined is an explicit provider rejection, distinct from transient
	// failures. Surfaced as requires_more so the caller re-collects input.
	ErrDeclined = errors.New("payment_declined")

	// ErrStateConflict marks an operation invalid for the session's current
	// state, e.g. refund with no captured transaction. Rejected, not coerced.
	ErrStateConflict = errors.New("state_conflict")

	// ErrCancelNotSupported is returned by adapters without a native cancel
	// endpoint. The operation degrades to a logged no-op, never a silent
	// success; refund is the supported path.
	ErrCancelNotSupported = errors.New("cancel_not_supported")

	// ErrEventIgnored marks a webhook that was acknowledged but carries no
	// actionable event.
	ErrEventIgnored = errors.New("event_ignored")
)
