package domain

import (
	"context"
	"errors"

	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	sessiondomain "github.com/SeredDEV/store-payments/internal/session/domain"
	"github.com/bwmarrin/snowflake"
)

var (
	ErrCollectionCompleted = errors.New("collection_completed")
	ErrNoPayableSession    = errors.New("no_payable_session")
	ErrAmountMismatch      = errors.New("amount_mismatch")
)

// CreateCollectionRequest opens a payment collection for a checkout.
type CreateCollectionRequest struct {
	Amount   int64
	Currency string
	Region   string
}

// CreateSessionRequest opens a provider session inside a collection.
type CreateSessionRequest struct {
	CollectionID snowflake.ID
	Provider     string
	Email        string
	Description  string
}

// Service drives the payment lifecycle from the storefront's point of view.
// Every mutation persists the adapter's returned data blob before reporting
// success.
type Service interface {
	CreateCollection(ctx context.Context, req CreateCollectionRequest) (*sessiondomain.PaymentCollection, error)
	GetCollection(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentCollection, error)

	CreateSession(ctx context.Context, req CreateSessionRequest) (*sessiondomain.PaymentSession, error)
	UpdateSession(ctx context.Context, id snowflake.ID, paymentContext gatewaydomain.Data) (*sessiondomain.PaymentSession, error)
	DeleteSession(ctx context.Context, id snowflake.ID) error
	GetSession(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, error)
	ListSessions(ctx context.Context, collectionID snowflake.ID) ([]sessiondomain.PaymentSession, error)

	Authorize(ctx context.Context, id snowflake.ID, paymentContext gatewaydomain.Data) (*sessiondomain.PaymentSession, error)
	Capture(ctx context.Context, id snowflake.ID, amount int64) (*sessiondomain.PaymentSession, error)
	Refund(ctx context.Context, id snowflake.ID, amount int64) (*sessiondomain.PaymentSession, error)
	Cancel(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, error)

	// RefreshStatus re-derives the canonical status from the provider's
	// view of the session.
	RefreshStatus(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, error)

	// CompleteOrder closes the collection once a session holds or has
	// collected the funds, and announces the finalized order.
	CompleteOrder(ctx context.Context, collectionID snowflake.ID) (*sessiondomain.PaymentCollection, error)
}
