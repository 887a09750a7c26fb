package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrCollectionNotFound = errors.New("collection_not_found")
	ErrSessionNotFound    = errors.New("session_not_found")
)

type Repository interface {
	CreateCollection(ctx context.Context, collection *PaymentCollection) error
	GetCollection(ctx context.Context, id snowflake.ID) (*PaymentCollection, error)
	UpdateCollection(ctx context.Context, collection *PaymentCollection) error

	CreateSession(ctx context.Context, session *PaymentSession) error
	GetSession(ctx context.Context, id snowflake.ID) (*PaymentSession, error)
	ListSessions(ctx context.Context, collectionID snowflake.ID) ([]PaymentSession, error)
	UpdateSession(ctx context.Context, session *PaymentSession) error
	DeleteSession(ctx context.Context, id snowflake.ID) error

	// FindByReference resolves the session a provider notification points
	// at. A reference matching more than one live session is ambiguous and
	// reported as not found.
	FindByReference(ctx context.Context, provider, reference string) (*PaymentSession, error)
}
