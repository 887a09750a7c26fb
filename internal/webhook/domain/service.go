package domain

import (
	"context"
	"net/http"
	"time"

	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// InsertEvent stores a record, reporting false when an event with the
	// same (provider, provider_event_id) already exists.
	InsertEvent(ctx context.Context, event *EventRecord) (bool, error)
	FindEvent(ctx context.Context, provider, providerEventID string) (*EventRecord, error)
	MarkProcessed(ctx context.Context, id snowflake.ID, processedAt time.Time) error
}

// IngestResult tells the ingress endpoint what happened to a notification.
type IngestResult struct {
	Action    gatewaydomain.WebhookAction
	Reference string
	Applied   bool
}

type Service interface {
	Ingest(ctx context.Context, provider string, payload []byte, headers http.Header) (*IngestResult, error)
}
