package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	checkoutdomain "github.com/SeredDEV/store-payments/internal/checkout/domain"
	"github.com/SeredDEV/store-payments/internal/gateway"
	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	sessiondomain "github.com/SeredDEV/store-payments/internal/session/domain"
	webhookdomain "github.com/SeredDEV/store-payments/internal/webhook/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Registry *gateway.Registry
	Repo     webhookdomain.Repository
	Sessions sessiondomain.Repository
	Checkout checkoutdomain.Service
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	registry *gateway.Registry
	repo     webhookdomain.Repository
	sessions sessiondomain.Repository
	checkout checkoutdomain.Service
}

func NewService(p Params) webhookdomain.Service {
	return &Service{
		log:      p.Log.Named("webhook.service"),
		genID:    p.GenID,
		registry: p.Registry,
		repo:     p.Repo,
		sessions: p.Sessions,
		checkout: p.Checkout,
	}
}

// Ingest verifies, records and applies one provider notification. The flow is
// verify -> parse -> record-once -> resolve session -> apply; every step after
// verification acknowledges rather than errors, so the provider stops
// redelivering events we can never use.
func (s *Service) Ingest(ctx context.Context, provider string, payload []byte, headers http.Header) (*webhookdomain.IngestResult, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, gatewaydomain.ErrInvalidProvider
	}
	adapter, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	if err := adapter.VerifyWebhook(ctx, payload, headers); err != nil {
		s.log.Warn("webhook signature rejected", zap.String("provider", provider))
		return nil, err
	}

	parsed, err := adapter.ParseWebhook(ctx, payload, headers)
	if err != nil {
		return nil, err
	}

	result := &webhookdomain.IngestResult{
		Action:    parsed.Action,
		Reference: parsed.Reference,
	}
	if parsed.Action == gatewaydomain.ActionNotSupported {
		return result, nil
	}

	now := time.Now().UTC()
	record := &webhookdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        provider,
		ProviderEventID: parsed.EventID,
		Action:          string(parsed.Action),
		Reference:       parsed.Reference,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      now,
	}
	inserted, err := s.repo.InsertEvent(ctx, record)
	if err != nil {
		return nil, err
	}
	if !inserted {
		stored, err := s.repo.FindEvent(ctx, provider, parsed.EventID)
		if err != nil {
			return nil, err
		}
		if stored == nil || stored.ProcessedAt != nil {
			// Replay of a handled event: acknowledge without touching
			// the session again.
			return result, nil
		}
		record = stored
	}

	session, err := s.sessions.FindByReference(ctx, provider, parsed.Reference)
	if err != nil {
		// The session may not exist yet when the notification outruns
		// session persistence. Acknowledge and leave the event
		// unprocessed so a redelivery can land later.
		s.log.Warn("webhook references unknown session",
			zap.String("provider", provider),
			zap.String("reference", parsed.Reference),
		)
		return result, nil
	}

	if err := s.apply(ctx, session, parsed); err != nil {
		return nil, err
	}
	if err := s.repo.MarkProcessed(ctx, record.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	result.Applied = true
	return result, nil
}

func (s *Service) apply(ctx context.Context, session *sessiondomain.PaymentSession, parsed *gatewaydomain.WebhookResult) error {
	switch parsed.Action {
	case gatewaydomain.ActionAuthorized:
		// The notification data carries the provider transaction id, so
		// authorize completes from the webhook instead of resubmitting.
		_, err := s.checkout.Authorize(ctx, session.ID, parsed.Data)
		return err

	case gatewaydomain.ActionFailed:
		if !gatewaydomain.CanTransition(session.Status, gatewaydomain.StatusError) {
			return nil
		}
		data := session.GatewayData()
		for key, value := range parsed.Data {
			data[key] = value
		}
		session.SetGatewayData(data)
		session.Status = gatewaydomain.StatusError
		return s.sessions.UpdateSession(ctx, session)
	}
	return nil
}
