package service

import (
	"context"
	"fmt"
	"time"

	checkoutdomain "github.com/SeredDEV/store-payments/internal/checkout/domain"
	"github.com/SeredDEV/store-payments/internal/events"
	"github.com/SeredDEV/store-payments/internal/gateway"
	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	sessiondomain "github.com/SeredDEV/store-payments/internal/session/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     sessiondomain.Repository
	Registry *gateway.Registry
	Outbox   *events.Outbox
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     sessiondomain.Repository
	registry *gateway.Registry
	outbox   *events.Outbox
}

func NewService(p Params) checkoutdomain.Service {
	return &Service{
		log:      p.Log.Named("checkout.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		registry: p.Registry,
		outbox:   p.Outbox,
	}
}

func (s *Service) CreateCollection(ctx context.Context, req checkoutdomain.CreateCollectionRequest) (*sessiondomain.PaymentCollection, error) {
	if req.Amount <= 0 || req.Currency == "" {
		return nil, gatewaydomain.ErrInvalidPayload
	}
	collection := &sessiondomain.PaymentCollection{
		ID:       s.genID.Generate(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Region:   req.Region,
	}
	if err := s.repo.CreateCollection(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *Service) GetCollection(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentCollection, error) {
	return s.repo.GetCollection(ctx, id)
}

func (s *Service) CreateSession(ctx context.Context, req checkoutdomain.CreateSessionRequest) (*sessiondomain.PaymentSession, error) {
	adapter, err := s.registry.Get(req.Provider)
	if err != nil {
		return nil, err
	}
	collection, err := s.repo.GetCollection(ctx, req.CollectionID)
	if err != nil {
		return nil, err
	}
	if collection.CompletedAt != nil {
		return nil, checkoutdomain.ErrCollectionCompleted
	}

	sessionID := s.genID.Generate()
	reference := fmt.Sprintf("pay_%s", sessionID)

	result, err := adapter.Initiate(ctx, gatewaydomain.InitiateRequest{
		Amount:      collection.Amount,
		Currency:    collection.Currency,
		Reference:   reference,
		Description: req.Description,
		Email:       req.Email,
	})
	if err != nil {
		return nil, err
	}

	session := &sessiondomain.PaymentSession{
		ID:           sessionID,
		CollectionID: collection.ID,
		Provider:     adapter.Provider(),
		Reference:    reference,
		Status:       gatewaydomain.StatusPending,
		Amount:       collection.Amount,
		Currency:     collection.Currency,
		ExternalID:   result.ExternalID,
	}
	session.SetGatewayData(result.Data)
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info("payment session created",
		zap.String("session_id", session.ID.String()),
		zap.String("provider", session.Provider),
		zap.Int64("amount", session.Amount),
	)
	return session, nil
}

func (s *Service) UpdateSession(ctx context.Context, id snowflake.ID, paymentContext gatewaydomain.Data) (*sessiondomain.PaymentSession, error) {
	session, adapter, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := adapter.Update(ctx, gatewaydomain.UpdateRequest{
		Amount:   session.Amount,
		Currency: session.Currency,
		Data:     session.GatewayData(),
		Context:  paymentContext,
	})
	if err != nil {
		return nil, err
	}
	session.SetGatewayData(data)
	// A refreshed intent is payable again.
	if session.Status == gatewaydomain.StatusRequiresMore || session.Status == gatewaydomain.StatusError {
		session.Status = gatewaydomain.StatusPending
	}
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) DeleteSession(ctx context.Context, id snowflake.ID) error {
	session, adapter, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := adapter.Delete(ctx, session.GatewayData()); err != nil {
		s.log.Warn("provider session cleanup failed",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
	}
	return s.repo.DeleteSession(ctx, id)
}

func (s *Service) GetSession(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, error) {
	return s.repo.GetSession(ctx, id)
}

func (s *Service) ListSessions(ctx context.Context, collectionID snowflake.ID) ([]sessiondomain.PaymentSession, error) {
	return s.repo.ListSessions(ctx, collectionID)
}

func (s *Service) Authorize(ctx context.Context, id snowflake.ID, paymentContext gatewaydomain.Data) (*sessiondomain.PaymentSession, error) {
	session, adapter, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// Already holding or having collected funds: a repeated authorize is a
	// read, not a second charge.
	if session.Status == gatewaydomain.StatusAuthorized || session.Status == gatewaydomain.StatusCaptured {
		return session, nil
	}

	result, err := adapter.Authorize(ctx, gatewaydomain.AuthorizeRequest{
		Data:    session.GatewayData(),
		Context: paymentContext,
	})
	if err != nil {
		return nil, err
	}

	session.SetGatewayData(result.Data)
	if gatewaydomain.CanTransition(session.Status, result.Status) {
		session.Status = result.Status
	}
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	if session.Status == gatewaydomain.StatusAuthorized {
		s.publishSessionEvent(ctx, events.EventPaymentAuthorized, session)
	}
	return session, nil
}

func (s *Service) Capture(ctx context.Context, id snowflake.ID, amount int64) (*sessiondomain.PaymentSession, error) {
	session, adapter, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status == gatewaydomain.StatusCaptured {
		return session, nil
	}
	if session.Status != gatewaydomain.StatusAuthorized {
		return nil, gatewaydomain.ErrStateConflict
	}
	if amount <= 0 {
		amount = session.Amount
	}
	if amount > session.Amount {
		return nil, checkoutdomain.ErrAmountMismatch
	}

	data, err := adapter.Capture(ctx, session.GatewayData(), amount)
	if err != nil {
		return nil, err
	}
	session.SetGatewayData(data)
	session.Status = gatewaydomain.StatusCaptured
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	s.publishSessionEvent(ctx, events.EventPaymentCaptured, session)
	return session, nil
}

func (s *Service) Refund(ctx context.Context, id snowflake.ID, amount int64) (*sessiondomain.PaymentSession, error) {
	session, adapter, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != gatewaydomain.StatusCaptured {
		return nil, gatewaydomain.ErrStateConflict
	}
	if amount <= 0 || amount > session.Amount {
		return nil, checkoutdomain.ErrAmountMismatch
	}

	data, err := adapter.Refund(ctx, session.GatewayData(), amount)
	if err != nil {
		return nil, err
	}
	session.SetGatewayData(data)
	session.Status = gatewaydomain.StatusRefunded
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, error) {
	session, adapter, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status == gatewaydomain.StatusCaptured || session.Status == gatewaydomain.StatusRefunded {
		return nil, gatewaydomain.ErrStateConflict
	}

	data, err := adapter.Cancel(ctx, session.GatewayData())
	if err != nil {
		return nil, err
	}
	session.SetGatewayData(data)
	session.Status = gatewaydomain.StatusCanceled
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) RefreshStatus(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, error) {
	session, adapter, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	status, err := adapter.Status(ctx, session.GatewayData())
	if err != nil {
		return nil, err
	}
	if status != session.Status && gatewaydomain.CanTransition(session.Status, status) {
		previous := session.Status
		session.Status = status
		if err := s.repo.UpdateSession(ctx, session); err != nil {
			return nil, err
		}
		s.log.Info("session status refreshed",
			zap.String("session_id", session.ID.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(status)),
		)
	}
	return session, nil
}

func (s *Service) CompleteOrder(ctx context.Context, collectionID snowflake.ID) (*sessiondomain.PaymentCollection, error) {
	collection, err := s.repo.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if collection.CompletedAt != nil {
		return collection, nil
	}

	sessions, err := s.repo.ListSessions(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	funded := false
	for i := range sessions {
		switch sessions[i].Status {
		case gatewaydomain.StatusAuthorized, gatewaydomain.StatusCaptured:
			funded = true
		}
	}
	if !funded {
		return nil, checkoutdomain.ErrNoPayableSession
	}

	now := time.Now().UTC()
	collection.CompletedAt = &now
	if err := s.repo.UpdateCollection(ctx, collection); err != nil {
		return nil, err
	}

	payload := events.OrderFinalizedPayload{
		CollectionID: collection.ID.String(),
		Amount:       collection.Amount,
		Currency:     collection.Currency,
	}
	if err := s.outbox.Publish(ctx, events.Event{
		Type:      events.EventOrderFinalized,
		Payload:   payload.ToMap(),
		DedupeKey: events.EventOrderFinalized + ":" + collection.ID.String(),
	}); err != nil {
		s.log.Warn("order finalized event not published",
			zap.String("collection_id", collection.ID.String()),
			zap.Error(err),
		)
	}
	return collection, nil
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*sessiondomain.PaymentSession, gatewaydomain.Adapter, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	adapter, err := s.registry.Get(session.Provider)
	if err != nil {
		return nil, nil, err
	}
	return session, adapter, nil
}

func (s *Service) publishSessionEvent(ctx context.Context, eventType string, session *sessiondomain.PaymentSession) {
	payload := events.PaymentEventPayload{
		SessionID:    session.ID.String(),
		CollectionID: session.CollectionID.String(),
		Provider:     session.Provider,
		Reference:    session.Reference,
		Amount:       session.Amount,
		Currency:     session.Currency,
	}
	err := s.outbox.Publish(ctx, events.Event{
		Type:      eventType,
		Payload:   payload.ToMap(),
		DedupeKey: eventType + ":" + session.ID.String(),
	})
	if err != nil {
		s.log.Warn("payment event not published",
			zap.String("session_id", session.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
