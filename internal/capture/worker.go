package capture

import (
	"context"
	"errors"
	"time"

	checkoutdomain "github.com/SeredDEV/store-payments/internal/checkout/domain"
	"github.com/SeredDEV/store-payments/internal/events"
	"github.com/SeredDEV/store-payments/internal/gateway"
	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	sessiondomain "github.com/SeredDEV/store-payments/internal/session/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Outbox   *events.Outbox
	Registry *gateway.Registry
	Sessions sessiondomain.Repository
	Checkout checkoutdomain.Service
	Config   Config `optional:"true"`
}

// Worker drains order.finalized events and captures the finalized order's
// authorized sessions whose provider charges in a single call. Sessions of
// manual-capture providers and sessions on orders still in checkout are left
// alone: a customer can abandon or cancel right up to order finalization.
type Worker struct {
	db       *gorm.DB
	log      *zap.Logger
	outbox   *events.Outbox
	registry *gateway.Registry
	sessions sessiondomain.Repository
	checkout checkoutdomain.Service
	cfg      Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:       p.DB,
		log:      p.Log.Named("capture.worker"),
		outbox:   p.Outbox,
		registry: p.Registry,
		sessions: p.Sessions,
		checkout: p.Checkout,
		cfg:      p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(); err != nil {
			w.log.Warn("auto capture run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.RunTimeout)
	defer cancel()

	_, err := w.processBatch(ctx, w.cfg.BatchSize)
	return err
}

func (w *Worker) processBatch(ctx context.Context, limit int) (int, error) {
	if w.db == nil || w.outbox == nil || w.registry == nil {
		return 0, errors.New("capture_worker_unavailable")
	}
	if limit <= 0 {
		limit = w.cfg.BatchSize
	}

	processed := 0
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries, err := w.outbox.ClaimUnpublished(ctx, tx, []string{events.EventOrderFinalized}, limit)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			w.handle(ctx, entry)
			if err := w.outbox.MarkPublished(ctx, tx, entry.ID); err != nil {
				return err
			}
			processed++
		}
		return nil
	})
	return processed, err
}

// handle captures every eligible session of one finalized order. Failures are
// logged and swallowed: the session stays authorized and an operator or a
// status refresh can pick it up, while the event itself is consumed so the
// loop never wedges on one bad order.
func (w *Worker) handle(ctx context.Context, entry events.OutboxEntry) {
	collectionID, err := collectionIDFromPayload(entry.Payload)
	if err != nil {
		w.log.Warn("finalized event with unusable payload",
			zap.String("event_id", entry.ID.String()),
			zap.Error(err),
		)
		return
	}

	sessions, err := w.sessions.ListSessions(ctx, collectionID)
	if err != nil {
		w.log.Warn("finalized event for unreadable collection",
			zap.String("collection_id", collectionID.String()),
			zap.Error(err),
		)
		return
	}
	for i := range sessions {
		w.captureSession(ctx, &sessions[i])
	}
}

func (w *Worker) captureSession(ctx context.Context, session *sessiondomain.PaymentSession) {
	if session.Status != gatewaydomain.StatusAuthorized {
		return
	}

	adapter, err := w.registry.Get(session.Provider)
	if err != nil {
		w.log.Warn("authorized session with unknown provider",
			zap.String("session_id", session.ID.String()),
			zap.String("provider", session.Provider),
		)
		return
	}
	if adapter.CaptureMode() != gatewaydomain.CaptureModeAutomatic {
		return
	}

	if _, err := w.checkout.Capture(ctx, session.ID, session.Amount); err != nil {
		w.log.Warn("auto capture failed",
			zap.String("session_id", session.ID.String()),
			zap.String("provider", session.Provider),
			zap.Error(err),
		)
		return
	}
	w.log.Info("session auto captured",
		zap.String("session_id", session.ID.String()),
		zap.String("provider", session.Provider),
	)
}

func collectionIDFromPayload(payload map[string]any) (snowflake.ID, error) {
	raw, _ := payload["collection_id"].(string)
	if raw == "" {
		return 0, errors.New("missing_collection_id")
	}
	return snowflake.ParseString(raw)
}
