package events

// Payment lifecycle event types published through the outbox.
const (
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventOrderFinalized    = "order.finalized"
)

// PaymentEventPayload captures the minimal data a consumer needs to act on a
// session transition.
type PaymentEventPayload struct {
	SessionID    string `json:"session_id"`
	CollectionID string `json:"collection_id"`
	Provider     string `json:"provider"`
	Reference    string `json:"reference,omitempty"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p PaymentEventPayload) ToMap() map[string]any {
	payload := map[string]any{
		"session_id":    p.SessionID,
		"collection_id": p.CollectionID,
		"provider":      p.Provider,
		"amount":        p.Amount,
		"currency":      p.Currency,
	}
	if p.Reference != "" {
		payload["reference"] = p.Reference
	}
	return payload
}

// OrderFinalizedPayload announces a completed checkout.
type OrderFinalizedPayload struct {
	CollectionID string `json:"collection_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p OrderFinalizedPayload) ToMap() map[string]any {
	return map[string]any{
		"collection_id": p.CollectionID,
		"amount":        p.Amount,
		"currency":      p.Currency,
	}
}
