package payu

import (
	"encoding/json"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
)

// sessionData is the typed view of the provider-data bag for this gateway.
// It only crosses the adapter boundary as a domain.Data map.
type sessionData struct {
	Reference         string `json:"reference,omitempty"`
	Amount            int64  `json:"amount,omitempty"`
	Currency          string `json:"currency,omitempty"`
	Status            string `json:"status,omitempty"`
	OrderID           string `json:"order_id,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
	AuthorizationCode string `json:"authorization_code,omitempty"`
	ResponseCode      string `json:"response_code,omitempty"`
	ResponseMessage   string `json:"response_message,omitempty"`
	PaymentMethod     string `json:"payment_method,omitempty"`
	AuthorizedAt      string `json:"authorized_at,omitempty"`
	CapturedAt        string `json:"captured_at,omitempty"`
	CapturedAmount    int64  `json:"captured_amount,omitempty"`
	RefundID          string `json:"refund_id,omitempty"`
	RefundedAt        string `json:"refunded_at,omitempty"`
	RefundedAmount    int64  `json:"refunded_amount,omitempty"`
	Error             string `json:"error,omitempty"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

func decodeData(data domain.Data) (sessionData, error) {
	var out sessionData
	if len(data) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return out, domain.ErrInvalidPayload
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, domain.ErrInvalidPayload
	}
	return out, nil
}

func (s sessionData) toData() domain.Data {
	raw, err := json.Marshal(s)
	if err != nil {
		return domain.Data{}
	}
	out := domain.Data{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Data{}
	}
	return out
}
