package mercadopago

import (
	"encoding/json"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
)

// sessionData is the typed view of the provider-data bag for this gateway.
type sessionData struct {
	PreferenceID      string `json:"preference_id,omitempty"`
	InitPoint         string `json:"init_point,omitempty"`
	SandboxInitPoint  string `json:"sandbox_init_point,omitempty"`
	RedirectURL       string `json:"redirect_url,omitempty"`
	ExternalReference string `json:"external_reference,omitempty"`
	Amount            int64  `json:"amount,omitempty"`
	Currency          string `json:"currency,omitempty"`
	PaymentID         string `json:"payment_id,omitempty"`
	Status            string `json:"status,omitempty"`
	StatusDetail      string `json:"status_detail,omitempty"`
	PaymentMethodID   string `json:"payment_method_id,omitempty"`
	PaymentTypeID     string `json:"payment_type_id,omitempty"`
	AuthorizedAt      string `json:"authorized_at,omitempty"`
	Captured          bool   `json:"captured,omitempty"`
	CapturedAt        string `json:"captured_at,omitempty"`
	CapturedAmount    int64  `json:"captured_amount,omitempty"`
	RefundID          string `json:"refund_id,omitempty"`
	RefundedAt        string `json:"refunded_at,omitempty"`
	RefundedAmount    int64  `json:"refunded_amount,omitempty"`
	CanceledAt        string `json:"canceled_at,omitempty"`
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
