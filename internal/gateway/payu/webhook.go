package payu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/SeredDEV/store-payments/internal/gateway/signature"
)

// VerifyWebhook recomputes the confirmation signature
// apiKey~merchantId~reference_sale~value~currency~state_pol and compares it
// against the payload's sign field. The echoed value goes through the same
// canonical number rule used for outbound signing, so formatting variance in
// the notification cannot break verification.
func (a *Adapter) VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	fields, err := parseWebhookPayload(payload)
	if err != nil {
		return err
	}

	ok := signature.Verify(
		a.opts.APIKey,
		fields["sign"],
		a.opts.MerchantID,
		fields["reference_sale"],
		signature.CanonicalNumber(fields["value"]),
		fields["currency"],
		fields["state_pol"],
	)
	if !ok {
		return domain.ErrInvalidSignature
	}
	return nil
}

// ParseWebhook maps the notification to a canonical action. Pure mapping, no
// state is touched here; the ingress endpoint applies the result.
func (a *Adapter) ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*domain.WebhookResult, error) {
	fields, err := parseWebhookPayload(payload)
	if err != nil {
		return nil, err
	}

	statePol := fields["state_pol"]
	reference := fields["reference_sale"]
	if reference == "" {
		reference = fields["transaction_id"]
	}

	eventID := fields["transaction_id"]
	if eventID == "" {
		eventID = fields["sign"]
	}
	eventID = eventID + ":" + statePol

	var amount int64
	if value, err := strconv.ParseFloat(fields["value"], 64); err == nil {
		amount = int64(value)
	}

	return &domain.WebhookResult{
		Action:    actionFromStatePol(statePol),
		EventID:   eventID,
		Reference: reference,
		Amount:    amount,
		Data: domain.Data{
			"transaction_id":       fields["transaction_id"],
			"reference_pol":        fields["reference_pol"],
			"authorization_code":   fields["authorization_code"],
			"state_pol":            statePol,
			"response_code_pol":    fields["response_code_pol"],
			"response_message_pol": fields["response_message_pol"],
			"payment_method_type":  fields["payment_method_type"],
			"payment_method_name":  fields["payment_method_name"],
		},
	}, nil
}

// The provider posts confirmations as form-encoded pairs; JSON bodies are
// accepted too since the sandbox replays events that way.
func parseWebhookPayload(payload []byte) (map[string]string, error) {
	if len(payload) == 0 {
		return nil, domain.ErrInvalidPayload
	}

	if json.Valid(payload) {
		raw := domain.Data{}
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, domain.ErrInvalidPayload
		}
		fields := make(map[string]string, len(raw))
		for key := range raw {
			fields[key] = raw.String(key)
		}
		return fields, nil
	}

	values, err := url.ParseQuery(string(payload))
	if err != nil {
		return nil, domain.ErrInvalidPayload
	}
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return fields, nil
}
