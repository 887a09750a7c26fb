package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/SeredDEV/store-payments/internal/gateway/signature"
)

type webhookNotification struct {
	ID     json.Number `json:"id"`
	Action string      `json:"action"`
	Type   string      `json:"type"`
	Data   struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// VerifyWebhook checks the x-signature header: an HMAC-SHA256 over the
// manifest id:<data.id>;request-id:<x-request-id>;ts:<ts>; keyed with the
// webhook secret.
func (a *Adapter) VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	if a.opts.WebhookSecret == "" {
		return domain.ErrInvalidSignature
	}

	ts, v1, err := parseSignatureHeader(headers.Get("x-signature"))
	if err != nil {
		return err
	}

	var note webhookNotification
	if err := json.Unmarshal(payload, &note); err != nil {
		return domain.ErrInvalidPayload
	}

	manifest := buildManifest(note.Data.ID.String(), headers.Get("x-request-id"), ts)
	if !signature.VerifyHMAC(a.opts.WebhookSecret, []byte(manifest), v1) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// ParseWebhook maps the notification to a canonical action by looking up the
// referenced payment. Only payment events are actionable; anything else is
// acknowledged as not supported.
func (a *Adapter) ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*domain.WebhookResult, error) {
	var note webhookNotification
	if err := json.Unmarshal(payload, &note); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	paymentID := note.Data.ID.String()
	eventID := note.ID.String()
	if eventID == "" || eventID == "0" {
		eventID = "payment:" + paymentID
	}

	if !strings.Contains(note.Action, "payment") && note.Type != "payment" {
		return &domain.WebhookResult{
			Action:  domain.ActionNotSupported,
			EventID: eventID,
		}, nil
	}
	if paymentID == "" || paymentID == "0" {
		return nil, domain.ErrInvalidPayload
	}

	payment, err := a.paymentInfo(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	reference := payment.ExternalReference
	if reference == "" {
		reference = paymentID
	}

	result := &domain.WebhookResult{
		EventID:   eventID,
		Reference: reference,
		Amount:    majorToMinor(payment.TransactionAmount),
		Data: domain.Data{
			"payment_id":    paymentID,
			"status":        payment.Status,
			"status_detail": payment.StatusDetail,
		},
	}

	switch payment.Status {
	case paymentApproved:
		result.Action = domain.ActionAuthorized
	case paymentRejected, paymentCancelled:
		result.Action = domain.ActionFailed
	default:
		result.Action = domain.ActionNotSupported
	}
	return result, nil
}

// parseSignatureHeader splits "ts=...,v1=..." into its parts.
func parseSignatureHeader(header string) (ts string, v1 string, err error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "", domain.ErrInvalidSignature
	}
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	if ts == "" || v1 == "" {
		return "", "", domain.ErrInvalidSignature
	}
	return ts, v1, nil
}

func buildManifest(dataID, requestID, ts string) string {
	parts := make([]string, 0, 3)
	if dataID != "" && dataID != "0" {
		parts = append(parts, fmt.Sprintf("id:%s;", dataID))
	}
	if requestID != "" {
		parts = append(parts, fmt.Sprintf("request-id:%s;", requestID))
	}
	parts = append(parts, fmt.Sprintf("ts:%s;", ts))
	return strings.Join(parts, "")
}
