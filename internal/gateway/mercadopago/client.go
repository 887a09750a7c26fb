package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/google/uuid"
)

const defaultAPIURL = "https://api.mercadopago.com"

type preferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferencePayer struct {
	Email string `json:"email,omitempty"`
}

type backURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
	Payer             *preferencePayer `json:"payer,omitempty"`
	BackURLs          *backURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type paymentInfo struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	StatusDetail      string      `json:"status_detail"`
	TransactionAmount float64     `json:"transaction_amount"`
	CurrencyID        string      `json:"currency_id"`
	Captured          bool        `json:"captured"`
	ExternalReference string      `json:"external_reference"`
	PaymentMethodID   string      `json:"payment_method_id"`
	PaymentTypeID     string      `json:"payment_type_id"`
}

type refundResponse struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
	Amount float64     `json:"amount"`
}

// client wraps the provider's REST API. Single attempt per call; the caller
// owns timeouts and retries. Mutating calls carry an idempotency key so the
// provider can dedupe a bounded caller retry.
type client struct {
	httpClient  *http.Client
	apiURL      string
	accessToken string
}

func (c *client) createPreference(ctx context.Context, pref *preferenceRequest) (*preferenceResponse, error) {
	var out preferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", pref, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	return &out, nil
}

func (c *client) getPayment(ctx context.Context, paymentID string) (*paymentInfo, error) {
	var out paymentInfo
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) capturePayment(ctx context.Context, paymentID string) (*paymentInfo, error) {
	body := map[string]any{"capture": true}
	var out paymentInfo
	if err := c.do(ctx, http.MethodPut, "/v1/payments/"+paymentID, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) cancelPayment(ctx context.Context, paymentID string) (*paymentInfo, error) {
	body := map[string]any{"status": paymentCancelled}
	var out paymentInfo
	if err := c.do(ctx, http.MethodPut, "/v1/payments/"+paymentID, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) refundPayment(ctx context.Context, paymentID string, amount float64) (*refundResponse, error) {
	body := map[string]any{}
	if amount > 0 {
		body["amount"] = amount
	}
	var out refundResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payments/"+paymentID+"/refunds", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet {
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.ErrRemoteTimeout
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return domain.ErrRemoteTimeout
		}
		return domain.ErrRemoteUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ErrRemoteUnavailable
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.ErrInvalidPayload
	}
	return nil
}
