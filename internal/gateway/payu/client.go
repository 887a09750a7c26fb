package payu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
)

const (
	productionAPIURL = "https://api.payulatam.com/payments-api/4.0/service.cgi"
	sandboxAPIURL    = "https://sandbox.api.payulatam.com/payments-api/4.0/service.cgi"

	commandSubmitTransaction = "SUBMIT_TRANSACTION"

	transactionTypeAuthorizeAndCapture = "AUTHORIZATION_AND_CAPTURE"
	transactionTypeRefund              = "REFUND"

	responseCodeSuccess = "SUCCESS"
)

type merchantAuth struct {
	APIKey   string `json:"apiKey"`
	APILogin string `json:"apiLogin"`
}

type txValue struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

type orderPayload struct {
	AccountID        string             `json:"accountId"`
	ReferenceCode    string             `json:"referenceCode"`
	Description      string             `json:"description,omitempty"`
	Signature        string             `json:"signature"`
	AdditionalValues map[string]txValue `json:"additionalValues"`
}

type creditCard struct {
	Number         string `json:"number"`
	SecurityCode   string `json:"securityCode"`
	ExpirationDate string `json:"expirationDate"`
	Name           string `json:"name"`
}

type payer struct {
	EmailAddress string `json:"emailAddress,omitempty"`
	FullName     string `json:"fullName,omitempty"`
}

type transactionPayload struct {
	Order               *orderPayload `json:"order,omitempty"`
	ParentTransactionID string        `json:"parentTransactionId,omitempty"`
	Type                string        `json:"type"`
	PaymentMethod       string        `json:"paymentMethod,omitempty"`
	PaymentCountry      string        `json:"paymentCountry,omitempty"`
	CreditCard          *creditCard   `json:"creditCard,omitempty"`
	Payer               *payer        `json:"payer,omitempty"`
	Reason              string        `json:"reason,omitempty"`
}

type apiRequest struct {
	Language    string              `json:"language"`
	Command     string              `json:"command"`
	Merchant    merchantAuth        `json:"merchant"`
	Transaction *transactionPayload `json:"transaction,omitempty"`
	Test        bool                `json:"test"`
}

type transactionResponse struct {
	OrderID           json.Number `json:"orderId"`
	TransactionID     string      `json:"transactionId"`
	State             string      `json:"state"`
	ResponseCode      string      `json:"responseCode"`
	AuthorizationCode string      `json:"authorizationCode"`
	ResponseMessage   string      `json:"responseMessage"`
}

type apiResponse struct {
	Code                string               `json:"code"`
	Error               string               `json:"error,omitempty"`
	TransactionResponse *transactionResponse `json:"transactionResponse,omitempty"`
}

// client wraps the provider's JSON-over-POST API. One attempt per call, the
// deadline comes from the caller's context; retry policy lives upstream.
type client struct {
	httpClient *http.Client
	apiURL     string
	merchant   merchantAuth
	test       bool
}

func (c *client) submit(ctx context.Context, tx *transactionPayload) (*transactionResponse, error) {
	req := apiRequest{
		Language:    "es",
		Command:     commandSubmitTransaction,
		Merchant:    c.merchant,
		Transaction: tx,
		Test:        c.test,
	}

	var resp apiResponse
	if err := c.post(ctx, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Code != responseCodeSuccess {
		return nil, domain.ErrRemoteUnavailable
	}
	if resp.TransactionResponse == nil {
		return nil, domain.ErrInvalidPayload
	}
	return resp.TransactionResponse, nil
}

func (c *client) post(ctx context.Context, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ErrRemoteUnavailable
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.ErrInvalidPayload
	}
	return nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrRemoteTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrRemoteTimeout
	}
	return domain.ErrRemoteUnavailable
}
