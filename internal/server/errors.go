package server

import (
	"errors"
	"net/http"

	checkoutdomain "github.com/SeredDEV/store-payments/internal/checkout/domain"
	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	sessiondomain "github.com/SeredDEV/store-payments/internal/session/domain"
	"github.com/gin-gonic/gin"
)

// ErrNotFound is the generic resource miss surfaced by handlers.
var ErrNotFound = errors.New("not_found")

type apiError struct {
	status  int
	code    string
	message string
	field   string
}

func (e *apiError) Error() string { return e.code }

func invalidRequestError() *apiError {
	return &apiError{status: http.StatusBadRequest, code: "invalid_request", message: "invalid request body"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: code, message: message, field: field}
}

// statusByErr maps domain sentinels to HTTP responses. Provider internals
// never leak: remote faults all collapse into one generic message.
var statusByErr = []struct {
	err     error
	status  int
	message string
}{
	{gatewaydomain.ErrInvalidProvider, http.StatusBadRequest, "invalid provider"},
	{gatewaydomain.ErrProviderNotFound, http.StatusNotFound, "unknown payment provider"},
	{gatewaydomain.ErrInvalidPayload, http.StatusBadRequest, "invalid payload"},
	{gatewaydomain.ErrInvalidSignature, http.StatusBadRequest, "signature verification failed"},
	{gatewaydomain.ErrMissingCardInput, http.StatusBadRequest, "card details are required"},
	{gatewaydomain.ErrMissingTransactionID, http.StatusConflict, "no provider transaction to act on"},
	{gatewaydomain.ErrStateConflict, http.StatusConflict, "operation not allowed in current payment state"},
	{gatewaydomain.ErrCancelNotSupported, http.StatusConflict, "provider does not support cancellation"},
	{gatewaydomain.ErrRemoteTimeout, http.StatusBadGateway, "payment temporarily unavailable"},
	{gatewaydomain.ErrRemoteUnavailable, http.StatusBadGateway, "payment temporarily unavailable"},
	{sessiondomain.ErrSessionNotFound, http.StatusNotFound, "payment session not found"},
	{sessiondomain.ErrCollectionNotFound, http.StatusNotFound, "payment collection not found"},
	{checkoutdomain.ErrCollectionCompleted, http.StatusConflict, "payment collection already completed"},
	{checkoutdomain.ErrNoPayableSession, http.StatusConflict, "no authorized payment session"},
	{checkoutdomain.ErrAmountMismatch, http.StatusBadRequest, "amount exceeds the session total"},
	{ErrNotFound, http.StatusNotFound, "not found"},
}

// AbortWithError writes the canonical error body and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		body := gin.H{"error": gin.H{"code": apiErr.code, "message": apiErr.message}}
		if apiErr.field != "" {
			body["error"].(gin.H)["field"] = apiErr.field
		}
		c.AbortWithStatusJSON(apiErr.status, body)
		return
	}

	for _, mapping := range statusByErr {
		if errors.Is(err, mapping.err) {
			_ = c.Error(err)
			c.AbortWithStatusJSON(mapping.status, gin.H{
				"error": gin.H{"code": mapping.err.Error(), "message": mapping.message},
			})
			return
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": "internal_error", "message": "payment temporarily unavailable"},
	})
}
