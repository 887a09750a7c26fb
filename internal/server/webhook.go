package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/SeredDEV/store-payments/internal/observability/tracing"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// HandleProviderWebhook ingests one provider notification. The contract with
// providers: a failed signature check is the only 400, everything else is
// acknowledged with 200 so the provider does not retry events we can never
// apply. Faults on our side are reported in the body, not the status code.
func (s *Server) HandleProviderWebhook(c *gin.Context) {
	// Two-segment path: the first is the hosting plugin id (e.g. pp_payu),
	// the second names the gateway the registry knows.
	provider := strings.ToLower(strings.TrimSpace(c.Param("subprovider")))

	if !s.webhookLimiter.Allow(provider + ":" + c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"status": "error", "message": "rate limited"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "unreadable payload"})
		return
	}

	ctx := tracing.ExtractHeaders(c.Request.Context(), c.Request.Header)
	result, err := s.webhookSvc.Ingest(ctx, provider, payload, c.Request.Header)
	if err != nil {
		switch {
		case errors.Is(err, gatewaydomain.ErrInvalidSignature):
			AbortWithError(c, err)
		case errors.Is(err, gatewaydomain.ErrProviderNotFound),
			errors.Is(err, gatewaydomain.ErrInvalidProvider):
			AbortWithError(c, err)
		default:
			s.log.Warn("webhook processing failed",
				zap.String("provider", provider),
				zap.Error(err),
			)
			c.JSON(http.StatusOK, gin.H{"status": "error", "message": "processing failed"})
		}
		return
	}

	message := "applied"
	if !result.Applied {
		message = "acknowledged"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   message,
		"action":    result.Action,
		"reference": result.Reference,
	})
}
