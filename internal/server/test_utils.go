package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup wipes payment data created by integration test runs. Hidden in
// production.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.Environment == "production" {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	if err := s.deletePaymentData(c.Request.Context(), prefix); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) deletePaymentData(ctx context.Context, prefix string) error {
	like := prefix + "%"
	queries := []string{
		`DELETE FROM webhook_events WHERE reference LIKE ?`,
		`DELETE FROM payment_sessions WHERE reference LIKE ?`,
	}
	for _, query := range queries {
		if err := s.db.WithContext(ctx).Exec(query, like).Error; err != nil {
			return err
		}
	}
	// Collections left without sessions were created by the same runs.
	return s.db.WithContext(ctx).Exec(
		`DELETE FROM payment_collections
		 WHERE completed_at IS NULL
		   AND id NOT IN (SELECT collection_id FROM payment_sessions)`,
	).Error
}
