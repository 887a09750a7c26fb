package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	checkoutdomain "github.com/SeredDEV/store-payments/internal/checkout/domain"
	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type createCollectionRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Region   string `json:"region"`
}

// @Summary      Create Payment Collection
// @Description  Open a payment collection for a checkout
// @Tags         payment-collections
// @Accept       json
// @Produce      json
// @Param        request body createCollectionRequest true "Create Collection Request"
// @Success      200  {object}  domain.PaymentCollection
// @Router       /payment-collections [post]
func (s *Server) CreateCollection(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Amount <= 0 {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount must be positive"))
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		AbortWithError(c, newValidationError("currency", "invalid_currency", "currency is required"))
		return
	}

	resp, err := s.checkoutSvc.CreateCollection(c.Request.Context(), checkoutdomain.CreateCollectionRequest{
		Amount:   req.Amount,
		Currency: currency,
		Region:   strings.TrimSpace(req.Region),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCollection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.GetCollection(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Complete Order
// @Description  Close the collection once a session holds the funds
// @Tags         payment-collections
// @Produce      json
// @Success      200  {object}  domain.PaymentCollection
// @Router       /payment-collections/{id}/complete [post]
func (s *Server) CompleteCollection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.CompleteOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSessions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.ListSessions(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createSessionRequest struct {
	Provider    string `json:"provider"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// @Summary      Create Payment Session
// @Description  Open a provider session inside a collection
// @Tags         payment-sessions
// @Accept       json
// @Produce      json
// @Param        request body createSessionRequest true "Create Session Request"
// @Success      200  {object}  domain.PaymentSession
// @Router       /payment-collections/{id}/sessions [post]
func (s *Server) CreateSession(c *gin.Context) {
	collectionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if provider == "" {
		AbortWithError(c, newValidationError("provider", "invalid_provider", "provider is required"))
		return
	}

	resp, err := s.checkoutSvc.CreateSession(c.Request.Context(), checkoutdomain.CreateSessionRequest{
		CollectionID: collectionID,
		Provider:     provider,
		Email:        strings.TrimSpace(req.Email),
		Description:  strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.GetSession(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type sessionContextRequest struct {
	Context map[string]any `json:"context"`
}

func (s *Server) UpdateSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, ok := bindSessionContext(c)
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.UpdateSession(c.Request.Context(), id, gatewaydomain.Data(req.Context))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.checkoutSvc.DeleteSession(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Authorize Payment Session
// @Description  Run the charge with caller-supplied payment context
// @Tags         payment-sessions
// @Accept       json
// @Produce      json
// @Param        request body sessionContextRequest true "Authorize Request"
// @Success      200  {object}  domain.PaymentSession
// @Router       /payment-sessions/{id}/authorize [post]
func (s *Server) AuthorizeSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, ok := bindSessionContext(c)
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.Authorize(c.Request.Context(), id, gatewaydomain.Data(req.Context))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) CaptureSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	amount, ok := bindAmount(c)
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.Capture(c.Request.Context(), id, amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RefundSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	amount, ok := bindAmount(c)
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.Refund(c.Request.Context(), id, amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RefreshSessionStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := s.checkoutSvc.RefreshStatus(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// bindSessionContext reads an optional {"context": {...}} body.
func bindSessionContext(c *gin.Context) (sessionContextRequest, bool) {
	var req sessionContextRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return req, false
	}
	return req, true
}

// bindAmount reads an optional {"amount": n} body; zero means the full
// session amount.
func bindAmount(c *gin.Context) (int64, bool) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return 0, false
	}
	return req.Amount, true
}

func parseID(c *gin.Context, name string) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := snowflake.ParseString(raw)
	if err != nil || raw == "" {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid identifier"))
		return 0, false
	}
	return id, true
}
