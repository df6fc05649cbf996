package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/commercekit/razorpay-provider/internal/provider"
	"github.com/commercekit/razorpay-provider/internal/shared/metrics"
)

// WebhookHandler handles inbound gateway webhook events.
type WebhookHandler struct {
	provider provider.Provider
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(p provider.Provider, m *metrics.Metrics, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{provider: p, metrics: m, logger: logger}
}

// RegisterRoutes registers the webhook routes.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/razorpay", h.HandleRazorpayWebhook)
}

// HandleRazorpayWebhook processes a gateway webhook. The body is read raw
// once and handed to the adapter untouched: signature verification only
// holds over the exact wire bytes. The endpoint always answers 200 for
// processed events, not_supported included, so the gateway does not
// retry events this service has already decided about.
func (h *WebhookHandler) HandleRazorpayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	result := h.provider.HandleWebhook(c.Request.Context(), &provider.WebhookPayload{
		RawBody: body,
		Headers: map[string]string{
			provider.WebhookSignatureHeader: c.GetHeader("X-Razorpay-Signature"),
		},
	})

	h.metrics.RecordWebhookEvent(string(result.Action))

	resp := webhookResponse{
		Action:    result.Action,
		SessionID: result.SessionID,
	}
	if result.SessionID != "" {
		amount := result.Amount
		resp.Amount = &amount
	}

	c.JSON(http.StatusOK, resp)
}
