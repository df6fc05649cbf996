package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/commercekit/razorpay-provider/internal/provider"
	apperrors "github.com/commercekit/razorpay-provider/internal/shared/errors"
)

// Handler exposes the payment lifecycle operations to the host platform.
type Handler struct {
	provider provider.Provider
	logger   *zap.Logger
}

// NewHandler creates a new lifecycle handler.
func NewHandler(p provider.Provider, logger *zap.Logger) *Handler {
	return &Handler{provider: p, logger: logger}
}

// RegisterRoutes registers the lifecycle routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/initiate", h.Initiate)
		payments.POST("/update", h.Update)
		payments.POST("/delete", h.Delete)
		payments.POST("/authorize", h.Authorize)
		payments.POST("/capture", h.Capture)
		payments.POST("/refund", h.Refund)
		payments.POST("/cancel", h.Cancel)
		payments.POST("/retrieve", h.Retrieve)
		payments.POST("/status", h.Status)
	}
}

// Initiate creates a new payment session.
func (h *Handler) Initiate(c *gin.Context) {
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	out, err := h.provider.InitiatePayment(c.Request.Context(), &provider.InitiateInput{
		Amount:       *req.Amount,
		CurrencyCode: req.CurrencyCode,
		Description:  req.Description,
		Customer:     req.Customer,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, initiateResponse{
		ID:       out.SessionID,
		Status:   out.Status,
		Data:     out.Data,
		Checkout: out.Checkout,
	})
}

// Update re-initiates the session when its amount changed.
func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	out, err := h.provider.UpdatePayment(c.Request.Context(), &provider.UpdateInput{
		Amount:       *req.Amount,
		CurrencyCode: req.CurrencyCode,
		Data:         req.Data,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Status: out.Status, Data: out.Data})
}

// Delete acknowledges session deletion; the gateway order self-expires.
func (h *Handler) Delete(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.provider.DeletePayment(c.Request.Context(), req.Data)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Data: data})
}

// Authorize verifies the checkout signature and accepts the payment.
func (h *Handler) Authorize(c *gin.Context) {
	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.provider.AuthorizePayment(c.Request.Context(), &provider.AuthorizeInput{
		Data:      req.Data,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Status: out.Status, Data: out.Data})
}

// Capture captures the authorized payment.
func (h *Handler) Capture(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.provider.CapturePayment(c.Request.Context(), req.Data)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Data: data})
}

// Refund refunds the captured payment.
func (h *Handler) Refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	data, err := h.provider.RefundPayment(c.Request.Context(), &provider.RefundInput{
		Data:   req.Data,
		Amount: *req.Amount,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Data: data})
}

// Cancel stamps the session with a cancellation time.
func (h *Handler) Cancel(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.provider.CancelPayment(c.Request.Context(), req.Data)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Data: data})
}

// Retrieve refreshes the session from the gateway.
func (h *Handler) Retrieve(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.provider.RetrievePayment(c.Request.Context(), req.Data)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Data: data})
}

// Status reports the platform payment status. This endpoint never fails:
// gateway fetch failures report status "error".
func (h *Handler) Status(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := h.provider.GetPaymentStatus(c.Request.Context(), req.Data)
	c.JSON(http.StatusOK, statusResponse{Status: status})
}

// handleError maps application errors onto HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	h.logger.Error("unhandled payment error", zap.Error(err))
	c.JSON(apperrors.GetStatusCode(err), gin.H{
		"error": gin.H{"code": "INTERNAL_ERROR", "message": "internal error"},
	})
}
