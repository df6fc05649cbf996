package server

import (
	"github.com/shopspring/decimal"

	"github.com/commercekit/razorpay-provider/internal/provider"
	"github.com/commercekit/razorpay-provider/internal/razorpay"
)

// initiateRequest starts a new payment session. Amount is in major
// currency units and a pointer so a missing field fails binding (the
// validator cannot zero-check a decimal's unexported fields); description
// and customer only shape the checkout widget.
type initiateRequest struct {
	Amount       *decimal.Decimal          `json:"amount" binding:"required"`
	CurrencyCode string                    `json:"currency_code" binding:"required"`
	Description  string                    `json:"description"`
	Customer     *razorpay.CheckoutPrefill `json:"customer"`
}

// initiateResponse mirrors the platform's initiate-payment output.
type initiateResponse struct {
	ID       string                    `json:"id"`
	Status   provider.SessionStatus    `json:"status"`
	Data     *provider.SessionData     `json:"data"`
	Checkout *razorpay.CheckoutOptions `json:"checkout"`
}

// updateRequest changes an existing session's amount.
type updateRequest struct {
	Amount       *decimal.Decimal      `json:"amount" binding:"required"`
	CurrencyCode string                `json:"currency_code" binding:"required"`
	Data         *provider.SessionData `json:"data" binding:"required"`
}

// sessionRequest carries only the persisted session blob.
type sessionRequest struct {
	Data *provider.SessionData `json:"data" binding:"required"`
}

// authorizeRequest carries the session blob plus the checkout completion
// fields. The field names match the checkout widget's success callback.
type authorizeRequest struct {
	Data      *provider.SessionData `json:"data" binding:"required"`
	PaymentID string                `json:"razorpay_payment_id" binding:"required"`
	Signature string                `json:"razorpay_signature" binding:"required"`
}

// refundRequest requests a refund in major currency units.
type refundRequest struct {
	Data   *provider.SessionData `json:"data" binding:"required"`
	Amount *decimal.Decimal      `json:"amount" binding:"required"`
}

// statusResponse reports the mapped platform status.
type statusResponse struct {
	Status provider.SessionStatus `json:"status"`
}

// sessionResponse returns the merged session blob.
type sessionResponse struct {
	Status provider.SessionStatus `json:"status,omitempty"`
	Data   *provider.SessionData  `json:"data"`
}

// webhookResponse is the tagged webhook processing outcome.
type webhookResponse struct {
	Action    provider.WebhookAction `json:"action"`
	SessionID string                 `json:"session_id,omitempty"`
	Amount    *decimal.Decimal       `json:"amount,omitempty"`
}
