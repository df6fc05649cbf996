package provider

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/commercekit/razorpay-provider/internal/razorpay"
)

// GatewayClient is the narrow surface of the gateway's resource API that
// the lifecycle adapter depends on. Defined here, on the consumer side, so
// tests can substitute a fake for the live HTTP client.
type GatewayClient interface {
	CreateOrder(ctx context.Context, params *razorpay.OrderParams) (*razorpay.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*razorpay.Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
	CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (*razorpay.Payment, error)
	CreateRefund(ctx context.Context, paymentID string, params *razorpay.RefundParams) (*razorpay.Refund, error)
}

// InitiateInput starts a new payment session. Amount is in major currency
// units; the adapter converts to the gateway's minor units. Description and
// Customer are optional and only shape the checkout widget.
type InitiateInput struct {
	Amount       decimal.Decimal
	CurrencyCode string
	Description  string
	Customer     *razorpay.CheckoutPrefill
}

// InitiateOutput is the result of initiating a payment session. Checkout
// carries the option object the client opens the checkout widget with.
type InitiateOutput struct {
	SessionID string
	Status    SessionStatus
	Data      *SessionData
	Checkout  *razorpay.CheckoutOptions
}

// UpdateInput changes an existing session's amount or currency.
type UpdateInput struct {
	Amount       decimal.Decimal
	CurrencyCode string
	Data         *SessionData
}

// UpdateOutput is the result of updating a payment session.
type UpdateOutput struct {
	Status SessionStatus
	Data   *SessionData
}

// AuthorizeInput carries the checkout completion fields alongside the
// stored session data. PaymentID and Signature come from the checkout
// widget's success callback; both are required.
type AuthorizeInput struct {
	Data      *SessionData
	PaymentID string
	Signature string
}

// AuthorizeOutput is the result of authorizing a payment.
type AuthorizeOutput struct {
	Status SessionStatus
	Data   *SessionData
}

// RefundInput requests a refund. Amount is in major currency units.
type RefundInput struct {
	Data   *SessionData
	Amount decimal.Decimal
}

// WebhookAction tags the outcome of processing a gateway webhook.
type WebhookAction string

const (
	ActionAuthorized   WebhookAction = "authorized"
	ActionCaptured     WebhookAction = "captured"
	ActionFailed       WebhookAction = "failed"
	ActionNotSupported WebhookAction = "not_supported"
)

// WebhookPayload is an inbound gateway webhook. RawBody must be the bytes
// exactly as received on the wire; signature verification happens over them
// before any parsing.
type WebhookPayload struct {
	RawBody []byte
	Headers map[string]string
}

// WebhookResult is the tagged outcome of webhook processing. SessionID and
// Amount are set only for authorized/captured/failed actions; Amount is the
// gateway's minor-unit amount as a decimal, passed through unscaled.
type WebhookResult struct {
	Action    WebhookAction
	SessionID string
	Amount    decimal.Decimal
}

// Provider is the platform-facing payment lifecycle contract: one method
// per lifecycle operation. Implementations are stateless translators; all
// identifying state travels in the caller-supplied session data, so
// concurrent calls for different sessions never interfere.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// InitiatePayment creates a gateway order for a new payment session.
	InitiatePayment(ctx context.Context, input *InitiateInput) (*InitiateOutput, error)

	// UpdatePayment re-initiates when the amount changed (gateway orders
	// are immutable) and otherwise echoes the existing session unchanged.
	UpdatePayment(ctx context.Context, input *UpdateInput) (*UpdateOutput, error)

	// DeletePayment is a no-op: unpaid gateway orders self-expire.
	DeletePayment(ctx context.Context, data *SessionData) (*SessionData, error)

	// AuthorizePayment verifies the payment signature and accepts the
	// payment only when the gateway reports it authorized or captured.
	AuthorizePayment(ctx context.Context, input *AuthorizeInput) (*AuthorizeOutput, error)

	// CapturePayment captures the authorized payment held in the session.
	CapturePayment(ctx context.Context, data *SessionData) (*SessionData, error)

	// RefundPayment refunds the captured payment held in the session.
	RefundPayment(ctx context.Context, input *RefundInput) (*SessionData, error)

	// CancelPayment stamps the session with a cancellation time. The
	// gateway-side order is not voided; it expires autonomously.
	CancelPayment(ctx context.Context, data *SessionData) (*SessionData, error)

	// RetrievePayment refreshes the session from the gateway's view.
	RetrievePayment(ctx context.Context, data *SessionData) (*SessionData, error)

	// GetPaymentStatus reports the platform status for the session. It
	// never returns an error: fetch failures report StatusError because
	// status polling must not crash the caller.
	GetPaymentStatus(ctx context.Context, data *SessionData) SessionStatus

	// HandleWebhook verifies and interprets an inbound gateway webhook.
	// It never fails past its own boundary: malformed or unverifiable
	// events become failed or not_supported actions.
	HandleWebhook(ctx context.Context, payload *WebhookPayload) *WebhookResult
}
