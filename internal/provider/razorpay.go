package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/commercekit/razorpay-provider/internal/razorpay"
	apperrors "github.com/commercekit/razorpay-provider/internal/shared/errors"
)

// ProviderName is the identifier the platform registers this adapter under.
const ProviderName = "razorpay"

// WebhookSignatureHeader carries the gateway's webhook signature.
const WebhookSignatureHeader = "x-razorpay-signature"

// Options holds the adapter's credentials. KeyID and KeySecret are
// mandatory; WebhookSecret is optional and, when absent, webhook signature
// verification is skipped.
type Options struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string

	// MerchantName is the display name shown in the checkout widget.
	MerchantName string
}

// Validate fails fast on missing mandatory credentials.
func (o Options) Validate() error {
	if o.KeyID == "" {
		return apperrors.ValidationError("razorpay key_id is required in the provider options")
	}
	if o.KeySecret == "" {
		return apperrors.ValidationError("razorpay key_secret is required in the provider options")
	}
	return nil
}

// RazorpayProvider translates the platform's payment lifecycle operations
// into Razorpay API calls. It holds no session state: every gateway
// identifier is reconstructed from the caller-supplied session data, so the
// adapter survives restarts and concurrent sessions need no coordination.
type RazorpayProvider struct {
	client GatewayClient
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewRazorpayProvider creates the adapter after validating its options.
func NewRazorpayProvider(client GatewayClient, opts Options, logger *zap.Logger) (*RazorpayProvider, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.WebhookSecret == "" {
		logger.Warn("razorpay webhook_secret not configured, inbound webhooks will be accepted unverified")
	}
	return &RazorpayProvider{
		client: client,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Name returns the provider identifier.
func (p *RazorpayProvider) Name() string {
	return ProviderName
}

// InitiatePayment creates a gateway order and seeds the session data with
// everything the checkout widget and later lifecycle calls need.
func (p *RazorpayProvider) InitiatePayment(ctx context.Context, input *InitiateInput) (*InitiateOutput, error) {
	params := &razorpay.OrderParams{
		Amount:   razorpay.ToMinorUnit(input.Amount, input.CurrencyCode),
		Currency: strings.ToUpper(input.CurrencyCode),
		Receipt:  "receipt_" + uuid.NewString(),
		Notes:    map[string]string{},
	}

	order, err := p.client.CreateOrder(ctx, params)
	if err != nil {
		p.logger.Error("failed to initiate razorpay payment", zap.Error(err))
		return nil, apperrors.ValidationErrorf(err, "failed to initiate razorpay payment")
	}

	p.logger.Info("razorpay order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency),
	)

	return &InitiateOutput{
		SessionID: order.ID,
		Status:    StatusPending,
		Data: &SessionData{
			OrderID:     order.ID,
			Amount:      order.Amount,
			Currency:    order.Currency,
			OrderStatus: order.Status,
			Receipt:     order.Receipt,
			CreatedAt:   order.CreatedAt,
			// The checkout widget needs the public key to open.
			KeyID: p.opts.KeyID,
		},
		Checkout: razorpay.BuildCheckoutOptions(razorpay.CheckoutParams{
			KeyID:       p.opts.KeyID,
			Amount:      order.Amount,
			Currency:    order.Currency,
			OrderID:     order.ID,
			Name:        p.opts.MerchantName,
			Description: input.Description,
			Prefill:     input.Customer,
		}),
	}, nil
}

// UpdatePayment re-initiates when the requested amount differs from the
// stored order amount. Gateway orders are immutable, so a changed amount
// needs a brand-new order; the old one is abandoned and expires on its own.
func (p *RazorpayProvider) UpdatePayment(ctx context.Context, input *UpdateInput) (*UpdateOutput, error) {
	requested := razorpay.ToMinorUnit(input.Amount, input.CurrencyCode)
	if input.Data == nil || input.Data.Amount != requested {
		out, err := p.InitiatePayment(ctx, &InitiateInput{
			Amount:       input.Amount,
			CurrencyCode: input.CurrencyCode,
		})
		if err != nil {
			return nil, err
		}
		return &UpdateOutput{Status: out.Status, Data: out.Data}, nil
	}

	return &UpdateOutput{Status: StatusPending, Data: input.Data}, nil
}

// DeletePayment is a no-op: the gateway has no delete primitive and unpaid
// orders expire autonomously.
func (p *RazorpayProvider) DeletePayment(_ context.Context, data *SessionData) (*SessionData, error) {
	return data, nil
}

// AuthorizePayment verifies the checkout signature before anything else.
// A tampered signature is rejected without fetching payment details, so an
// attacker learns nothing about gateway state from a forgery attempt.
func (p *RazorpayProvider) AuthorizePayment(ctx context.Context, input *AuthorizeInput) (*AuthorizeOutput, error) {
	if input.Data == nil || input.Data.OrderID == "" {
		return nil, apperrors.ValidationErrorf(ErrMissingOrderID, "cannot authorize payment")
	}
	if input.PaymentID == "" {
		return nil, apperrors.ValidationErrorf(ErrMissingPaymentID, "cannot authorize payment")
	}
	if input.Signature == "" {
		return nil, apperrors.ValidationErrorf(ErrMissingSignature, "cannot authorize payment")
	}

	if !razorpay.VerifyPaymentSignature(input.Data.OrderID, input.PaymentID, input.Signature, p.opts.KeySecret) {
		p.logger.Warn("invalid razorpay payment signature",
			zap.String("order_id", input.Data.OrderID),
			zap.String("payment_id", input.PaymentID),
		)
		return nil, apperrors.ValidationErrorf(ErrInvalidSignature, "cannot authorize payment")
	}

	payment, err := p.client.FetchPayment(ctx, input.PaymentID)
	if err != nil {
		p.logger.Error("failed to authorize razorpay payment", zap.Error(err))
		return nil, apperrors.ValidationErrorf(err, "failed to authorize razorpay payment")
	}

	if payment.Status != razorpay.PaymentStatusAuthorized && payment.Status != razorpay.PaymentStatusCaptured {
		return nil, apperrors.ValidationError(fmt.Sprintf("payment not authorized, status: %s", payment.Status))
	}

	data := input.Data.Clone()
	data.PaymentID = payment.ID
	data.PaymentStatus = payment.Status
	data.PaymentMethod = payment.Method
	data.Captured = payment.Captured

	return &AuthorizeOutput{Status: StatusAuthorized, Data: data}, nil
}

// CapturePayment captures the authorized payment for the session's stored
// amount and currency.
func (p *RazorpayProvider) CapturePayment(ctx context.Context, data *SessionData) (*SessionData, error) {
	if data == nil || data.PaymentID == "" {
		return nil, apperrors.ValidationErrorf(ErrMissingPaymentID, "cannot capture payment")
	}

	payment, err := p.client.CapturePayment(ctx, data.PaymentID, data.Amount, data.Currency)
	if err != nil {
		p.logger.Error("failed to capture razorpay payment", zap.Error(err))
		return nil, apperrors.ValidationErrorf(err, "failed to capture razorpay payment")
	}

	p.logger.Info("razorpay payment captured", zap.String("payment_id", payment.ID))

	merged := data.Clone()
	merged.PaymentID = payment.ID
	merged.PaymentStatus = payment.Status
	merged.Captured = payment.Captured
	merged.CapturedAt = p.now().Unix()
	return merged, nil
}

// RefundPayment creates a refund at "optimum" speed: the gateway picks
// instant vs normal based on eligibility.
func (p *RazorpayProvider) RefundPayment(ctx context.Context, input *RefundInput) (*SessionData, error) {
	if input.Data == nil || input.Data.PaymentID == "" {
		return nil, apperrors.ValidationErrorf(ErrMissingPaymentID, "cannot refund payment")
	}

	refund, err := p.client.CreateRefund(ctx, input.Data.PaymentID, &razorpay.RefundParams{
		Amount: razorpay.ToMinorUnit(input.Amount, input.Data.Currency),
		Speed:  "optimum",
	})
	if err != nil {
		p.logger.Error("failed to refund razorpay payment", zap.Error(err))
		return nil, apperrors.ValidationErrorf(err, "failed to refund razorpay payment")
	}

	p.logger.Info("razorpay refund created",
		zap.String("refund_id", refund.ID),
		zap.String("payment_id", input.Data.PaymentID),
	)

	merged := input.Data.Clone()
	merged.RefundID = refund.ID
	merged.RefundStatus = refund.Status
	merged.RefundedAmount = refund.Amount
	merged.RefundedAt = p.now().Unix()
	return merged, nil
}

// CancelPayment stamps the session with a cancellation time. There is no
// cancel primitive gateway-side; callers must not assume the order is
// voided before it expires on its own.
func (p *RazorpayProvider) CancelPayment(_ context.Context, data *SessionData) (*SessionData, error) {
	merged := data.Clone()
	if merged == nil {
		merged = &SessionData{}
	}
	merged.CanceledAt = p.now().Unix()
	return merged, nil
}

// RetrievePayment refreshes the session from the gateway: the payment when
// one exists, otherwise the order.
func (p *RazorpayProvider) RetrievePayment(ctx context.Context, data *SessionData) (*SessionData, error) {
	if data == nil {
		return nil, apperrors.ValidationErrorf(ErrMissingSessionData, "cannot retrieve payment")
	}

	if data.PaymentID == "" {
		order, err := p.client.FetchOrder(ctx, data.OrderID)
		if err != nil {
			p.logger.Error("failed to retrieve razorpay order", zap.Error(err))
			return nil, apperrors.ValidationErrorf(err, "failed to retrieve razorpay payment")
		}
		merged := data.Clone()
		merged.OrderStatus = order.Status
		return merged, nil
	}

	payment, err := p.client.FetchPayment(ctx, data.PaymentID)
	if err != nil {
		p.logger.Error("failed to retrieve razorpay payment", zap.Error(err))
		return nil, apperrors.ValidationErrorf(err, "failed to retrieve razorpay payment")
	}

	merged := data.Clone()
	merged.PaymentID = payment.ID
	merged.PaymentStatus = payment.Status
	merged.PaymentMethod = payment.Method
	merged.Captured = payment.Captured
	return merged, nil
}

// GetPaymentStatus reports the platform status. Polling is speculative, so
// fetch failures are swallowed into StatusError instead of propagating.
func (p *RazorpayProvider) GetPaymentStatus(ctx context.Context, data *SessionData) SessionStatus {
	if data == nil || data.PaymentID == "" {
		// No payment has been created gateway-side yet.
		return StatusPending
	}

	payment, err := p.client.FetchPayment(ctx, data.PaymentID)
	if err != nil {
		p.logger.Error("failed to get razorpay payment status",
			zap.String("payment_id", data.PaymentID),
			zap.Error(err),
		)
		return StatusError
	}

	return MapPaymentStatus(payment.Status)
}

// webhookEvent is the slice of the gateway's webhook envelope this adapter
// reads.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity razorpay.Payment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook verifies the signature over the raw body before parsing a
// single byte of it, then dispatches on the event type. It never fails past
// its boundary: one malformed event must not destabilize the receiver.
func (p *RazorpayProvider) HandleWebhook(_ context.Context, payload *WebhookPayload) *WebhookResult {
	if p.opts.WebhookSecret != "" {
		signature := headerValue(payload.Headers, WebhookSignatureHeader)
		if !razorpay.VerifyWebhookSignature(payload.RawBody, signature, p.opts.WebhookSecret) {
			// Unverifiable events may be replays or forgeries: logged and
			// dropped, not retried.
			p.logger.Warn("razorpay webhook signature verification failed")
			return &WebhookResult{Action: ActionNotSupported}
		}
	} else {
		p.logger.Warn("processing razorpay webhook without signature verification")
	}

	var event webhookEvent
	if err := json.Unmarshal(payload.RawBody, &event); err != nil {
		p.logger.Error("failed to parse razorpay webhook", zap.Error(err))
		return &WebhookResult{Action: ActionFailed}
	}

	switch event.Event {
	case "payment.authorized":
		return p.webhookPaymentResult(ActionAuthorized, &event)
	case "payment.captured":
		return p.webhookPaymentResult(ActionCaptured, &event)
	case "payment.failed":
		return p.webhookPaymentResult(ActionFailed, &event)
	default:
		p.logger.Debug("unhandled razorpay webhook event", zap.String("event", event.Event))
		return &WebhookResult{Action: ActionNotSupported}
	}
}

// webhookPaymentResult builds the tagged result for a payment event. The
// session id is the embedded order id and the amount is the gateway's
// minor-unit amount, passed through unscaled.
func (p *RazorpayProvider) webhookPaymentResult(action WebhookAction, event *webhookEvent) *WebhookResult {
	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		p.logger.Error("razorpay webhook payment entity missing order id",
			zap.String("event", event.Event),
		)
		return &WebhookResult{Action: ActionFailed}
	}

	return &WebhookResult{
		Action:    action,
		SessionID: entity.OrderID,
		Amount:    decimal.NewFromInt(entity.Amount),
	}
}

// headerValue looks up a header case-insensitively: webhook receivers see
// canonicalized keys, raw proxies may not.
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
