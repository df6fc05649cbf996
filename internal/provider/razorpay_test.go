package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/commercekit/razorpay-provider/internal/razorpay"
)

const (
	testKeyID         = "rzp_test_key"
	testKeySecret     = "rzp_test_secret"
	testWebhookSecret = "whsec_test"
)

// fakeGateway is a counting fake for the gateway client. Call counts prove
// which operations reached the network boundary.
type fakeGateway struct {
	createOrderFn  func(ctx context.Context, params *razorpay.OrderParams) (*razorpay.Order, error)
	fetchOrderFn   func(ctx context.Context, orderID string) (*razorpay.Order, error)
	fetchPaymentFn func(ctx context.Context, paymentID string) (*razorpay.Payment, error)
	captureFn      func(ctx context.Context, paymentID string, amount int64, currency string) (*razorpay.Payment, error)
	refundFn       func(ctx context.Context, paymentID string, params *razorpay.RefundParams) (*razorpay.Refund, error)

	createOrderCalls  int
	fetchOrderCalls   int
	fetchPaymentCalls int
	captureCalls      int
	refundCalls       int
}

func (f *fakeGateway) CreateOrder(ctx context.Context, params *razorpay.OrderParams) (*razorpay.Order, error) {
	f.createOrderCalls++
	if f.createOrderFn == nil {
		return nil, errors.New("unexpected CreateOrder call")
	}
	return f.createOrderFn(ctx, params)
}

func (f *fakeGateway) FetchOrder(ctx context.Context, orderID string) (*razorpay.Order, error) {
	f.fetchOrderCalls++
	if f.fetchOrderFn == nil {
		return nil, errors.New("unexpected FetchOrder call")
	}
	return f.fetchOrderFn(ctx, orderID)
}

func (f *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error) {
	f.fetchPaymentCalls++
	if f.fetchPaymentFn == nil {
		return nil, errors.New("unexpected FetchPayment call")
	}
	return f.fetchPaymentFn(ctx, paymentID)
}

func (f *fakeGateway) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (*razorpay.Payment, error) {
	f.captureCalls++
	if f.captureFn == nil {
		return nil, errors.New("unexpected CapturePayment call")
	}
	return f.captureFn(ctx, paymentID, amount, currency)
}

func (f *fakeGateway) CreateRefund(ctx context.Context, paymentID string, params *razorpay.RefundParams) (*razorpay.Refund, error) {
	f.refundCalls++
	if f.refundFn == nil {
		return nil, errors.New("unexpected CreateRefund call")
	}
	return f.refundFn(ctx, paymentID, params)
}

var testNow = time.Unix(1700000000, 0)

func newTestProvider(t *testing.T, gw *fakeGateway, webhookSecret string) *RazorpayProvider {
	t.Helper()
	p, err := NewRazorpayProvider(gw, Options{
		KeyID:         testKeyID,
		KeySecret:     testKeySecret,
		WebhookSecret: webhookSecret,
	}, zap.NewNop())
	require.NoError(t, err)
	p.now = func() time.Time { return testNow }
	return p
}

func orderFromParams(params *razorpay.OrderParams) *razorpay.Order {
	return &razorpay.Order{
		ID:        "order_" + fmt.Sprint(params.Amount),
		Entity:    "order",
		Amount:    params.Amount,
		Currency:  params.Currency,
		Receipt:   params.Receipt,
		Status:    razorpay.OrderStatusCreated,
		CreatedAt: testNow.Unix(),
	}
}

func TestNewRazorpayProvider_MissingCredentials(t *testing.T) {
	_, err := NewRazorpayProvider(&fakeGateway{}, Options{KeySecret: "s"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key_id")

	_, err = NewRazorpayProvider(&fakeGateway{}, Options{KeyID: "k"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key_secret")
}

func TestInitiatePayment(t *testing.T) {
	gw := &fakeGateway{createOrderFn: func(_ context.Context, params *razorpay.OrderParams) (*razorpay.Order, error) {
		return orderFromParams(params), nil
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	out, err := p.InitiatePayment(context.Background(), &InitiateInput{
		Amount:       decimal.NewFromInt(499),
		CurrencyCode: "inr",
		Description:  "Order #42",
		Customer:     &razorpay.CheckoutPrefill{Email: "payer@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, out.Status)
	assert.Equal(t, out.Data.OrderID, out.SessionID)
	assert.Equal(t, int64(49900), out.Data.Amount)
	assert.Equal(t, "INR", out.Data.Currency)
	assert.Equal(t, razorpay.OrderStatusCreated, out.Data.OrderStatus)
	assert.Equal(t, testKeyID, out.Data.KeyID)
	assert.NotEmpty(t, out.Data.Receipt)
	assert.Equal(t, 1, gw.createOrderCalls)

	require.NotNil(t, out.Checkout)
	assert.Equal(t, testKeyID, out.Checkout.Key)
	assert.Equal(t, out.SessionID, out.Checkout.OrderID)
	assert.Equal(t, int64(49900), out.Checkout.Amount)
	assert.Equal(t, "Order #42", out.Checkout.Description)
	assert.Equal(t, "payer@example.com", out.Checkout.Prefill.Email)
}

func TestInitiatePayment_GatewayFailure(t *testing.T) {
	gw := &fakeGateway{createOrderFn: func(context.Context, *razorpay.OrderParams) (*razorpay.Order, error) {
		return nil, errors.New("connection refused")
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	_, err := p.InitiatePayment(context.Background(), &InitiateInput{
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "INR",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initiate razorpay payment")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUpdatePayment_UnchangedAmount(t *testing.T) {
	gw := &fakeGateway{}
	p := newTestProvider(t, gw, testWebhookSecret)

	existing := &SessionData{OrderID: "order_1", Amount: 49900, Currency: "INR"}
	out, err := p.UpdatePayment(context.Background(), &UpdateInput{
		Amount:       decimal.NewFromInt(499),
		CurrencyCode: "INR",
		Data:         existing,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, out.Status)
	assert.Same(t, existing, out.Data)
	assert.Equal(t, 0, gw.createOrderCalls)
}

func TestUpdatePayment_ChangedAmount(t *testing.T) {
	gw := &fakeGateway{createOrderFn: func(_ context.Context, params *razorpay.OrderParams) (*razorpay.Order, error) {
		return orderFromParams(params), nil
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	existing := &SessionData{OrderID: "order_49900", Amount: 49900, Currency: "INR"}
	out, err := p.UpdatePayment(context.Background(), &UpdateInput{
		Amount:       decimal.NewFromInt(599),
		CurrencyCode: "INR",
		Data:         existing,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, out.Status)
	assert.Equal(t, int64(59900), out.Data.Amount)
	assert.NotEqual(t, existing.OrderID, out.Data.OrderID)
	assert.Equal(t, 1, gw.createOrderCalls)
}

func TestDeletePayment(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	data := &SessionData{OrderID: "order_1"}
	out, err := p.DeletePayment(context.Background(), data)
	require.NoError(t, err)
	assert.Same(t, data, out)
}

func TestAuthorizePayment(t *testing.T) {
	gw := &fakeGateway{fetchPaymentFn: func(_ context.Context, paymentID string) (*razorpay.Payment, error) {
		return &razorpay.Payment{
			ID:       paymentID,
			OrderID:  "order_1",
			Status:   razorpay.PaymentStatusAuthorized,
			Method:   "card",
			Captured: false,
		}, nil
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	signature := razorpay.Sign(testKeySecret, "order_1|pay_1")
	out, err := p.AuthorizePayment(context.Background(), &AuthorizeInput{
		Data:      &SessionData{OrderID: "order_1", Amount: 49900, Currency: "INR"},
		PaymentID: "pay_1",
		Signature: signature,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusAuthorized, out.Status)
	assert.Equal(t, "pay_1", out.Data.PaymentID)
	assert.Equal(t, razorpay.PaymentStatusAuthorized, out.Data.PaymentStatus)
	assert.Equal(t, "card", out.Data.PaymentMethod)
	assert.False(t, out.Data.Captured)
	// original order fields survive the merge
	assert.Equal(t, "order_1", out.Data.OrderID)
	assert.Equal(t, int64(49900), out.Data.Amount)
}

func TestAuthorizePayment_TamperedSignature(t *testing.T) {
	gw := &fakeGateway{fetchPaymentFn: func(_ context.Context, paymentID string) (*razorpay.Payment, error) {
		return &razorpay.Payment{ID: paymentID, Status: razorpay.PaymentStatusAuthorized}, nil
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	valid := razorpay.Sign(testKeySecret, "order_1|pay_1")
	tampered := []byte(valid)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}

	_, err := p.AuthorizePayment(context.Background(), &AuthorizeInput{
		Data:      &SessionData{OrderID: "order_1"},
		PaymentID: "pay_1",
		Signature: string(tampered),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	// rejection happens before any gateway fetch
	assert.Equal(t, 0, gw.fetchPaymentCalls)
}

func TestAuthorizePayment_MissingFields(t *testing.T) {
	gw := &fakeGateway{}
	p := newTestProvider(t, gw, testWebhookSecret)
	ctx := context.Background()

	_, err := p.AuthorizePayment(ctx, &AuthorizeInput{PaymentID: "pay_1", Signature: "sig"})
	assert.ErrorIs(t, err, ErrMissingOrderID)

	_, err = p.AuthorizePayment(ctx, &AuthorizeInput{Data: &SessionData{OrderID: "order_1"}, Signature: "sig"})
	assert.ErrorIs(t, err, ErrMissingPaymentID)

	_, err = p.AuthorizePayment(ctx, &AuthorizeInput{Data: &SessionData{OrderID: "order_1"}, PaymentID: "pay_1"})
	assert.ErrorIs(t, err, ErrMissingSignature)

	assert.Equal(t, 0, gw.fetchPaymentCalls)
}

func TestAuthorizePayment_UnexpectedStatus(t *testing.T) {
	gw := &fakeGateway{fetchPaymentFn: func(_ context.Context, paymentID string) (*razorpay.Payment, error) {
		return &razorpay.Payment{ID: paymentID, Status: razorpay.PaymentStatusFailed}, nil
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	signature := razorpay.Sign(testKeySecret, "order_1|pay_1")
	_, err := p.AuthorizePayment(context.Background(), &AuthorizeInput{
		Data:      &SessionData{OrderID: "order_1"},
		PaymentID: "pay_1",
		Signature: signature,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: failed")
}

func TestCapturePayment(t *testing.T) {
	gw := &fakeGateway{captureFn: func(_ context.Context, paymentID string, amount int64, currency string) (*razorpay.Payment, error) {
		assert.Equal(t, int64(49900), amount)
		assert.Equal(t, "INR", currency)
		return &razorpay.Payment{
			ID:       paymentID,
			Status:   razorpay.PaymentStatusCaptured,
			Captured: true,
		}, nil
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	data := &SessionData{OrderID: "order_1", PaymentID: "pay_1", Amount: 49900, Currency: "INR"}
	out, err := p.CapturePayment(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, razorpay.PaymentStatusCaptured, out.PaymentStatus)
	assert.True(t, out.Captured)
	assert.Equal(t, testNow.Unix(), out.CapturedAt)
	// the caller's blob is not mutated in place
	assert.Zero(t, data.CapturedAt)
}

func TestCapturePayment_MissingPaymentID(t *testing.T) {
	gw := &fakeGateway{}
	p := newTestProvider(t, gw, testWebhookSecret)

	_, err := p.CapturePayment(context.Background(), &SessionData{OrderID: "order_1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPaymentID)
	assert.Equal(t, 0, gw.captureCalls)
}

func TestRefundPayment(t *testing.T) {
	gw := &fakeGateway{refundFn: func(_ context.Context, paymentID string, params *razorpay.RefundParams) (*razorpay.Refund, error) {
		assert.Equal(t, "pay_1", paymentID)
		assert.Equal(t, int64(10000), params.Amount)
		assert.Equal(t, "optimum", params.Speed)
		return &razorpay.Refund{
			ID:        "rfnd_1",
			PaymentID: paymentID,
			Amount:    params.Amount,
			Status:    razorpay.RefundStatusProcessed,
		}, nil
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	out, err := p.RefundPayment(context.Background(), &RefundInput{
		Data:   &SessionData{OrderID: "order_1", PaymentID: "pay_1", Currency: "INR"},
		Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.Equal(t, "rfnd_1", out.RefundID)
	assert.Equal(t, razorpay.RefundStatusProcessed, out.RefundStatus)
	assert.Equal(t, int64(10000), out.RefundedAmount)
	assert.Equal(t, testNow.Unix(), out.RefundedAt)
}

func TestRefundPayment_MissingPaymentID(t *testing.T) {
	gw := &fakeGateway{}
	p := newTestProvider(t, gw, testWebhookSecret)

	_, err := p.RefundPayment(context.Background(), &RefundInput{
		Data:   &SessionData{OrderID: "order_1"},
		Amount: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPaymentID)
	assert.Equal(t, 0, gw.refundCalls)
}

func TestCancelPayment(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	data := &SessionData{OrderID: "order_1"}
	out, err := p.CancelPayment(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, testNow.Unix(), out.CanceledAt)
	assert.Zero(t, data.CanceledAt)
}

func TestRetrievePayment_WithPaymentID(t *testing.T) {
	gw := &fakeGateway{fetchPaymentFn: func(_ context.Context, paymentID string) (*razorpay.Payment, error) {
		return &razorpay.Payment{
			ID:       paymentID,
			Status:   razorpay.PaymentStatusCaptured,
			Method:   "netbanking",
			Captured: true,
		}, nil
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	out, err := p.RetrievePayment(context.Background(), &SessionData{OrderID: "order_1", PaymentID: "pay_1"})
	require.NoError(t, err)
	assert.Equal(t, razorpay.PaymentStatusCaptured, out.PaymentStatus)
	assert.Equal(t, "netbanking", out.PaymentMethod)
	assert.Equal(t, 0, gw.fetchOrderCalls)
}

func TestRetrievePayment_FallsBackToOrder(t *testing.T) {
	gw := &fakeGateway{fetchOrderFn: func(_ context.Context, orderID string) (*razorpay.Order, error) {
		return &razorpay.Order{ID: orderID, Status: razorpay.OrderStatusAttempted}, nil
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	out, err := p.RetrievePayment(context.Background(), &SessionData{OrderID: "order_1"})
	require.NoError(t, err)
	assert.Equal(t, razorpay.OrderStatusAttempted, out.OrderStatus)
	assert.Equal(t, 0, gw.fetchPaymentCalls)
}

func TestGetPaymentStatus(t *testing.T) {
	tests := []struct {
		gatewayStatus string
		want          SessionStatus
	}{
		{razorpay.PaymentStatusCaptured, StatusAuthorized},
		{razorpay.PaymentStatusAuthorized, StatusAuthorized},
		{razorpay.PaymentStatusFailed, StatusError},
		{razorpay.PaymentStatusRefunded, StatusCanceled},
		{razorpay.PaymentStatusCreated, StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.gatewayStatus, func(t *testing.T) {
			gw := &fakeGateway{fetchPaymentFn: func(_ context.Context, paymentID string) (*razorpay.Payment, error) {
				return &razorpay.Payment{ID: paymentID, Status: tt.gatewayStatus}, nil
			}}
			p := newTestProvider(t, gw, testWebhookSecret)

			status := p.GetPaymentStatus(context.Background(), &SessionData{PaymentID: "pay_1"})
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestGetPaymentStatus_NoPaymentID(t *testing.T) {
	gw := &fakeGateway{}
	p := newTestProvider(t, gw, testWebhookSecret)

	assert.Equal(t, StatusPending, p.GetPaymentStatus(context.Background(), &SessionData{OrderID: "order_1"}))
	assert.Equal(t, StatusPending, p.GetPaymentStatus(context.Background(), nil))
	assert.Equal(t, 0, gw.fetchPaymentCalls)
}

func TestGetPaymentStatus_FetchFailure(t *testing.T) {
	gw := &fakeGateway{fetchPaymentFn: func(context.Context, string) (*razorpay.Payment, error) {
		return nil, errors.New("gateway timeout")
	}}
	p := newTestProvider(t, gw, testWebhookSecret)

	// polling swallows fetch failures into the error status
	assert.Equal(t, StatusError, p.GetPaymentStatus(context.Background(), &SessionData{PaymentID: "pay_1"}))
}

func webhookBody(t *testing.T, event, orderID string, amount int64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"event": event,
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{
					"id":       "pay_1",
					"order_id": orderID,
					"amount":   amount,
					"currency": "INR",
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestHandleWebhook_Captured(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	body := webhookBody(t, "payment.captured", "order_1", 49900)
	result := p.HandleWebhook(context.Background(), &WebhookPayload{
		RawBody: body,
		Headers: map[string]string{
			WebhookSignatureHeader: razorpay.Sign(testWebhookSecret, string(body)),
		},
	})

	assert.Equal(t, ActionCaptured, result.Action)
	assert.Equal(t, "order_1", result.SessionID)
	// minor-unit amount passed through unscaled as a decimal
	assert.True(t, decimal.NewFromInt(49900).Equal(result.Amount))
}

func TestHandleWebhook_AuthorizedAndFailed(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	for event, want := range map[string]WebhookAction{
		"payment.authorized": ActionAuthorized,
		"payment.failed":     ActionFailed,
	} {
		body := webhookBody(t, event, "order_2", 10050)
		result := p.HandleWebhook(context.Background(), &WebhookPayload{
			RawBody: body,
			Headers: map[string]string{
				WebhookSignatureHeader: razorpay.Sign(testWebhookSecret, string(body)),
			},
		})
		assert.Equal(t, want, result.Action)
		assert.Equal(t, "order_2", result.SessionID)
	}
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	body := webhookBody(t, "payment.captured", "order_1", 49900)
	result := p.HandleWebhook(context.Background(), &WebhookPayload{
		RawBody: body,
		Headers: map[string]string{WebhookSignatureHeader: "deadbeef"},
	})

	assert.Equal(t, ActionNotSupported, result.Action)
	assert.Empty(t, result.SessionID)
}

func TestHandleWebhook_MissingSignatureHeader(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	body := webhookBody(t, "payment.captured", "order_1", 49900)
	result := p.HandleWebhook(context.Background(), &WebhookPayload{RawBody: body, Headers: map[string]string{}})

	assert.Equal(t, ActionNotSupported, result.Action)
}

func TestHandleWebhook_CaseInsensitiveHeader(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	body := webhookBody(t, "payment.captured", "order_1", 49900)
	result := p.HandleWebhook(context.Background(), &WebhookPayload{
		RawBody: body,
		Headers: map[string]string{
			"X-Razorpay-Signature": razorpay.Sign(testWebhookSecret, string(body)),
		},
	})

	assert.Equal(t, ActionCaptured, result.Action)
}

func TestHandleWebhook_NoSecretConfigured(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, "")

	body := webhookBody(t, "payment.captured", "order_1", 49900)
	result := p.HandleWebhook(context.Background(), &WebhookPayload{RawBody: body, Headers: map[string]string{}})

	// verification is skipped when no secret is configured
	assert.Equal(t, ActionCaptured, result.Action)
}

func TestHandleWebhook_UnknownEvent(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	body := webhookBody(t, "refund.processed", "order_1", 49900)
	result := p.HandleWebhook(context.Background(), &WebhookPayload{
		RawBody: body,
		Headers: map[string]string{
			WebhookSignatureHeader: razorpay.Sign(testWebhookSecret, string(body)),
		},
	})

	assert.Equal(t, ActionNotSupported, result.Action)
}

func TestHandleWebhook_MalformedBody(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	body := []byte("{not json")
	result := p.HandleWebhook(context.Background(), &WebhookPayload{
		RawBody: body,
		Headers: map[string]string{
			WebhookSignatureHeader: razorpay.Sign(testWebhookSecret, string(body)),
		},
	})

	assert.Equal(t, ActionFailed, result.Action)
}

func TestHandleWebhook_MissingPaymentEntity(t *testing.T) {
	p := newTestProvider(t, &fakeGateway{}, testWebhookSecret)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	result := p.HandleWebhook(context.Background(), &WebhookPayload{
		RawBody: body,
		Headers: map[string]string{
			WebhookSignatureHeader: razorpay.Sign(testWebhookSecret, string(body)),
		},
	})

	assert.Equal(t, ActionFailed, result.Action)
}
