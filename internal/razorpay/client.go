package razorpay

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/commercekit/razorpay-provider/internal/shared/metrics"
)

const defaultEndpoint = "https://api.razorpay.com/v1"

// ClientConfig holds gateway client configuration.
type ClientConfig struct {
	KeyID     string
	KeySecret string
	Endpoint  string // overridable for tests
	Timeout   time.Duration
	Metrics   *metrics.Metrics // optional
}

// Client is a thin resource client over the Razorpay REST API. It performs
// no retries: every gateway failure is terminal for that call, and callers
// own their timeout/retry policy.
type Client struct {
	r       *resty.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClient creates a gateway client authenticated with the key pair.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r := resty.New().
		SetBaseURL(endpoint).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{r: r, logger: logger, metrics: cfg.Metrics}
}

// do issues one gateway request and normalizes the outcome. The result must
// be a pointer; body may be nil for GETs.
func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	start := time.Now()

	req := c.r.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&APIError{})
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	switch {
	case err != nil:
		err = fmt.Errorf("%s: %w", op, err)
	case resp.IsError():
		err = gatewayError(op, resp)
	}

	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.RecordGatewayRequest(op, outcome, time.Since(start))
	}

	return err
}

// CreateOrder creates a new order on the gateway.
func (c *Client) CreateOrder(ctx context.Context, params *OrderParams) (*Order, error) {
	var order Order
	if err := c.do(ctx, "create_order", http.MethodPost, "/orders", params, &order); err != nil {
		return nil, err
	}

	c.logger.Debug("gateway order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
	)
	return &order, nil
}

// FetchOrder fetches an order by ID.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.do(ctx, "fetch_order", http.MethodGet, "/orders/"+orderID, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FetchPayment fetches a payment by ID.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, "fetch_payment", http.MethodGet, "/payments/"+paymentID, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CapturePayment captures an authorized payment for the given minor-unit
// amount.
func (c *Client) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (*Payment, error) {
	body := map[string]any{
		"amount":   amount,
		"currency": currency,
	}

	var payment Payment
	if err := c.do(ctx, "capture_payment", http.MethodPost, "/payments/"+paymentID+"/capture", body, &payment); err != nil {
		return nil, err
	}

	c.logger.Debug("gateway payment captured", zap.String("payment_id", payment.ID))
	return &payment, nil
}

// CreateRefund creates a refund against a captured payment.
func (c *Client) CreateRefund(ctx context.Context, paymentID string, params *RefundParams) (*Refund, error) {
	var refund Refund
	if err := c.do(ctx, "create_refund", http.MethodPost, "/payments/"+paymentID+"/refund", params, &refund); err != nil {
		return nil, err
	}

	c.logger.Debug("gateway refund created",
		zap.String("refund_id", refund.ID),
		zap.String("payment_id", paymentID),
	)
	return &refund, nil
}

// gatewayError normalizes a non-2xx response into an error carrying the
// gateway's code and description when the envelope decoded.
func gatewayError(op string, resp *resty.Response) error {
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Inner.Code != "" {
		return fmt.Errorf("%s: %w", op, apiErr)
	}
	return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode())
}
