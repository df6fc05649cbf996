package razorpay

import "fmt"

// Order statuses reported by the gateway. Orders are immutable after
// creation and expire on the gateway side if unpaid.
const (
	OrderStatusCreated   = "created"
	OrderStatusAttempted = "attempted"
	OrderStatusPaid      = "paid"
)

// Payment statuses reported by the gateway. Transitions are gateway-driven;
// this service only observes them.
const (
	PaymentStatusCreated    = "created"
	PaymentStatusAuthorized = "authorized"
	PaymentStatusCaptured   = "captured"
	PaymentStatusRefunded   = "refunded"
	PaymentStatusFailed     = "failed"
)

// Refund statuses. A refund's status is independent of its parent payment.
const (
	RefundStatusPending   = "pending"
	RefundStatusProcessed = "processed"
	RefundStatusFailed    = "failed"
)

// Order represents a Razorpay order.
type Order struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity"`
	Amount     int64             `json:"amount"`
	AmountPaid int64             `json:"amount_paid"`
	AmountDue  int64             `json:"amount_due"`
	Currency   string            `json:"currency"`
	Receipt    string            `json:"receipt"`
	Status     string            `json:"status"`
	Attempts   int               `json:"attempts"`
	Notes      map[string]string `json:"notes,omitempty"`
	CreatedAt  int64             `json:"created_at"`
}

// Payment represents a Razorpay payment. Error fields are populated only
// when the payment failed.
type Payment struct {
	ID               string            `json:"id"`
	Entity           string            `json:"entity"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Status           string            `json:"status"`
	OrderID          string            `json:"order_id"`
	InvoiceID        string            `json:"invoice_id,omitempty"`
	International    bool              `json:"international"`
	Method           string            `json:"method"`
	AmountRefunded   int64             `json:"amount_refunded"`
	RefundStatus     string            `json:"refund_status,omitempty"`
	Captured         bool              `json:"captured"`
	Description      string            `json:"description,omitempty"`
	Email            string            `json:"email,omitempty"`
	Contact          string            `json:"contact,omitempty"`
	Notes            map[string]string `json:"notes,omitempty"`
	Fee              int64             `json:"fee"`
	Tax              int64             `json:"tax"`
	ErrorCode        string            `json:"error_code,omitempty"`
	ErrorDescription string            `json:"error_description,omitempty"`
	ErrorSource      string            `json:"error_source,omitempty"`
	ErrorStep        string            `json:"error_step,omitempty"`
	ErrorReason      string            `json:"error_reason,omitempty"`
	CreatedAt        int64             `json:"created_at"`
}

// Refund represents a Razorpay refund.
type Refund struct {
	ID             string            `json:"id"`
	Entity         string            `json:"entity"`
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	PaymentID      string            `json:"payment_id"`
	Status         string            `json:"status"`
	SpeedRequested string            `json:"speed_requested,omitempty"`
	SpeedProcessed string            `json:"speed_processed,omitempty"`
	Notes          map[string]string `json:"notes,omitempty"`
	CreatedAt      int64             `json:"created_at"`
}

// OrderParams are the parameters for creating an order.
type OrderParams struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// RefundParams are the parameters for creating a refund.
// Speed "optimum" lets the gateway pick instant vs normal based on
// eligibility.
type RefundParams struct {
	Amount int64             `json:"amount"`
	Speed  string            `json:"speed,omitempty"`
	Notes  map[string]string `json:"notes,omitempty"`
}

// APIError is the error envelope the gateway returns on non-2xx responses.
type APIError struct {
	Inner struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Source      string `json:"source"`
		Step        string `json:"step"`
		Reason      string `json:"reason"`
	} `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	desc := e.Inner.Description
	if desc == "" {
		desc = "payment gateway request failed"
	}
	code := e.Inner.Code
	if code == "" {
		code = "UNKNOWN_ERROR"
	}
	return fmt.Sprintf("%s (%s)", desc, code)
}
