package provider

import (
	"encoding/json"

	"github.com/commercekit/razorpay-provider/internal/razorpay"
)

// SessionStatus is the platform's closed payment status enumeration. Every
// gateway status projects onto exactly one of these values.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusAuthorized SessionStatus = "authorized"
	StatusError      SessionStatus = "error"
	StatusCanceled   SessionStatus = "canceled"
)

// MapPaymentStatus projects a gateway payment status onto the platform
// enumeration. The mapping is total: unknown values report pending rather
// than failing, since new gateway states must never break status polling.
func MapPaymentStatus(gatewayStatus string) SessionStatus {
	switch gatewayStatus {
	case razorpay.PaymentStatusCaptured, razorpay.PaymentStatusAuthorized:
		return StatusAuthorized
	case razorpay.PaymentStatusFailed:
		return StatusError
	case razorpay.PaymentStatusRefunded:
		return StatusCanceled
	default:
		return StatusPending
	}
}

// SessionData is the session blob the platform persists on the adapter's
// behalf between calls. It is the only carrier of gateway identifiers
// across process restarts, so every field must survive a JSON round trip.
// Field names follow the gateway's entity fields where one exists.
type SessionData struct {
	OrderID     string `json:"id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	OrderStatus string `json:"status,omitempty"`
	Receipt     string `json:"receipt,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`

	// KeyID is the public key identifier the client-side checkout widget
	// needs to open.
	KeyID string `json:"key_id,omitempty"`

	// Populated once the payer completes checkout.
	PaymentID     string `json:"payment_id,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Captured      bool   `json:"captured,omitempty"`
	CapturedAt    int64  `json:"captured_at,omitempty"`

	// Populated by refunds.
	RefundID       string `json:"refund_id,omitempty"`
	RefundStatus   string `json:"refund_status,omitempty"`
	RefundedAmount int64  `json:"refunded_amount,omitempty"`
	RefundedAt     int64  `json:"refunded_at,omitempty"`

	// Cancellation is local bookkeeping only: the gateway has no void
	// primitive and unpaid orders expire on their own.
	CanceledAt int64 `json:"canceled_at,omitempty"`
}

// Clone returns a copy of the session data so merged results never alias
// the caller's blob.
func (d *SessionData) Clone() *SessionData {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}

// UnmarshalSessionData reconstructs a session blob from its persisted form.
func UnmarshalSessionData(raw []byte) (*SessionData, error) {
	var data SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
