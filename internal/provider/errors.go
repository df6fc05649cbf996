package provider

import "errors"

// Precondition errors raised before any gateway call is attempted.
var (
	ErrMissingSessionData = errors.New("session data missing")
	ErrMissingOrderID     = errors.New("order id not found in session data")
	ErrMissingPaymentID   = errors.New("payment id not found in session data")
	ErrMissingSignature   = errors.New("payment signature missing")
	ErrInvalidSignature   = errors.New("invalid payment signature")
)
