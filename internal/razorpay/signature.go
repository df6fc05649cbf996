package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex-encoded HMAC-SHA256 digest of message under secret.
// Every Razorpay signature scheme uses this primitive; the named verifiers
// below only differ in how the message is assembled.
func Sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the expected digest of
// message under secret. The comparison is constant-time.
func VerifySignature(secret, message, signature string) bool {
	expected := Sign(secret, message)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyPaymentSignature verifies the signature returned by the checkout
// widget after a payer completes a payment against an order.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	return VerifySignature(secret, orderID+"|"+paymentID, signature)
}

// VerifyWebhookSignature verifies the x-razorpay-signature header against
// the raw, unparsed request body. Re-serializing the parsed body would
// silently break verification on key order or whitespace, so callers must
// pass the bytes exactly as received.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifySubscriptionSignature verifies a subscription charge signature.
func VerifySubscriptionSignature(subscriptionID, paymentID, signature, secret string) bool {
	return VerifySignature(secret, subscriptionID+"|"+paymentID, signature)
}

// VerifyPaymentLinkSignature verifies a payment link callback signature.
func VerifyPaymentLinkSignature(linkID, paymentID, referenceID, status, signature, secret string) bool {
	message := linkID + "|" + paymentID + "|" + referenceID + "|" + status
	return VerifySignature(secret, message, signature)
}
