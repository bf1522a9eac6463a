package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// GeneratePaymentSignature returns the hex HMAC-SHA256 of "orderID|paymentID"
// keyed by the gateway secret.
func GeneratePaymentSignature(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPaymentSignature compares the expected signature with the supplied one
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	expected := GeneratePaymentSignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
