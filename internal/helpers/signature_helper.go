package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// WebhookSignature computes the HMAC-SHA256 signature the payment provider
// is expected to send in the X-Callback-Signature header, base64 encoded
// over the raw request body.
func WebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature compares in constant time.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	expected := WebhookSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
