package clients

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyWebhookSignature verifies a sha256 HMAC hex signature against
// payload and secret. Accepts both bare hex digests and the
// "sha256=<hex>" form that Fireflies sends in x-hub-signature.
func VerifyWebhookSignature(secret string, payload []byte, signatureHex string) bool {
	if secret == "" || signatureHex == "" {
		return false
	}
	signatureHex = strings.TrimPrefix(signatureHex, "sha256=")
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHex))
}
