package clients

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"meetingId":"m-1"}`)
	sig := signPayload("secret", payload)

	if !VerifyWebhookSignature("secret", payload, sig) {
		t.Error("expected valid bare hex signature to verify")
	}
	if !VerifyWebhookSignature("secret", payload, "sha256="+sig) {
		t.Error("expected sha256-prefixed signature to verify")
	}
	if VerifyWebhookSignature("secret", payload, signPayload("other", payload)) {
		t.Error("expected signature from wrong secret to fail")
	}
	if VerifyWebhookSignature("secret", []byte("tampered"), sig) {
		t.Error("expected tampered payload to fail")
	}
	if VerifyWebhookSignature("", payload, sig) {
		t.Error("expected empty secret to fail")
	}
	if VerifyWebhookSignature("secret", payload, "") {
		t.Error("expected empty signature to fail")
	}
}
