package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

func signHex(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyRazorpaySignature(t *testing.T) {
	body := []byte(`{"event":"payment.failed"}`)
	secret := "whsec_test"

	if !VerifyRazorpaySignature(body, signHex(body, secret), secret) {
		t.Fatalf("expected valid signature to verify")
	}
	if VerifyRazorpaySignature(body, signHex(body, "other"), secret) {
		t.Fatalf("expected signature under wrong secret to fail")
	}
	if VerifyRazorpaySignature(body, "", secret) {
		t.Fatalf("expected empty signature to fail")
	}
	if VerifyRazorpaySignature(body, signHex(body, secret), "") {
		t.Fatalf("expected empty secret to fail")
	}
	if VerifyRazorpaySignature([]byte(`tampered`), signHex(body, secret), secret) {
		t.Fatalf("expected tampered body to fail")
	}
}

func stripeHeader(body []byte, secret string, at time.Time) string {
	ts := at.Unix()
	signed := fmt.Sprintf("%d.%s", ts, body)
	return fmt.Sprintf("t=%d,v1=%s", ts, signHex([]byte(signed), secret))
}

func TestVerifyStripeSignature(t *testing.T) {
	body := []byte(`{"type":"payment_intent.succeeded"}`)
	secret := "whsec_stripe"
	now := time.Now()

	if !VerifyStripeSignature(body, stripeHeader(body, secret, now), secret, now) {
		t.Fatalf("expected valid signature to verify")
	}
	if VerifyStripeSignature(body, stripeHeader(body, "other", now), secret, now) {
		t.Fatalf("expected signature under wrong secret to fail")
	}

	stale := now.Add(-10 * time.Minute)
	if VerifyStripeSignature(body, stripeHeader(body, secret, stale), secret, now) {
		t.Fatalf("expected stale timestamp outside tolerance to fail")
	}

	if VerifyStripeSignature(body, "v1=deadbeef", secret, now) {
		t.Fatalf("expected header without timestamp to fail")
	}
	if VerifyStripeSignature(body, "t=notanumber,v1=deadbeef", secret, now) {
		t.Fatalf("expected malformed timestamp to fail")
	}
}

func TestVerifyStripeSignatureMultipleV1(t *testing.T) {
	body := []byte(`{}`)
	secret := "whsec_stripe"
	now := time.Now()
	ts := now.Unix()
	good := signHex([]byte(fmt.Sprintf("%d.%s", ts, body)), secret)
	header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", ts, good)

	if !VerifyStripeSignature(body, header, secret, now) {
		t.Fatalf("expected any matching v1 signature to verify")
	}
}
