package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// computeHMAC returns the hex-encoded HMAC-SHA256 of payload under secret.
func computeHMAC(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyRazorpaySignature checks the X-Razorpay-Signature header against the
// raw request body. Razorpay signs the body directly with the webhook secret.
func VerifyRazorpaySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	expected := computeHMAC(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// stripeSignatureTolerance bounds how old a signed Stripe timestamp may be.
const stripeSignatureTolerance = 5 * time.Minute

// VerifyStripeSignature checks a Stripe-Signature header against the raw
// request body. Stripe signs "<timestamp>.<body>" and sends the timestamp
// alongside one or more v1 signatures in the header.
func VerifyStripeSignature(body []byte, header, secret string, now time.Time) bool {
	if header == "" || secret == "" {
		return false
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return false
			}
			timestamp = parsed
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return false
	}

	signedAt := time.Unix(timestamp, 0)
	if now.Sub(signedAt) > stripeSignatureTolerance || signedAt.Sub(now) > stripeSignatureTolerance {
		return false
	}

	signedPayload := strconv.FormatInt(timestamp, 10) + "." + string(body)
	expected := computeHMAC([]byte(signedPayload), secret)
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}
	return false
}
