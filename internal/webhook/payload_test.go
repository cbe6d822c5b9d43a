package webhook

import (
	"encoding/json"
	"testing"
)

func TestRazorpayPaymentTransactionRef(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "note takes precedence over order id",
			payload: `{"id":"pay_1","order_id":"order_1","notes":{"transaction_ref":"TXN-001"}}`,
			want:    "TXN-001",
		},
		{
			name:    "falls back to order id",
			payload: `{"id":"pay_1","order_id":"order_1","notes":{}}`,
			want:    "order_1",
		},
		{
			name:    "tolerates notes sent as empty array",
			payload: `{"id":"pay_1","order_id":"order_1","notes":[]}`,
			want:    "order_1",
		},
		{
			name:    "empty without note or order",
			payload: `{"id":"pay_1"}`,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p razorpayPayment
			if err := json.Unmarshal([]byte(tt.payload), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := p.transactionRef(); got != tt.want {
				t.Fatalf("transactionRef() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRazorpayOrderTransactionRef(t *testing.T) {
	var o razorpayOrder
	payload := `{"id":"order_9","receipt":"TXN-R1","notes":[]}`
	if err := json.Unmarshal([]byte(payload), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := o.transactionRef(); got != "TXN-R1" {
		t.Fatalf("transactionRef() = %q, want TXN-R1", got)
	}

	o = razorpayOrder{ID: "order_9"}
	if got := o.transactionRef(); got != "order_9" {
		t.Fatalf("transactionRef() = %q, want order_9", got)
	}
}

func TestStripePaymentIntentTransactionRef(t *testing.T) {
	pi := stripePaymentIntent{Metadata: map[string]string{"transaction_ref": "TXN-M1"}}
	if got := pi.transactionRef(); got != "TXN-M1" {
		t.Fatalf("transactionRef() = %q, want TXN-M1", got)
	}

	pi = stripePaymentIntent{Description: "Recovery for TXN-D1"}
	if got := pi.transactionRef(); got != "TXN-D1" {
		t.Fatalf("transactionRef() = %q, want TXN-D1", got)
	}

	pi = stripePaymentIntent{Description: "Invoice 42"}
	if got := pi.transactionRef(); got != "" {
		t.Fatalf("transactionRef() = %q, want empty", got)
	}
}

func TestStripeCheckoutSessionTransactionRef(t *testing.T) {
	cs := stripeCheckoutSession{ClientReferenceID: "TXN-C1"}
	if got := cs.transactionRef(); got != "TXN-C1" {
		t.Fatalf("transactionRef() = %q, want TXN-C1", got)
	}
}
