package webhook

import (
	"encoding/json"
	"strings"
)

// razorpayEnvelope is the outer shape of a Razorpay webhook delivery.
// Only the entities we act on are modelled.
type razorpayEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity razorpayPayment `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity razorpayOrder `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

type razorpayPayment struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	Amount           int64           `json:"amount"`
	Currency         string          `json:"currency"`
	Email            string          `json:"email"`
	Contact          string          `json:"contact"`
	ErrorCode        string          `json:"error_code"`
	ErrorDescription string          `json:"error_description"`
	Notes            json.RawMessage `json:"notes"`
}

type razorpayOrder struct {
	ID      string          `json:"id"`
	Receipt string          `json:"receipt"`
	Notes   json.RawMessage `json:"notes"`
}

// decodeNotes tolerates Razorpay sending notes as either an object or an
// empty array.
func decodeNotes(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var notes map[string]string
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil
	}
	return notes
}

// transactionRef resolves the merchant transaction reference carried by a
// payment entity, preferring an explicit note over the order id.
func (p razorpayPayment) transactionRef() string {
	if notes := decodeNotes(p.Notes); notes["transaction_ref"] != "" {
		return notes["transaction_ref"]
	}
	return p.OrderID
}

func (o razorpayOrder) transactionRef() string {
	if notes := decodeNotes(o.Notes); notes["transaction_ref"] != "" {
		return notes["transaction_ref"]
	}
	if o.Receipt != "" {
		return o.Receipt
	}
	return o.ID
}

// stripeEnvelope is the outer shape of a Stripe event.
type stripeEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type stripePaymentIntent struct {
	ID               string            `json:"id"`
	Description      string            `json:"description"`
	Metadata         map[string]string `json:"metadata"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	ReceiptEmail     string            `json:"receipt_email"`
	LastPaymentError *struct {
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"last_payment_error"`
}

type stripeCheckoutSession struct {
	ID                string            `json:"id"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// recoveryDescriptionPrefix tags Stripe charges created for hosted retry
// links so webhook deliveries can be matched back to a transaction.
const recoveryDescriptionPrefix = "Recovery for "

func (pi stripePaymentIntent) transactionRef() string {
	if pi.Metadata["transaction_ref"] != "" {
		return pi.Metadata["transaction_ref"]
	}
	if ref, ok := strings.CutPrefix(pi.Description, recoveryDescriptionPrefix); ok {
		return strings.TrimSpace(ref)
	}
	return ""
}

func (cs stripeCheckoutSession) transactionRef() string {
	if cs.Metadata["transaction_ref"] != "" {
		return cs.Metadata["transaction_ref"]
	}
	return cs.ClientReferenceID
}
