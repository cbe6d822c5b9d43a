package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	recoveryservice "tinko-recovery-backend/internal/recovery/service"
	"tinko-recovery-backend/platform/config"
	"tinko-recovery-backend/platform/logger"
)

// RecoveryService is the slice of the recovery service the webhook
// receiver needs.
type RecoveryService interface {
	IngestFailureEvent(ctx context.Context, input recoveryservice.IngestInput, orgID *uuid.UUID, idempotencyKey *string) (recoveryservice.IngestResult, error)
	CompletePayment(ctx context.Context, ref string) (int64, error)
}

// Handler processes signed webhook deliveries from payment gateways.
type Handler struct {
	recovery RecoveryService
	cfg      config.WebhookConfig
	log      *logger.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(recovery RecoveryService, cfg config.WebhookConfig, log *logger.Logger) *Handler {
	return &Handler{recovery: recovery, cfg: cfg, log: log}
}

// HandleRazorpay processes a Razorpay webhook delivery. Failed payments are
// ingested as failure events; captured payments close open recovery attempts.
func (h *Handler) HandleRazorpay(c *gin.Context) {
	secret := h.cfg.GetRazorpayWebhookSecret()
	if secret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "razorpay webhook not configured"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read body"})
		return
	}
	if !VerifyRazorpaySignature(body, c.GetHeader("X-Razorpay-Signature"), secret) {
		h.log.Warn("razorpay webhook signature mismatch", "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var env razorpayEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	switch env.Event {
	case "payment.failed":
		h.ingestRazorpayFailure(c, env)
	case "payment.captured":
		h.completePayment(c, env.Payload.Payment.Entity.transactionRef())
	case "order.paid":
		h.completePayment(c, env.Payload.Order.Entity.transactionRef())
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "event": env.Event})
	}
}

func (h *Handler) ingestRazorpayFailure(c *gin.Context, env razorpayEnvelope) {
	p := env.Payload.Payment.Entity
	ref := p.transactionRef()
	if ref == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": "no transaction reference"})
		return
	}

	input := recoveryservice.IngestInput{
		TransactionRef: ref,
		FailureReason:  p.ErrorDescription,
		Gateway:        strPtr(nonEmpty(p.ErrorCode, "razorpay")),
		CustomerEmail:  strPtrOrNil(p.Email),
		CustomerPhone:  strPtrOrNil(p.Contact),
	}
	if p.Amount > 0 {
		input.AmountCents = &p.Amount
	}
	if p.Currency != "" {
		input.Currency = &p.Currency
	}

	key := "razorpay:" + env.Event + ":" + p.ID
	result, err := h.recovery.IngestFailureEvent(c.Request.Context(), input, nil, &key)
	if err != nil {
		h.log.Error("razorpay webhook ingest failed", "transaction_ref", ref, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "recorded",
		"category": result.Classification.Category,
		"replayed": result.Replayed,
	})
}

// HandleStripe processes a Stripe event delivery. Succeeded intents and
// completed checkout sessions close open recovery attempts; failed intents
// are ingested as failure events.
func (h *Handler) HandleStripe(c *gin.Context) {
	secret := h.cfg.GetStripeWebhookSecret()
	if secret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stripe webhook not configured"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read body"})
		return
	}
	if !VerifyStripeSignature(body, c.GetHeader("Stripe-Signature"), secret, time.Now()) {
		h.log.Warn("stripe webhook signature mismatch", "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var env stripeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	switch env.Type {
	case "payment_intent.succeeded":
		var pi stripePaymentIntent
		if err := json.Unmarshal(env.Data.Object, &pi); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment intent"})
			return
		}
		h.completePayment(c, pi.transactionRef())
	case "checkout.session.completed":
		var cs stripeCheckoutSession
		if err := json.Unmarshal(env.Data.Object, &cs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout session"})
			return
		}
		h.completePayment(c, cs.transactionRef())
	case "payment_intent.payment_failed":
		h.ingestStripeFailure(c, env)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "event": env.Type})
	}
}

func (h *Handler) ingestStripeFailure(c *gin.Context, env stripeEnvelope) {
	var pi stripePaymentIntent
	if err := json.Unmarshal(env.Data.Object, &pi); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment intent"})
		return
	}
	ref := pi.transactionRef()
	if ref == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": "no transaction reference"})
		return
	}

	var code, message string
	if pi.LastPaymentError != nil {
		code = nonEmpty(pi.LastPaymentError.DeclineCode, pi.LastPaymentError.Code)
		message = pi.LastPaymentError.Message
	}

	input := recoveryservice.IngestInput{
		TransactionRef: ref,
		FailureReason:  message,
		Gateway:        strPtr(nonEmpty(code, "stripe")),
		CustomerEmail:  strPtrOrNil(pi.ReceiptEmail),
	}
	if pi.Amount > 0 {
		input.AmountCents = &pi.Amount
	}
	if pi.Currency != "" {
		input.Currency = &pi.Currency
	}

	key := "stripe:" + env.Type + ":" + pi.ID
	result, err := h.recovery.IngestFailureEvent(c.Request.Context(), input, nil, &key)
	if err != nil {
		h.log.Error("stripe webhook ingest failed", "transaction_ref", ref, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "recorded",
		"category": result.Classification.Category,
		"replayed": result.Replayed,
	})
}

func (h *Handler) completePayment(c *gin.Context, ref string) {
	if ref == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": "no transaction reference"})
		return
	}

	closed, err := h.recovery.CompletePayment(c.Request.Context(), ref)
	if err != nil {
		h.log.Error("webhook payment completion failed", "transaction_ref", ref, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete recovery"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed", "attempts_closed": closed})
}

func strPtr(s string) *string { return &s }

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonEmpty(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}
