// Package transport defines request and response DTOs for the recovery HTTP API.
package transport

import "time"

// FailureEventRequest is the body for POST /v1/events/payment-failed.
type FailureEventRequest struct {
	TransactionRef string  `json:"transaction_ref" binding:"required,min=1,max=128"`
	AmountCents    *int64  `json:"amount_cents" binding:"omitempty,gt=0"`
	Currency       *string `json:"currency" binding:"omitempty,len=3"`
	CustomerEmail  *string `json:"customer_email" binding:"omitempty,email"`
	CustomerPhone  *string `json:"customer_phone" binding:"omitempty,max=32"`
	Gateway        *string `json:"gateway" binding:"omitempty,max=100"`
	FailureReason  string  `json:"failure_reason" binding:"required,min=1,max=500"`
	OccurredAt     *string `json:"occurred_at" binding:"omitempty"`
}

// FailureEventResponse describes a stored failure event plus its classification.
type FailureEventResponse struct {
	ID             string     `json:"id"`
	TransactionID  string     `json:"transaction_id"`
	TransactionRef string     `json:"transaction_ref"`
	Gateway        *string    `json:"gateway,omitempty"`
	Reason         string     `json:"reason"`
	Category       *string    `json:"category,omitempty"`
	Hardness       string     `json:"hardness,omitempty"`
	OccurredAt     *time.Time `json:"occurred_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ClassifyRequest is the body for POST /v1/classify.
type ClassifyRequest struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateLinkRequest is the body for POST /v1/recoveries/by-ref/:ref/link.
type CreateLinkRequest struct {
	Channel  string `json:"channel" binding:"omitempty,oneof=email sms whatsapp"`
	TTLHours int    `json:"ttl_hours" binding:"omitempty,gte=1,lte=168"`
}

// RecoveryLinkResponse is returned on link creation.
type RecoveryLinkResponse struct {
	AttemptID     string    `json:"attempt_id"`
	TransactionID string    `json:"transaction_id"`
	Token         string    `json:"token"`
	URL           string    `json:"url"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// RecoveryAttemptResponse describes one recovery attempt for listing.
type RecoveryAttemptResponse struct {
	AttemptID   string     `json:"attempt_id"`
	Channel     string     `json:"channel"`
	Token       string     `json:"token"`
	Status      string     `json:"status"`
	URL         string     `json:"url"`
	ExpiresAt   time.Time  `json:"expires_at"`
	OpenedAt    *time.Time `json:"opened_at,omitempty"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Envelope is the public token-resolution response shape.
type Envelope struct {
	OK    bool           `json:"ok"`
	Data  interface{}    `json:"data"`
	Error *EnvelopeError `json:"error"`
}

// EnvelopeError carries a machine-readable code alongside a message.
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
