// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"tinko-recovery-backend/platform/events"
	"tinko-recovery-backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Customer Domain Events
// =============================================================================

// OrganizationOnboarded is published when a user completes onboarding and an
// organization has been provisioned for them.
type OrganizationOnboarded struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	Slug           string    `json:"slug"`
	UserID         uuid.UUID `json:"userId"`
}

func (e OrganizationOnboarded) EventName() string { return "customer.organization.onboarded" }

// =============================================================================
// Recovery Domain Events
// =============================================================================

// PaymentFailureRecorded is published when a payment failure event is ingested.
type PaymentFailureRecorded struct {
	BaseEvent
	EventID        uuid.UUID `json:"eventId"`
	TransactionID  uuid.UUID `json:"transactionId"`
	TransactionRef string    `json:"transactionRef"`
	Gateway        string    `json:"gateway,omitempty"`
	Reason         string    `json:"reason"`
	Category       string    `json:"category"`
}

func (e PaymentFailureRecorded) EventName() string { return "recovery.payment_failure.recorded" }

// RecoveryLinkCreated is published when a recovery link has been issued for a
// failed transaction. Notification handlers deliver it to the customer.
type RecoveryLinkCreated struct {
	BaseEvent
	AttemptID      uuid.UUID `json:"attemptId"`
	TransactionRef string    `json:"transactionRef"`
	CustomerEmail  string    `json:"customerEmail,omitempty"`
	MerchantName   string    `json:"merchantName,omitempty"`
	URL            string    `json:"url"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func (e RecoveryLinkCreated) EventName() string { return "recovery.link.created" }

// RecoveryRetryDue fires when a scheduled retry reminder comes due for an
// attempt that is still open.
type RecoveryRetryDue struct {
	BaseEvent
	AttemptID      uuid.UUID `json:"attemptId"`
	TransactionRef string    `json:"transactionRef"`
	CustomerEmail  string    `json:"customerEmail,omitempty"`
	MerchantName   string    `json:"merchantName,omitempty"`
	URL            string    `json:"url"`
	RetryCount     int       `json:"retryCount"`
}

func (e RecoveryRetryDue) EventName() string { return "recovery.retry.due" }
