// Package notification delivers customer-facing emails in response to domain
// events. Domain modules publish events and never talk to email providers
// directly.
package notification

import (
	"context"

	"tinko-recovery-backend/internal/email"
	"tinko-recovery-backend/internal/events"
	"tinko-recovery-backend/platform/logger"
)

// Module subscribes to recovery events and sends email notifications.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// NewModule creates the notification module and registers it on the bus.
func NewModule(bus events.Bus, sender email.Sender, log *logger.Logger) *Module {
	m := &Module{
		sender: sender,
		log:    log,
	}

	bus.Subscribe(events.RecoveryLinkCreated{}.EventName(), m)
	bus.Subscribe(events.RecoveryRetryDue{}.EventName(), m)
	bus.Subscribe(events.OrganizationOnboarded{}.EventName(), m)
	bus.Subscribe(events.PaymentFailureRecorded{}.EventName(), m)

	return m
}

// Handle dispatches events to their notification handlers.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.RecoveryLinkCreated:
		return m.handleRecoveryLinkCreated(ctx, e)
	case events.RecoveryRetryDue:
		return m.handleRecoveryRetryDue(ctx, e)
	case events.OrganizationOnboarded:
		m.log.Info("organization onboarded",
			"organization_id", e.OrganizationID.String(),
			"slug", e.Slug,
		)
		return nil
	case events.PaymentFailureRecorded:
		m.log.Info("payment failure recorded",
			"transaction_ref", e.TransactionRef,
			"category", e.Category,
		)
		return nil
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleRecoveryLinkCreated(ctx context.Context, e events.RecoveryLinkCreated) error {
	if e.CustomerEmail == "" {
		m.log.Debug("recovery link has no customer email, skipping",
			"attempt_id", e.AttemptID.String(),
		)
		return nil
	}

	if err := m.sender.SendRecoveryLinkEmail(ctx, e.CustomerEmail, e.MerchantName, e.TransactionRef, e.URL); err != nil {
		m.log.Error("recovery link email failed",
			"attempt_id", e.AttemptID.String(),
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (m *Module) handleRecoveryRetryDue(ctx context.Context, e events.RecoveryRetryDue) error {
	if e.CustomerEmail == "" {
		return nil
	}

	if err := m.sender.SendRetryReminderEmail(ctx, e.CustomerEmail, e.MerchantName, e.TransactionRef, e.URL); err != nil {
		m.log.Error("retry reminder email failed",
			"attempt_id", e.AttemptID.String(),
			"error", err.Error(),
		)
		return err
	}
	return nil
}

var _ events.Handler = (*Module)(nil)
