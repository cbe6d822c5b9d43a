package notification

import (
	"context"
	"testing"
	"time"

	"tinko-recovery-backend/internal/events"
	"tinko-recovery-backend/platform/logger"

	"github.com/google/uuid"
)

type testSender struct {
	recoveryLinkCalls  int
	retryReminderCalls int
	lastTo             string
	lastURL            string
}

func (s *testSender) SendRecoveryLinkEmail(_ context.Context, toEmail, _, _, linkURL string) error {
	s.recoveryLinkCalls++
	s.lastTo = toEmail
	s.lastURL = linkURL
	return nil
}

func (s *testSender) SendRetryReminderEmail(_ context.Context, toEmail, _, _, linkURL string) error {
	s.retryReminderCalls++
	s.lastTo = toEmail
	s.lastURL = linkURL
	return nil
}

func newTestModule(t *testing.T) (*Module, *testSender) {
	t.Helper()
	log := logger.New("development")
	sender := &testSender{}
	return NewModule(events.NewInMemoryBus(log), sender, log), sender
}

func TestRecoveryLinkCreatedSendsEmail(t *testing.T) {
	m, sender := newTestModule(t)

	err := m.Handle(context.Background(), events.RecoveryLinkCreated{
		BaseEvent:      events.NewBaseEvent(),
		AttemptID:      uuid.New(),
		TransactionRef: "txn_123",
		CustomerEmail:  "customer@example.com",
		MerchantName:   "Acme Store",
		URL:            "https://tinko.in/pay/retry/abc",
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if sender.recoveryLinkCalls != 1 {
		t.Fatalf("expected 1 recovery link email, got %d", sender.recoveryLinkCalls)
	}
	if sender.lastTo != "customer@example.com" {
		t.Fatalf("email sent to %q", sender.lastTo)
	}
	if sender.lastURL != "https://tinko.in/pay/retry/abc" {
		t.Fatalf("email link %q", sender.lastURL)
	}
}

func TestRecoveryLinkCreatedWithoutEmailIsSkipped(t *testing.T) {
	m, sender := newTestModule(t)

	err := m.Handle(context.Background(), events.RecoveryLinkCreated{
		BaseEvent:      events.NewBaseEvent(),
		AttemptID:      uuid.New(),
		TransactionRef: "txn_123",
		URL:            "https://tinko.in/pay/retry/abc",
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if sender.recoveryLinkCalls != 0 {
		t.Fatalf("expected no email, got %d", sender.recoveryLinkCalls)
	}
}

func TestRetryDueSendsReminder(t *testing.T) {
	m, sender := newTestModule(t)

	err := m.Handle(context.Background(), events.RecoveryRetryDue{
		BaseEvent:      events.NewBaseEvent(),
		AttemptID:      uuid.New(),
		TransactionRef: "txn_456",
		CustomerEmail:  "customer@example.com",
		MerchantName:   "Acme Store",
		URL:            "https://tinko.in/pay/retry/def",
		RetryCount:     1,
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if sender.retryReminderCalls != 1 {
		t.Fatalf("expected 1 reminder email, got %d", sender.retryReminderCalls)
	}
}

func TestUnknownEventIsIgnored(t *testing.T) {
	m, _ := newTestModule(t)

	err := m.Handle(context.Background(), events.PaymentFailureRecorded{
		BaseEvent:      events.NewBaseEvent(),
		EventID:        uuid.New(),
		TransactionID:  uuid.New(),
		TransactionRef: "txn_789",
		Reason:         "network_error",
		Category:       "network",
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
}
