// Package email delivers transactional recovery emails over SMTP.
package email

import "context"

// Sender delivers recovery emails to end customers.
type Sender interface {
	SendRecoveryLinkEmail(ctx context.Context, toEmail, merchantName, transactionRef, linkURL string) error
	SendRetryReminderEmail(ctx context.Context, toEmail, merchantName, transactionRef, linkURL string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendRecoveryLinkEmail(ctx context.Context, toEmail, merchantName, transactionRef, linkURL string) error {
	return nil
}

func (NoopSender) SendRetryReminderEmail(ctx context.Context, toEmail, merchantName, transactionRef, linkURL string) error {
	return nil
}
