package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendRecoveryLinkEmail(ctx context.Context, toEmail, merchantName, transactionRef, linkURL string) error {
	if merchantName == "" {
		merchantName = "your merchant"
	}
	subject := fmt.Sprintf(subjectRecoveryLinkFmt, merchantName)
	content, err := renderEmailTemplate("recovery_link.html", recoveryLinkEmailData{
		baseEmailData: baseEmailData{
			Title:    "Complete your payment",
			Heading:  "Your payment didn't go through",
			CTALabel: "Retry payment",
			CTAURL:   linkURL,
		},
		MerchantName:   merchantName,
		TransactionRef: transactionRef,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendRetryReminderEmail(ctx context.Context, toEmail, merchantName, transactionRef, linkURL string) error {
	if merchantName == "" {
		merchantName = "your merchant"
	}
	subject := fmt.Sprintf(subjectRetryReminderFmt, merchantName)
	content, err := renderEmailTemplate("retry_reminder.html", retryReminderEmailData{
		baseEmailData: baseEmailData{
			Title:    "Payment reminder",
			Heading:  "Your payment is still pending",
			CTALabel: "Complete payment",
			CTAURL:   linkURL,
		},
		MerchantName:   merchantName,
		TransactionRef: transactionRef,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

var _ Sender = (*SMTPSender)(nil)
