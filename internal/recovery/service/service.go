// Package service implements failure event ingestion, classification and
// recovery link lifecycle management.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tinko-recovery-backend/internal/auth/token"
	"tinko-recovery-backend/internal/events"
	"tinko-recovery-backend/internal/recovery/repository"
	"tinko-recovery-backend/platform/apperr"
	"tinko-recovery-backend/platform/config"
	"tinko-recovery-backend/platform/logger"
)

// recoveryTokenBytes sizes the URL-safe link token (~22 chars encoded).
const recoveryTokenBytes = 16

// Scheduler enqueues delayed retry reminders. The asynq-backed implementation
// lives in the scheduler module; a nil Scheduler disables reminders.
type Scheduler interface {
	EnqueueRetryReminder(ctx context.Context, attemptID uuid.UUID, runAt time.Time) error
}

type Service struct {
	repo      *repository.Repository
	cfg       config.RecoveryConfig
	bus       events.Bus
	scheduler Scheduler
	log       *logger.Logger
}

func NewService(repo *repository.Repository, cfg config.RecoveryConfig, bus events.Bus, scheduler Scheduler, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, scheduler: scheduler, log: log}
}

// IngestInput is a gateway failure notification.
type IngestInput struct {
	TransactionRef string
	AmountCents    *int64
	Currency       *string
	CustomerEmail  *string
	CustomerPhone  *string
	Gateway        *string
	FailureReason  string
	OccurredAt     *time.Time
}

// IngestResult pairs the stored event with its classification.
type IngestResult struct {
	Event          repository.FailureEvent
	TransactionRef string
	Classification Classification
	Replayed       bool
}

// IngestFailureEvent upserts the transaction, classifies the failure and
// stores the event. A replayed Idempotency-Key returns the original event
// without writing anything. orgID, when present, attaches the transaction to
// the authenticated caller's organization.
func (s *Service) IngestFailureEvent(ctx context.Context, input IngestInput, orgID *uuid.UUID, idempotencyKey *string) (IngestResult, error) {
	if idempotencyKey != nil && *idempotencyKey != "" {
		existing, err := s.repo.GetFailureEventByIdempotencyKey(ctx, *idempotencyKey)
		if err == nil {
			var code string
			if existing.Gateway != nil {
				code = *existing.Gateway
			}
			return IngestResult{
				Event:          existing,
				TransactionRef: input.TransactionRef,
				Classification: ClassifyEvent(code, existing.Reason),
				Replayed:       true,
			}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return IngestResult{}, err
		}
	} else {
		idempotencyKey = nil
	}

	txn, err := s.repo.UpsertTransaction(ctx, input.TransactionRef, input.AmountCents, input.Currency, input.CustomerEmail, input.CustomerPhone, orgID)
	if err != nil {
		s.log.DatabaseError("recovery.upsert_transaction", err)
		return IngestResult{}, err
	}

	var code string
	if input.Gateway != nil {
		code = *input.Gateway
	}
	classification := ClassifyEvent(code, input.FailureReason)
	category := string(classification.Category)

	event, err := s.repo.CreateFailureEvent(ctx, txn.ID, input.Gateway, input.FailureReason, &category, idempotencyKey, input.OccurredAt)
	if err != nil {
		s.log.DatabaseError("recovery.create_failure_event", err)
		return IngestResult{}, err
	}

	s.log.RecoveryEvent("payment_failure_recorded", input.TransactionRef, category)
	s.bus.Publish(ctx, events.PaymentFailureRecorded{
		BaseEvent:      events.NewBaseEvent(),
		EventID:        event.ID,
		TransactionID:  txn.ID,
		TransactionRef: txn.TransactionRef,
		Gateway:        code,
		Reason:         input.FailureReason,
		Category:       category,
	})

	return IngestResult{
		Event:          event,
		TransactionRef: txn.TransactionRef,
		Classification: classification,
		Replayed:       false,
	}, nil
}

// ListEventsByRef returns failure events for a transaction reference. An
// unknown reference yields an empty list, not an error.
func (s *Service) ListEventsByRef(ctx context.Context, ref string) ([]repository.FailureEvent, error) {
	txn, err := s.repo.GetTransactionByRef(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return []repository.FailureEvent{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repo.ListFailureEventsByTransaction(ctx, txn.ID)
}

// RecoveryLink is the issued link plus its attempt record.
type RecoveryLink struct {
	Attempt repository.RecoveryAttempt
	URL     string
}

// CreateLink issues a recovery link for a failed transaction and schedules
// the first retry reminder. Channel defaults to email.
func (s *Service) CreateLink(ctx context.Context, ref, channel string, ttl time.Duration) (RecoveryLink, error) {
	txn, err := s.repo.GetTransactionByRef(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return RecoveryLink{}, apperr.NotFound("transaction_ref not found")
	}
	if err != nil {
		return RecoveryLink{}, err
	}

	if channel == "" {
		channel = "email"
	}
	if ttl <= 0 {
		ttl = s.cfg.GetRecoveryLinkTTL()
	}

	linkToken, err := token.GenerateRandomToken(recoveryTokenBytes)
	if err != nil {
		return RecoveryLink{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	nextRetryAt := NextRetryAt(DefaultRetryPolicy, now, 0)

	attempt, err := s.repo.CreateRecoveryAttempt(ctx, txn.ID, channel, linkToken, expiresAt, DefaultRetryPolicy.MaxRetries, &nextRetryAt)
	if err != nil {
		s.log.DatabaseError("recovery.create_attempt", err)
		return RecoveryLink{}, err
	}

	url := s.LinkURL(linkToken)
	s.log.RecoveryEvent("link_created", ref, attempt.Status)

	if s.scheduler != nil {
		// Reminder delivery is best effort; link creation never fails on it.
		if err := s.scheduler.EnqueueRetryReminder(ctx, attempt.ID, nextRetryAt); err != nil {
			s.log.Warn("retry_reminder_enqueue_failed",
				"attempt_id", attempt.ID.String(),
				"error", err.Error(),
			)
		}
	}

	var customerEmail, merchantName string
	if txn.CustomerEmail != nil {
		customerEmail = *txn.CustomerEmail
	}
	if txn.OrganizationID != nil {
		if name, err := s.repo.GetOrganizationName(ctx, *txn.OrganizationID); err == nil {
			merchantName = name
		}
	}
	s.bus.Publish(ctx, events.RecoveryLinkCreated{
		BaseEvent:      events.NewBaseEvent(),
		AttemptID:      attempt.ID,
		TransactionRef: txn.TransactionRef,
		CustomerEmail:  customerEmail,
		MerchantName:   merchantName,
		URL:            url,
		ExpiresAt:      expiresAt,
	})

	return RecoveryLink{Attempt: attempt, URL: url}, nil
}

// LinkURL builds the hosted retry page URL for a token.
func (s *Service) LinkURL(token string) string {
	return fmt.Sprintf("%s/pay/retry/%s", s.cfg.GetPublicBaseURL(), token)
}

// ListAttemptsByRef returns recovery attempts for a transaction reference,
// empty when the reference is unknown.
func (s *Service) ListAttemptsByRef(ctx context.Context, ref string) ([]repository.RecoveryAttempt, error) {
	txn, err := s.repo.GetTransactionByRef(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return []repository.RecoveryAttempt{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repo.ListRecoveryAttemptsByTransaction(ctx, txn.ID)
}

// TokenState is the outcome of resolving a recovery token.
type TokenState string

const (
	TokenValid    TokenState = "valid"
	TokenNotFound TokenState = "not_found"
	TokenExpired  TokenState = "expired"
	TokenUsed     TokenState = "used"
)

// TokenResolution describes a resolved token for the public envelope API.
type TokenResolution struct {
	State   TokenState
	Attempt repository.RecoveryAttempt
}

// ResolveToken inspects a recovery token without mutating it.
func (s *Service) ResolveToken(ctx context.Context, linkToken string) (TokenResolution, error) {
	attempt, err := s.repo.GetRecoveryAttemptByToken(ctx, linkToken)
	if errors.Is(err, repository.ErrNotFound) {
		return TokenResolution{State: TokenNotFound}, nil
	}
	if err != nil {
		return TokenResolution{}, err
	}

	now := time.Now().UTC()
	switch {
	case attempt.ExpiresAt.Before(now):
		return TokenResolution{State: TokenExpired, Attempt: attempt}, nil
	case attempt.UsedAt != nil:
		return TokenResolution{State: TokenUsed, Attempt: attempt}, nil
	}
	return TokenResolution{State: TokenValid, Attempt: attempt}, nil
}

// MarkOpened records the customer opening the link. Repeat calls keep the
// first opened_at.
func (s *Service) MarkOpened(ctx context.Context, linkToken string) (TokenResolution, error) {
	resolution, err := s.ResolveToken(ctx, linkToken)
	if err != nil || resolution.State == TokenNotFound {
		return resolution, err
	}

	attempt, err := s.repo.MarkOpened(ctx, resolution.Attempt.ID, time.Now().UTC())
	if err != nil {
		return TokenResolution{}, err
	}
	s.log.RecoveryEvent("link_opened", attempt.TransactionRef, attempt.Status)
	resolution.Attempt = attempt
	return resolution, nil
}

// MarkUsed consumes the link after a successful payment retry. Only valid
// links can be used.
func (s *Service) MarkUsed(ctx context.Context, linkToken string) (TokenResolution, error) {
	resolution, err := s.ResolveToken(ctx, linkToken)
	if err != nil || resolution.State != TokenValid {
		return resolution, err
	}

	attempt, err := s.repo.MarkUsed(ctx, resolution.Attempt.ID, time.Now().UTC())
	if err != nil {
		return TokenResolution{}, err
	}
	s.log.RecoveryEvent("link_used", attempt.TransactionRef, attempt.Status)
	return TokenResolution{State: TokenUsed, Attempt: attempt}, nil
}

// RetryPageData feeds the hosted retry page template.
type RetryPageData struct {
	MerchantName   string
	AmountDisplay  string
	Currency       string
	TransactionRef string
	CustomerEmail  string
	Token          string
}

// PageData resolves a token into renderable retry page data.
func (s *Service) PageData(ctx context.Context, linkToken string) (RetryPageData, error) {
	resolution, err := s.ResolveToken(ctx, linkToken)
	if err != nil {
		return RetryPageData{}, err
	}
	switch resolution.State {
	case TokenNotFound:
		return RetryPageData{}, apperr.NotFound("invalid or unknown link")
	case TokenExpired:
		return RetryPageData{}, apperr.Gone("link has expired")
	case TokenUsed:
		return RetryPageData{}, apperr.Gone("link already used")
	}

	txn, err := s.repo.GetTransactionByRef(ctx, resolution.Attempt.TransactionRef)
	if err != nil {
		return RetryPageData{}, err
	}

	merchantName := "Merchant"
	if txn.OrganizationID != nil {
		if name, err := s.repo.GetOrganizationName(ctx, *txn.OrganizationID); err == nil {
			merchantName = name
		}
	}

	currency := "INR"
	if txn.Currency != nil {
		currency = *txn.Currency
	}
	var amountDisplay string
	if txn.AmountCents != nil {
		amountDisplay = fmt.Sprintf("%.2f", float64(*txn.AmountCents)/100)
	}
	var customerEmail string
	if txn.CustomerEmail != nil {
		customerEmail = *txn.CustomerEmail
	}

	return RetryPageData{
		MerchantName:   merchantName,
		AmountDisplay:  amountDisplay,
		Currency:       currency,
		TransactionRef: txn.TransactionRef,
		CustomerEmail:  customerEmail,
		Token:          linkToken,
	}, nil
}

// ScheduleNextRetry advances the attempt's retry counter. Used by the worker
// after a reminder fires.
func (s *Service) ScheduleNextRetry(ctx context.Context, attemptID uuid.UUID) (*time.Time, error) {
	attempt, err := s.repo.GetRecoveryAttempt(ctx, attemptID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("recovery attempt not found")
	}
	if err != nil {
		return nil, err
	}
	if attempt.UsedAt != nil || attempt.RetryCount >= attempt.MaxRetries {
		return nil, nil
	}

	next := NextRetryAt(DefaultRetryPolicy, time.Now().UTC(), attempt.RetryCount+1)
	if err := s.repo.ScheduleNextRetry(ctx, attempt.ID, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &next, nil
}

// GetAttemptByID fetches an attempt for the worker's reminder task.
// CompletePayment closes all open recovery attempts for a transaction after
// a gateway reports it paid. Returns the number of attempts closed; an
// unknown reference closes nothing and is not an error, since gateways
// deliver webhooks for payments outside any recovery flow.
func (s *Service) CompletePayment(ctx context.Context, ref string) (int64, error) {
	txn, err := s.repo.GetTransactionByRef(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	closed, err := s.repo.MarkAttemptsUsedByTransaction(ctx, txn.ID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if closed > 0 {
		s.log.RecoveryEvent("payment_confirmed", ref, "used")
	}
	return closed, nil
}

func (s *Service) GetAttemptByID(ctx context.Context, attemptID uuid.UUID) (repository.RecoveryAttempt, error) {
	attempt, err := s.repo.GetRecoveryAttempt(ctx, attemptID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.RecoveryAttempt{}, apperr.NotFound("recovery attempt not found")
	}
	return attempt, err
}
