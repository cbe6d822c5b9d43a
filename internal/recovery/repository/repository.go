package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Transaction struct {
	ID             uuid.UUID
	TransactionRef string
	AmountCents    *int64
	Currency       *string
	CustomerEmail  *string
	CustomerPhone  *string
	OrganizationID *uuid.UUID
	CreatedAt      time.Time
}

type FailureEvent struct {
	ID             uuid.UUID
	TransactionID  uuid.UUID
	Gateway        *string
	Reason         string
	Category       *string
	IdempotencyKey *string
	OccurredAt     *time.Time
	CreatedAt      time.Time
}

type RecoveryAttempt struct {
	ID             uuid.UUID
	TransactionID  uuid.UUID
	Channel        string
	Token          string
	Status         string
	ExpiresAt      time.Time
	OpenedAt       *time.Time
	UsedAt         *time.Time
	RetryCount     int
	MaxRetries     int
	NextRetryAt    *time.Time
	CreatedAt      time.Time
	TransactionRef string
}

// GetTransactionByRef resolves a transaction by its external reference.
func (r *Repository) GetTransactionByRef(ctx context.Context, ref string) (Transaction, error) {
	var txn Transaction
	err := r.pool.QueryRow(ctx, `
    SELECT id, transaction_ref, amount_cents, currency, customer_email, customer_phone, org_id, created_at
    FROM transactions
    WHERE transaction_ref = $1
  `, ref).Scan(
		&txn.ID,
		&txn.TransactionRef,
		&txn.AmountCents,
		&txn.Currency,
		&txn.CustomerEmail,
		&txn.CustomerPhone,
		&txn.OrganizationID,
		&txn.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	return txn, err
}

// UpsertTransaction creates or refreshes the transaction row for an ingested
// failure event. Amount and currency only overwrite when provided; a non-nil
// orgID attaches the transaction to the caller's organization.
func (r *Repository) UpsertTransaction(ctx context.Context, ref string, amountCents *int64, currency, customerEmail, customerPhone *string, orgID *uuid.UUID) (Transaction, error) {
	var txn Transaction
	err := r.pool.QueryRow(ctx, `
    INSERT INTO transactions (transaction_ref, amount_cents, currency, customer_email, customer_phone, org_id)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (transaction_ref) DO UPDATE SET
      amount_cents   = COALESCE(EXCLUDED.amount_cents, transactions.amount_cents),
      currency       = COALESCE(EXCLUDED.currency, transactions.currency),
      customer_email = COALESCE(EXCLUDED.customer_email, transactions.customer_email),
      customer_phone = COALESCE(EXCLUDED.customer_phone, transactions.customer_phone),
      org_id         = COALESCE(EXCLUDED.org_id, transactions.org_id),
      updated_at     = now()
    RETURNING id, transaction_ref, amount_cents, currency, customer_email, customer_phone, org_id, created_at
  `, ref, amountCents, currency, customerEmail, customerPhone, orgID).Scan(
		&txn.ID,
		&txn.TransactionRef,
		&txn.AmountCents,
		&txn.Currency,
		&txn.CustomerEmail,
		&txn.CustomerPhone,
		&txn.OrganizationID,
		&txn.CreatedAt,
	)
	return txn, err
}

const failureEventColumns = `id, transaction_id, gateway, reason, category, idempotency_key, occurred_at, created_at`

func scanFailureEvent(row pgx.Row) (FailureEvent, error) {
	var fe FailureEvent
	err := row.Scan(
		&fe.ID,
		&fe.TransactionID,
		&fe.Gateway,
		&fe.Reason,
		&fe.Category,
		&fe.IdempotencyKey,
		&fe.OccurredAt,
		&fe.CreatedAt,
	)
	return fe, err
}

// GetFailureEventByIdempotencyKey returns a previously ingested event for
// replay detection.
func (r *Repository) GetFailureEventByIdempotencyKey(ctx context.Context, key string) (FailureEvent, error) {
	fe, err := scanFailureEvent(r.pool.QueryRow(ctx, `
    SELECT `+failureEventColumns+`
    FROM failure_events
    WHERE idempotency_key = $1
  `, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return FailureEvent{}, ErrNotFound
	}
	return fe, err
}

func (r *Repository) CreateFailureEvent(ctx context.Context, transactionID uuid.UUID, gateway *string, reason string, category *string, idempotencyKey *string, occurredAt *time.Time) (FailureEvent, error) {
	return scanFailureEvent(r.pool.QueryRow(ctx, `
    INSERT INTO failure_events (transaction_id, gateway, reason, category, idempotency_key, occurred_at)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING `+failureEventColumns+`
  `, transactionID, gateway, reason, category, idempotencyKey, occurredAt))
}

// ListFailureEventsByTransaction returns events newest first.
func (r *Repository) ListFailureEventsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]FailureEvent, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT `+failureEventColumns+`
    FROM failure_events
    WHERE transaction_id = $1
    ORDER BY created_at DESC
  `, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]FailureEvent, 0)
	for rows.Next() {
		fe, err := scanFailureEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, fe)
	}
	return events, rows.Err()
}

const attemptColumns = `a.id, a.transaction_id, a.channel, a.token, a.status, a.expires_at, a.opened_at, a.used_at, a.retry_count, a.max_retries, a.next_retry_at, a.created_at, t.transaction_ref`

func scanAttempt(row pgx.Row) (RecoveryAttempt, error) {
	var a RecoveryAttempt
	err := row.Scan(
		&a.ID,
		&a.TransactionID,
		&a.Channel,
		&a.Token,
		&a.Status,
		&a.ExpiresAt,
		&a.OpenedAt,
		&a.UsedAt,
		&a.RetryCount,
		&a.MaxRetries,
		&a.NextRetryAt,
		&a.CreatedAt,
		&a.TransactionRef,
	)
	return a, err
}

func (r *Repository) CreateRecoveryAttempt(ctx context.Context, transactionID uuid.UUID, channel, token string, expiresAt time.Time, maxRetries int, nextRetryAt *time.Time) (RecoveryAttempt, error) {
	var attemptID uuid.UUID
	err := r.pool.QueryRow(ctx, `
    INSERT INTO recovery_attempts (transaction_id, channel, token, status, expires_at, max_retries, next_retry_at)
    VALUES ($1, $2, $3, 'created', $4, $5, $6)
    RETURNING id
  `, transactionID, channel, token, expiresAt, maxRetries, nextRetryAt).Scan(&attemptID)
	if err != nil {
		return RecoveryAttempt{}, err
	}
	return r.GetRecoveryAttempt(ctx, attemptID)
}

func (r *Repository) GetRecoveryAttempt(ctx context.Context, attemptID uuid.UUID) (RecoveryAttempt, error) {
	attempt, err := scanAttempt(r.pool.QueryRow(ctx, `
    SELECT `+attemptColumns+`
    FROM recovery_attempts a
    JOIN transactions t ON t.id = a.transaction_id
    WHERE a.id = $1
  `, attemptID))
	if errors.Is(err, pgx.ErrNoRows) {
		return RecoveryAttempt{}, ErrNotFound
	}
	return attempt, err
}

func (r *Repository) GetRecoveryAttemptByToken(ctx context.Context, token string) (RecoveryAttempt, error) {
	attempt, err := scanAttempt(r.pool.QueryRow(ctx, `
    SELECT `+attemptColumns+`
    FROM recovery_attempts a
    JOIN transactions t ON t.id = a.transaction_id
    WHERE a.token = $1
  `, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return RecoveryAttempt{}, ErrNotFound
	}
	return attempt, err
}

// ListRecoveryAttemptsByTransaction returns attempts newest first.
func (r *Repository) ListRecoveryAttemptsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]RecoveryAttempt, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT `+attemptColumns+`
    FROM recovery_attempts a
    JOIN transactions t ON t.id = a.transaction_id
    WHERE a.transaction_id = $1
    ORDER BY a.created_at DESC
  `, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]RecoveryAttempt, 0)
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// MarkOpened sets opened_at once and flips a created attempt to opened.
// Replays are no-ops.
func (r *Repository) MarkOpened(ctx context.Context, attemptID uuid.UUID, now time.Time) (RecoveryAttempt, error) {
	_, err := r.pool.Exec(ctx, `
    UPDATE recovery_attempts
    SET opened_at = COALESCE(opened_at, $2),
        status    = CASE WHEN status = 'created' THEN 'opened' ELSE status END
    WHERE id = $1
  `, attemptID, now)
	if err != nil {
		return RecoveryAttempt{}, err
	}
	return r.GetRecoveryAttempt(ctx, attemptID)
}

// MarkUsed stamps the attempt as used.
func (r *Repository) MarkUsed(ctx context.Context, attemptID uuid.UUID, now time.Time) (RecoveryAttempt, error) {
	_, err := r.pool.Exec(ctx, `
    UPDATE recovery_attempts
    SET used_at = COALESCE(used_at, $2),
        status  = 'used'
    WHERE id = $1
  `, attemptID, now)
	if err != nil {
		return RecoveryAttempt{}, err
	}
	return r.GetRecoveryAttempt(ctx, attemptID)
}

// ScheduleNextRetry bumps the retry counter and records when the next
// reminder should fire.
func (r *Repository) ScheduleNextRetry(ctx context.Context, attemptID uuid.UUID, nextRetryAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
    UPDATE recovery_attempts
    SET retry_count   = retry_count + 1,
        next_retry_at = $2
    WHERE id = $1 AND retry_count < max_retries
  `, attemptID, nextRetryAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAttemptsUsedByTransaction closes every open attempt for a transaction
// and returns how many were closed. Used when a gateway confirms payment
// outside the hosted retry page.
func (r *Repository) MarkAttemptsUsedByTransaction(ctx context.Context, transactionID uuid.UUID, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
    UPDATE recovery_attempts
    SET used_at       = $2,
        status        = 'used',
        next_retry_at = NULL
    WHERE transaction_id = $1 AND used_at IS NULL
  `, transactionID, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetOrganizationName looks up the merchant name for a recovery page.
func (r *Repository) GetOrganizationName(ctx context.Context, organizationID uuid.UUID) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `
    SELECT name FROM organizations WHERE id = $1
  `, organizationID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, err
}
