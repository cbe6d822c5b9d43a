package exports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRow is one line of the transaction export, joined with the
// latest classified failure event.
type TransactionRow struct {
	TransactionRef  string
	AmountCents     *int64
	Currency        *string
	CustomerEmail   *string
	CustomerPhone   *string
	FailureCategory *string
	FailureReason   *string
	FailureCount    int64
	CreatedAt       time.Time
}

// RecoveryRow is one line of the recovery attempt export.
type RecoveryRow struct {
	TransactionRef string
	Channel        string
	Status         string
	RetryCount     int
	MaxRetries     int
	CreatedAt      time.Time
	OpenedAt       *time.Time
	UsedAt         *time.Time
	ExpiresAt      time.Time
	NextRetryAt    *time.Time
}

// Repository provides read access for export queries.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListTransactionRows returns the organization's transactions within the
// date range, newest first. Nil bounds leave that side open.
func (r *Repository) ListTransactionRows(ctx context.Context, orgID uuid.UUID, from, to *time.Time) ([]TransactionRow, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT t.transaction_ref,
           t.amount_cents,
           t.currency,
           t.customer_email,
           t.customer_phone,
           fe.category,
           fe.reason,
           (SELECT COUNT(*) FROM failure_events WHERE transaction_id = t.id),
           t.created_at
    FROM transactions t
    LEFT JOIN LATERAL (
        SELECT category, reason
        FROM failure_events
        WHERE transaction_id = t.id
        ORDER BY created_at DESC
        LIMIT 1
    ) fe ON TRUE
    WHERE t.org_id = $1
      AND ($2::timestamptz IS NULL OR t.created_at >= $2)
      AND ($3::timestamptz IS NULL OR t.created_at < $3)
    ORDER BY t.created_at DESC
  `, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TransactionRow
	for rows.Next() {
		var row TransactionRow
		if err := rows.Scan(
			&row.TransactionRef,
			&row.AmountCents,
			&row.Currency,
			&row.CustomerEmail,
			&row.CustomerPhone,
			&row.FailureCategory,
			&row.FailureReason,
			&row.FailureCount,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ListRecoveryRows returns the organization's recovery attempts within the
// date range, newest first.
func (r *Repository) ListRecoveryRows(ctx context.Context, orgID uuid.UUID, from, to *time.Time) ([]RecoveryRow, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT t.transaction_ref,
           a.channel,
           a.status,
           a.retry_count,
           a.max_retries,
           a.created_at,
           a.opened_at,
           a.used_at,
           a.expires_at,
           a.next_retry_at
    FROM recovery_attempts a
    JOIN transactions t ON t.id = a.transaction_id
    WHERE t.org_id = $1
      AND ($2::timestamptz IS NULL OR a.created_at >= $2)
      AND ($3::timestamptz IS NULL OR a.created_at < $3)
    ORDER BY a.created_at DESC
  `, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RecoveryRow
	for rows.Next() {
		var row RecoveryRow
		if err := rows.Scan(
			&row.TransactionRef,
			&row.Channel,
			&row.Status,
			&row.RetryCount,
			&row.MaxRetries,
			&row.CreatedAt,
			&row.OpenedAt,
			&row.UsedAt,
			&row.ExpiresAt,
			&row.NextRetryAt,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
