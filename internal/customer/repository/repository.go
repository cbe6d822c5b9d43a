package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")
var ErrSlugTaken = errors.New("slug taken")
var ErrDuplicateRef = errors.New("duplicate transaction ref")

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// DBTX lets repository methods run against either the pool or a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for transaction management in the service layer.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

type Organization struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	IsActive       bool
	Website        *string
	PaymentGateway *string
	MonthlyVolume  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
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
	UpdatedAt      time.Time
}

const orgColumns = `id, name, slug, is_active, website, payment_gateway, monthly_volume, created_at, updated_at`

func scanOrganization(row pgx.Row) (Organization, error) {
	var org Organization
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.IsActive,
		&org.Website,
		&org.PaymentGateway,
		&org.MonthlyVolume,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	return org, err
}

// SlugExists reports whether any organization already holds the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM organizations WHERE slug = $1)
  `, slug).Scan(&exists)
	return exists, err
}

// CreateOrganization inserts an organization row. The slug column carries a
// unique constraint; a lost race surfaces as ErrSlugTaken so the caller can
// retry with the next suffix.
func (r *Repository) CreateOrganization(ctx context.Context, q DBTX, name, slug string, website, paymentGateway, monthlyVolume *string) (Organization, error) {
	org, err := scanOrganization(q.QueryRow(ctx, `
    INSERT INTO organizations (name, slug, website, payment_gateway, monthly_volume)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING `+orgColumns+`
  `, name, slug, website, paymentGateway, monthlyVolume))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Organization{}, ErrSlugTaken
		}
		return Organization{}, err
	}
	return org, nil
}

func (r *Repository) GetOrganization(ctx context.Context, organizationID uuid.UUID) (Organization, error) {
	org, err := scanOrganization(r.pool.QueryRow(ctx, `
    SELECT `+orgColumns+`
    FROM organizations
    WHERE id = $1
  `, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	return org, err
}

func (r *Repository) UpdateOrganizationProfile(ctx context.Context, organizationID uuid.UUID, website, monthlyVolume *string) (Organization, error) {
	org, err := scanOrganization(r.pool.QueryRow(ctx, `
    UPDATE organizations
    SET website        = COALESCE($2, website),
        monthly_volume = COALESCE($3, monthly_volume),
        updated_at     = now()
    WHERE id = $1
    RETURNING `+orgColumns+`
  `, organizationID, website, monthlyVolume))
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	return org, err
}

// LinkUserToOrganization sets the user's organization reference and profile
// fields captured during onboarding.
func (r *Repository) LinkUserToOrganization(ctx context.Context, q DBTX, userID, organizationID uuid.UUID, phone *string) error {
	tag, err := q.Exec(ctx, `
    UPDATE users
    SET org_id = $2, phone = COALESCE($3, phone), updated_at = now()
    WHERE id = $1
  `, userID, organizationID, phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetUserOrganizationID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	var orgID *uuid.UUID
	err := r.pool.QueryRow(ctx, `
    SELECT org_id
    FROM users
    WHERE id = $1
  `, userID).Scan(&orgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return orgID, err
}

func (r *Repository) UpdateUserProfile(ctx context.Context, userID uuid.UUID, fullName, phone *string) error {
	tag, err := r.pool.Exec(ctx, `
    UPDATE users
    SET full_name  = COALESCE($2, full_name),
        phone      = COALESCE($3, phone),
        updated_at = now()
    WHERE id = $1
  `, userID, fullName, phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OrganizationStats holds aggregate counts for an organization.
type OrganizationStats struct {
	TotalTransactions int64
	TotalActiveUsers  int64
}

func (r *Repository) GetOrganizationStats(ctx context.Context, organizationID uuid.UUID) (OrganizationStats, error) {
	var stats OrganizationStats
	err := r.pool.QueryRow(ctx, `
    SELECT
      (SELECT count(*) FROM transactions WHERE org_id = $1),
      (SELECT count(*) FROM users WHERE org_id = $1 AND is_active)
  `, organizationID).Scan(&stats.TotalTransactions, &stats.TotalActiveUsers)
	return stats, err
}

const txnColumns = `id, transaction_ref, amount_cents, currency, customer_email, customer_phone, org_id, created_at, updated_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var txn Transaction
	err := row.Scan(
		&txn.ID,
		&txn.TransactionRef,
		&txn.AmountCents,
		&txn.Currency,
		&txn.CustomerEmail,
		&txn.CustomerPhone,
		&txn.OrganizationID,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	return txn, err
}

func (r *Repository) CreateTransaction(ctx context.Context, organizationID uuid.UUID, ref string, amountCents int64, currency string, customerEmail, customerPhone *string) (Transaction, error) {
	txn, err := scanTransaction(r.pool.QueryRow(ctx, `
    INSERT INTO transactions (transaction_ref, amount_cents, currency, customer_email, customer_phone, org_id)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING `+txnColumns+`
  `, ref, amountCents, currency, customerEmail, customerPhone, organizationID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Transaction{}, ErrDuplicateRef
		}
		return Transaction{}, err
	}
	return txn, nil
}

func (r *Repository) ListTransactions(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT `+txnColumns+`
    FROM transactions
    WHERE org_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

func (r *Repository) GetTransactionByRef(ctx context.Context, organizationID uuid.UUID, ref string) (Transaction, error) {
	txn, err := scanTransaction(r.pool.QueryRow(ctx, `
    SELECT `+txnColumns+`
    FROM transactions
    WHERE org_id = $1 AND transaction_ref = $2
  `, organizationID, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	return txn, err
}
