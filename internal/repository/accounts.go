package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yhamdan/ardsouq/internal/domain"
)

// AccountRepo persists accounts and their subscription fields.
type AccountRepo struct {
	db *sql.DB
}

const accountColumns = `id, email, name, password_hash, role, tier, expires_at, grace_until, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	var (
		a          domain.Account
		expiresAt  sql.NullTime
		graceUntil sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Tier,
		&expiresAt, &graceUntil, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.ExpiresAt = fromNullTime(expiresAt)
	a.GraceUntil = fromNullTime(graceUntil)
	return &a, nil
}

// Create inserts a new Basic-tier account.
func (r *AccountRepo) Create(ctx context.Context, email, name, passwordHash string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, email, name, password_hash, role, tier)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		uuid.New(), email, name, passwordHash, domain.RoleOwner, domain.TierBasic)

	account, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

// GetByID fetches an account by id. Returns sql.ErrNoRows when absent.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByEmail fetches an account by email. Returns sql.ErrNoRows when absent.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// UpdateSubscription writes the tier, expiry and grace fields in one update.
// Callers pass the full intended state; nil pointers clear the timestamps.
func (r *AccountRepo) UpdateSubscription(ctx context.Context, id uuid.UUID, tier domain.Tier, expiresAt, graceUntil *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET tier = $2, expires_at = $3, grace_until = $4, updated_at = now()
		WHERE id = $1`,
		id, tier, toNullTime(expiresAt), toNullTime(graceUntil))
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

// ListExpiredUngraced returns accounts whose paid period has lapsed but whose
// grace window has not been opened yet (sweep phase A input).
func (r *AccountRepo) ListExpiredUngraced(ctx context.Context, now time.Time) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE expires_at IS NOT NULL AND expires_at <= $1 AND grace_until IS NULL
		ORDER BY expires_at`, now)
	if err != nil {
		return nil, fmt.Errorf("list expired accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListGraceLapsed returns accounts whose grace window has closed
// (sweep phase B input).
func (r *AccountRepo) ListGraceLapsed(ctx context.Context, now time.Time) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE grace_until IS NOT NULL AND grace_until <= $1
		ORDER BY grace_until`, now)
	if err != nil {
		return nil, fmt.Errorf("list grace-lapsed accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// Delete removes the account record itself. Owned listings are soft-deleted
// separately before this is called.
func (r *AccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func collectAccounts(rows *sql.Rows) ([]domain.Account, error) {
	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}
