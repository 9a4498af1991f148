package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
)

// SubscriptionRepo persists subscription change requests.
type SubscriptionRepo struct {
	db *sql.DB
}

const requestColumns = `id, account_id, plan, whatsapp, notes, status, review_note,
	approved_at, rejected_at, created_at`

func scanRequest(row interface{ Scan(...any) error }) (*domain.SubscriptionRequest, error) {
	var (
		req        domain.SubscriptionRequest
		approvedAt sql.NullTime
		rejectedAt sql.NullTime
	)
	err := row.Scan(&req.ID, &req.AccountID, &req.Plan, &req.WhatsApp, &req.Notes,
		&req.Status, &req.ReviewNote, &approvedAt, &rejectedAt, &req.CreatedAt)
	if err != nil {
		return nil, err
	}
	req.ApprovedAt = fromNullTime(approvedAt)
	req.RejectedAt = fromNullTime(rejectedAt)
	return &req, nil
}

// Create files a new pending request.
func (r *SubscriptionRepo) Create(ctx context.Context, params domain.FileRequestParams) (*domain.SubscriptionRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO subscription_requests (id, account_id, plan, whatsapp, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+requestColumns,
		uuid.New(), params.AccountID, params.Plan, params.WhatsApp, params.Notes,
		domain.RequestPending)

	req, err := scanRequest(row)
	if err != nil {
		return nil, fmt.Errorf("insert subscription request: %w", err)
	}
	return req, nil
}

// GetByID fetches a request. Returns sql.ErrNoRows when absent.
func (r *SubscriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SubscriptionRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM subscription_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// ListByStatus returns requests in a review state, newest first.
func (r *SubscriptionRepo) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.SubscriptionRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+requestColumns+`
		FROM subscription_requests
		WHERE status = $1
		ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list subscription requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.SubscriptionRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// MarkApproved records an approval decision.
func (r *SubscriptionRepo) MarkApproved(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscription_requests
		SET status = $2, approved_at = $3, review_note = ''
		WHERE id = $1`,
		id, domain.RequestApproved, at)
	if err != nil {
		return fmt.Errorf("mark request approved: %w", err)
	}
	return nil
}

// MarkRejected records a rejection with a review note.
func (r *SubscriptionRepo) MarkRejected(ctx context.Context, id uuid.UUID, note string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscription_requests
		SET status = $2, rejected_at = $3, review_note = $4
		WHERE id = $1`,
		id, domain.RequestRejected, at, note)
	if err != nil {
		return fmt.Errorf("mark request rejected: %w", err)
	}
	return nil
}

// DeleteForAccount removes every request an account has filed. Used by the
// account deletion cascade.
func (r *SubscriptionRepo) DeleteForAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM subscription_requests WHERE account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("delete subscription requests: %w", err)
	}
	return nil
}
