package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/yhamdan/ardsouq/internal/domain"
)

// ListingRepo is the quota-bound listing collection, parameterized by
// listing kind. Both land listings and contractor profiles live in one table
// distinguished by the kind column, so reconciliation code is written once.
type ListingRepo struct {
	db *sql.DB
}

const listingColumns = `id, owner_id, kind, title, city, price, photos, description,
	status, review_note, is_suspended, suspended_reason, approved_at, rejected_at,
	deleted_at, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (*domain.Listing, error) {
	var (
		l          domain.Listing
		photos     pq.StringArray
		approvedAt sql.NullTime
		rejectedAt sql.NullTime
		deletedAt  sql.NullTime
	)
	err := row.Scan(&l.ID, &l.OwnerID, &l.Kind, &l.Title, &l.City, &l.Price, &photos,
		&l.Description, &l.Status, &l.ReviewNote, &l.IsSuspended, &l.SuspendedReason,
		&approvedAt, &rejectedAt, &deletedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Photos = photos
	l.ApprovedAt = fromNullTime(approvedAt)
	l.RejectedAt = fromNullTime(rejectedAt)
	l.DeletedAt = fromNullTime(deletedAt)
	return &l, nil
}

// Create inserts a new pending listing.
func (r *ListingRepo) Create(ctx context.Context, params domain.CreateListingParams) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO listings (id, owner_id, kind, title, city, price, photos, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+listingColumns,
		uuid.New(), params.OwnerID, params.Kind, params.Title, params.City,
		params.Price, pq.Array(params.Photos), params.Description, domain.StatusPending)

	listing, err := scanListing(row)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return listing, nil
}

// GetByID fetches a listing by id. Returns sql.ErrNoRows when absent.
func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	return scanListing(row)
}

// Update applies an owner edit and resets the listing to pending review.
func (r *ListingRepo) Update(ctx context.Context, params domain.UpdateListingParams) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE listings
		SET title = $3, city = $4, price = $5, photos = $6, description = $7,
		    status = $8, review_note = '', approved_at = NULL, rejected_at = NULL,
		    updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
		RETURNING `+listingColumns,
		params.ID, params.OwnerID, params.Title, params.City, params.Price,
		pq.Array(params.Photos), params.Description, domain.StatusPending)

	listing, err := scanListing(row)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// CountOwned counts the account's non-deleted listings of a kind whose
// status is in the given set. This is the quota usage query.
func (r *ListingRepo) CountOwned(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind, statuses []domain.ListingStatus) (int, error) {
	set := make([]string, len(statuses))
	for i, s := range statuses {
		set[i] = string(s)
	}

	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM listings
		WHERE owner_id = $1 AND kind = $2 AND deleted_at IS NULL AND status = ANY($3)`,
		ownerID, kind, pq.Array(set)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count owned listings: %w", err)
	}
	return count, nil
}

// FindOwned returns all non-deleted listings of a kind for an account,
// newest first. Partition ordering is finalized in memory so the tie-break
// rules do not depend on store ordering.
func (r *ListingRepo) FindOwned(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE owner_id = $1 AND kind = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC`, ownerID, kind)
	if err != nil {
		return nil, fmt.Errorf("find owned listings: %w", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

// ListPendingOwnedOldestFirst returns the account's pending non-deleted
// listings of a kind, oldest first. The expiry fast path rejects these from
// the back of the queue once Basic headroom is exhausted.
func (r *ListingRepo) ListPendingOwnedOldestFirst(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE owner_id = $1 AND kind = $2 AND deleted_at IS NULL AND status = $3
		ORDER BY created_at`, ownerID, kind, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending listings: %w", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

// SetStatus records a review decision with its note and timestamp.
func (r *ListingRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, reviewNote string, at time.Time) error {
	var approvedAt, rejectedAt sql.NullTime
	switch status {
	case domain.StatusApproved:
		approvedAt = sql.NullTime{Time: at, Valid: true}
	case domain.StatusRejected:
		rejectedAt = sql.NullTime{Time: at, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET status = $2, review_note = $3, approved_at = $4, rejected_at = $5, updated_at = now()
		WHERE id = $1`,
		id, status, reviewNote, approvedAt, rejectedAt)
	if err != nil {
		return fmt.Errorf("set listing status: %w", err)
	}
	return nil
}

// BulkSetSuspension toggles visibility for a set of listings. Suspension is
// reversible; it never touches status or deleted_at.
func (r *ListingRepo) BulkSetSuspension(ctx context.Context, ids []uuid.UUID, suspended bool, reason domain.SuspendReason) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET is_suspended = $2, suspended_reason = $3, updated_at = now()
		WHERE id = ANY($1::uuid[])`,
		pq.Array(idStrings(ids)), suspended, reason)
	if err != nil {
		return fmt.Errorf("bulk set suspension: %w", err)
	}
	return nil
}

// BulkSoftDelete marks a set of listings permanently excluded. Soft-deleted
// listings are always suspended as well.
func (r *ListingRepo) BulkSoftDelete(ctx context.Context, ids []uuid.UUID, at time.Time, reason domain.SuspendReason) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET deleted_at = $2, is_suspended = TRUE, suspended_reason = $3, updated_at = now()
		WHERE id = ANY($1::uuid[])`,
		pq.Array(idStrings(ids)), at, reason)
	if err != nil {
		return fmt.Errorf("bulk soft delete: %w", err)
	}
	return nil
}

// SoftDeleteAllOwned soft-deletes every non-deleted listing of every kind the
// account owns. Used by the account deletion cascade.
func (r *ListingRepo) SoftDeleteAllOwned(ctx context.Context, ownerID uuid.UUID, at time.Time, reason domain.SuspendReason) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET deleted_at = $2, is_suspended = TRUE, suspended_reason = $3, updated_at = now()
		WHERE owner_id = $1 AND deleted_at IS NULL`,
		ownerID, at, reason)
	if err != nil {
		return fmt.Errorf("soft delete owned listings: %w", err)
	}
	return nil
}

func collectListings(rows *sql.Rows) ([]domain.Listing, error) {
	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
