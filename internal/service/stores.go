// Package service contains the business logic layer: plan registry, quota
// evaluation, expiry enforcement, suspension reconciliation, the grace-period
// sweep and the surrounding account/listing/subscription flows.
//
// Services depend on narrow store interfaces rather than the concrete
// repository types so the state-machine logic is testable against in-memory
// fakes.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
)

// AccountStore is the persistence surface for accounts and their
// subscription fields.
type AccountStore interface {
	Create(ctx context.Context, email, name, passwordHash string) (*domain.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// UpdateSubscription writes tier, expiry and grace in one shot; nil
	// pointers clear the timestamps. Last write wins under concurrency.
	UpdateSubscription(ctx context.Context, id uuid.UUID, tier domain.Tier, expiresAt, graceUntil *time.Time) error

	ListExpiredUngraced(ctx context.Context, now time.Time) ([]domain.Account, error)
	ListGraceLapsed(ctx context.Context, now time.Time) ([]domain.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListingStore is the quota-bound listing collection, parameterized per
// listing kind.
type ListingStore interface {
	Create(ctx context.Context, params domain.CreateListingParams) (*domain.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	Update(ctx context.Context, params domain.UpdateListingParams) (*domain.Listing, error)

	CountOwned(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind, statuses []domain.ListingStatus) (int, error)
	FindOwned(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind) ([]domain.Listing, error)
	ListPendingOwnedOldestFirst(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind) ([]domain.Listing, error)

	SetStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, reviewNote string, at time.Time) error
	BulkSetSuspension(ctx context.Context, ids []uuid.UUID, suspended bool, reason domain.SuspendReason) error
	BulkSoftDelete(ctx context.Context, ids []uuid.UUID, at time.Time, reason domain.SuspendReason) error
	SoftDeleteAllOwned(ctx context.Context, ownerID uuid.UUID, at time.Time, reason domain.SuspendReason) error
}

// PlanStore is the persistence surface for the plan configuration singleton.
type PlanStore interface {
	Get(ctx context.Context) (*domain.PlanConfig, error)
	Upsert(ctx context.Context, cfg domain.PlanConfig) error
}

// SubscriptionStore is the persistence surface for subscription change
// requests.
type SubscriptionStore interface {
	Create(ctx context.Context, params domain.FileRequestParams) (*domain.SubscriptionRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SubscriptionRequest, error)
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.SubscriptionRequest, error)
	MarkApproved(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkRejected(ctx context.Context, id uuid.UUID, note string, at time.Time) error
	DeleteForAccount(ctx context.Context, accountID uuid.UUID) error
}
