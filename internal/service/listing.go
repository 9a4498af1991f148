package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
	"github.com/yhamdan/ardsouq/internal/email"
)

// ListingService handles the owner-facing listing lifecycle and the admin
// review flow. Creation is quota-gated; approval is gated again against the
// approved-only quota so the moderation queue cannot be used to exceed a cap.
type ListingService interface {
	// Create files a new listing as pending after an optimistic quota check
	// against pending + approved listings of the same kind.
	Create(ctx context.Context, params domain.CreateListingParams) (*domain.Listing, error)

	// Edit applies an owner edit and resets the listing to pending review.
	Edit(ctx context.Context, params domain.UpdateListingParams) (*domain.Listing, error)

	// Get returns a listing by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	// ListOwned returns all live listings for an owner and kind.
	ListOwned(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind) ([]domain.Listing, error)

	// Quota reports the owner's current usage against the creation quota.
	Quota(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind) (domain.QuotaResult, error)

	// Approve moves a pending listing to approved. Before admitting, the
	// owner's expiry is enforced and the approved-only quota is re-checked;
	// a full owner automatically rejects the listing instead.
	Approve(ctx context.Context, id uuid.UUID) error

	// Reject moves a pending listing to rejected with a review note.
	Reject(ctx context.Context, id uuid.UUID, note string) error
}

type listingService struct {
	listings ListingStore
	accounts AccountStore
	quota    QuotaService
	expiry   ExpiryService
	notifier email.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewListingService creates a ListingService.
func NewListingService(listings ListingStore, accounts AccountStore, quota QuotaService, expiry ExpiryService, notifier email.Notifier, logger *slog.Logger) ListingService {
	return &listingService{
		listings: listings,
		accounts: accounts,
		quota:    quota,
		expiry:   expiry,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *listingService) Create(ctx context.Context, params domain.CreateListingParams) (*domain.Listing, error) {
	const op = "ListingService.Create"

	if !params.Kind.Valid() {
		return nil, domain.Invalid(op, fmt.Sprintf("unknown listing kind %q", params.Kind))
	}
	if params.Title == "" {
		return nil, domain.Invalid(op, "title is required")
	}

	// Sequential check-then-insert; concurrent creates can briefly admit one
	// listing over the cap, which the next reconciliation corrects.
	result, err := s.quota.Check(ctx, params.OwnerID, params.Kind, domain.QuotaModeCreate)
	if err != nil {
		return nil, err
	}
	if !result.Allowed {
		return nil, domain.QuotaDenied(op, result)
	}

	listing, err := s.listings.Create(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create listing")
	}

	s.logger.Info("listing created",
		"listing_id", listing.ID,
		"owner_id", params.OwnerID,
		"kind", params.Kind,
	)
	return listing, nil
}

func (s *listingService) Edit(ctx context.Context, params domain.UpdateListingParams) (*domain.Listing, error) {
	const op = "ListingService.Edit"

	existing, err := s.listings.GetByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "listing", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to load listing")
	}
	if existing.OwnerID != params.OwnerID {
		return nil, domain.Forbidden(op, "listing belongs to another account")
	}
	if existing.IsDeleted() {
		return nil, domain.NotFound(op, "listing", params.ID.String())
	}

	listing, err := s.listings.Update(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update listing")
	}

	s.logger.Info("listing edited, returned to review queue", "listing_id", listing.ID)
	return listing, nil
}

func (s *listingService) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	const op = "ListingService.Get"

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "listing", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load listing")
	}
	return listing, nil
}

func (s *listingService) ListOwned(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind) ([]domain.Listing, error) {
	const op = "ListingService.ListOwned"

	if !kind.Valid() {
		return nil, domain.Invalid(op, fmt.Sprintf("unknown listing kind %q", kind))
	}
	listings, err := s.listings.FindOwned(ctx, ownerID, kind)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list listings")
	}
	return listings, nil
}

func (s *listingService) Quota(ctx context.Context, ownerID uuid.UUID, kind domain.ListingKind) (domain.QuotaResult, error) {
	return s.quota.Check(ctx, ownerID, kind, domain.QuotaModeCreate)
}

func (s *listingService) Approve(ctx context.Context, id uuid.UUID) error {
	const op = "ListingService.Approve"

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "listing", id.String())
		}
		return domain.Internal(err, op, "failed to load listing")
	}
	if listing.Status != domain.StatusPending {
		return domain.Conflict(op, fmt.Sprintf("listing is %s, only pending listings can be approved", listing.Status))
	}

	// Downgrade a lapsed owner before counting their quota so the approval
	// is judged against the tier they actually hold.
	if err := s.expiry.Enforce(ctx, listing.OwnerID); err != nil {
		return err
	}

	result, err := s.quota.Check(ctx, listing.OwnerID, listing.Kind, domain.QuotaModeApprove)
	if err != nil {
		return err
	}
	if !result.Allowed {
		reason := result.Reason()
		if err := s.listings.SetStatus(ctx, id, domain.StatusRejected, reason, s.now()); err != nil {
			return domain.Internal(err, op, "failed to reject listing")
		}
		s.logger.Info("approval denied, listing auto-rejected",
			"listing_id", id,
			"owner_id", listing.OwnerID,
			"reason", reason,
		)
		s.notifyRejected(ctx, listing, reason)
		return domain.QuotaDenied(op, result)
	}

	if err := s.listings.SetStatus(ctx, id, domain.StatusApproved, "", s.now()); err != nil {
		return domain.Internal(err, op, "failed to approve listing")
	}

	s.logger.Info("listing approved", "listing_id", id, "owner_id", listing.OwnerID)
	s.notifyApproved(ctx, listing)
	return nil
}

func (s *listingService) Reject(ctx context.Context, id uuid.UUID, note string) error {
	const op = "ListingService.Reject"

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "listing", id.String())
		}
		return domain.Internal(err, op, "failed to load listing")
	}
	if listing.Status != domain.StatusPending {
		return domain.Conflict(op, fmt.Sprintf("listing is %s, only pending listings can be rejected", listing.Status))
	}

	if err := s.listings.SetStatus(ctx, id, domain.StatusRejected, note, s.now()); err != nil {
		return domain.Internal(err, op, "failed to reject listing")
	}

	s.logger.Info("listing rejected", "listing_id", id, "note", note)
	s.notifyRejected(ctx, listing, note)
	return nil
}

// notifyApproved sends the approval email. Notification failures are logged
// and never surfaced to the caller.
func (s *listingService) notifyApproved(ctx context.Context, listing *domain.Listing) {
	owner, err := s.accounts.GetByID(ctx, listing.OwnerID)
	if err != nil {
		s.logger.Warn("failed to load owner for approval notice",
			"error", err, "owner_id", listing.OwnerID)
		return
	}
	if err := s.notifier.SendListingApproved(ctx, owner.Email, listing.Title); err != nil {
		s.logger.Warn("failed to send approval notice",
			"error", err, "listing_id", listing.ID)
	}
}

func (s *listingService) notifyRejected(ctx context.Context, listing *domain.Listing, reason string) {
	owner, err := s.accounts.GetByID(ctx, listing.OwnerID)
	if err != nil {
		s.logger.Warn("failed to load owner for rejection notice",
			"error", err, "owner_id", listing.OwnerID)
		return
	}
	if err := s.notifier.SendListingRejected(ctx, owner.Email, listing.Title, reason); err != nil {
		s.logger.Warn("failed to send rejection notice",
			"error", err, "listing_id", listing.ID)
	}
}
