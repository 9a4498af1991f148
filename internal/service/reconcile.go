// Package service contains the business logic layer.
//
// This file implements the suspension reconciler: it partitions an account's
// listings against a tier cap and applies the partition as bulk suspension
// (or, for the sweep's final reversion, bulk soft-deletion). Reconciliation
// never rejects or resurrects anything; it only toggles visibility or marks
// permanent removal, and re-running it converges to the same end state.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
	"github.com/yhamdan/ardsouq/internal/metrics"
)

// ReconcileService brings listing visibility back into agreement with the
// account's current entitlement. Must be invoked after every tier change for
// every listing kind the account owns.
type ReconcileService interface {
	// Reconcile suspends the account's listings of a kind beyond the tier
	// cap (reason "limit") and unsuspends the kept set. Idempotent.
	Reconcile(ctx context.Context, accountID uuid.UUID, tier domain.Tier, kind domain.ListingKind) error

	// ReconcileAll runs Reconcile for every listing kind.
	ReconcileAll(ctx context.Context, accountID uuid.UUID, tier domain.Tier) error

	// SoftDeleteOverflow applies the same partition but permanently removes
	// the overflow (soft delete, reason "expired") instead of suspending it.
	// Used by the sweep once the grace window has lapsed.
	SoftDeleteOverflow(ctx context.Context, accountID uuid.UUID, tier domain.Tier, kind domain.ListingKind) error
}

type reconcileService struct {
	listings ListingStore
	plans    PlanService
	logger   *slog.Logger
	now      func() time.Time
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(listings ListingStore, plans PlanService, logger *slog.Logger) ReconcileService {
	return &reconcileService{
		listings: listings,
		plans:    plans,
		logger:   logger,
		now:      time.Now,
	}
}

// Reconcile suspends listings beyond the tier cap and unsuspends the rest.
func (s *reconcileService) Reconcile(ctx context.Context, accountID uuid.UUID, tier domain.Tier, kind domain.ListingKind) error {
	const op = "ReconcileService.Reconcile"

	keep, overflow, err := s.partition(ctx, accountID, tier, kind)
	if err != nil {
		s.logger.Error("failed to partition listings", "error", err, "op", op, "account_id", accountID, "kind", kind)
		return domain.Internal(err, op, "Failed to load listings")
	}

	// Unsuspend the kept set first so a crash between the two writes errs
	// toward visibility the account is entitled to.
	if err := s.listings.BulkSetSuspension(ctx, listingIDs(keep), false, domain.SuspendReasonNone); err != nil {
		s.logger.Error("failed to unsuspend kept listings", "error", err, "op", op, "account_id", accountID, "kind", kind)
		return domain.Internal(err, op, "Failed to update listings")
	}
	if err := s.listings.BulkSetSuspension(ctx, listingIDs(overflow), true, domain.SuspendReasonLimit); err != nil {
		s.logger.Error("failed to suspend overflow listings", "error", err, "op", op, "account_id", accountID, "kind", kind)
		return domain.Internal(err, op, "Failed to update listings")
	}

	if len(overflow) > 0 {
		metrics.ListingsSuspendedTotal.WithLabelValues(string(kind)).Add(float64(len(overflow)))
		s.logger.Info("listings suspended over tier cap",
			"account_id", accountID,
			"kind", kind,
			"tier", tier,
			"kept", len(keep),
			"suspended", len(overflow),
		)
	}
	return nil
}

// ReconcileAll runs Reconcile for every listing kind.
func (s *reconcileService) ReconcileAll(ctx context.Context, accountID uuid.UUID, tier domain.Tier) error {
	for _, kind := range domain.Kinds {
		if err := s.Reconcile(ctx, accountID, tier, kind); err != nil {
			return err
		}
	}
	return nil
}

// SoftDeleteOverflow permanently removes the overflow instead of suspending.
func (s *reconcileService) SoftDeleteOverflow(ctx context.Context, accountID uuid.UUID, tier domain.Tier, kind domain.ListingKind) error {
	const op = "ReconcileService.SoftDeleteOverflow"

	keep, overflow, err := s.partition(ctx, accountID, tier, kind)
	if err != nil {
		s.logger.Error("failed to partition listings", "error", err, "op", op, "account_id", accountID, "kind", kind)
		return domain.Internal(err, op, "Failed to load listings")
	}

	if err := s.listings.BulkSoftDelete(ctx, listingIDs(overflow), s.now(), domain.SuspendReasonExpired); err != nil {
		s.logger.Error("failed to soft-delete overflow listings", "error", err, "op", op, "account_id", accountID, "kind", kind)
		return domain.Internal(err, op, "Failed to update listings")
	}
	if err := s.listings.BulkSetSuspension(ctx, listingIDs(keep), false, domain.SuspendReasonNone); err != nil {
		s.logger.Error("failed to unsuspend kept listings", "error", err, "op", op, "account_id", accountID, "kind", kind)
		return domain.Internal(err, op, "Failed to update listings")
	}

	if len(overflow) > 0 {
		metrics.ListingsSoftDeletedTotal.WithLabelValues(string(domain.SuspendReasonExpired)).Add(float64(len(overflow)))
		s.logger.Info("overflow listings soft-deleted after grace",
			"account_id", accountID,
			"kind", kind,
			"kept", len(keep),
			"deleted", len(overflow),
		)
	}
	return nil
}

// partition fetches the account's non-deleted listings of a kind and splits
// them against the tier cap in the deterministic reconcile order.
func (s *reconcileService) partition(ctx context.Context, accountID uuid.UUID, tier domain.Tier, kind domain.ListingKind) (keep, overflow []domain.Listing, err error) {
	listings, err := s.listings.FindOwned(ctx, accountID, kind)
	if err != nil {
		return nil, nil, err
	}
	limit := s.plans.Config(ctx).LimitFor(tier)
	keep, overflow = domain.PartitionByLimit(listings, limit)
	return keep, overflow, nil
}

func listingIDs(listings []domain.Listing) []uuid.UUID {
	ids := make([]uuid.UUID, len(listings))
	for i := range listings {
		ids[i] = listings[i].ID
	}
	return ids
}
