// Package service contains the business logic layer.
//
// This file implements the on-demand expiry enforcer: a fast-path guard that
// downgrades a single account the moment its paid period is observed to have
// lapsed, so stale tier data cannot be exploited to approve beyond
// entitlement. Grace handling belongs to the sweep, not to this call.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
	"github.com/yhamdan/ardsouq/internal/metrics"
)

// ExpiredReviewNote is recorded on pending listings rejected because the
// owner's subscription lapsed.
const ExpiredReviewNote = "subscription expired"

// ExpiryService downgrades accounts whose paid period has elapsed.
type ExpiryService interface {
	// Enforce is idempotent: it performs zero writes unless the account
	// holds a lapsed paid tier. Callers must invoke it before every
	// approve-mode quota check.
	Enforce(ctx context.Context, accountID uuid.UUID) error
}

type expiryService struct {
	accounts AccountStore
	listings ListingStore
	plans    PlanService
	logger   *slog.Logger
	now      func() time.Time
}

// NewExpiryService creates a new ExpiryService.
func NewExpiryService(accounts AccountStore, listings ListingStore, plans PlanService, logger *slog.Logger) ExpiryService {
	return &expiryService{
		accounts: accounts,
		listings: listings,
		plans:    plans,
		logger:   logger,
		now:      time.Now,
	}
}

// Enforce downgrades the account to Basic if its paid period has lapsed.
func (s *expiryService) Enforce(ctx context.Context, accountID uuid.UUID) error {
	const op = "ExpiryService.Enforce"

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "account", accountID.String())
		}
		s.logger.Error("failed to load account", "error", err, "op", op, "account_id", accountID)
		return domain.Internal(err, op, "Failed to load account")
	}

	now := s.now()
	if !account.SubscriptionExpired(now) {
		return nil
	}

	// Downgrade and clear the expiry. Any open grace window is left alone;
	// grace handling belongs to the sweep.
	if err := s.accounts.UpdateSubscription(ctx, accountID, domain.TierBasic, nil, account.GraceUntil); err != nil {
		s.logger.Error("failed to downgrade account", "error", err, "op", op, "account_id", accountID)
		return domain.Internal(err, op, "Failed to downgrade account")
	}

	metrics.AccountsDowngradedTotal.Inc()
	s.logger.Info("subscription expired, account downgraded",
		"account_id", accountID,
		"previous_tier", account.Tier,
		"expired_at", account.ExpiresAt,
	)

	// Reject pending listings in excess of the Basic headroom so the review
	// queue does not hold items the account can no longer have approved.
	basicLimit := s.plans.Config(ctx).LimitFor(domain.TierBasic)
	for _, kind := range domain.Kinds {
		if err := s.rejectExcessPending(ctx, accountID, kind, basicLimit, now); err != nil {
			s.logger.Error("failed to reject excess pending listings",
				"error", err, "op", op, "account_id", accountID, "kind", kind)
		}
	}

	return nil
}

// rejectExcessPending rejects the account's pending listings of a kind that
// no longer fit under the Basic cap once approved listings are counted. The
// oldest pending items keep their place in the queue.
func (s *expiryService) rejectExcessPending(ctx context.Context, accountID uuid.UUID, kind domain.ListingKind, basicLimit int, now time.Time) error {
	approved, err := s.listings.CountOwned(ctx, accountID, kind, []domain.ListingStatus{domain.StatusApproved})
	if err != nil {
		return err
	}

	headroom := basicLimit - approved
	if headroom < 0 {
		headroom = 0
	}

	pending, err := s.listings.ListPendingOwnedOldestFirst(ctx, accountID, kind)
	if err != nil {
		return err
	}
	if len(pending) <= headroom {
		return nil
	}

	for _, l := range pending[headroom:] {
		if err := s.listings.SetStatus(ctx, l.ID, domain.StatusRejected, ExpiredReviewNote, now); err != nil {
			return err
		}
	}
	return nil
}
