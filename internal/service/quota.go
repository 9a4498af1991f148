// Package service contains the business logic layer.
//
// This file implements the quota evaluator: the side-effect-free answer to
// "can this account add or approve one more listing of kind K right now?".
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
	"github.com/yhamdan/ardsouq/internal/metrics"
)

// QuotaService evaluates listing quota against the account's current tier.
type QuotaService interface {
	// Check reports whether the account may add (mode create) or have
	// approved (mode approve) one more listing of the given kind. The result
	// is a decision, not a mutation; callers act on it.
	Check(ctx context.Context, accountID uuid.UUID, kind domain.ListingKind, mode domain.QuotaMode) (domain.QuotaResult, error)
}

type quotaService struct {
	accounts AccountStore
	listings ListingStore
	plans    PlanService
	logger   *slog.Logger
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(accounts AccountStore, listings ListingStore, plans PlanService, logger *slog.Logger) QuotaService {
	return &quotaService{
		accounts: accounts,
		listings: listings,
		plans:    plans,
		logger:   logger,
	}
}

// Check evaluates current usage against the tier cap.
//
// Two concurrent calls for the same account can both observe used < limit
// and both proceed; the next reconciliation converges the overshoot. This is
// accepted, not prevented, at admission time.
func (s *quotaService) Check(ctx context.Context, accountID uuid.UUID, kind domain.ListingKind, mode domain.QuotaMode) (domain.QuotaResult, error) {
	const op = "QuotaService.Check"

	if !kind.Valid() {
		return domain.QuotaResult{}, domain.Invalid(op, "unknown listing kind")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.QuotaResult{}, domain.NotFound(op, "account", accountID.String())
		}
		s.logger.Error("failed to load account", "error", err, "op", op, "account_id", accountID)
		return domain.QuotaResult{}, domain.Internal(err, op, "Failed to load account")
	}

	limit := s.plans.Config(ctx).LimitFor(account.Tier)

	used, err := s.listings.CountOwned(ctx, accountID, kind, mode.Statuses())
	if err != nil {
		s.logger.Error("failed to count listings", "error", err, "op", op, "account_id", accountID, "kind", kind)
		return domain.QuotaResult{}, domain.Internal(err, op, "Failed to count listings")
	}

	result := domain.QuotaResult{
		Allowed: used < limit,
		Used:    used,
		Limit:   limit,
		Tier:    account.Tier,
	}

	decision := "allowed"
	if !result.Allowed {
		decision = "denied"
		s.logger.Info("quota exhausted",
			"account_id", accountID,
			"kind", kind,
			"mode", mode,
			"tier", result.Tier,
			"used", result.Used,
			"limit", result.Limit,
		)
	}
	metrics.QuotaChecksTotal.WithLabelValues(string(kind), string(mode), decision).Inc()

	return result, nil
}
