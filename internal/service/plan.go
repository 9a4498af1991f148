// Package service contains the business logic layer.
//
// This file implements the plan registry: tier caps and paid durations read
// from the configuration singleton with a silent fallback to defaults.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/yhamdan/ardsouq/internal/domain"
)

// PlanService exposes the plan configuration to the rest of the system.
type PlanService interface {
	// Config returns the current plan configuration. It never fails the
	// caller: a missing or unreadable singleton degrades to the hard-coded
	// defaults.
	Config(ctx context.Context) domain.PlanConfig

	// Update validates and writes the configuration singleton.
	Update(ctx context.Context, cfg domain.PlanConfig) error
}

type planService struct {
	store  PlanStore
	logger *slog.Logger
}

// NewPlanService creates a new PlanService.
func NewPlanService(store PlanStore, logger *slog.Logger) PlanService {
	return &planService{store: store, logger: logger}
}

// Config returns the current plan configuration, falling back to defaults.
func (s *planService) Config(ctx context.Context) domain.PlanConfig {
	cfg, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("plan config not set, using defaults")
		} else {
			s.logger.Warn("failed to read plan config, using defaults", "error", err)
		}
		return domain.DefaultPlanConfig()
	}
	return *cfg
}

// Update validates and writes the configuration singleton.
func (s *planService) Update(ctx context.Context, cfg domain.PlanConfig) error {
	const op = "PlanService.Update"

	if cfg.BasicLimit < 1 || cfg.PremiumLimit < 1 || cfg.VIPLimit < 1 {
		return domain.Invalid(op, "tier limits must be at least 1")
	}
	if cfg.MonthDays < 1 || cfg.YearDays < 1 {
		return domain.Invalid(op, "plan durations must be at least 1 day")
	}

	if err := s.store.Upsert(ctx, cfg); err != nil {
		s.logger.Error("failed to update plan config", "error", err, "op", op)
		return domain.Internal(err, op, "Failed to update plan configuration")
	}

	s.logger.Info("plan config updated",
		"basic_limit", cfg.BasicLimit,
		"premium_limit", cfg.PremiumLimit,
		"vip_limit", cfg.VIPLimit,
		"month_days", cfg.MonthDays,
		"year_days", cfg.YearDays,
	)
	return nil
}
