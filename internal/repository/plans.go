package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yhamdan/ardsouq/internal/domain"
)

// PlanRepo persists the plan configuration singleton, keyed by a fixed
// identifier. A missing row is an expected state, not an error condition:
// callers fall back to the hard-coded defaults.
type PlanRepo struct {
	db *sql.DB
}

// Get returns the plan configuration. Returns sql.ErrNoRows when the
// singleton has never been written.
func (r *PlanRepo) Get(ctx context.Context) (*domain.PlanConfig, error) {
	var cfg domain.PlanConfig
	err := r.db.QueryRowContext(ctx, `
		SELECT basic_limit, premium_limit, vip_limit, month_days, year_days
		FROM plan_config
		WHERE key = $1`, domain.PlanConfigKey).
		Scan(&cfg.BasicLimit, &cfg.PremiumLimit, &cfg.VIPLimit, &cfg.MonthDays, &cfg.YearDays)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert writes the singleton, creating it on first use.
func (r *PlanRepo) Upsert(ctx context.Context, cfg domain.PlanConfig) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plan_config (key, basic_limit, premium_limit, vip_limit, month_days, year_days)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE
		SET basic_limit = EXCLUDED.basic_limit,
		    premium_limit = EXCLUDED.premium_limit,
		    vip_limit = EXCLUDED.vip_limit,
		    month_days = EXCLUDED.month_days,
		    year_days = EXCLUDED.year_days,
		    updated_at = now()`,
		domain.PlanConfigKey, cfg.BasicLimit, cfg.PremiumLimit, cfg.VIPLimit,
		cfg.MonthDays, cfg.YearDays)
	if err != nil {
		return fmt.Errorf("upsert plan config: %w", err)
	}
	return nil
}
