// Package service contains the business logic layer.
//
// This file implements the grace-period sweep: the singleton background task
// that drives every account through Active -> Grace -> Reverted. The sweep is
// owned by the composition root and started exactly once per process; each
// cycle runs to completion before the next interval.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yhamdan/ardsouq/internal/domain"
	"github.com/yhamdan/ardsouq/internal/metrics"
)

// SweepConfig holds the sweep schedule.
type SweepConfig struct {
	// Interval between cycles. Default: 12 hours.
	Interval time.Duration

	// GraceDays is the length of the grace window opened when an expiry is
	// first observed. Default: 7 days.
	GraceDays int
}

// DefaultSweepConfig returns the stock schedule.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Interval:  12 * time.Hour,
		GraceDays: 7,
	}
}

// Sweep is the periodic grace-period job. Create with NewSweep, start with
// Start and stop with Stop; Start is idempotent under repeated calls.
type Sweep struct {
	accounts   AccountStore
	reconciler ReconcileService
	config     SweepConfig
	logger     *slog.Logger
	now        func() time.Time

	startOnce sync.Once
	wg        sync.WaitGroup
	stopCh    chan struct{}
}

// NewSweep creates the sweep job.
func NewSweep(accounts AccountStore, reconciler ReconcileService, config SweepConfig, logger *slog.Logger) *Sweep {
	if config.Interval <= 0 {
		config.Interval = DefaultSweepConfig().Interval
	}
	if config.GraceDays <= 0 {
		config.GraceDays = DefaultSweepConfig().GraceDays
	}
	return &Sweep{
		accounts:   accounts,
		reconciler: reconciler,
		config:     config,
		logger:     logger,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
}

// Start launches the sweep goroutine. Repeated calls are no-ops so the job
// can only ever run once per process.
func (s *Sweep) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run(ctx)
		s.logger.Info("grace-period sweep started",
			"interval", s.config.Interval,
			"grace_days", s.config.GraceDays,
		)
	})
}

// Stop signals the sweep to exit and waits for the in-flight cycle to
// finish. A running cycle is never interrupted mid-account.
func (s *Sweep) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("grace-period sweep stopped")
}

func (s *Sweep) run(ctx context.Context) {
	defer s.wg.Done()

	// First cycle right away so a restart does not delay overdue
	// transitions by a full interval.
	s.RunCycle(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle executes one full sweep: phase A opens grace windows for newly
// lapsed accounts, phase B reverts accounts whose window has closed. Each
// account is processed independently; one failure never aborts the cycle.
func (s *Sweep) RunCycle(ctx context.Context) {
	start := s.now()
	s.logger.Debug("sweep cycle starting")

	s.runPhaseA(ctx, start)
	s.runPhaseB(ctx, s.now())

	metrics.SweepCyclesTotal.Inc()
	metrics.SweepCycleDuration.Observe(s.now().Sub(start).Seconds())
	s.logger.Debug("sweep cycle finished", "duration", s.now().Sub(start))
}

// runPhaseA handles the Active -> Grace transition: accounts whose paid
// period has lapsed get a grace window, an immediate downgrade to Basic, and
// a Basic-cap reconciliation of every listing kind. Nothing is deleted yet.
func (s *Sweep) runPhaseA(ctx context.Context, now time.Time) {
	expired, err := s.accounts.ListExpiredUngraced(ctx, now)
	if err != nil {
		s.logger.Error("sweep: failed to list expired accounts", "error", err)
		return
	}

	for _, account := range expired {
		if err := s.graceAccount(ctx, account, now); err != nil {
			metrics.SweepAccountFailures.Inc()
			s.logger.Error("sweep: failed to grace account",
				"error", err, "account_id", account.ID)
			continue
		}
		metrics.SweepAccountsGraced.Inc()
	}
}

func (s *Sweep) graceAccount(ctx context.Context, account domain.Account, now time.Time) error {
	graceUntil := now.Add(time.Duration(s.config.GraceDays) * 24 * time.Hour)

	// The expiry timestamp survives the grace window; phase B clears it.
	if err := s.accounts.UpdateSubscription(ctx, account.ID, domain.TierBasic, account.ExpiresAt, &graceUntil); err != nil {
		return err
	}

	s.logger.Info("subscription lapsed, grace window opened",
		"account_id", account.ID,
		"previous_tier", account.Tier,
		"grace_until", graceUntil,
	)

	return s.reconciler.ReconcileAll(ctx, account.ID, domain.TierBasic)
}

// runPhaseB handles the Grace -> Reverted transition: accounts whose grace
// window has closed lose both timestamps and their overflow listings are
// soft-deleted; the Basic-capped keep set stays visible.
func (s *Sweep) runPhaseB(ctx context.Context, now time.Time) {
	lapsed, err := s.accounts.ListGraceLapsed(ctx, now)
	if err != nil {
		s.logger.Error("sweep: failed to list grace-lapsed accounts", "error", err)
		return
	}

	for _, account := range lapsed {
		if err := s.revertAccount(ctx, account); err != nil {
			metrics.SweepAccountFailures.Inc()
			s.logger.Error("sweep: failed to revert account",
				"error", err, "account_id", account.ID)
			continue
		}
		metrics.SweepAccountsReverted.Inc()
	}
}

func (s *Sweep) revertAccount(ctx context.Context, account domain.Account) error {
	if err := s.accounts.UpdateSubscription(ctx, account.ID, domain.TierBasic, nil, nil); err != nil {
		return err
	}

	s.logger.Info("grace window lapsed, account reverted", "account_id", account.ID)

	for _, kind := range domain.Kinds {
		if err := s.reconciler.SoftDeleteOverflow(ctx, account.ID, domain.TierBasic, kind); err != nil {
			return err
		}
	}
	return nil
}
