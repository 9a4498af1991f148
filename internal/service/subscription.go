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
)

// SubscriptionService handles subscription change requests: owners file them,
// admins review them. Approval is the only path onto a paid tier.
type SubscriptionService interface {
	// File creates a pending upgrade request for a paid tier.
	File(ctx context.Context, params domain.FileRequestParams) (*domain.SubscriptionRequest, error)

	// List returns requests by status for the admin review queue.
	List(ctx context.Context, status domain.RequestStatus) ([]domain.SubscriptionRequest, error)

	// Approve grants the requested tier: it stamps the request, writes the
	// new tier with a fresh expiry, clears any grace window and reconciles
	// every listing kind under the new cap.
	Approve(ctx context.Context, id uuid.UUID, duration domain.DurationKind) error

	// Reject marks the request rejected with a review note.
	Reject(ctx context.Context, id uuid.UUID, note string) error
}

type subscriptionService struct {
	requests   SubscriptionStore
	accounts   AccountStore
	plans      PlanService
	reconciler ReconcileService
	logger     *slog.Logger
	now        func() time.Time
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(requests SubscriptionStore, accounts AccountStore, plans PlanService, reconciler ReconcileService, logger *slog.Logger) SubscriptionService {
	return &subscriptionService{
		requests:   requests,
		accounts:   accounts,
		plans:      plans,
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *subscriptionService) File(ctx context.Context, params domain.FileRequestParams) (*domain.SubscriptionRequest, error) {
	const op = "SubscriptionService.File"

	if !params.Plan.IsPaid() {
		return nil, domain.Invalid(op, fmt.Sprintf("plan %q is not a paid tier", params.Plan))
	}
	if params.WhatsApp == "" {
		return nil, domain.Invalid(op, "whatsapp contact is required")
	}
	if _, err := s.accounts.GetByID(ctx, params.AccountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "account", params.AccountID.String())
		}
		return nil, domain.Internal(err, op, "failed to load account")
	}

	request, err := s.requests.Create(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to file subscription request")
	}

	s.logger.Info("subscription request filed",
		"request_id", request.ID,
		"account_id", params.AccountID,
		"plan", params.Plan,
	)
	return request, nil
}

func (s *subscriptionService) List(ctx context.Context, status domain.RequestStatus) ([]domain.SubscriptionRequest, error) {
	const op = "SubscriptionService.List"

	requests, err := s.requests.ListByStatus(ctx, status)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list subscription requests")
	}
	return requests, nil
}

func (s *subscriptionService) Approve(ctx context.Context, id uuid.UUID, duration domain.DurationKind) error {
	const op = "SubscriptionService.Approve"

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "subscription request", id.String())
		}
		return domain.Internal(err, op, "failed to load subscription request")
	}
	if request.Status != domain.RequestPending {
		return domain.Conflict(op, fmt.Sprintf("request is %s, only pending requests can be approved", request.Status))
	}

	now := s.now()
	if err := s.requests.MarkApproved(ctx, id, now); err != nil {
		return domain.Internal(err, op, "failed to mark request approved")
	}

	days := s.plans.Config(ctx).DurationDays(duration)
	expiresAt := now.Add(time.Duration(days) * 24 * time.Hour)

	// A grant always clears any open grace window.
	if err := s.accounts.UpdateSubscription(ctx, request.AccountID, request.Plan, &expiresAt, nil); err != nil {
		return domain.Internal(err, op, "failed to update account subscription")
	}

	s.logger.Info("subscription request approved",
		"request_id", id,
		"account_id", request.AccountID,
		"plan", request.Plan,
		"expires_at", expiresAt,
	)

	// Lift limit suspensions now that the cap is higher.
	return s.reconciler.ReconcileAll(ctx, request.AccountID, request.Plan)
}

func (s *subscriptionService) Reject(ctx context.Context, id uuid.UUID, note string) error {
	const op = "SubscriptionService.Reject"

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "subscription request", id.String())
		}
		return domain.Internal(err, op, "failed to load subscription request")
	}
	if request.Status != domain.RequestPending {
		return domain.Conflict(op, fmt.Sprintf("request is %s, only pending requests can be rejected", request.Status))
	}

	if err := s.requests.MarkRejected(ctx, id, note, s.now()); err != nil {
		return domain.Internal(err, op, "failed to mark request rejected")
	}

	s.logger.Info("subscription request rejected", "request_id", id, "note", note)
	return nil
}
