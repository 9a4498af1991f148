package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yhamdan/ardsouq/internal/domain"
)

// AccountService handles registration and the admin deletion cascade.
type AccountService interface {
	// Register creates a new owner account on the free tier.
	Register(ctx context.Context, params domain.RegisterParams) (*domain.Account, error)

	// Get returns an account by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// Delete removes an account and cascades: listings are soft-deleted with
	// the user-deleted reason and subscription requests are dropped. Admins
	// cannot delete themselves or other admins.
	Delete(ctx context.Context, adminID, accountID uuid.UUID) error
}

type accountService struct {
	accounts AccountStore
	listings ListingStore
	requests SubscriptionStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewAccountService creates an AccountService.
func NewAccountService(accounts AccountStore, listings ListingStore, requests SubscriptionStore, logger *slog.Logger) AccountService {
	return &accountService{
		accounts: accounts,
		listings: listings,
		requests: requests,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *accountService) Register(ctx context.Context, params domain.RegisterParams) (*domain.Account, error) {
	const op = "AccountService.Register"

	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, domain.Invalid(op, "invalid email address")
	}
	if len(params.Password) < 8 {
		return nil, domain.Invalid(op, "password must be at least 8 characters")
	}
	if params.Name == "" {
		return nil, domain.Invalid(op, "name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	account, err := s.accounts.Create(ctx, params.Email, params.Name, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.Conflict(op, "email is already registered")
		}
		return nil, domain.Internal(err, op, "failed to create account")
	}

	s.logger.Info("account registered", "account_id", account.ID, "email", account.Email)
	return account, nil
}

func (s *accountService) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	const op = "AccountService.Get"

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "account", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load account")
	}
	return account, nil
}

func (s *accountService) Delete(ctx context.Context, adminID, accountID uuid.UUID) error {
	const op = "AccountService.Delete"

	if adminID == accountID {
		return domain.Forbidden(op, "cannot delete your own account")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "account", accountID.String())
		}
		return domain.Internal(err, op, "failed to load account")
	}
	if account.IsAdmin() {
		return domain.Forbidden(op, "admin accounts cannot be deleted")
	}

	if err := s.listings.SoftDeleteAllOwned(ctx, accountID, s.now(), domain.SuspendReasonUserDeleted); err != nil {
		return domain.Internal(err, op, "failed to soft-delete listings")
	}
	if err := s.requests.DeleteForAccount(ctx, accountID); err != nil {
		return domain.Internal(err, op, "failed to delete subscription requests")
	}
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return domain.Internal(err, op, "failed to delete account")
	}

	s.logger.Info("account deleted", "account_id", accountID, "deleted_by", adminID)
	return nil
}
