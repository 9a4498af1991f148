package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
)

type contextKey string

const accountContextKey contextKey = "account"

// AccountLoader resolves an account ID to a full account record.
type AccountLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// IdentityMiddleware resolves the caller's account from the X-Account-ID
// header set by the authenticating edge proxy. Requests without the header
// pass through anonymously; route guards decide whether that is acceptable.
type IdentityMiddleware struct {
	accounts    AccountLoader
	adminEmails map[string]bool
	logger      *slog.Logger
}

// NewIdentityMiddleware creates a new identity middleware. adminEmails grants
// admin access to accounts whose email appears in the list, in addition to
// accounts carrying the admin role.
func NewIdentityMiddleware(accounts AccountLoader, adminEmails []string, logger *slog.Logger) *IdentityMiddleware {
	byEmail := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		byEmail[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &IdentityMiddleware{
		accounts:    accounts,
		adminEmails: byEmail,
		logger:      logger,
	}
}

// Handler returns middleware that attaches the resolved account to the
// request context.
func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-Account-ID")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(header)
		if err != nil {
			m.logger.Info("malformed account header", "value", header, "ip", getClientIP(r))
			next.ServeHTTP(w, r)
			return
		}

		account, err := m.accounts.GetByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				m.logger.Error("failed to resolve account", "error", err, "account_id", id)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountFromContext returns the resolved account, or nil for anonymous
// requests.
func AccountFromContext(ctx context.Context) *domain.Account {
	account, _ := ctx.Value(accountContextKey).(*domain.Account)
	return account
}

// WithAccount returns a context carrying the account. Used by tests and by
// internal callers that act on behalf of a known account.
func WithAccount(ctx context.Context, account *domain.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// IsAdmin reports whether the account holds admin access, either through its
// role or through the configured admin email list.
func (m *IdentityMiddleware) IsAdmin(account *domain.Account) bool {
	if account == nil {
		return false
	}
	return account.IsAdmin() || m.adminEmails[strings.ToLower(account.Email)]
}

// RequireAccount guards routes that need an authenticated caller.
func (m *IdentityMiddleware) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if AccountFromContext(r.Context()) == nil {
			writeGuardError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin guards administrative routes.
func (m *IdentityMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := AccountFromContext(r.Context())
		if account == nil {
			writeGuardError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED, "Authentication required")
			return
		}
		if !m.IsAdmin(account) {
			m.logger.Info("admin route denied", "account_id", account.ID, "path", r.URL.Path)
			writeGuardError(w, http.StatusForbidden, domain.EFORBIDDEN, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeGuardError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
