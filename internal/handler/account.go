package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
	"github.com/yhamdan/ardsouq/internal/service"
)

// AccountHandler handles account registration.
type AccountHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public account routes.
func (h *AccountHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	mux.Handle("POST /accounts", limit(http.HandlerFunc(h.Register)))
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type accountResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// Register creates a new owner account on the free tier.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	account, err := h.accounts.Register(r.Context(), domain.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, accountResponse{
		ID:        account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Role:      string(account.Role),
		Tier:      string(account.Tier),
		CreatedAt: account.CreatedAt,
	})
}
