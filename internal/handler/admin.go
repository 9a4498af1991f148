package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
	"github.com/yhamdan/ardsouq/internal/middleware"
	"github.com/yhamdan/ardsouq/internal/service"
)

// AdminHandler handles the moderation panel: listing review, subscription
// review, plan configuration and account removal.
type AdminHandler struct {
	listings      service.ListingService
	subscriptions service.SubscriptionService
	plans         service.PlanService
	accounts      service.AccountService
	logger        *slog.Logger
	validate      *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(listings service.ListingService, subscriptions service.SubscriptionService, plans service.PlanService, accounts service.AccountService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		listings:      listings,
		subscriptions: subscriptions,
		plans:         plans,
		accounts:      accounts,
		logger:        logger,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers admin routes behind the provided guard.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, requireAdmin func(http.Handler) http.Handler) {
	mux.Handle("PATCH /admin/listings/{id}/approve", requireAdmin(http.HandlerFunc(h.ApproveListing)))
	mux.Handle("PATCH /admin/listings/{id}/reject", requireAdmin(http.HandlerFunc(h.RejectListing)))
	mux.Handle("GET /admin/subscriptions", requireAdmin(http.HandlerFunc(h.ListSubscriptions)))
	mux.Handle("PATCH /admin/subscriptions/{id}", requireAdmin(http.HandlerFunc(h.ReviewSubscription)))
	mux.Handle("GET /admin/plans", requireAdmin(http.HandlerFunc(h.GetPlans)))
	mux.Handle("PUT /admin/plans", requireAdmin(http.HandlerFunc(h.UpdatePlans)))
	mux.Handle("DELETE /admin/accounts/{id}", requireAdmin(http.HandlerFunc(h.DeleteAccount)))
}

// ApproveListing admits a pending listing, subject to the owner's quota.
func (h *AdminHandler) ApproveListing(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("", "invalid listing id"))
		return
	}

	if err := h.listings.Approve(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(domain.StatusApproved)})
}

type rejectRequest struct {
	Note string `json:"note" validate:"required,max=1000"`
}

// RejectListing declines a pending listing with a review note.
func (h *AdminHandler) RejectListing(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("", "invalid listing id"))
		return
	}

	var req rejectRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.listings.Reject(r.Context(), id, req.Note); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(domain.StatusRejected)})
}

// ListSubscriptions returns the subscription review queue. Defaults to
// pending requests; ?status= selects another bucket.
func (h *AdminHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	status := domain.RequestStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.RequestPending
	}

	requests, err := h.subscriptions.List(r.Context(), status)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]subscriptionResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toSubscriptionResponse(&requests[i]))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": out})
}

type reviewSubscriptionRequest struct {
	Action   string `json:"action" validate:"required,oneof=approve reject"`
	Duration string `json:"duration" validate:"omitempty,oneof=month year"`
	Note     string `json:"note" validate:"max=1000"`
}

// ReviewSubscription approves or rejects a pending subscription request.
func (h *AdminHandler) ReviewSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("", "invalid request id"))
		return
	}

	var req reviewSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	switch req.Action {
	case "approve":
		duration := domain.DurationKind(req.Duration)
		if req.Duration == "" {
			duration = domain.DurationMonth
		}
		err = h.subscriptions.Approve(r.Context(), id, duration)
	case "reject":
		err = h.subscriptions.Reject(r.Context(), id, req.Note)
	}
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"action": req.Action})
}

type planConfigPayload struct {
	BasicLimit   int `json:"basic_limit" validate:"required,min=1"`
	PremiumLimit int `json:"premium_limit" validate:"required,min=1"`
	VIPLimit     int `json:"vip_limit" validate:"required,min=1"`
	MonthDays    int `json:"month_days" validate:"required,min=1"`
	YearDays     int `json:"year_days" validate:"required,min=1"`
}

// GetPlans returns the active plan configuration.
func (h *AdminHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	cfg := h.plans.Config(r.Context())
	respondJSON(w, http.StatusOK, planConfigPayload{
		BasicLimit:   cfg.BasicLimit,
		PremiumLimit: cfg.PremiumLimit,
		VIPLimit:     cfg.VIPLimit,
		MonthDays:    cfg.MonthDays,
		YearDays:     cfg.YearDays,
	})
}

// UpdatePlans replaces the plan configuration.
func (h *AdminHandler) UpdatePlans(w http.ResponseWriter, r *http.Request) {
	var req planConfigPayload
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	cfg := domain.PlanConfig{
		BasicLimit:   req.BasicLimit,
		PremiumLimit: req.PremiumLimit,
		VIPLimit:     req.VIPLimit,
		MonthDays:    req.MonthDays,
		YearDays:     req.YearDays,
	}
	if err := h.plans.Update(r.Context(), cfg); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// DeleteAccount removes an owner account and everything it owns.
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	admin := middleware.AccountFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("", "invalid account id"))
		return
	}

	if err := h.accounts.Delete(r.Context(), admin.ID, id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
