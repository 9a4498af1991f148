package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
	"github.com/yhamdan/ardsouq/internal/middleware"
	"github.com/yhamdan/ardsouq/internal/service"
)

// OwnerHandler handles owner-facing listing and subscription endpoints.
type OwnerHandler struct {
	listings      service.ListingService
	subscriptions service.SubscriptionService
	logger        *slog.Logger
	validate      *validator.Validate
}

// NewOwnerHandler creates a new OwnerHandler.
func NewOwnerHandler(listings service.ListingService, subscriptions service.SubscriptionService, logger *slog.Logger) *OwnerHandler {
	return &OwnerHandler{
		listings:      listings,
		subscriptions: subscriptions,
		logger:        logger,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers owner routes behind the provided guard.
func (h *OwnerHandler) RegisterRoutes(mux *http.ServeMux, requireOwner func(http.Handler) http.Handler) {
	mux.Handle("POST /owner/listings", requireOwner(http.HandlerFunc(h.CreateListing)))
	mux.Handle("PUT /owner/listings/{id}", requireOwner(http.HandlerFunc(h.EditListing)))
	mux.Handle("GET /owner/listings", requireOwner(http.HandlerFunc(h.ListListings)))
	mux.Handle("GET /owner/quota", requireOwner(http.HandlerFunc(h.Quota)))
	mux.Handle("POST /owner/subscriptions", requireOwner(http.HandlerFunc(h.FileSubscription)))
}

type createListingRequest struct {
	Kind        string   `json:"kind" validate:"required,oneof=land contractor"`
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	City        string   `json:"city" validate:"required,max=100"`
	Price       int64    `json:"price" validate:"gte=0"`
	Photos      []string `json:"photos" validate:"max=10,dive,url"`
	Description string   `json:"description" validate:"max=5000"`
}

type listingResponse struct {
	ID              uuid.UUID  `json:"id"`
	Kind            string     `json:"kind"`
	Title           string     `json:"title"`
	City            string     `json:"city"`
	Price           int64      `json:"price"`
	Photos          []string   `json:"photos,omitempty"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	ReviewNote      string     `json:"review_note,omitempty"`
	IsSuspended     bool       `json:"is_suspended"`
	SuspendedReason string     `json:"suspended_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	return listingResponse{
		ID:              l.ID,
		Kind:            string(l.Kind),
		Title:           l.Title,
		City:            l.City,
		Price:           l.Price,
		Photos:          l.Photos,
		Description:     l.Description,
		Status:          string(l.Status),
		ReviewNote:      l.ReviewNote,
		IsSuspended:     l.IsSuspended,
		SuspendedReason: string(l.SuspendedReason),
		CreatedAt:       l.CreatedAt,
		DeletedAt:       l.DeletedAt,
	}
}

// CreateListing files a new listing for the authenticated owner.
func (h *OwnerHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	var req createListingRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	listing, err := h.listings.Create(r.Context(), domain.CreateListingParams{
		OwnerID:     account.ID,
		Kind:        domain.ListingKind(req.Kind),
		Title:       req.Title,
		City:        req.City,
		Price:       req.Price,
		Photos:      req.Photos,
		Description: req.Description,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toListingResponse(listing))
}

// EditListing applies an owner edit; the listing returns to pending review.
func (h *OwnerHandler) EditListing(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("", "invalid listing id"))
		return
	}

	var req createListingRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := h.validate.StructExcept(req, "Kind"); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	listing, err := h.listings.Edit(r.Context(), domain.UpdateListingParams{
		ID:          id,
		OwnerID:     account.ID,
		Title:       req.Title,
		City:        req.City,
		Price:       req.Price,
		Photos:      req.Photos,
		Description: req.Description,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toListingResponse(listing))
}

// ListListings returns the owner's live listings of a kind.
func (h *OwnerHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	kind := domain.ListingKind(r.URL.Query().Get("kind"))
	listings, err := h.listings.ListOwned(r.Context(), account.ID, kind)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]listingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, toListingResponse(&listings[i]))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"listings": out})
}

type quotaResponse struct {
	Tier    string `json:"tier"`
	Used    int    `json:"used"`
	Limit   int    `json:"limit"`
	Left    int    `json:"left"`
	Allowed bool   `json:"allowed"`
}

// Quota reports the owner's usage against the creation quota for a kind.
func (h *OwnerHandler) Quota(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	kind := domain.ListingKind(r.URL.Query().Get("kind"))
	result, err := h.listings.Quota(r.Context(), account.ID, kind)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, quotaResponse{
		Tier:    string(result.Tier),
		Used:    result.Used,
		Limit:   result.Limit,
		Left:    result.Left(),
		Allowed: result.Allowed,
	})
}

type fileSubscriptionRequest struct {
	Plan     string `json:"plan" validate:"required,oneof=Premium VIP"`
	WhatsApp string `json:"whatsapp" validate:"required,min=7,max=20"`
	Notes    string `json:"notes" validate:"max=1000"`
}

type subscriptionResponse struct {
	ID         uuid.UUID  `json:"id"`
	AccountID  uuid.UUID  `json:"account_id"`
	Plan       string     `json:"plan"`
	WhatsApp   string     `json:"whatsapp"`
	Notes      string     `json:"notes,omitempty"`
	Status     string     `json:"status"`
	ReviewNote string     `json:"review_note,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toSubscriptionResponse(req *domain.SubscriptionRequest) subscriptionResponse {
	return subscriptionResponse{
		ID:         req.ID,
		AccountID:  req.AccountID,
		Plan:       string(req.Plan),
		WhatsApp:   req.WhatsApp,
		Notes:      req.Notes,
		Status:     string(req.Status),
		ReviewNote: req.ReviewNote,
		ApprovedAt: req.ApprovedAt,
		RejectedAt: req.RejectedAt,
		CreatedAt:  req.CreatedAt,
	}
}

// FileSubscription files an upgrade request for the authenticated owner.
func (h *OwnerHandler) FileSubscription(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	var req fileSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	request, err := h.subscriptions.File(r.Context(), domain.FileRequestParams{
		AccountID: account.ID,
		Plan:      domain.Tier(req.Plan),
		WhatsApp:  req.WhatsApp,
		Notes:     req.Notes,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toSubscriptionResponse(request))
}
