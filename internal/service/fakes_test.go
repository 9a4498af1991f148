package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yhamdan/ardsouq/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory store fakes. They implement the store interfaces with plain maps
// so the state-machine logic can be exercised without a database.

type fakeAccountStore struct {
	mu         sync.Mutex
	accounts   map[uuid.UUID]*domain.Account
	updateErrs map[uuid.UUID]error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		accounts:   make(map[uuid.UUID]*domain.Account),
		updateErrs: make(map[uuid.UUID]error),
	}
}

func (f *fakeAccountStore) add(a *domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[a.ID] = a
}

// failUpdatesFor makes UpdateSubscription fail for one account.
func (f *fakeAccountStore) failUpdatesFor(id uuid.UUID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateErrs[id] = err
}

func (f *fakeAccountStore) Create(_ context.Context, email, name, passwordHash string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	a := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         domain.RoleOwner,
		Tier:         domain.TierBasic,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.accounts[a.ID] = a
	return a, nil
}

func (f *fakeAccountStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccountStore) UpdateSubscription(_ context.Context, id uuid.UUID, tier domain.Tier, expiresAt, graceUntil *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErrs[id]; err != nil {
		return err
	}
	a, ok := f.accounts[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Tier = tier
	a.ExpiresAt = expiresAt
	a.GraceUntil = graceUntil
	a.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAccountStore) ListExpiredUngraced(_ context.Context, now time.Time) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, a := range f.accounts {
		if a.ExpiresAt != nil && !a.ExpiresAt.After(now) && a.GraceUntil == nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountStore) ListGraceLapsed(_ context.Context, now time.Time) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, a := range f.accounts {
		if a.GraceUntil != nil && !a.GraceUntil.After(now) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.accounts, id)
	return nil
}

type fakeListingStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*domain.Listing
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: make(map[uuid.UUID]*domain.Listing)}
}

func (f *fakeListingStore) add(l *domain.Listing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[l.ID] = l
}

func (f *fakeListingStore) get(id uuid.UUID) *domain.Listing {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.listings[id]
	return &cp
}

func (f *fakeListingStore) Create(_ context.Context, params domain.CreateListingParams) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := &domain.Listing{
		ID:          uuid.New(),
		OwnerID:     params.OwnerID,
		Kind:        params.Kind,
		Title:       params.Title,
		City:        params.City,
		Price:       params.Price,
		Photos:      params.Photos,
		Description: params.Description,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.listings[l.ID] = l
	return l, nil
}

func (f *fakeListingStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingStore) Update(_ context.Context, params domain.UpdateListingParams) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[params.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	l.Title = params.Title
	l.City = params.City
	l.Price = params.Price
	l.Photos = params.Photos
	l.Description = params.Description
	l.Status = domain.StatusPending
	l.ReviewNote = ""
	l.ApprovedAt = nil
	l.RejectedAt = nil
	l.UpdatedAt = time.Now()
	cp := *l
	return &cp, nil
}

func (f *fakeListingStore) CountOwned(_ context.Context, ownerID uuid.UUID, kind domain.ListingKind, statuses []domain.ListingStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, l := range f.listings {
		if l.OwnerID != ownerID || l.Kind != kind || l.IsDeleted() {
			continue
		}
		for _, s := range statuses {
			if l.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeListingStore) FindOwned(_ context.Context, ownerID uuid.UUID, kind domain.ListingKind) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Listing
	for _, l := range f.listings {
		if l.OwnerID == ownerID && l.Kind == kind && !l.IsDeleted() {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeListingStore) ListPendingOwnedOldestFirst(_ context.Context, ownerID uuid.UUID, kind domain.ListingKind) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Listing
	for _, l := range f.listings {
		if l.OwnerID == ownerID && l.Kind == kind && l.Status == domain.StatusPending && !l.IsDeleted() {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeListingStore) SetStatus(_ context.Context, id uuid.UUID, status domain.ListingStatus, reviewNote string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return sql.ErrNoRows
	}
	l.Status = status
	l.ReviewNote = reviewNote
	switch status {
	case domain.StatusApproved:
		l.ApprovedAt = &at
		l.RejectedAt = nil
	case domain.StatusRejected:
		l.RejectedAt = &at
		l.ApprovedAt = nil
	}
	l.UpdatedAt = at
	return nil
}

func (f *fakeListingStore) BulkSetSuspension(_ context.Context, ids []uuid.UUID, suspended bool, reason domain.SuspendReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if l, ok := f.listings[id]; ok {
			l.IsSuspended = suspended
			l.SuspendedReason = reason
		}
	}
	return nil
}

func (f *fakeListingStore) BulkSoftDelete(_ context.Context, ids []uuid.UUID, at time.Time, reason domain.SuspendReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if l, ok := f.listings[id]; ok {
			l.DeletedAt = &at
			l.IsSuspended = true
			l.SuspendedReason = reason
		}
	}
	return nil
}

func (f *fakeListingStore) SoftDeleteAllOwned(_ context.Context, ownerID uuid.UUID, at time.Time, reason domain.SuspendReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.listings {
		if l.OwnerID == ownerID && !l.IsDeleted() {
			l.DeletedAt = &at
			l.IsSuspended = true
			l.SuspendedReason = reason
		}
	}
	return nil
}

type fakePlanStore struct {
	mu  sync.Mutex
	cfg *domain.PlanConfig
}

func (f *fakePlanStore) Get(_ context.Context) (*domain.PlanConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cfg == nil {
		return nil, sql.ErrNoRows
	}
	cp := *f.cfg
	return &cp, nil
}

func (f *fakePlanStore) Upsert(_ context.Context, cfg domain.PlanConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = &cfg
	return nil
}

type fakeSubscriptionStore struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*domain.SubscriptionRequest
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{requests: make(map[uuid.UUID]*domain.SubscriptionRequest)}
}

func (f *fakeSubscriptionStore) add(r *domain.SubscriptionRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.ID] = r
}

func (f *fakeSubscriptionStore) Create(_ context.Context, params domain.FileRequestParams) (*domain.SubscriptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &domain.SubscriptionRequest{
		ID:        uuid.New(),
		AccountID: params.AccountID,
		Plan:      params.Plan,
		WhatsApp:  params.WhatsApp,
		Notes:     params.Notes,
		Status:    domain.RequestPending,
		CreatedAt: time.Now(),
	}
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeSubscriptionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.SubscriptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeSubscriptionStore) ListByStatus(_ context.Context, status domain.RequestStatus) ([]domain.SubscriptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SubscriptionRequest
	for _, r := range f.requests {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionStore) MarkApproved(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = domain.RequestApproved
	r.ApprovedAt = &at
	return nil
}

func (f *fakeSubscriptionStore) MarkRejected(_ context.Context, id uuid.UUID, note string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = domain.RequestRejected
	r.ReviewNote = note
	r.RejectedAt = &at
	return nil
}

func (f *fakeSubscriptionStore) DeleteForAccount(_ context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.requests {
		if r.AccountID == accountID {
			delete(f.requests, id)
		}
	}
	return nil
}

// fakeNotifier records sent notifications.
type fakeNotifier struct {
	mu       sync.Mutex
	approved []string
	rejected []string
}

func (f *fakeNotifier) SendListingApproved(_ context.Context, to, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, to+":"+title)
	return nil
}

func (f *fakeNotifier) SendListingRejected(_ context.Context, to, title, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, to+":"+title+":"+reason)
	return nil
}
