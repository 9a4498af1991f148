package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhamdan/ardsouq/internal/domain"
)

type subscriptionFixture struct {
	accounts *fakeAccountStore
	listings *fakeListingStore
	requests *fakeSubscriptionStore
	svc      SubscriptionService
}

func newSubscriptionFixture() *subscriptionFixture {
	accounts := newFakeAccountStore()
	listings := newFakeListingStore()
	requests := newFakeSubscriptionStore()
	plans := NewPlanService(&fakePlanStore{}, testLogger())
	reconciler := NewReconcileService(listings, plans, testLogger())
	svc := NewSubscriptionService(requests, accounts, plans, reconciler, testLogger())
	return &subscriptionFixture{accounts: accounts, listings: listings, requests: requests, svc: svc}
}

func TestSubscriptionFile(t *testing.T) {
	f := newSubscriptionFixture()
	owner := uuid.New()
	f.accounts.add(&domain.Account{ID: owner, Tier: domain.TierBasic})

	request, err := f.svc.File(context.Background(), domain.FileRequestParams{
		AccountID: owner,
		Plan:      domain.TierPremium,
		WhatsApp:  "+962790000000",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, request.Status)
	assert.Equal(t, domain.TierPremium, request.Plan)
}

func TestSubscriptionFileValidation(t *testing.T) {
	f := newSubscriptionFixture()
	owner := uuid.New()
	f.accounts.add(&domain.Account{ID: owner, Tier: domain.TierBasic})

	tests := []struct {
		name     string
		params   domain.FileRequestParams
		wantCode string
	}{
		{
			name:     "basic is not a paid plan",
			params:   domain.FileRequestParams{AccountID: owner, Plan: domain.TierBasic, WhatsApp: "+962790000000"},
			wantCode: domain.EINVALID,
		},
		{
			name:     "unknown plan",
			params:   domain.FileRequestParams{AccountID: owner, Plan: "Gold", WhatsApp: "+962790000000"},
			wantCode: domain.EINVALID,
		},
		{
			name:     "missing whatsapp contact",
			params:   domain.FileRequestParams{AccountID: owner, Plan: domain.TierVIP},
			wantCode: domain.EINVALID,
		},
		{
			name:     "unknown account",
			params:   domain.FileRequestParams{AccountID: uuid.New(), Plan: domain.TierVIP, WhatsApp: "+962790000000"},
			wantCode: domain.ENOTFOUND,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.File(context.Background(), tt.params)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
		})
	}
}

func TestSubscriptionApproveGrantsTier(t *testing.T) {
	f := newSubscriptionFixture()
	owner := uuid.New()
	grace := time.Now().Add(48 * time.Hour)
	f.accounts.add(&domain.Account{ID: owner, Tier: domain.TierBasic, GraceUntil: &grace})

	request, err := f.svc.File(context.Background(), domain.FileRequestParams{
		AccountID: owner,
		Plan:      domain.TierPremium,
		WhatsApp:  "+962790000000",
	})
	require.NoError(t, err)

	before := time.Now()
	require.NoError(t, f.svc.Approve(context.Background(), request.ID, domain.DurationMonth))

	account, err := f.accounts.GetByID(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, domain.TierPremium, account.Tier)
	assert.Nil(t, account.GraceUntil)
	require.NotNil(t, account.ExpiresAt)

	// Default month duration is 30 days.
	wantExpiry := before.Add(30 * 24 * time.Hour)
	assert.WithinDuration(t, wantExpiry, *account.ExpiresAt, time.Minute)

	stored, err := f.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, stored.Status)
	assert.NotNil(t, stored.ApprovedAt)
}

func TestSubscriptionApproveYearDuration(t *testing.T) {
	f := newSubscriptionFixture()
	owner := uuid.New()
	f.accounts.add(&domain.Account{ID: owner, Tier: domain.TierBasic})

	request, err := f.svc.File(context.Background(), domain.FileRequestParams{
		AccountID: owner,
		Plan:      domain.TierVIP,
		WhatsApp:  "+962790000000",
	})
	require.NoError(t, err)

	before := time.Now()
	require.NoError(t, f.svc.Approve(context.Background(), request.ID, domain.DurationYear))

	account, err := f.accounts.GetByID(context.Background(), owner)
	require.NoError(t, err)
	require.NotNil(t, account.ExpiresAt)
	assert.WithinDuration(t, before.Add(365*24*time.Hour), *account.ExpiresAt, time.Minute)
}

func TestSubscriptionApproveLiftsLimitSuspensions(t *testing.T) {
	f := newSubscriptionFixture()
	owner := uuid.New()
	f.accounts.add(&domain.Account{ID: owner, Tier: domain.TierBasic})

	base := time.Now().Add(-24 * time.Hour)
	suspended := &domain.Listing{
		ID:              uuid.New(),
		OwnerID:         owner,
		Kind:            domain.KindLand,
		Status:          domain.StatusApproved,
		IsSuspended:     true,
		SuspendedReason: domain.SuspendReasonLimit,
		CreatedAt:       base,
	}
	f.listings.add(suspended)
	seedListing(f.listings, owner, domain.KindLand, domain.StatusApproved, base.Add(time.Hour))

	request, err := f.svc.File(context.Background(), domain.FileRequestParams{
		AccountID: owner,
		Plan:      domain.TierPremium,
		WhatsApp:  "+962790000000",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Approve(context.Background(), request.ID, domain.DurationMonth))

	l := f.listings.get(suspended.ID)
	assert.False(t, l.IsSuspended)
	assert.Equal(t, domain.SuspendReasonNone, l.SuspendedReason)
}

func TestSubscriptionApproveNonPending(t *testing.T) {
	f := newSubscriptionFixture()
	owner := uuid.New()
	f.accounts.add(&domain.Account{ID: owner, Tier: domain.TierBasic})

	request, err := f.svc.File(context.Background(), domain.FileRequestParams{
		AccountID: owner,
		Plan:      domain.TierPremium,
		WhatsApp:  "+962790000000",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Approve(context.Background(), request.ID, domain.DurationMonth))

	err = f.svc.Approve(context.Background(), request.ID, domain.DurationMonth)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestSubscriptionReject(t *testing.T) {
	f := newSubscriptionFixture()
	owner := uuid.New()
	f.accounts.add(&domain.Account{ID: owner, Tier: domain.TierBasic})

	request, err := f.svc.File(context.Background(), domain.FileRequestParams{
		AccountID: owner,
		Plan:      domain.TierVIP,
		WhatsApp:  "+962790000000",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Reject(context.Background(), request.ID, "payment not received"))

	stored, err := f.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, stored.Status)
	assert.Equal(t, "payment not received", stored.ReviewNote)

	// The account tier is untouched.
	account, err := f.accounts.GetByID(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, domain.TierBasic, account.Tier)
}

func TestSubscriptionListByStatus(t *testing.T) {
	f := newSubscriptionFixture()
	owner := uuid.New()
	f.accounts.add(&domain.Account{ID: owner, Tier: domain.TierBasic})

	first, err := f.svc.File(context.Background(), domain.FileRequestParams{
		AccountID: owner, Plan: domain.TierPremium, WhatsApp: "+962790000000",
	})
	require.NoError(t, err)
	_, err = f.svc.File(context.Background(), domain.FileRequestParams{
		AccountID: owner, Plan: domain.TierVIP, WhatsApp: "+962790000000",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Reject(context.Background(), first.ID, "no"))

	pending, err := f.svc.List(context.Background(), domain.RequestPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	rejected, err := f.svc.List(context.Background(), domain.RequestRejected)
	require.NoError(t, err)
	assert.Len(t, rejected, 1)
}
