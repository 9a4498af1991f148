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

func newReconcileFixture() (*fakeListingStore, ReconcileService) {
	listings := newFakeListingStore()
	plans := NewPlanService(&fakePlanStore{}, testLogger())
	return listings, NewReconcileService(listings, plans, testLogger())
}

func TestReconcileSuspendsOverflow(t *testing.T) {
	listings, reconciler := newReconcileFixture()
	owner := uuid.New()
	base := time.Now().Add(-24 * time.Hour)

	// Three approved listings under a Basic cap of 1: the newest approved
	// listing survives, the two older ones are suspended.
	oldest := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base)
	middle := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base.Add(time.Hour))
	newest := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base.Add(2*time.Hour))

	require.NoError(t, reconciler.Reconcile(context.Background(), owner, domain.TierBasic, domain.KindLand))

	kept := listings.get(newest)
	assert.False(t, kept.IsSuspended)
	assert.Equal(t, domain.SuspendReasonNone, kept.SuspendedReason)

	for _, id := range []uuid.UUID{oldest, middle} {
		l := listings.get(id)
		assert.True(t, l.IsSuspended)
		assert.Equal(t, domain.SuspendReasonLimit, l.SuspendedReason)
		assert.Nil(t, l.DeletedAt)
	}
}

func TestReconcilePrefersApprovedOverPending(t *testing.T) {
	listings, reconciler := newReconcileFixture()
	owner := uuid.New()
	base := time.Now().Add(-24 * time.Hour)

	// The pending listing is newer but approved status outranks recency.
	approved := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base)
	pending := seedListing(listings, owner, domain.KindLand, domain.StatusPending, base.Add(time.Hour))

	require.NoError(t, reconciler.Reconcile(context.Background(), owner, domain.TierBasic, domain.KindLand))

	assert.False(t, listings.get(approved).IsSuspended)
	assert.True(t, listings.get(pending).IsSuspended)
}

func TestReconcileUnsuspendsOnUpgrade(t *testing.T) {
	listings, reconciler := newReconcileFixture()
	owner := uuid.New()
	base := time.Now().Add(-24 * time.Hour)

	a := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base)
	b := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base.Add(time.Hour))

	require.NoError(t, reconciler.Reconcile(context.Background(), owner, domain.TierBasic, domain.KindLand))
	assert.True(t, listings.get(a).IsSuspended)

	// Premium cap is 2: the previously limited listing comes back.
	require.NoError(t, reconciler.Reconcile(context.Background(), owner, domain.TierPremium, domain.KindLand))
	for _, id := range []uuid.UUID{a, b} {
		l := listings.get(id)
		assert.False(t, l.IsSuspended)
		assert.Equal(t, domain.SuspendReasonNone, l.SuspendedReason)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	listings, reconciler := newReconcileFixture()
	owner := uuid.New()
	base := time.Now().Add(-24 * time.Hour)

	a := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base)
	b := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base.Add(time.Hour))

	require.NoError(t, reconciler.Reconcile(context.Background(), owner, domain.TierBasic, domain.KindLand))
	require.NoError(t, reconciler.Reconcile(context.Background(), owner, domain.TierBasic, domain.KindLand))

	assert.True(t, listings.get(a).IsSuspended)
	assert.False(t, listings.get(b).IsSuspended)
}

func TestReconcileIgnoresOtherKinds(t *testing.T) {
	listings, reconciler := newReconcileFixture()
	owner := uuid.New()
	base := time.Now().Add(-24 * time.Hour)

	seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base)
	contractor := seedListing(listings, owner, domain.KindContractor, domain.StatusApproved, base.Add(time.Hour))
	land := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base.Add(2*time.Hour))

	require.NoError(t, reconciler.Reconcile(context.Background(), owner, domain.TierBasic, domain.KindLand))

	// The contractor profile is outside this reconciliation's scope.
	assert.False(t, listings.get(contractor).IsSuspended)
	assert.False(t, listings.get(land).IsSuspended)
}

func TestSoftDeleteOverflow(t *testing.T) {
	listings, reconciler := newReconcileFixture()
	owner := uuid.New()
	base := time.Now().Add(-24 * time.Hour)

	oldest := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base)
	newest := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base.Add(time.Hour))

	// Simulate the suspended state left behind by an earlier reconcile.
	require.NoError(t, reconciler.Reconcile(context.Background(), owner, domain.TierBasic, domain.KindLand))

	require.NoError(t, reconciler.SoftDeleteOverflow(context.Background(), owner, domain.TierBasic, domain.KindLand))

	kept := listings.get(newest)
	assert.False(t, kept.IsSuspended)
	assert.Nil(t, kept.DeletedAt)

	removed := listings.get(oldest)
	assert.True(t, removed.IsSuspended)
	assert.Equal(t, domain.SuspendReasonExpired, removed.SuspendedReason)
	assert.NotNil(t, removed.DeletedAt)
}

func TestSoftDeleteOverflowNeverResurrects(t *testing.T) {
	listings, reconciler := newReconcileFixture()
	owner := uuid.New()
	base := time.Now().Add(-24 * time.Hour)

	deletedAt := time.Now()
	dead := &domain.Listing{
		ID:              uuid.New(),
		OwnerID:         owner,
		Kind:            domain.KindLand,
		Status:          domain.StatusApproved,
		IsSuspended:     true,
		SuspendedReason: domain.SuspendReasonExpired,
		DeletedAt:       &deletedAt,
		CreatedAt:       base,
	}
	listings.add(dead)
	live := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base.Add(time.Hour))

	require.NoError(t, reconciler.Reconcile(context.Background(), owner, domain.TierPremium, domain.KindLand))

	// The soft-deleted listing stays deleted even though the cap has room.
	assert.NotNil(t, listings.get(dead.ID).DeletedAt)
	assert.True(t, listings.get(dead.ID).IsSuspended)
	assert.False(t, listings.get(live).IsSuspended)
}

func TestReconcileAllCoversEveryKind(t *testing.T) {
	listings, reconciler := newReconcileFixture()
	owner := uuid.New()
	base := time.Now().Add(-24 * time.Hour)

	landOverflow := seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base)
	seedListing(listings, owner, domain.KindLand, domain.StatusApproved, base.Add(time.Hour))
	contractorOverflow := seedListing(listings, owner, domain.KindContractor, domain.StatusApproved, base)
	seedListing(listings, owner, domain.KindContractor, domain.StatusApproved, base.Add(time.Hour))

	require.NoError(t, reconciler.ReconcileAll(context.Background(), owner, domain.TierBasic))

	assert.True(t, listings.get(landOverflow).IsSuspended)
	assert.True(t, listings.get(contractorOverflow).IsSuspended)
}
