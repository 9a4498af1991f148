// Package domain contains core business types and interfaces.
//
// This file defines the Listing type shared by the two publishable kinds
// (land listings and contractor profiles) and the deterministic ordering
// used when partitioning a collection against a tier limit.
package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ListingKind identifies which quota-bound collection a listing belongs to.
type ListingKind string

const (
	KindLand       ListingKind = "land"
	KindContractor ListingKind = "contractor"
)

// Kinds lists every listing kind an account can own. Reconciliation after a
// tier change must cover all of them.
var Kinds = []ListingKind{KindLand, KindContractor}

// Valid returns true if the kind is known.
func (k ListingKind) Valid() bool {
	return k == KindLand || k == KindContractor
}

// ListingStatus is the review state of a listing.
type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

// SuspendReason records why a listing is hidden from public queries.
type SuspendReason string

const (
	SuspendReasonNone        SuspendReason = ""
	SuspendReasonLimit       SuspendReason = "limit"        // over the tier cap, reversible
	SuspendReasonExpired     SuspendReason = "expired"      // grace window lapsed, soft-deleted
	SuspendReasonUserDeleted SuspendReason = "user_deleted" // owner account removed
)

// Listing is a publishable marketplace entry. A soft-deleted listing
// (DeletedAt set) is always suspended and excluded from every public query
// and every quota count.
type Listing struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	Kind            ListingKind
	Title           string
	City            string
	Price           int64
	Photos          []string
	Description     string
	Status          ListingStatus
	ReviewNote      string
	IsSuspended     bool
	SuspendedReason SuspendReason
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsDeleted returns true if the listing has been soft-deleted.
func (l *Listing) IsDeleted() bool {
	return l.DeletedAt != nil
}

// PubliclyVisible returns true if the listing should appear in public
// queries: approved, not suspended, not deleted.
func (l *Listing) PubliclyVisible() bool {
	return l.Status == StatusApproved && !l.IsSuspended && !l.IsDeleted()
}

// statusRank orders review states for reconciliation: approved listings are
// the most valuable to keep visible, then pending, then rejected.
func statusRank(s ListingStatus) int {
	switch s {
	case StatusApproved:
		return 0
	case StatusPending:
		return 1
	default:
		return 2
	}
}

// SortForReconcile sorts listings into the total order used when partitioning
// against a tier limit: approved before pending before rejected, newest
// first within a status, listing ID as the final tie-break so the order is
// stable across runs regardless of store ordering.
func SortForReconcile(listings []Listing) {
	sort.Slice(listings, func(i, j int) bool {
		a, b := &listings[i], &listings[j]
		if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
			return ra < rb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// PartitionByLimit splits listings, already holding any order, into the set
// to keep visible (first limit entries of the reconcile order) and the
// overflow to suspend or remove. The input slice is re-sorted in place.
func PartitionByLimit(listings []Listing, limit int) (keep, overflow []Listing) {
	SortForReconcile(listings)
	if limit < 0 {
		limit = 0
	}
	if limit > len(listings) {
		limit = len(listings)
	}
	return listings[:limit], listings[limit:]
}

// CreateListingParams contains validated parameters for creating a listing.
type CreateListingParams struct {
	OwnerID     uuid.UUID
	Kind        ListingKind
	Title       string
	City        string
	Price       int64
	Photos      []string
	Description string
}

// UpdateListingParams contains parameters for an owner edit. An edit always
// resets the listing to pending review.
type UpdateListingParams struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	City        string
	Price       int64
	Photos      []string
	Description string
}
