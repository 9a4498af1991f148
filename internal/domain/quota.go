// Package domain contains core business types and interfaces.
//
// This file defines quota types for admission control of listings based on
// subscription tier.
package domain

import "fmt"

// QuotaMode selects which listing statuses count toward usage.
type QuotaMode string

const (
	// QuotaModeCreate counts pending and approved listings, so outstanding
	// review requests also consume quota at creation time.
	QuotaModeCreate QuotaMode = "create"

	// QuotaModeApprove counts approved listings only: an item about to be
	// approved must not be blocked by other still-pending items.
	QuotaModeApprove QuotaMode = "approve"
)

// Statuses returns the listing statuses that count as used in this mode.
func (m QuotaMode) Statuses() []ListingStatus {
	if m == QuotaModeApprove {
		return []ListingStatus{StatusApproved}
	}
	return []ListingStatus{StatusPending, StatusApproved}
}

// QuotaResult is the outcome of a quota evaluation. A denied result is a
// normal decision, not a fault; callers turn it into a rejection message.
type QuotaResult struct {
	Allowed bool
	Used    int
	Limit   int
	Tier    Tier
}

// Reason returns the machine-readable denial reason recorded on listings
// rejected at approval time.
func (r QuotaResult) Reason() string {
	return fmt.Sprintf("quota exceeded: tier %s (%d/%d)", r.Tier, r.Used, r.Limit)
}

// Left returns the remaining quota headroom, never negative.
func (r QuotaResult) Left() int {
	if r.Used >= r.Limit {
		return 0
	}
	return r.Limit - r.Used
}
