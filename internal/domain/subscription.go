// Package domain contains core business types and interfaces.
//
// This file defines the subscription change request an owner files to move
// to a paid tier. Requests are reviewed manually by an administrator.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the review state of a subscription change request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// SubscriptionRequest records an account's request to move to Premium or
// VIP. Approval carries a chosen duration and cascades into the account's
// tier, expiry and a reconciliation of every listing kind it owns.
type SubscriptionRequest struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Plan       Tier // Premium or VIP only
	WhatsApp   string
	Notes      string
	Status     RequestStatus
	ReviewNote string
	ApprovedAt *time.Time
	RejectedAt *time.Time
	CreatedAt  time.Time
}

// FileRequestParams contains validated parameters for filing a request.
type FileRequestParams struct {
	AccountID uuid.UUID
	Plan      Tier
	WhatsApp  string
	Notes     string
}
