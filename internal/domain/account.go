// Package domain contains core business types and interfaces.
//
// This file defines the Account domain type and the paid-plan lifecycle
// helpers. An account moves Active -> Grace -> Reverted as its paid period
// and grace window elapse; the only way back to Active is an approved
// subscription change request.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tier represents the subscription level of an account.
type Tier string

const (
	TierBasic   Tier = "Basic"
	TierPremium Tier = "Premium"
	TierVIP     Tier = "VIP"
)

// IsPaid returns true for tiers that carry an expiry date.
func (t Tier) IsPaid() bool {
	return t == TierPremium || t == TierVIP
}

// Valid returns true if the tier is one of the known levels.
func (t Tier) Valid() bool {
	return t == TierBasic || t == TierPremium || t == TierVIP
}

// Role controls access to the administrative surface.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// Account represents a registered marketplace account.
//
// ExpiresAt is set only while a paid tier is active. GraceUntil is set the
// first time an elapsed expiry is observed by the sweep; once it lapses both
// timestamps are cleared and the tier is Basic again.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string // Never expose this in API responses
	Role         Role
	Tier         Tier
	ExpiresAt    *time.Time
	GraceUntil   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin returns true if the account may perform administrative actions.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SubscriptionExpired returns true if the account holds a paid tier whose
// expiry date has passed.
func (a *Account) SubscriptionExpired(now time.Time) bool {
	if !a.Tier.IsPaid() || a.ExpiresAt == nil {
		return false
	}
	return !a.ExpiresAt.After(now)
}

// InGrace returns true while the grace window is open.
func (a *Account) InGrace(now time.Time) bool {
	return a.GraceUntil != nil && a.GraceUntil.After(now)
}

// GraceOver returns true once a set grace window has lapsed.
func (a *Account) GraceOver(now time.Time) bool {
	return a.GraceUntil != nil && !a.GraceUntil.After(now)
}

// RegisterParams contains the validated parameters for account registration.
type RegisterParams struct {
	Email    string
	Name     string
	Password string // Raw password, hashed by the service
}
