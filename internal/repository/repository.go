// Package repository implements Postgres persistence for accounts, listings,
// the plan configuration singleton and subscription change requests.
//
// All stores share one *sql.DB (pgx stdlib driver). Bulk reconciliation
// writes are plain multi-row UPDATEs with no surrounding transaction: a crash
// mid-write leaves a partially applied partition that the next reconciliation
// pass converges anyway.
package repository

import (
	"database/sql"
	"time"
)

// Repository bundles the individual stores behind a single constructor.
type Repository struct {
	Accounts      *AccountRepo
	Listings      *ListingRepo
	Plans         *PlanRepo
	Subscriptions *SubscriptionRepo
}

// New creates a Repository backed by the given database handle.
func New(db *sql.DB) *Repository {
	return &Repository{
		Accounts:      &AccountRepo{db: db},
		Listings:      &ListingRepo{db: db},
		Plans:         &PlanRepo{db: db},
		Subscriptions: &SubscriptionRepo{db: db},
	}
}

// toNullTime converts a *time.Time to sql.NullTime.
func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// fromNullTime converts sql.NullTime to *time.Time.
func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
