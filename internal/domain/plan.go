// Package domain contains core business types and interfaces.
//
// This file defines the plan configuration singleton that maps subscription
// tiers to listing caps and paid durations.
package domain

// VIPLimitSentinel stands in for an unbounded cap so limit arithmetic stays
// total. No account realistically owns this many listings.
const VIPLimitSentinel = 999

// Plan configuration defaults, used whenever the singleton row is missing.
const (
	DefaultBasicLimit   = 1
	DefaultPremiumLimit = 2
	DefaultVIPLimit     = VIPLimitSentinel
	DefaultMonthDays    = 30
	DefaultYearDays     = 365
)

// PlanConfigKey is the fixed identifier of the singleton row.
const PlanConfigKey = "sub-plans"

// DurationKind selects the paid period granted on subscription approval.
type DurationKind string

const (
	DurationMonth DurationKind = "month"
	DurationYear  DurationKind = "year"
)

// PlanConfig holds the tier caps and paid durations. It is mutated only by
// the administrative plans endpoint and read by every other component.
type PlanConfig struct {
	BasicLimit   int
	PremiumLimit int
	VIPLimit     int
	MonthDays    int
	YearDays     int
}

// DefaultPlanConfig returns the hard-coded fallback configuration.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		BasicLimit:   DefaultBasicLimit,
		PremiumLimit: DefaultPremiumLimit,
		VIPLimit:     DefaultVIPLimit,
		MonthDays:    DefaultMonthDays,
		YearDays:     DefaultYearDays,
	}
}

// LimitFor returns the cap on simultaneously visible approved listings for a
// tier. The cap applies per listing kind. Unknown tiers fall back to the
// Basic cap.
func (c PlanConfig) LimitFor(tier Tier) int {
	switch tier {
	case TierVIP:
		return c.VIPLimit
	case TierPremium:
		return c.PremiumLimit
	default:
		return c.BasicLimit
	}
}

// DurationDays returns the number of paid days granted for a duration kind.
// Anything other than a year is treated as a month.
func (c PlanConfig) DurationDays(d DurationKind) int {
	if d == DurationYear {
		return c.YearDays
	}
	return c.MonthDays
}
