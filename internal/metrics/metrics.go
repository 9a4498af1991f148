package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ardsouq"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Quota and reconciliation metrics
var (
	QuotaChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_checks_total",
			Help:      "Total number of quota evaluations",
		},
		[]string{"kind", "mode", "decision"},
	)

	ListingsSuspendedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_suspended_total",
			Help:      "Total number of listings suspended by reconciliation",
		},
		[]string{"kind"},
	)

	ListingsSoftDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_soft_deleted_total",
			Help:      "Total number of listings soft-deleted",
		},
		[]string{"reason"},
	)

	AccountsDowngradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_downgraded_total",
			Help:      "Total number of accounts downgraded to Basic on expiry",
		},
	)
)

// Sweep metrics
var (
	SweepCyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_cycles_total",
			Help:      "Total number of completed grace-period sweep cycles",
		},
	)

	SweepCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_cycle_duration_seconds",
			Help:      "Grace-period sweep cycle duration distribution",
			Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300},
		},
	)

	SweepAccountsGraced = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_accounts_graced_total",
			Help:      "Total number of accounts moved into the grace window",
		},
	)

	SweepAccountsReverted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_accounts_reverted_total",
			Help:      "Total number of accounts reverted after grace lapsed",
		},
	)

	SweepAccountFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_account_failures_total",
			Help:      "Total number of accounts the sweep failed to process",
		},
	)
)
