// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Store metrics
	SnapshotsLoaded     prometheus.Counter
	TokensAdded         prometheus.Counter
	MigrationsApplied   prometheus.Counter
	PriceBatchesApplied prometheus.Counter
	PriceUpdatesApplied prometheus.Counter
	UnknownTokenUpdates prometheus.Counter
	TokensTracked       *prometheus.GaugeVec

	// Flash metrics
	FlashTimersActive prometheus.Gauge

	// Feed metrics
	FeedConnected prometheus.Gauge
	FetchErrors   prometheus.Counter

	// Delivery metrics
	DashboardClients prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_pulse"
	}

	return &Metrics{
		SnapshotsLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "snapshots_loaded_total",
			Help:      "Total number of full token snapshots loaded",
		}),
		TokensAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "tokens_added_total",
			Help:      "Total number of tokens added via new-token events",
		}),
		MigrationsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "migrations_applied_total",
			Help:      "Total number of migration events applied",
		}),
		PriceBatchesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "price_batches_applied_total",
			Help:      "Total number of price update batches applied",
		}),
		PriceUpdatesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "price_updates_applied_total",
			Help:      "Total number of individual price updates applied",
		}),
		UnknownTokenUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "unknown_token_updates_total",
			Help:      "Total number of price updates dropped for unknown token ids",
		}),
		TokensTracked: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "tokens_tracked",
			Help:      "Number of tokens tracked by category",
		}, []string{"category"}),

		FlashTimersActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "flash",
			Name:      "timers_active",
			Help:      "Number of outstanding flash-clear timers",
		}),

		FeedConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "connected",
			Help:      "Whether the event feed is connected (1) or not (0)",
		}),
		FetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed token list fetches",
		}),

		DashboardClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "dashboard_clients",
			Help:      "Number of connected dashboard websocket clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSnapshotLoaded increments the snapshots loaded counter.
func RecordSnapshotLoaded() {
	DefaultMetrics.SnapshotsLoaded.Inc()
}

// RecordTokenAdded increments the tokens added counter.
func RecordTokenAdded() {
	DefaultMetrics.TokensAdded.Inc()
}

// RecordMigration increments the migrations applied counter.
func RecordMigration() {
	DefaultMetrics.MigrationsApplied.Inc()
}

// RecordPriceBatch records an applied batch with its applied and dropped counts.
func RecordPriceBatch(applied, unknown int) {
	DefaultMetrics.PriceBatchesApplied.Inc()
	DefaultMetrics.PriceUpdatesApplied.Add(float64(applied))
	DefaultMetrics.UnknownTokenUpdates.Add(float64(unknown))
}

// UpdateTokensTracked updates the per-category token count gauges.
func UpdateTokensTracked(newPairs, finalStretch, migrated int) {
	DefaultMetrics.TokensTracked.WithLabelValues("new-pairs").Set(float64(newPairs))
	DefaultMetrics.TokensTracked.WithLabelValues("final-stretch").Set(float64(finalStretch))
	DefaultMetrics.TokensTracked.WithLabelValues("migrated").Set(float64(migrated))
}

// UpdateFlashTimers updates the outstanding flash timer gauge.
func UpdateFlashTimers(n int) {
	DefaultMetrics.FlashTimersActive.Set(float64(n))
}

// UpdateFeedConnected updates the feed connection gauge.
func UpdateFeedConnected(connected bool) {
	if connected {
		DefaultMetrics.FeedConnected.Set(1)
	} else {
		DefaultMetrics.FeedConnected.Set(0)
	}
}

// RecordFetchError increments the fetch error counter.
func RecordFetchError() {
	DefaultMetrics.FetchErrors.Inc()
}

// UpdateDashboardClients updates the connected client gauge.
func UpdateDashboardClients(n int) {
	DefaultMetrics.DashboardClients.Set(float64(n))
}
