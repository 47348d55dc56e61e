package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MonitorQueueSize tracks payments currently enrolled for chain polling.
	MonitorQueueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stablepay_monitor_queue_size",
		Help: "Number of payments enrolled in the blockchain monitor",
	})

	// PaymentsConfirmed counts payments that reached confirmed, by network.
	PaymentsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stablepay_payments_confirmed_total",
		Help: "Payments confirmed on chain",
	}, []string{"network"})

	// WebhookDeliveries counts delivery attempts by outcome (success/failure).
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stablepay_webhook_deliveries_total",
		Help: "Webhook delivery attempts by outcome",
	}, []string{"outcome"})

	// OfacRefreshRuns counts SDN list ingestion runs by outcome.
	OfacRefreshRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stablepay_ofac_refresh_runs_total",
		Help: "OFAC SDN ingestion runs by outcome",
	}, []string{"outcome"})

	// MonitorTickDuration observes how long a full monitor tick takes.
	MonitorTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stablepay_monitor_tick_seconds",
		Help:    "Duration of a full monitor tick",
		Buckets: prometheus.DefBuckets,
	})
)
