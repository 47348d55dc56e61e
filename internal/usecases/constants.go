package usecases

import "time"

const (
	// MaxRetryCount is the monitor's per-payment retry budget for adapter
	// failures before the payment is marked failed.
	MaxRetryCount = 3

	// MonitorTickInterval is how often the monitor polls chains.
	MonitorTickInterval = 30 * time.Second

	// MaxHistoryLimit caps payment history page size.
	MaxHistoryLimit = 50

	// WebhookTimeout bounds a single delivery attempt.
	WebhookTimeout = 10 * time.Second

	// webhookBodyLimit truncates stored webhook response bodies.
	webhookBodyLimit = 1000
)

// WebhookRetryDelays is the backoff schedule between delivery attempts.
var WebhookRetryDelays = []time.Duration{
	60 * time.Second,
	300 * time.Second,
	900 * time.Second,
	3600 * time.Second,
}
