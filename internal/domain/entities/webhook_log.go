package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Webhook event names.
const (
	EventPaymentCreated        = "payment.created"
	EventPaymentConfirmed      = "payment.confirmed"
	EventPaymentExpired        = "payment.expired"
	EventPaymentFailed         = "payment.failed"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionExpired   = "subscription.expired"
)

// WebhookLog is one row per delivery attempt-set. The row is retried with
// increasing RetryCount until success or exhaustion.
type WebhookLog struct {
	ID             uuid.UUID   `json:"id"`
	TenantID       string      `json:"tenantId"`
	Event          string      `json:"event"`
	Payload        string      `json:"payload"`
	TargetURL      string      `json:"targetUrl"`
	ResponseStatus null.Int    `json:"responseStatus,omitempty"`
	ResponseBody   null.String `json:"responseBody,omitempty"`
	Success        bool        `json:"success"`
	RetryCount     int         `json:"retryCount"`
	NextRetryAt    *time.Time  `json:"nextRetryAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}
