package entities

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents subscription status
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a time-bounded grant derived from a confirmed payment.
// EndsAt is nil for lifetime plans.
type Subscription struct {
	ID             uuid.UUID          `json:"id"`
	TenantID       string             `json:"tenantId"`
	ExternalUserID string             `json:"externalUserId"`
	PlanID         uuid.UUID          `json:"planId"`
	PaymentID      *uuid.UUID         `json:"paymentId,omitempty"`
	Status         SubscriptionStatus `json:"status"`
	StartsAt       time.Time          `json:"startsAt"`
	EndsAt         *time.Time         `json:"endsAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// SubscriptionView adds the derived days remaining.
type SubscriptionView struct {
	Subscription
	DaysRemaining *int `json:"daysRemaining,omitempty"`
}
