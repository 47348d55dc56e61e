package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DefaultTenantID is the single-tenant deployment identifier.
const DefaultTenantID = "default"

// Tenant is the configuration envelope for a deployment. Multi-tenant
// isolation is by tenant id foreign key on all owned rows.
type Tenant struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	APIKeyHash    string      `json:"-"`
	WebhookURL    null.String `json:"webhookUrl,omitempty"`
	WebhookSecret string      `json:"-"`
	ReceiverEVM   null.String `json:"receiverEvm,omitempty"`
	ReceiverTron  null.String `json:"receiverTron,omitempty"`
	IsActive      bool        `json:"isActive"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Plan is a purchasable configuration.
type Plan struct {
	ID          uuid.UUID   `json:"id"`
	TenantID    string      `json:"tenantId"`
	PlanKey     string      `json:"planKey"`
	Name        string      `json:"name"`
	Description null.String `json:"description,omitempty"`
	Price       string      `json:"price"`
	Currency    Token       `json:"currency"`
	PeriodDays  null.Int    `json:"periodDays,omitempty"`
	Features    []string    `json:"features"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CreatePlanInput is the plan creation payload.
type CreatePlanInput struct {
	PlanKey     string   `json:"planKey" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       string   `json:"price" binding:"required"`
	Currency    string   `json:"currency" binding:"required"`
	PeriodDays  *int     `json:"periodDays"`
	Features    []string `json:"features"`
}

// UpdatePlanInput carries partial plan updates; nil fields are untouched.
type UpdatePlanInput struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *string   `json:"price"`
	PeriodDays  *int      `json:"periodDays"`
	Features    *[]string `json:"features"`
	IsActive    *bool     `json:"isActive"`
}
