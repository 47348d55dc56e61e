package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID            string  `gorm:"type:varchar(64);primaryKey"`
	Name          string  `gorm:"type:varchar(255);not null"`
	APIKeyHash    string  `gorm:"type:varchar(64);not null;uniqueIndex"`
	WebhookURL    *string `gorm:"type:varchar(2048)"`
	WebhookSecret string  `gorm:"type:varchar(255)"`
	ReceiverEVM   *string `gorm:"column:receiver_evm;type:varchar(64)"`
	ReceiverTron  *string `gorm:"type:varchar(64)"`
	IsActive      bool    `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Plan struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_plans_tenant_key,priority:1"`
	PlanKey     string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_plans_tenant_key,priority:2"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description *string   `gorm:"type:text"`
	Price       string    `gorm:"type:decimal(18,6);not null"`
	Currency    string    `gorm:"type:varchar(8);not null"`
	PeriodDays  *int
	Features    string `gorm:"type:text;default:'[]'"`
	IsActive    bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
