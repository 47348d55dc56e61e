package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID               string    `gorm:"type:varchar(64);not null;index:idx_payments_tenant_user,priority:1"`
	ExternalUserID         string    `gorm:"type:varchar(255);not null;index:idx_payments_tenant_user,priority:2"`
	PlanID                 uuid.UUID `gorm:"type:uuid;not null"`
	Amount                 string    `gorm:"type:decimal(18,6);not null"`
	Token                  string    `gorm:"type:varchar(8);not null"`
	Network                string    `gorm:"type:varchar(16);not null"`
	SenderAddressEncrypted string    `gorm:"type:text;not null"`
	SenderAddressHMAC      string    `gorm:"type:varchar(64);not null;index"`
	ReceiverAddress        string    `gorm:"type:varchar(64);not null"`
	Status                 string    `gorm:"type:varchar(32);not null;index"`
	TxHash                 *string   `gorm:"type:varchar(128);uniqueIndex"`
	Confirmations          int       `gorm:"not null;default:0"`
	TxConfirmedAt          *time.Time
	ErrorMessage           *string   `gorm:"type:text"`
	RetryCount             int       `gorm:"not null;default:0"`
	ExpiresAt              time.Time `gorm:"index"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type Subscription struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID       string     `gorm:"type:varchar(64);not null;index:idx_subscriptions_tenant_user,priority:1"`
	ExternalUserID string     `gorm:"type:varchar(255);not null;index:idx_subscriptions_tenant_user,priority:2"`
	PlanID         uuid.UUID  `gorm:"type:uuid;not null"`
	PaymentID      *uuid.UUID `gorm:"type:uuid"`
	Status         string     `gorm:"type:varchar(16);not null;index"`
	StartsAt       time.Time
	EndsAt         *time.Time `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
