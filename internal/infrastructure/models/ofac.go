package models

import (
	"time"

	"github.com/google/uuid"
)

type OfacSanctionedAddress struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Address      string    `gorm:"type:varchar(128);not null"`
	AddressLower string    `gorm:"type:varchar(128);not null;index"`
	AddressType  string    `gorm:"type:varchar(32);not null;index"`
	SDNName      string    `gorm:"type:varchar(512)"`
	SDNID        string    `gorm:"type:varchar(64)"`
	Source       string    `gorm:"type:varchar(32);not null"`
	LastSeenAt   time.Time
}

type OfacUpdateLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	TotalAddresses int       `gorm:"not null"`
	NewAddresses   int       `gorm:"not null"`
	Removed        int       `gorm:"not null"`
	Success        bool      `gorm:"not null"`
	Error          *string   `gorm:"type:text"`
	CreatedAt      time.Time
}
