package models

import (
	"time"

	"github.com/google/uuid"
)

type WebhookLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID       string    `gorm:"type:varchar(64);not null;index"`
	Event          string    `gorm:"type:varchar(64);not null"`
	Payload        string    `gorm:"type:text;not null"`
	TargetURL      string    `gorm:"type:varchar(2048);not null"`
	ResponseStatus *int
	ResponseBody   *string    `gorm:"type:text"`
	Success        bool       `gorm:"not null;default:false;index"`
	RetryCount     int        `gorm:"not null;default:0"`
	NextRetryAt    *time.Time `gorm:"index"`
	CreatedAt      time.Time
}
