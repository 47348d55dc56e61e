package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/infrastructure/models"
)

// WebhookLogRepository implements webhook delivery log operations
type WebhookLogRepository struct {
	db *gorm.DB
}

// NewWebhookLogRepository creates a new webhook log repository
func NewWebhookLogRepository(db *gorm.DB) *WebhookLogRepository {
	return &WebhookLogRepository{db: db}
}

// Create creates a new webhook log row
func (r *WebhookLogRepository) Create(ctx context.Context, log *entities.WebhookLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	m := r.toModel(log)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	log.CreatedAt = m.CreatedAt
	return nil
}

// Update persists the delivery outcome fields.
func (r *WebhookLogRepository) Update(ctx context.Context, log *entities.WebhookLog) error {
	m := r.toModel(log)
	res := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.WebhookLog{}).
		Where("id = ?", log.ID).
		Select("response_status", "response_body", "success", "retry_count", "next_retry_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// GetByID gets a webhook log by ID
func (r *WebhookLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.WebhookLog, error) {
	var m models.WebhookLog
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// PendingRetries returns failed deliveries that are due for another
// attempt. A row with no schedule yet (NULL next_retry_at) is due
// immediately; rows with more than maxRetries failed attempts are parked.
func (r *WebhookLogRepository) PendingRetries(ctx context.Context, now time.Time, maxRetries int) ([]*entities.WebhookLog, error) {
	var ms []models.WebhookLog
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("success = ? AND retry_count <= ? AND (next_retry_at IS NULL OR next_retry_at <= ?)",
			false, maxRetries, now).
		Order("next_retry_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	logs := make([]*entities.WebhookLog, 0, len(ms))
	for i := range ms {
		logs = append(logs, r.toEntity(&ms[i]))
	}
	return logs, nil
}

func (r *WebhookLogRepository) toModel(e *entities.WebhookLog) *models.WebhookLog {
	var status *int
	if e.ResponseStatus.Valid {
		v := e.ResponseStatus.Int
		status = &v
	}
	return &models.WebhookLog{
		ID:             e.ID,
		TenantID:       e.TenantID,
		Event:          e.Event,
		Payload:        e.Payload,
		TargetURL:      e.TargetURL,
		ResponseStatus: status,
		ResponseBody:   e.ResponseBody.Ptr(),
		Success:        e.Success,
		RetryCount:     e.RetryCount,
		NextRetryAt:    e.NextRetryAt,
		CreatedAt:      e.CreatedAt,
	}
}

func (r *WebhookLogRepository) toEntity(m *models.WebhookLog) *entities.WebhookLog {
	return &entities.WebhookLog{
		ID:             m.ID,
		TenantID:       m.TenantID,
		Event:          m.Event,
		Payload:        m.Payload,
		TargetURL:      m.TargetURL,
		ResponseStatus: null.IntFromPtr(m.ResponseStatus),
		ResponseBody:   null.StringFromPtr(m.ResponseBody),
		Success:        m.Success,
		RetryCount:     m.RetryCount,
		NextRetryAt:    m.NextRetryAt,
		CreatedAt:      m.CreatedAt,
	}
}
