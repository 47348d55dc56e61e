package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"stablepay.backend/internal/domain/entities"
)

// WebhookLogRepository defines webhook delivery log operations
type WebhookLogRepository interface {
	Create(ctx context.Context, log *entities.WebhookLog) error
	Update(ctx context.Context, log *entities.WebhookLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.WebhookLog, error)
	PendingRetries(ctx context.Context, now time.Time, maxRetries int) ([]*entities.WebhookLog, error)
}
