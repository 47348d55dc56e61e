package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"stablepay.backend/internal/domain/entities"
)

// SubscriptionRepository defines subscription data operations
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entities.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Subscription, error)
	ActiveForUser(ctx context.Context, tenantID, externalUserID string) (*entities.Subscription, error)
	HistoryForUser(ctx context.Context, tenantID, externalUserID string) ([]*entities.Subscription, error)
	ExpiredDue(ctx context.Context, now time.Time) ([]*entities.Subscription, error)
	Update(ctx context.Context, sub *entities.Subscription) error
}
