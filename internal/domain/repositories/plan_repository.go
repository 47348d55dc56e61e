package repositories

import (
	"context"

	"github.com/google/uuid"
	"stablepay.backend/internal/domain/entities"
)

// PlanRepository defines plan data operations
type PlanRepository interface {
	Create(ctx context.Context, plan *entities.Plan) error
	Update(ctx context.Context, plan *entities.Plan) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*entities.Plan, error)
	GetByKey(ctx context.Context, tenantID, planKey string) (*entities.Plan, error)
	ListActive(ctx context.Context, tenantID string) ([]*entities.Plan, error)
}
