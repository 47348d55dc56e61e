package repositories

import (
	"context"

	"stablepay.backend/internal/domain/entities"
)

// TenantRepository defines tenant data operations
type TenantRepository interface {
	Create(ctx context.Context, tenant *entities.Tenant) error
	GetByID(ctx context.Context, id string) (*entities.Tenant, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*entities.Tenant, error)
	Update(ctx context.Context, tenant *entities.Tenant) error
}
