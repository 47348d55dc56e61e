package repositories

import (
	"context"
	"errors"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/infrastructure/models"
)

// TenantRepository implements tenant data operations
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create creates a new tenant
func (r *TenantRepository) Create(ctx context.Context, tenant *entities.Tenant) error {
	m := r.toModel(tenant)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	tenant.CreatedAt = m.CreatedAt
	tenant.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*entities.Tenant, error) {
	var m models.Tenant
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByAPIKeyHash looks a tenant up by its API key digest.
func (r *TenantRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*entities.Tenant, error) {
	var m models.Tenant
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("api_key_hash = ?", hash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Update updates a tenant
func (r *TenantRepository) Update(ctx context.Context, tenant *entities.Tenant) error {
	m := r.toModel(tenant)
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", tenant.ID).Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *TenantRepository) toModel(e *entities.Tenant) *models.Tenant {
	return &models.Tenant{
		ID:            e.ID,
		Name:          e.Name,
		APIKeyHash:    e.APIKeyHash,
		WebhookURL:    e.WebhookURL.Ptr(),
		WebhookSecret: e.WebhookSecret,
		ReceiverEVM:   e.ReceiverEVM.Ptr(),
		ReceiverTron:  e.ReceiverTron.Ptr(),
		IsActive:      e.IsActive,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func (r *TenantRepository) toEntity(m *models.Tenant) *entities.Tenant {
	return &entities.Tenant{
		ID:            m.ID,
		Name:          m.Name,
		APIKeyHash:    m.APIKeyHash,
		WebhookURL:    null.StringFromPtr(m.WebhookURL),
		WebhookSecret: m.WebhookSecret,
		ReceiverEVM:   null.StringFromPtr(m.ReceiverEVM),
		ReceiverTron:  null.StringFromPtr(m.ReceiverTron),
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
