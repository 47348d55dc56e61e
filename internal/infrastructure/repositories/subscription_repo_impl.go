package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/infrastructure/models"
)

// SubscriptionRepository implements subscription data operations
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create creates a new subscription
func (r *SubscriptionRepository) Create(ctx context.Context, sub *entities.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	m := r.toModel(sub)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	sub.CreatedAt = m.CreatedAt
	sub.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a subscription by ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Subscription, error) {
	var m models.Subscription
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ActiveForUser returns the user's current active subscription, if any.
// Lifetime subscriptions have no end date and always match.
func (r *SubscriptionRepository) ActiveForUser(ctx context.Context, tenantID, externalUserID string) (*entities.Subscription, error) {
	var m models.Subscription
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND external_user_id = ? AND status = ?",
			tenantID, externalUserID, string(entities.SubscriptionStatusActive)).
		Where("ends_at IS NULL OR ends_at > ?", time.Now().UTC()).
		Order("created_at DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// HistoryForUser returns all of the user's subscriptions, newest first.
func (r *SubscriptionRepository) HistoryForUser(ctx context.Context, tenantID, externalUserID string) ([]*entities.Subscription, error) {
	var ms []models.Subscription
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND external_user_id = ?", tenantID, externalUserID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	subs := make([]*entities.Subscription, 0, len(ms))
	for i := range ms {
		subs = append(subs, r.toEntity(&ms[i]))
	}
	return subs, nil
}

// ExpiredDue returns active subscriptions whose end date has passed.
func (r *SubscriptionRepository) ExpiredDue(ctx context.Context, now time.Time) ([]*entities.Subscription, error) {
	var ms []models.Subscription
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("status = ? AND ends_at IS NOT NULL AND ends_at < ?",
			string(entities.SubscriptionStatusActive), now).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	subs := make([]*entities.Subscription, 0, len(ms))
	for i := range ms {
		subs = append(subs, r.toEntity(&ms[i]))
	}
	return subs, nil
}

// Update persists the mutable subscription fields.
func (r *SubscriptionRepository) Update(ctx context.Context, sub *entities.Subscription) error {
	m := r.toModel(sub)
	res := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		Select("status", "ends_at", "updated_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) toModel(e *entities.Subscription) *models.Subscription {
	return &models.Subscription{
		ID:             e.ID,
		TenantID:       e.TenantID,
		ExternalUserID: e.ExternalUserID,
		PlanID:         e.PlanID,
		PaymentID:      e.PaymentID,
		Status:         string(e.Status),
		StartsAt:       e.StartsAt,
		EndsAt:         e.EndsAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (r *SubscriptionRepository) toEntity(m *models.Subscription) *entities.Subscription {
	return &entities.Subscription{
		ID:             m.ID,
		TenantID:       m.TenantID,
		ExternalUserID: m.ExternalUserID,
		PlanID:         m.PlanID,
		PaymentID:      m.PaymentID,
		Status:         entities.SubscriptionStatus(m.Status),
		StartsAt:       m.StartsAt,
		EndsAt:         m.EndsAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
