package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/infrastructure/models"
)

// isUniqueViolation reports whether err is a unique-index violation from
// either the postgres driver or the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}

// PlanRepository implements plan data operations
type PlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create creates a new plan. (tenant_id, plan_key) is unique.
func (r *PlanRepository) Create(ctx context.Context, plan *entities.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	m := r.toModel(plan)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	plan.CreatedAt = m.CreatedAt
	plan.UpdatedAt = m.UpdatedAt
	return nil
}

// Update updates a plan
func (r *PlanRepository) Update(ctx context.Context, plan *entities.Plan) error {
	m := r.toModel(plan)
	res := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Plan{}).
		Where("id = ? AND tenant_id = ?", plan.ID, plan.TenantID).
		Select("name", "description", "price", "currency", "period_days", "features", "is_active", "updated_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// GetByID gets a plan by ID scoped to a tenant
func (r *PlanRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*entities.Plan, error) {
	var m models.Plan
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByKey gets a plan by its tenant-scoped key
func (r *PlanRepository) GetByKey(ctx context.Context, tenantID, planKey string) (*entities.Plan, error) {
	var m models.Plan
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND plan_key = ?", tenantID, planKey).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListActive lists the tenant's active plans ordered by creation time.
func (r *PlanRepository) ListActive(ctx context.Context, tenantID string) ([]*entities.Plan, error) {
	var ms []models.Plan
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	plans := make([]*entities.Plan, 0, len(ms))
	for i := range ms {
		plans = append(plans, r.toEntity(&ms[i]))
	}
	return plans, nil
}

func (r *PlanRepository) toModel(e *entities.Plan) *models.Plan {
	features := "[]"
	if len(e.Features) > 0 {
		if b, err := json.Marshal(e.Features); err == nil {
			features = string(b)
		}
	}
	return &models.Plan{
		ID:          e.ID,
		TenantID:    e.TenantID,
		PlanKey:     e.PlanKey,
		Name:        e.Name,
		Description: e.Description.Ptr(),
		Price:       e.Price,
		Currency:    string(e.Currency),
		PeriodDays:  e.PeriodDays.Ptr(),
		Features:    features,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (r *PlanRepository) toEntity(m *models.Plan) *entities.Plan {
	var features []string
	if m.Features != "" {
		_ = json.Unmarshal([]byte(m.Features), &features)
	}
	return &entities.Plan{
		ID:          m.ID,
		TenantID:    m.TenantID,
		PlanKey:     m.PlanKey,
		Name:        m.Name,
		Description: null.StringFromPtr(m.Description),
		Price:       m.Price,
		Currency:    entities.Token(m.Currency),
		PeriodDays:  null.IntFromPtr(m.PeriodDays),
		Features:    features,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
