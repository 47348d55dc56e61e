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

// PaymentRepository implements payment data operations. Tx-hash uniqueness
// is enforced by a unique index and surfaced as ErrDuplicateTxHash; a
// partial unique index on (tenant_id, external_user_id) over non-terminal
// statuses allows at most one in-flight payment per user.
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	m := r.toModel(payment)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		// New rows carry no tx hash, so the only unique index that can
		// trip here is the in-flight guard.
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	payment.CreatedAt = m.CreatedAt
	payment.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a payment by ID scoped to a tenant
func (r *PaymentRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*entities.Payment, error) {
	var m models.Payment
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

// GetAnyByID gets a payment by ID without tenant scoping (background jobs).
func (r *PaymentRepository) GetAnyByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	var m models.Payment
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByTxHash gets the payment bound to a transaction hash
func (r *PaymentRepository) GetByTxHash(ctx context.Context, txHash string) (*entities.Payment, error) {
	var m models.Payment
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("tx_hash = ?", txHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// PendingForUser returns the user's single in-flight payment, if any.
func (r *PaymentRepository) PendingForUser(ctx context.Context, tenantID, externalUserID string) (*entities.Payment, error) {
	var m models.Payment
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND external_user_id = ? AND status IN ?",
			tenantID, externalUserID,
			[]string{string(entities.PaymentStatusPending), string(entities.PaymentStatusAwaitingConfirmation)}).
		Order("created_at DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListByUser returns the user's payments, newest first, capped at limit.
func (r *PaymentRepository) ListByUser(ctx context.Context, tenantID, externalUserID string, limit int) ([]*entities.Payment, error) {
	var ms []models.Payment
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND external_user_id = ?", tenantID, externalUserID).
		Order("created_at DESC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// Expired returns pending payments whose expiry window has closed.
func (r *PaymentRepository) Expired(ctx context.Context, now time.Time) ([]*entities.Payment, error) {
	var ms []models.Payment
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(entities.PaymentStatusPending), now).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// AwaitingConfirmation returns payments whose sender claimed to have paid.
func (r *PaymentRepository) AwaitingConfirmation(ctx context.Context) ([]*entities.Payment, error) {
	var ms []models.Payment
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("status = ?", string(entities.PaymentStatusAwaitingConfirmation)).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// Update persists the mutable payment fields.
func (r *PaymentRepository) Update(ctx context.Context, payment *entities.Payment) error {
	m := r.toModel(payment)
	res := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Select("status", "tx_hash", "confirmations", "tx_confirmed_at",
			"sender_address_encrypted", "sender_address_hmac",
			"error_message", "retry_count", "updated_at").
		Updates(m)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domainerrors.ErrDuplicateTxHash
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus updates only the status column.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus) error {
	res := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) toModel(e *entities.Payment) *models.Payment {
	return &models.Payment{
		ID:                     e.ID,
		TenantID:               e.TenantID,
		ExternalUserID:         e.ExternalUserID,
		PlanID:                 e.PlanID,
		Amount:                 e.Amount,
		Token:                  string(e.Token),
		Network:                string(e.Network),
		SenderAddressEncrypted: e.SenderAddressEncrypted,
		SenderAddressHMAC:      e.SenderAddressHMAC,
		ReceiverAddress:        e.ReceiverAddress,
		Status:                 string(e.Status),
		TxHash:                 e.TxHash.Ptr(),
		Confirmations:          e.Confirmations,
		TxConfirmedAt:          e.TxConfirmedAt,
		ErrorMessage:           e.ErrorMessage.Ptr(),
		RetryCount:             e.RetryCount,
		ExpiresAt:              e.ExpiresAt,
		CreatedAt:              e.CreatedAt,
		UpdatedAt:              e.UpdatedAt,
	}
}

func (r *PaymentRepository) toEntity(m *models.Payment) *entities.Payment {
	return &entities.Payment{
		ID:                     m.ID,
		TenantID:               m.TenantID,
		ExternalUserID:         m.ExternalUserID,
		PlanID:                 m.PlanID,
		Amount:                 m.Amount,
		Token:                  entities.Token(m.Token),
		Network:                entities.Network(m.Network),
		SenderAddressEncrypted: m.SenderAddressEncrypted,
		SenderAddressHMAC:      m.SenderAddressHMAC,
		ReceiverAddress:        m.ReceiverAddress,
		Status:                 entities.PaymentStatus(m.Status),
		TxHash:                 null.StringFromPtr(m.TxHash),
		Confirmations:          m.Confirmations,
		TxConfirmedAt:          m.TxConfirmedAt,
		ErrorMessage:           null.StringFromPtr(m.ErrorMessage),
		RetryCount:             m.RetryCount,
		ExpiresAt:              m.ExpiresAt,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

func (r *PaymentRepository) toEntities(ms []models.Payment) []*entities.Payment {
	payments := make([]*entities.Payment, 0, len(ms))
	for i := range ms {
		payments = append(payments, r.toEntity(&ms[i]))
	}
	return payments
}
