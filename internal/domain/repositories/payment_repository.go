package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"stablepay.backend/internal/domain/entities"
)

// PaymentRepository defines payment data operations. The implementation
// enforces tx-hash uniqueness with a unique index; PendingForUser backs the
// single-inflight invariant.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*entities.Payment, error)
	GetAnyByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error)
	GetByTxHash(ctx context.Context, txHash string) (*entities.Payment, error)
	PendingForUser(ctx context.Context, tenantID, externalUserID string) (*entities.Payment, error)
	ListByUser(ctx context.Context, tenantID, externalUserID string, limit int) ([]*entities.Payment, error)
	Expired(ctx context.Context, now time.Time) ([]*entities.Payment, error)
	AwaitingConfirmation(ctx context.Context) ([]*entities.Payment, error)
	Update(ctx context.Context, payment *entities.Payment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus) error
}
