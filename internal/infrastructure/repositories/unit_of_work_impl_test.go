package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
)

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	createSubscriptionTable(t, db)
	uow := NewUnitOfWork(db)
	payments := NewPaymentRepository(db)
	subs := NewSubscriptionRepository(db)
	ctx := context.Background()

	// Commit: both writes land.
	p := newTestPayment("default", "user-1")
	err := uow.Do(ctx, func(txCtx context.Context) error {
		if err := payments.Create(txCtx, p); err != nil {
			return err
		}
		return subs.Create(txCtx, &entities.Subscription{
			TenantID:       "default",
			ExternalUserID: "user-1",
			PlanID:         p.PlanID,
			PaymentID:      &p.ID,
			Status:         entities.SubscriptionStatusActive,
		})
	})
	require.NoError(t, err)

	_, err = payments.GetAnyByID(ctx, p.ID)
	require.NoError(t, err)
	_, err = subs.ActiveForUser(ctx, "default", "user-1")
	require.NoError(t, err)

	// Rollback: the payment write is discarded with the error.
	boom := errors.New("boom")
	p2 := newTestPayment("default", "user-2")
	err = uow.Do(ctx, func(txCtx context.Context) error {
		if err := payments.Create(txCtx, p2); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = payments.GetAnyByID(ctx, p2.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUnitOfWork_NestedReusesTransaction(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	uow := NewUnitOfWork(db)
	payments := NewPaymentRepository(db)
	ctx := context.Background()

	p := newTestPayment("default", "user-1")
	err := uow.Do(ctx, func(outer context.Context) error {
		return uow.Do(outer, func(inner context.Context) error {
			return payments.Create(inner, p)
		})
	})
	require.NoError(t, err)

	_, err = payments.GetAnyByID(ctx, p.ID)
	require.NoError(t, err)
}
