package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
)

func TestPlanRepository_CreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	createPlanTable(t, db)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	plan := &entities.Plan{
		TenantID:   "default",
		PlanKey:    "pro-monthly",
		Name:       "Pro",
		Price:      "9.99",
		Currency:   entities.TokenUSDT,
		PeriodDays: null.IntFrom(30),
		Features:   []string{"priority-support", "api-access"},
		IsActive:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, repo.Create(ctx, plan))
	require.NotEqual(t, uuid.Nil, plan.ID)

	byID, err := repo.GetByID(ctx, "default", plan.ID)
	require.NoError(t, err)
	require.Equal(t, "pro-monthly", byID.PlanKey)
	require.Equal(t, []string{"priority-support", "api-access"}, byID.Features)
	require.Equal(t, 30, byID.PeriodDays.Int)

	byKey, err := repo.GetByKey(ctx, "default", "pro-monthly")
	require.NoError(t, err)
	require.Equal(t, plan.ID, byKey.ID)

	// Same key for the same tenant is rejected.
	dup := &entities.Plan{
		TenantID: "default",
		PlanKey:  "pro-monthly",
		Name:     "Pro again",
		Price:    "19.99",
		Currency: entities.TokenUSDT,
		IsActive: true,
	}
	require.ErrorIs(t, repo.Create(ctx, dup), domainerrors.ErrAlreadyExists)

	// Same key under another tenant is fine.
	other := &entities.Plan{
		TenantID: "acme",
		PlanKey:  "pro-monthly",
		Name:     "Pro",
		Price:    "9.99",
		Currency: entities.TokenUSDT,
		IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, other))
}

func TestPlanRepository_UpdateAndListActive(t *testing.T) {
	db := newTestDB(t)
	createPlanTable(t, db)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	plan := &entities.Plan{
		TenantID: "default",
		PlanKey:  "basic",
		Name:     "Basic",
		Price:    "4.99",
		Currency: entities.TokenUSDC,
		IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, plan))

	lifetime := &entities.Plan{
		TenantID: "default",
		PlanKey:  "lifetime",
		Name:     "Lifetime",
		Price:    "99.00",
		Currency: entities.TokenUSDT,
		IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, lifetime))

	plan.Name = "Basic v2"
	plan.IsActive = false
	plan.UpdatedAt = time.Now()
	require.NoError(t, repo.Update(ctx, plan))

	active, err := repo.ListActive(ctx, "default")
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "lifetime", active[0].PlanKey)
	require.False(t, active[0].PeriodDays.Valid)

	got, err := repo.GetByID(ctx, "default", plan.ID)
	require.NoError(t, err)
	require.Equal(t, "Basic v2", got.Name)
	require.False(t, got.IsActive)

	missing := &entities.Plan{ID: uuid.New(), TenantID: "default"}
	require.ErrorIs(t, repo.Update(ctx, missing), domainerrors.ErrNotFound)

	_, err = repo.GetByKey(ctx, "default", "nope")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTenantRepository_Flow(t *testing.T) {
	db := newTestDB(t)
	createTenantTable(t, db)
	repo := NewTenantRepository(db)
	ctx := context.Background()

	tenant := &entities.Tenant{
		ID:            "default",
		Name:          "Default",
		APIKeyHash:    "hash-1",
		WebhookSecret: "whsec",
		WebhookURL:    null.StringFrom("https://example.com/hooks"),
		IsActive:      true,
	}
	require.NoError(t, repo.Create(ctx, tenant))

	got, err := repo.GetByID(ctx, "default")
	require.NoError(t, err)
	require.Equal(t, "hash-1", got.APIKeyHash)
	require.Equal(t, "https://example.com/hooks", got.WebhookURL.String)

	byHash, err := repo.GetByAPIKeyHash(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, "default", byHash.ID)

	_, err = repo.GetByAPIKeyHash(ctx, "unknown")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	tenant.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, tenant))
	got, err = repo.GetByID(ctx, "default")
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)

	dup := &entities.Tenant{ID: "other", Name: "Other", APIKeyHash: "hash-1", IsActive: true}
	require.ErrorIs(t, repo.Create(ctx, dup), domainerrors.ErrAlreadyExists)
}
