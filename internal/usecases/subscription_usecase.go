package usecases

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/domain/repositories"
	"stablepay.backend/pkg/logger"
)

// SubscriptionActivator is the confirmation handler's view of the
// subscription engine.
type SubscriptionActivator interface {
	Activate(ctx context.Context, payment *entities.Payment) (*entities.Subscription, error)
}

// SubscriptionUsecase manages grants derived from confirmed payments.
type SubscriptionUsecase struct {
	subRepo  repositories.SubscriptionRepository
	planRepo repositories.PlanRepository
	webhooks WebhookEnqueuer
}

// NewSubscriptionUsecase creates a new subscription usecase
func NewSubscriptionUsecase(
	subRepo repositories.SubscriptionRepository,
	planRepo repositories.PlanRepository,
	webhooks WebhookEnqueuer,
) *SubscriptionUsecase {
	return &SubscriptionUsecase{subRepo: subRepo, planRepo: planRepo, webhooks: webhooks}
}

// Activate creates the subscription for a confirmed payment. At most one
// subscription is active per user: any prior active grant flips to expired
// in the same call. Runs inside the confirmation transaction when the ctx
// carries one.
func (u *SubscriptionUsecase) Activate(ctx context.Context, payment *entities.Payment) (*entities.Subscription, error) {
	plan, err := u.planRepo.GetByID(ctx, payment.TenantID, payment.PlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var endsAt *time.Time
	if plan.PeriodDays.Valid {
		e := now.Add(time.Duration(plan.PeriodDays.Int) * 24 * time.Hour)
		endsAt = &e
	}

	if prior, err := u.subRepo.ActiveForUser(ctx, payment.TenantID, payment.ExternalUserID); err == nil {
		prior.Status = entities.SubscriptionStatusExpired
		if err := u.subRepo.Update(ctx, prior); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	sub := &entities.Subscription{
		TenantID:       payment.TenantID,
		ExternalUserID: payment.ExternalUserID,
		PlanID:         payment.PlanID,
		PaymentID:      &payment.ID,
		Status:         entities.SubscriptionStatusActive,
		StartsAt:       now,
		EndsAt:         endsAt,
	}
	if err := u.subRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Current returns the active subscription with derived days remaining, or
// ErrNotFound.
func (u *SubscriptionUsecase) Current(ctx context.Context, tenantID, externalUserID string) (*entities.SubscriptionView, error) {
	sub, err := u.subRepo.ActiveForUser(ctx, tenantID, externalUserID)
	if err != nil {
		return nil, err
	}
	view := &entities.SubscriptionView{Subscription: *sub}
	if sub.EndsAt != nil {
		days := int(math.Ceil(time.Until(*sub.EndsAt).Hours() / 24))
		if days < 0 {
			days = 0
		}
		view.DaysRemaining = &days
	}
	return view, nil
}

// IsActive reports whether the user currently holds an active grant.
func (u *SubscriptionUsecase) IsActive(ctx context.Context, tenantID, externalUserID string) (bool, error) {
	_, err := u.subRepo.ActiveForUser(ctx, tenantID, externalUserID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// History returns the user's subscriptions, newest first.
func (u *SubscriptionUsecase) History(ctx context.Context, tenantID, externalUserID string) ([]*entities.Subscription, error) {
	return u.subRepo.HistoryForUser(ctx, tenantID, externalUserID)
}

// ExpireDue flips overdue active subscriptions to expired and emits the
// corresponding webhooks. Returns the number expired.
func (u *SubscriptionUsecase) ExpireDue(ctx context.Context) (int, error) {
	due, err := u.subRepo.ExpiredDue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, sub := range due {
		sub.Status = entities.SubscriptionStatusExpired
		if err := u.subRepo.Update(ctx, sub); err != nil {
			logger.Error(ctx, "subscription expiry update failed",
				zap.String("subscription_id", sub.ID.String()), zap.Error(err))
			continue
		}
		expired++
		u.webhooks.Enqueue(ctx, sub.TenantID, entities.EventSubscriptionExpired, subscriptionWebhookData(sub))
	}
	return expired, nil
}

func subscriptionWebhookData(sub *entities.Subscription) map[string]interface{} {
	data := map[string]interface{}{
		"subscriptionId": sub.ID.String(),
		"externalUserId": sub.ExternalUserID,
		"planId":         sub.PlanID.String(),
		"startsAt":       sub.StartsAt.UTC().Format(time.RFC3339),
	}
	if sub.PaymentID != nil {
		data["paymentId"] = sub.PaymentID.String()
	}
	if sub.EndsAt != nil {
		data["endsAt"] = sub.EndsAt.UTC().Format(time.RFC3339)
	}
	return data
}
