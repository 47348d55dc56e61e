package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"stablepay.backend/internal/domain/entities"
	"stablepay.backend/internal/usecases"
	"stablepay.backend/pkg/logger"
)

// ExpiredPaymentSource is the slice of payment storage the expiry sweep
// needs.
type ExpiredPaymentSource interface {
	Expired(ctx context.Context, now time.Time) ([]*entities.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus) error
}

// SubscriptionExpirer flips overdue subscriptions.
type SubscriptionExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// WebhookRetrier re-attempts failed webhook deliveries.
type WebhookRetrier interface {
	RetryPending(ctx context.Context) (int, error)
}

// SanctionsUpdater refreshes the OFAC sanctions set.
type SanctionsUpdater interface {
	UpdateSanctionsList(ctx context.Context) (*entities.OfacUpdateLog, error)
}

// MonitorResyncer re-enrolls awaiting payments the monitor queue is
// missing.
type MonitorResyncer interface {
	Resync(ctx context.Context) error
}

const (
	monitorResyncInterval      = time.Minute
	paymentExpiryInterval      = 5 * time.Minute
	subscriptionExpiryInterval = time.Hour
	webhookRetryInterval       = 2 * time.Minute
)

// Scheduler runs the periodic maintenance jobs: monitor resync, payment
// expiry, subscription expiry, webhook retries, and the daily OFAC
// refresh at 00:00 UTC.
type Scheduler struct {
	paymentRepo ExpiredPaymentSource
	webhooks    usecases.WebhookEnqueuer
	subs        SubscriptionExpirer
	retrier     WebhookRetrier
	sanctions   SanctionsUpdater
	monitor     MonitorResyncer

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(
	paymentRepo ExpiredPaymentSource,
	webhooks usecases.WebhookEnqueuer,
	subs SubscriptionExpirer,
	retrier WebhookRetrier,
	sanctions SanctionsUpdater,
	monitor MonitorResyncer,
) *Scheduler {
	return &Scheduler{
		paymentRepo: paymentRepo,
		webhooks:    webhooks,
		subs:        subs,
		retrier:     retrier,
		sanctions:   sanctions,
		monitor:     monitor,
		stop:        make(chan struct{}),
	}
}

// Start launches all job loops.
func (s *Scheduler) Start(ctx context.Context) {
	s.runEvery(ctx, monitorResyncInterval, s.resyncMonitor)
	s.runEvery(ctx, paymentExpiryInterval, s.processExpiredPayments)
	s.runEvery(ctx, subscriptionExpiryInterval, s.processExpiredSubscriptions)
	s.runEvery(ctx, webhookRetryInterval, s.processWebhookRetries)
	s.runDailyAtMidnightUTC(ctx, s.refreshSanctions)
	logger.Info(ctx, "job scheduler started")
}

// Stop halts all loops and waits for in-flight runs.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Scheduler) runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

func (s *Scheduler) runDailyAtMidnightUTC(ctx context.Context, fn func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			now := time.Now().UTC()
			next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-s.stop:
				timer.Stop()
				return
			case <-timer.C:
				fn(ctx)
			}
		}
	}()
}

// processExpiredPayments finalizes payments whose window ran out before
// the payer ever confirmed. Awaiting payments are expired by the monitor;
// this sweep catches the ones still pending.
func (s *Scheduler) processExpiredPayments(ctx context.Context) {
	expired, err := s.paymentRepo.Expired(ctx, time.Now().UTC())
	if err != nil {
		logger.Error(ctx, "payment expiry sweep failed", zap.Error(err))
		return
	}
	for _, payment := range expired {
		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, entities.PaymentStatusExpired); err != nil {
			logger.Error(ctx, "payment expiry update failed",
				zap.String("payment_id", payment.ID.String()), zap.Error(err))
			continue
		}
		s.webhooks.Enqueue(ctx, payment.TenantID, entities.EventPaymentExpired, map[string]interface{}{
			"paymentId":      payment.ID.String(),
			"externalUserId": payment.ExternalUserID,
			"planId":         payment.PlanID.String(),
			"amount":         payment.Amount,
			"token":          string(payment.Token),
			"network":        string(payment.Network),
		})
	}
	if len(expired) > 0 {
		logger.Info(ctx, "expired payments finalized", zap.Int("count", len(expired)))
	}
}

func (s *Scheduler) processExpiredSubscriptions(ctx context.Context) {
	n, err := s.subs.ExpireDue(ctx)
	if err != nil {
		logger.Error(ctx, "subscription expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info(ctx, "subscriptions expired", zap.Int("count", n))
	}
}

func (s *Scheduler) processWebhookRetries(ctx context.Context) {
	if _, err := s.retrier.RetryPending(ctx); err != nil {
		logger.Error(ctx, "webhook retry sweep failed", zap.Error(err))
	}
}

func (s *Scheduler) resyncMonitor(ctx context.Context) {
	if err := s.monitor.Resync(ctx); err != nil {
		logger.Error(ctx, "monitor resync failed", zap.Error(err))
	}
}

func (s *Scheduler) refreshSanctions(ctx context.Context) {
	if _, err := s.sanctions.UpdateSanctionsList(ctx); err != nil {
		logger.Error(ctx, "scheduled sanctions refresh failed", zap.Error(err))
	}
}
