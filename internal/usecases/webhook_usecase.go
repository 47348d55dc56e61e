package usecases

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"stablepay.backend/internal/domain/entities"
	"stablepay.backend/internal/domain/repositories"
	"stablepay.backend/pkg/crypto"
	"stablepay.backend/pkg/logger"
	"stablepay.backend/pkg/metrics"
)

// WebhookEnqueuer is the producer side of the webhook engine, used by the
// payment and subscription flows.
type WebhookEnqueuer interface {
	Enqueue(ctx context.Context, tenantID, event string, data map[string]interface{})
}

// WebhookUsecase delivers tenant webhooks with signed payloads and a
// bounded retry schedule. Delivery is at-least-once.
type WebhookUsecase struct {
	tenantRepo repositories.TenantRepository
	logRepo    repositories.WebhookLogRepository
	httpc      *http.Client
}

// NewWebhookUsecase creates a new webhook usecase
func NewWebhookUsecase(tenantRepo repositories.TenantRepository, logRepo repositories.WebhookLogRepository) *WebhookUsecase {
	return &WebhookUsecase{
		tenantRepo: tenantRepo,
		logRepo:    logRepo,
		httpc:      &http.Client{Timeout: WebhookTimeout},
	}
}

// Enqueue records the event and attempts immediate delivery. A tenant
// without a webhook URL is a silent no-op. Delivery failures are picked up
// by RetryPending, so Enqueue itself never fails the calling flow.
func (u *WebhookUsecase) Enqueue(ctx context.Context, tenantID, event string, data map[string]interface{}) {
	tenant, err := u.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		logger.Error(ctx, "webhook enqueue: tenant lookup failed",
			zap.String("tenant_id", tenantID), zap.String("event", event), zap.Error(err))
		return
	}
	if !tenant.WebhookURL.Valid || tenant.WebhookURL.String == "" {
		logger.Debug(ctx, "webhook enqueue skipped: no webhook url",
			zap.String("tenant_id", tenantID), zap.String("event", event))
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event":     event,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      data,
	})
	if err != nil {
		logger.Error(ctx, "webhook enqueue: payload marshal failed", zap.Error(err))
		return
	}

	log := &entities.WebhookLog{
		TenantID:  tenantID,
		Event:     event,
		Payload:   string(payload),
		TargetURL: tenant.WebhookURL.String,
	}
	if err := u.logRepo.Create(ctx, log); err != nil {
		logger.Error(ctx, "webhook enqueue: log create failed", zap.Error(err))
		return
	}

	u.deliverOnce(ctx, log, tenant.WebhookSecret)
}

// RetryPending re-attempts failed deliveries that are due. Returns the
// number of attempts made.
func (u *WebhookUsecase) RetryPending(ctx context.Context) (int, error) {
	due, err := u.logRepo.PendingRetries(ctx, time.Now().UTC(), len(WebhookRetryDelays))
	if err != nil {
		return 0, err
	}
	for _, log := range due {
		tenant, err := u.tenantRepo.GetByID(ctx, log.TenantID)
		if err != nil {
			logger.Error(ctx, "webhook retry: tenant lookup failed",
				zap.String("tenant_id", log.TenantID), zap.Error(err))
			continue
		}
		u.deliverOnce(ctx, log, tenant.WebhookSecret)
	}
	return len(due), nil
}

// deliverOnce posts the payload once and records the outcome on the log
// row. The payload is signed with the tenant secret.
func (u *WebhookUsecase) deliverOnce(ctx context.Context, log *entities.WebhookLog, secret string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, log.TargetURL, strings.NewReader(log.Payload))
	if err != nil {
		u.recordFailure(ctx, log, 0, err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", crypto.SignPayload(secret, log.Payload))

	resp, err := u.httpc.Do(req)
	if err != nil {
		u.recordFailure(ctx, log, 0, err.Error())
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, webhookBodyLimit))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Success = true
		log.ResponseStatus = null.IntFrom(resp.StatusCode)
		log.ResponseBody = null.StringFrom(string(body))
		log.NextRetryAt = nil
		if err := u.logRepo.Update(ctx, log); err != nil {
			logger.Error(ctx, "webhook delivery: log update failed", zap.Error(err))
		}
		metrics.WebhookDeliveries.WithLabelValues("success").Inc()
		return
	}
	u.recordFailure(ctx, log, resp.StatusCode, string(body))
}

// recordFailure schedules the next retry, or parks the row as terminally
// failed once the schedule is exhausted.
func (u *WebhookUsecase) recordFailure(ctx context.Context, log *entities.WebhookLog, status int, body string) {
	metrics.WebhookDeliveries.WithLabelValues("failure").Inc()
	if status > 0 {
		log.ResponseStatus = null.IntFrom(status)
	}
	if len(body) > webhookBodyLimit {
		body = body[:webhookBodyLimit]
	}
	log.ResponseBody = null.StringFrom(body)

	// The delay is indexed by how many attempts had already failed, so the
	// first failure schedules the first rung.
	failures := log.RetryCount
	log.RetryCount = failures + 1
	if failures >= len(WebhookRetryDelays) {
		log.NextRetryAt = nil
		logger.Warn(ctx, "webhook delivery exhausted retries",
			zap.String("event", log.Event), zap.String("target", log.TargetURL))
	} else {
		at := time.Now().UTC().Add(WebhookRetryDelays[failures])
		log.NextRetryAt = &at
	}
	if err := u.logRepo.Update(ctx, log); err != nil {
		logger.Error(ctx, "webhook delivery: log update failed", zap.Error(err))
	}
}
