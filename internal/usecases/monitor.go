package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/domain/repositories"
	"stablepay.backend/internal/infrastructure/blockchain"
	"stablepay.backend/pkg/crypto"
	"stablepay.backend/pkg/logger"
	"stablepay.backend/pkg/metrics"
)

// TransactionConfirmer is the monitor's handle on the payment engine.
// amount is the on-chain transfer value as a decimal token string, which
// can differ from the plan price within the tolerance.
type TransactionConfirmer interface {
	HandleConfirmedTransaction(ctx context.Context, paymentID uuid.UUID, txHash string, confirmations int, amount string) error
}

// AdapterRegistry resolves the chain adapter for a network.
type AdapterRegistry interface {
	For(network entities.Network) (blockchain.ChainAdapter, bool)
}

type monitorEntry struct {
	retryCount  int
	lastChecked time.Time
}

// MonitorUsecase polls chains for transfers matching enrolled payments.
// The queue is process-local; on start it is rebuilt from storage so a
// restart never drops in-flight monitoring.
type MonitorUsecase struct {
	paymentRepo repositories.PaymentRepository
	adapters    AdapterRegistry
	confirmer   TransactionConfirmer
	webhooks    WebhookEnqueuer
	cipher      *crypto.AddressCipher

	mu      sync.Mutex
	queue   map[uuid.UUID]*monitorEntry
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewMonitorUsecase creates a new monitor
func NewMonitorUsecase(
	paymentRepo repositories.PaymentRepository,
	adapters AdapterRegistry,
	confirmer TransactionConfirmer,
	webhooks WebhookEnqueuer,
	cipher *crypto.AddressCipher,
) *MonitorUsecase {
	return &MonitorUsecase{
		paymentRepo: paymentRepo,
		adapters:    adapters,
		confirmer:   confirmer,
		webhooks:    webhooks,
		cipher:      cipher,
		queue:       make(map[uuid.UUID]*monitorEntry),
	}
}

// StartMonitoring re-enrolls every awaiting_confirmation payment and
// starts the tick loop. Idempotent.
func (m *MonitorUsecase) StartMonitoring(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.mu.Unlock()

	awaiting, err := m.paymentRepo.AwaitingConfirmation(ctx)
	if err != nil {
		return err
	}
	for _, p := range awaiting {
		m.Enroll(p.ID)
	}
	logger.Info(ctx, "payment monitor started", zap.Int("enrolled", len(awaiting)))

	m.wg.Add(1)
	go m.loop()
	return nil
}

// StopMonitoring halts the tick loop and waits for an in-flight tick.
func (m *MonitorUsecase) StopMonitoring() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *MonitorUsecase) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(MonitorTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.CheckNow(context.Background())
		}
	}
}

// Enroll adds a payment to the queue. Idempotent.
func (m *MonitorUsecase) Enroll(paymentID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.queue[paymentID]; !ok {
		m.queue[paymentID] = &monitorEntry{}
		metrics.MonitorQueueSize.Set(float64(len(m.queue)))
	}
}

// Unenroll removes a payment from the queue.
func (m *MonitorUsecase) Unenroll(paymentID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.queue[paymentID]; ok {
		delete(m.queue, paymentID)
		metrics.MonitorQueueSize.Set(float64(len(m.queue)))
	}
}

// Size returns the number of enrolled payments.
func (m *MonitorUsecase) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// InQueue reports whether the payment is enrolled.
func (m *MonitorUsecase) InQueue(paymentID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.queue[paymentID]
	return ok
}

// Resync enrolls awaiting_confirmation rows missing from the queue, e.g.
// rows written by another replica.
func (m *MonitorUsecase) Resync(ctx context.Context) error {
	awaiting, err := m.paymentRepo.AwaitingConfirmation(ctx)
	if err != nil {
		return err
	}
	added := 0
	for _, p := range awaiting {
		if !m.InQueue(p.ID) {
			m.Enroll(p.ID)
			added++
		}
	}
	if added > 0 {
		logger.Info(ctx, "monitor: resynced payments from storage", zap.Int("added", added))
	}
	return nil
}

// CheckNow runs one full tick synchronously.
func (m *MonitorUsecase) CheckNow(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.MonitorTickDuration.Observe(time.Since(start).Seconds())
	}()

	m.mu.Lock()
	ids := make([]uuid.UUID, 0, len(m.queue))
	for id := range m.queue {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.checkPayment(ctx, id)
	}
}

func (m *MonitorUsecase) checkPayment(ctx context.Context, paymentID uuid.UUID) {
	m.mu.Lock()
	entry, ok := m.queue[paymentID]
	if ok {
		entry.lastChecked = time.Now()
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	payment, err := m.paymentRepo.GetAnyByID(ctx, paymentID)
	if err != nil || payment.Status != entities.PaymentStatusAwaitingConfirmation {
		m.Unenroll(paymentID)
		return
	}

	if time.Now().After(payment.ExpiresAt) {
		if err := m.paymentRepo.UpdateStatus(ctx, payment.ID, entities.PaymentStatusExpired); err != nil {
			logger.Error(ctx, "monitor: expire update failed",
				zap.String("payment_id", paymentID.String()), zap.Error(err))
			return
		}
		m.webhooks.Enqueue(ctx, payment.TenantID, entities.EventPaymentExpired, paymentWebhookData(payment, map[string]interface{}{}))
		m.Unenroll(paymentID)
		return
	}

	adapter, ok := m.adapters.For(payment.Network)
	if !ok || !adapter.Available() {
		// No way to observe this chain; the payment will expire on its own.
		return
	}

	result, err := m.findTransfer(ctx, adapter, payment)
	if err != nil {
		if errors.Is(err, blockchain.ErrTransferNotFound) {
			// Nothing on chain yet; keep polling.
			return
		}
		m.recordFailure(ctx, payment, err)
		return
	}

	minConf := entities.ChainConfigs[payment.Network].MinConfirmations
	if result.Confirmations < minConf {
		// Transfer seen but not deep enough; surface progress and wait.
		payment.Confirmations = result.Confirmations
		payment.UpdatedAt = time.Now().UTC()
		if err := m.paymentRepo.Update(ctx, payment); err != nil {
			logger.Error(ctx, "monitor: confirmation progress update failed",
				zap.String("payment_id", paymentID.String()), zap.Error(err))
		}
		return
	}

	received := blockchain.FromBaseUnits(result.Amount, entities.ChainConfigs[payment.Network].Decimals)
	if err := m.confirmer.HandleConfirmedTransaction(ctx, payment.ID, result.TxHash, result.Confirmations, received); err != nil {
		m.recordFailure(ctx, payment, err)
		return
	}
	m.Unenroll(paymentID)
}

func (m *MonitorUsecase) findTransfer(ctx context.Context, adapter blockchain.ChainAdapter, payment *entities.Payment) (*blockchain.TransferResult, error) {
	sender, err := m.cipher.Decrypt(payment.SenderAddressEncrypted)
	if err != nil {
		return nil, err
	}
	contract, ok := entities.ContractFor(payment.Network, payment.Token)
	if !ok {
		return nil, domainerrors.ErrInvalidInput
	}
	return adapter.FindTransfer(ctx, blockchain.TransferQuery{
		Sender:         sender,
		Receiver:       payment.ReceiverAddress,
		Contract:       contract,
		RequiredAmount: payment.Amount,
		Decimals:       entities.ChainConfigs[payment.Network].Decimals,
		NotBefore:      payment.CreatedAt,
	})
}

// recordFailure spends one retry; at the budget the payment fails with
// the error preserved on the row.
func (m *MonitorUsecase) recordFailure(ctx context.Context, payment *entities.Payment, cause error) {
	m.mu.Lock()
	entry, ok := m.queue[payment.ID]
	if !ok {
		m.mu.Unlock()
		return
	}
	entry.retryCount++
	retries := entry.retryCount
	m.mu.Unlock()

	logger.Warn(ctx, "monitor: check failed",
		zap.String("payment_id", payment.ID.String()),
		zap.Int("retry", retries),
		zap.Error(cause))

	if retries < MaxRetryCount {
		return
	}

	payment.Status = entities.PaymentStatusFailed
	payment.ErrorMessage = null.StringFrom(cause.Error())
	payment.RetryCount = retries
	payment.UpdatedAt = time.Now().UTC()
	if err := m.paymentRepo.Update(ctx, payment); err != nil {
		logger.Error(ctx, "monitor: failure update failed",
			zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return
	}
	m.webhooks.Enqueue(ctx, payment.TenantID, entities.EventPaymentFailed, paymentWebhookData(payment, map[string]interface{}{
		"error": cause.Error(),
	}))
	m.Unenroll(payment.ID)
}
