package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"stablepay.backend/internal/domain/entities"
	"stablepay.backend/internal/infrastructure/blockchain"
)

// Mock TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *entities.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id string) (*entities.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*entities.Tenant, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *entities.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

// Mock PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *entities.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Update(ctx context.Context, plan *entities.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*entities.Plan, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Plan), args.Error(1)
}

func (m *MockPlanRepository) GetByKey(ctx context.Context, tenantID, planKey string) (*entities.Plan, error) {
	args := m.Called(ctx, tenantID, planKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Plan), args.Error(1)
}

func (m *MockPlanRepository) ListActive(ctx context.Context, tenantID string) ([]*entities.Plan, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Plan), args.Error(1)
}

// Mock PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	args := m.Called(ctx, payment)
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*entities.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetAnyByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByTxHash(ctx context.Context, txHash string) (*entities.Payment, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) PendingForUser(ctx context.Context, tenantID, externalUserID string) (*entities.Payment, error) {
	args := m.Called(ctx, tenantID, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByUser(ctx context.Context, tenantID, externalUserID string, limit int) ([]*entities.Payment, error) {
	args := m.Called(ctx, tenantID, externalUserID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Expired(ctx context.Context, now time.Time) ([]*entities.Payment, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) AwaitingConfirmation(ctx context.Context) ([]*entities.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *entities.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Mock SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *entities.Subscription) error {
	args := m.Called(ctx, sub)
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ActiveForUser(ctx context.Context, tenantID, externalUserID string) (*entities.Subscription, error) {
	args := m.Called(ctx, tenantID, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) HistoryForUser(ctx context.Context, tenantID, externalUserID string) ([]*entities.Subscription, error) {
	args := m.Called(ctx, tenantID, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ExpiredDue(ctx context.Context, now time.Time) ([]*entities.Subscription, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, sub *entities.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// Mock WebhookLogRepository
type MockWebhookLogRepository struct {
	mock.Mock
}

func (m *MockWebhookLogRepository) Create(ctx context.Context, log *entities.WebhookLog) error {
	args := m.Called(ctx, log)
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockWebhookLogRepository) Update(ctx context.Context, log *entities.WebhookLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockWebhookLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.WebhookLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WebhookLog), args.Error(1)
}

func (m *MockWebhookLogRepository) PendingRetries(ctx context.Context, now time.Time, maxRetries int) ([]*entities.WebhookLog, error) {
	args := m.Called(ctx, now, maxRetries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WebhookLog), args.Error(1)
}

// Mock OfacRepository
type MockOfacRepository struct {
	mock.Mock
}

func (m *MockOfacRepository) ReplaceAll(ctx context.Context, addresses []*entities.OfacSanctionedAddress, batchSize int) error {
	args := m.Called(ctx, addresses, batchSize)
	return args.Error(0)
}

func (m *MockOfacRepository) CountAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockOfacRepository) FindByAddressLower(ctx context.Context, addressLower string) ([]*entities.OfacSanctionedAddress, error) {
	args := m.Called(ctx, addressLower)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.OfacSanctionedAddress), args.Error(1)
}

func (m *MockOfacRepository) CountByType(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockOfacRepository) AppendUpdateLog(ctx context.Context, log *entities.OfacUpdateLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockOfacRepository) LatestUpdateLog(ctx context.Context) (*entities.OfacUpdateLog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OfacUpdateLog), args.Error(1)
}

// Mock UnitOfWork: runs the function inline, no real transaction.
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(context.Context) error) error {
	m.Called(ctx, fn)
	return fn(ctx)
}

// Mock AddressScreener
type MockScreener struct {
	mock.Mock
}

func (m *MockScreener) CheckAddress(ctx context.Context, addr string) (*entities.OfacCheckResult, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OfacCheckResult), args.Error(1)
}

// Mock WebhookEnqueuer: records events for assertions.
type MockWebhooks struct {
	mock.Mock
}

func (m *MockWebhooks) Enqueue(ctx context.Context, tenantID, event string, data map[string]interface{}) {
	m.Called(ctx, tenantID, event, data)
}

// Mock SubscriptionActivator
type MockActivator struct {
	mock.Mock
}

func (m *MockActivator) Activate(ctx context.Context, payment *entities.Payment) (*entities.Subscription, error) {
	args := m.Called(ctx, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Subscription), args.Error(1)
}

// Mock TransactionConfirmer
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) HandleConfirmedTransaction(ctx context.Context, paymentID uuid.UUID, txHash string, confirmations int, amount string) error {
	args := m.Called(ctx, paymentID, txHash, confirmations, amount)
	return args.Error(0)
}

// Mock FeedFetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// fakeAdapter is a hand-rolled chain adapter for monitor tests.
type fakeAdapter struct {
	network   entities.Network
	available bool
	result    *blockchain.TransferResult
	err       error
	calls     int
}

func (f *fakeAdapter) Network() entities.Network { return f.network }

func (f *fakeAdapter) Available() bool { return f.available }

func (f *fakeAdapter) FindTransfer(context.Context, blockchain.TransferQuery) (*blockchain.TransferResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAdapter) Confirmations(context.Context, string) (int, error) {
	if f.result == nil {
		return 0, f.err
	}
	return f.result.Confirmations, nil
}

// fakeRegistry resolves every network to the same adapter.
type fakeRegistry struct {
	adapter *fakeAdapter
}

func (r *fakeRegistry) For(network entities.Network) (blockchain.ChainAdapter, bool) {
	if r.adapter == nil {
		return nil, false
	}
	return r.adapter, true
}
