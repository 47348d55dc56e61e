package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/domain/repositories"
	"stablepay.backend/pkg/address"
	"stablepay.backend/pkg/crypto"
	"stablepay.backend/pkg/logger"
	"stablepay.backend/pkg/metrics"
)

// Enroller is the payment engine's handle on the monitor queue. Set after
// construction because the monitor also calls back into the engine.
type Enroller interface {
	Enroll(paymentID uuid.UUID)
}

// PaymentUsecase is the payment engine: plan management, payment
// lifecycle, and the atomic confirmation handler.
type PaymentUsecase struct {
	tenantRepo  repositories.TenantRepository
	planRepo    repositories.PlanRepository
	paymentRepo repositories.PaymentRepository
	uow         repositories.UnitOfWork
	screener    AddressScreener
	subs        SubscriptionActivator
	webhooks    WebhookEnqueuer
	cipher      *crypto.AddressCipher

	sessionSecret string
	receiverEVM   string
	receiverTron  string

	enroller Enroller
}

// NewPaymentUsecase creates a new payment usecase. receiverEVM and
// receiverTron are the process-level receiving addresses used when a
// tenant carries no override.
func NewPaymentUsecase(
	tenantRepo repositories.TenantRepository,
	planRepo repositories.PlanRepository,
	paymentRepo repositories.PaymentRepository,
	uow repositories.UnitOfWork,
	screener AddressScreener,
	subs SubscriptionActivator,
	webhooks WebhookEnqueuer,
	cipher *crypto.AddressCipher,
	sessionSecret, receiverEVM, receiverTron string,
) *PaymentUsecase {
	return &PaymentUsecase{
		tenantRepo:    tenantRepo,
		planRepo:      planRepo,
		paymentRepo:   paymentRepo,
		uow:           uow,
		screener:      screener,
		subs:          subs,
		webhooks:      webhooks,
		cipher:        cipher,
		sessionSecret: sessionSecret,
		receiverEVM:   receiverEVM,
		receiverTron:  receiverTron,
	}
}

// SetEnroller wires the monitor queue in after both sides exist.
func (u *PaymentUsecase) SetEnroller(e Enroller) {
	u.enroller = e
}

// CreatePlan creates a plan under the tenant. Duplicate plan_key within
// the tenant is rejected.
func (u *PaymentUsecase) CreatePlan(ctx context.Context, tenantID string, input entities.CreatePlanInput) (*entities.Plan, error) {
	currency, ok := entities.ParseToken(input.Currency)
	if !ok {
		return nil, domainerrors.Validation("currency must be USDT or USDC")
	}
	if input.PeriodDays != nil && *input.PeriodDays <= 0 {
		return nil, domainerrors.Validation("periodDays must be positive")
	}

	plan := &entities.Plan{
		TenantID:    tenantID,
		PlanKey:     input.PlanKey,
		Name:        input.Name,
		Description: null.NewString(input.Description, input.Description != ""),
		Price:       input.Price,
		Currency:    currency,
		PeriodDays:  null.IntFromPtr(input.PeriodDays),
		Features:    input.Features,
		IsActive:    true,
	}
	if err := u.planRepo.Create(ctx, plan); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict(domainerrors.CodeInvalidPlan, "plan key already exists")
		}
		return nil, err
	}
	return plan, nil
}

// UpdatePlan applies a partial update; nil fields are untouched.
func (u *PaymentUsecase) UpdatePlan(ctx context.Context, tenantID string, planID uuid.UUID, input entities.UpdatePlanInput) (*entities.Plan, error) {
	plan, err := u.planRepo.GetByID(ctx, tenantID, planID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("plan not found")
		}
		return nil, err
	}

	if input.Name != nil {
		plan.Name = *input.Name
	}
	if input.Description != nil {
		plan.Description = null.StringFrom(*input.Description)
	}
	if input.Price != nil {
		plan.Price = *input.Price
	}
	if input.PeriodDays != nil {
		if *input.PeriodDays <= 0 {
			return nil, domainerrors.Validation("periodDays must be positive")
		}
		plan.PeriodDays = null.IntFrom(*input.PeriodDays)
	}
	if input.Features != nil {
		plan.Features = *input.Features
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}
	plan.UpdatedAt = time.Now().UTC()

	if err := u.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans returns the tenant's active plans.
func (u *PaymentUsecase) ListPlans(ctx context.Context, tenantID string) ([]*entities.Plan, error) {
	return u.planRepo.ListActive(ctx, tenantID)
}

// InitiatePayment validates the request end to end, screens the sender
// address, persists a pending payment with the sender address sealed, and
// returns placement instructions.
func (u *PaymentUsecase) InitiatePayment(ctx context.Context, tenantID string, input entities.InitiatePaymentInput) (*entities.Placement, error) {
	tenant, err := u.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("tenant not found")
		}
		return nil, err
	}
	if !tenant.IsActive {
		return nil, domainerrors.Forbidden("tenant is not active")
	}

	network, ok := entities.ParseNetwork(input.Network)
	if !ok {
		return nil, domainerrors.Validation("network must be one of arbitrum, ethereum, tron")
	}
	token, ok := entities.ParseToken(input.Token)
	if !ok {
		return nil, domainerrors.Validation("token must be USDT or USDC")
	}

	planID, err := uuid.Parse(input.PlanID)
	if err != nil {
		return nil, domainerrors.BadRequest(domainerrors.CodeInvalidPlan, "invalid plan id")
	}
	plan, err := u.planRepo.GetByID(ctx, tenantID, planID)
	if err != nil || !plan.IsActive {
		return nil, domainerrors.BadRequest(domainerrors.CodeInvalidPlan, "plan not found or inactive")
	}

	normalized, appErr := normalizeSenderAddress(network, input.SenderAddress)
	if appErr != nil {
		return nil, appErr
	}

	check, err := u.screener.CheckAddress(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if check.IsSanctioned {
		return nil, domainerrors.OfacSanctioned(normalized, check.MatchedEntries[0].SDNName)
	}

	if _, err := u.paymentRepo.PendingForUser(ctx, tenantID, input.ExternalUserID); err == nil {
		return nil, domainerrors.Conflict(domainerrors.CodePendingExists, "a payment is already in progress for this user")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	receiver := u.receiverFor(tenant, network)
	if receiver == "" {
		return nil, domainerrors.BadRequest(domainerrors.CodeInvalidNetwork, "no receiver address configured for network")
	}

	encrypted, err := u.cipher.Encrypt(normalized)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &entities.Payment{
		TenantID:               tenantID,
		ExternalUserID:         input.ExternalUserID,
		PlanID:                 plan.ID,
		Amount:                 plan.Price,
		Token:                  token,
		Network:                network,
		SenderAddressEncrypted: encrypted,
		SenderAddressHMAC:      crypto.AddressHMAC(u.sessionSecret, normalized),
		ReceiverAddress:        receiver,
		Status:                 entities.PaymentStatusPending,
		ExpiresAt:              now.Add(entities.PaymentExpiry),
	}
	if err := u.paymentRepo.Create(ctx, payment); err != nil {
		// Two racing initiations can both pass the PendingForUser check;
		// the partial unique index settles the loser here.
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict(domainerrors.CodePendingExists, "a payment is already in progress for this user")
		}
		return nil, err
	}

	u.webhooks.Enqueue(ctx, tenantID, entities.EventPaymentCreated, map[string]interface{}{
		"paymentId":      payment.ID.String(),
		"externalUserId": payment.ExternalUserID,
		"planId":         payment.PlanID.String(),
		"amount":         payment.Amount,
		"token":          string(payment.Token),
		"network":        string(payment.Network),
		"status":         string(payment.Status),
		"expiresAt":      payment.ExpiresAt.Format(time.RFC3339),
	})

	return &entities.Placement{
		PaymentID:       payment.ID,
		ReceiverAddress: receiver,
		Amount:          payment.Amount,
		Token:           token,
		Network:         network,
		ExpiresAt:       payment.ExpiresAt,
		ExpiresIn:       int(entities.PaymentExpiry.Seconds()),
		QRCodeData:      receiver,
		Instructions: []string{
			"Send exactly " + payment.Amount + " " + string(token) + " on " + string(network) + " to the address below.",
			"Send from the wallet address you provided; transfers from other addresses are not detected.",
			"After sending, confirm the payment so monitoring can begin.",
			"The address is valid for 30 minutes.",
		},
	}, nil
}

// ConfirmPaymentSent flips pending to awaiting_confirmation and enrolls
// the payment for chain monitoring. An expired payment is finalized here.
func (u *PaymentUsecase) ConfirmPaymentSent(ctx context.Context, tenantID string, paymentID uuid.UUID) error {
	payment, err := u.paymentRepo.GetByID(ctx, tenantID, paymentID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("payment not found")
		}
		return err
	}
	if payment.Status != entities.PaymentStatusPending {
		return domainerrors.BadRequest(domainerrors.CodeInvalidStatus, "payment is not awaiting sender confirmation")
	}
	if !time.Now().Before(payment.ExpiresAt) {
		if err := u.paymentRepo.UpdateStatus(ctx, payment.ID, entities.PaymentStatusExpired); err != nil {
			return err
		}
		u.webhooks.Enqueue(ctx, tenantID, entities.EventPaymentExpired, paymentWebhookData(payment, map[string]interface{}{}))
		return domainerrors.BadRequest(domainerrors.CodeInvalidStatus, "payment window has expired")
	}

	if err := u.paymentRepo.UpdateStatus(ctx, payment.ID, entities.PaymentStatusAwaitingConfirmation); err != nil {
		return err
	}
	if u.enroller != nil {
		u.enroller.Enroll(payment.ID)
	}
	logger.Info(ctx, "payment awaiting confirmation",
		zap.String("payment_id", payment.ID.String()),
		zap.String("network", string(payment.Network)))
	return nil
}

// GetPaymentStatus returns the polling view of a payment.
func (u *PaymentUsecase) GetPaymentStatus(ctx context.Context, tenantID string, paymentID uuid.UUID) (*entities.PaymentStatusView, error) {
	payment, err := u.paymentRepo.GetByID(ctx, tenantID, paymentID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("payment not found")
		}
		return nil, err
	}

	view := &entities.PaymentStatusView{
		PaymentID:     payment.ID,
		Status:        payment.Status,
		Amount:        payment.Amount,
		Token:         payment.Token,
		Network:       payment.Network,
		Confirmations: payment.Confirmations,
	}
	if !payment.Status.IsTerminal() {
		remaining := int(time.Until(payment.ExpiresAt).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		view.ExpiresIn = &remaining
	}
	if payment.Status == entities.PaymentStatusConfirmed && payment.TxHash.Valid {
		view.TxHash = payment.TxHash.String
		view.ExplorerURL = entities.ExplorerURL(payment.Network, payment.TxHash.String)
	}
	if payment.Status == entities.PaymentStatusFailed && payment.ErrorMessage.Valid {
		view.ErrorMessage = payment.ErrorMessage.String
	}
	return view, nil
}

// CancelPayment is allowed only from pending.
func (u *PaymentUsecase) CancelPayment(ctx context.Context, tenantID string, paymentID uuid.UUID) error {
	payment, err := u.paymentRepo.GetByID(ctx, tenantID, paymentID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("payment not found")
		}
		return err
	}
	if payment.Status != entities.PaymentStatusPending {
		return domainerrors.BadRequest(domainerrors.CodeCannotCancel, "only pending payments can be cancelled")
	}
	return u.paymentRepo.UpdateStatus(ctx, payment.ID, entities.PaymentStatusCancelled)
}

// GetPaymentHistory returns the user's payments, newest first, capped.
func (u *PaymentUsecase) GetPaymentHistory(ctx context.Context, tenantID, externalUserID string, limit int) ([]*entities.Payment, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return u.paymentRepo.ListByUser(ctx, tenantID, externalUserID, limit)
}

// HandleConfirmedTransaction is the single path into confirmed: it binds
// the tx hash, activates the subscription, and enqueues the webhooks, all
// within one transaction. A tx hash already bound elsewhere surfaces as
// ErrDuplicateTxHash with no partial state. amountReceived is the actual
// on-chain transfer value, reported alongside the plan price.
func (u *PaymentUsecase) HandleConfirmedTransaction(ctx context.Context, paymentID uuid.UUID, txHash string, confirmations int, amountReceived string) error {
	var (
		payment *entities.Payment
		sub     *entities.Subscription
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		payment, err = u.paymentRepo.GetAnyByID(txCtx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status != entities.PaymentStatusAwaitingConfirmation {
			return domainerrors.ErrInvalidTransition
		}

		if existing, err := u.paymentRepo.GetByTxHash(txCtx, txHash); err == nil && existing.ID != payment.ID {
			return domainerrors.ErrDuplicateTxHash
		} else if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		now := time.Now().UTC()
		payment.Status = entities.PaymentStatusConfirmed
		payment.TxHash = null.StringFrom(txHash)
		payment.Confirmations = confirmations
		payment.TxConfirmedAt = &now
		payment.UpdatedAt = now
		if err := u.paymentRepo.Update(txCtx, payment); err != nil {
			return err
		}

		sub, err = u.subs.Activate(txCtx, payment)
		return err
	})
	if err != nil {
		return err
	}

	metrics.PaymentsConfirmed.WithLabelValues(string(payment.Network)).Inc()
	logger.Info(ctx, "payment confirmed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("tx_hash", txHash),
		zap.Int("confirmations", confirmations),
		zap.String("amount_received", amountReceived))

	u.webhooks.Enqueue(ctx, payment.TenantID, entities.EventPaymentConfirmed, paymentWebhookData(payment, map[string]interface{}{
		"txHash":         txHash,
		"confirmations":  confirmations,
		"amountReceived": amountReceived,
		"confirmedAt":    payment.TxConfirmedAt.Format(time.RFC3339),
	}))
	u.webhooks.Enqueue(ctx, payment.TenantID, entities.EventSubscriptionActivated, subscriptionWebhookData(sub))
	return nil
}

// receiverFor resolves the receiving address: tenant override first, then
// the process default.
func (u *PaymentUsecase) receiverFor(tenant *entities.Tenant, network entities.Network) string {
	if network.IsEVM() {
		if tenant.ReceiverEVM.Valid && tenant.ReceiverEVM.String != "" {
			return tenant.ReceiverEVM.String
		}
		return u.receiverEVM
	}
	if tenant.ReceiverTron.Valid && tenant.ReceiverTron.String != "" {
		return tenant.ReceiverTron.String
	}
	return u.receiverTron
}

// normalizeSenderAddress validates the address shape for the network and
// normalizes it (EVM lower-cased, Tron kept as-is).
func normalizeSenderAddress(network entities.Network, addr string) (string, *domainerrors.AppError) {
	if network.IsEVM() {
		if !address.IsEVM(addr) {
			return "", domainerrors.BadRequest(domainerrors.CodeInvalidAddress, "invalid EVM address")
		}
		return address.NormalizeEVM(addr), nil
	}
	if !address.IsTron(addr) {
		return "", domainerrors.BadRequest(domainerrors.CodeInvalidAddress, "invalid Tron address")
	}
	return addr, nil
}

func paymentWebhookData(payment *entities.Payment, extra map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"paymentId":      payment.ID.String(),
		"externalUserId": payment.ExternalUserID,
		"planId":         payment.PlanID.String(),
		"amount":         payment.Amount,
		"token":          string(payment.Token),
		"network":        string(payment.Network),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}
