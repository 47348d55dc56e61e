package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/interfaces/http/middleware"
	"stablepay.backend/internal/interfaces/http/response"
)

type PaymentService interface {
	InitiatePayment(ctx context.Context, tenantID string, input entities.InitiatePaymentInput) (*entities.Placement, error)
	ConfirmPaymentSent(ctx context.Context, tenantID string, paymentID uuid.UUID) error
	GetPaymentStatus(ctx context.Context, tenantID string, paymentID uuid.UUID) (*entities.PaymentStatusView, error)
	CancelPayment(ctx context.Context, tenantID string, paymentID uuid.UUID) error
	GetPaymentHistory(ctx context.Context, tenantID, externalUserID string, limit int) ([]*entities.Payment, error)
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	payments PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// InitiatePayment creates a pending payment and returns placement
// instructions for the payer.
// POST /api/payments
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not resolved"))
		return
	}

	var input entities.InitiatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	placement, err := h.payments.InitiatePayment(c.Request.Context(), tenant.ID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, placement)
}

// ConfirmPaymentSent moves the payment to awaiting_confirmation
// POST /api/payments/:id/confirm
func (h *PaymentHandler) ConfirmPaymentSent(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not resolved"))
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.Validation("invalid payment id"))
		return
	}

	if err := h.payments.ConfirmPaymentSent(c.Request.Context(), tenant.ID, paymentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": string(entities.PaymentStatusAwaitingConfirmation)})
}

// GetPaymentStatus returns the polling view of a payment
// GET /api/payments/:id/status
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not resolved"))
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.Validation("invalid payment id"))
		return
	}

	view, err := h.payments.GetPaymentStatus(c.Request.Context(), tenant.ID, paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// CancelPayment cancels a pending payment
// DELETE /api/payments/:id
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not resolved"))
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.Validation("invalid payment id"))
		return
	}

	if err := h.payments.CancelPayment(c.Request.Context(), tenant.ID, paymentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": string(entities.PaymentStatusCancelled)})
}

// GetPaymentHistory lists the user's payments, newest first
// GET /api/payments/history?userId=...&limit=...
func (h *PaymentHandler) GetPaymentHistory(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not resolved"))
		return
	}

	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, domainerrors.Validation("userId query parameter is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	payments, err := h.payments.GetPaymentHistory(c.Request.Context(), tenant.ID, userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}
