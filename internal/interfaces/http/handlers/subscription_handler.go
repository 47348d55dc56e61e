package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/interfaces/http/middleware"
	"stablepay.backend/internal/interfaces/http/response"
)

type SubscriptionService interface {
	Current(ctx context.Context, tenantID, externalUserID string) (*entities.SubscriptionView, error)
	IsActive(ctx context.Context, tenantID, externalUserID string) (bool, error)
	History(ctx context.Context, tenantID, externalUserID string) ([]*entities.Subscription, error)
}

// SubscriptionHandler handles subscription endpoints
type SubscriptionHandler struct {
	subs SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subs SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

func (h *SubscriptionHandler) tenantAndUser(c *gin.Context) (string, string, bool) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not resolved"))
		return "", "", false
	}
	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, domainerrors.Validation("userId query parameter is required"))
		return "", "", false
	}
	return tenant.ID, userID, true
}

// Current returns the active subscription with days remaining
// GET /api/subscriptions/current?userId=...
func (h *SubscriptionHandler) Current(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}

	view, err := h.subs.Current(c.Request.Context(), tenantID, userID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			response.Error(c, domainerrors.NotFound("no active subscription"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Active reports whether the user holds an active subscription
// GET /api/subscriptions/active?userId=...
func (h *SubscriptionHandler) Active(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}

	active, err := h.subs.IsActive(c.Request.Context(), tenantID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"active": active})
}

// History lists the user's subscriptions, newest first
// GET /api/subscriptions/history?userId=...
func (h *SubscriptionHandler) History(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}

	subs, err := h.subs.History(c.Request.Context(), tenantID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscriptions": subs})
}
