package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/interfaces/http/middleware"
	"stablepay.backend/internal/interfaces/http/response"
)

type PlanService interface {
	CreatePlan(ctx context.Context, tenantID string, input entities.CreatePlanInput) (*entities.Plan, error)
	UpdatePlan(ctx context.Context, tenantID string, planID uuid.UUID, input entities.UpdatePlanInput) (*entities.Plan, error)
	ListPlans(ctx context.Context, tenantID string) ([]*entities.Plan, error)
}

// PlanHandler handles plan endpoints
type PlanHandler struct {
	plans PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(plans PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// ListPlans lists the tenant's active plans
// GET /api/plans
func (h *PlanHandler) ListPlans(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not resolved"))
		return
	}

	plans, err := h.plans.ListPlans(c.Request.Context(), tenant.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plans": plans})
}

// CreatePlan creates a plan under the tenant
// POST /api/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not resolved"))
		return
	}

	var input entities.CreatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	plan, err := h.plans.CreatePlan(c.Request.Context(), tenant.ID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, plan)
}

// UpdatePlan applies a partial update to a plan
// PATCH /api/plans/:id
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not resolved"))
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest(domainerrors.CodeInvalidPlan, "invalid plan id"))
		return
	}

	var input entities.UpdatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	plan, err := h.plans.UpdatePlan(c.Request.Context(), tenant.ID, planID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, plan)
}
