package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/interfaces/http/response"
)

type OfacService interface {
	CheckAddress(ctx context.Context, addr string) (*entities.OfacCheckResult, error)
	Status(ctx context.Context) (*entities.OfacStatus, error)
	UpdateSanctionsList(ctx context.Context) (*entities.OfacUpdateLog, error)
}

// OfacHandler handles sanctions screening endpoints
type OfacHandler struct {
	ofac OfacService
}

// NewOfacHandler creates a new OFAC handler
func NewOfacHandler(ofac OfacService) *OfacHandler {
	return &OfacHandler{ofac: ofac}
}

// Status summarizes the stored sanctions set
// GET /api/ofac/status
func (h *OfacHandler) Status(c *gin.Context) {
	status, err := h.ofac.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// Check screens a single address
// GET /api/ofac/check/:address
func (h *OfacHandler) Check(c *gin.Context) {
	addr := c.Param("address")
	if addr == "" {
		response.Error(c, domainerrors.Validation("address is required"))
		return
	}

	result, err := h.ofac.CheckAddress(c.Request.Context(), addr)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Update forces a sanctions list refresh
// POST /api/ofac/update
func (h *OfacHandler) Update(c *gin.Context) {
	log, err := h.ofac.UpdateSanctionsList(c.Request.Context())
	if err != nil {
		if errors.Is(err, domainerrors.ErrUpdateInProgress) {
			response.Error(c, domainerrors.Conflict(domainerrors.CodeRateLimited, "sanctions list update already in progress"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, log)
}
