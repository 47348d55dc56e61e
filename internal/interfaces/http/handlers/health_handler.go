package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"stablepay.backend/internal/interfaces/http/response"
)

// QueueSizer exposes the monitor queue depth for the health payload.
type QueueSizer interface {
	Size() int
}

// HealthHandler handles the health endpoint
type HealthHandler struct {
	monitor QueueSizer
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(monitor QueueSizer) *HealthHandler {
	return &HealthHandler{monitor: monitor}
}

// Health reports liveness and the monitor queue depth
// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status":           "ok",
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"monitorQueueSize": h.monitor.Size(),
	})
}
