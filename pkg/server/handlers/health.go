package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/happyculture/soco-concierge/pkg/server/dto"
	"github.com/happyculture/soco-concierge/pkg/store"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	index store.Index
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(index store.Index) *HealthHandler {
	return &HealthHandler{
		index: index,
	}
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "soco-concierge",
	})
}

// ReadinessCheck handles GET /ready. The service is ready once the
// knowledge store answers a count.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	count, err := h.index.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status: "store unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status: "ready",
		Chunks: count,
	})
}
