package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	backend        string
	storageEnabled bool
}

// NewHealthHandler creates a new health handler.
// backend names the KV driver; storageEnabled reports whether image uploads are possible.
func NewHealthHandler(backend string, storageEnabled bool) *HealthHandler {
	return &HealthHandler{backend: backend, storageEnabled: storageEnabled}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": h.backend,
		"storage": h.storageEnabled,
	})
}
