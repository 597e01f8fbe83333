package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/service"
)

// CaptionHandler serves caption suggestions.
type CaptionHandler struct {
	captions *service.CaptionService
}

// NewCaptionHandler creates a new caption handler.
func NewCaptionHandler(captions *service.CaptionService) *CaptionHandler {
	return &CaptionHandler{captions: captions}
}

// CaptionRequest is the body of POST /api/v1/captions.
type CaptionRequest struct {
	Prompt string `json:"prompt"`
}

// Suggest handles POST /api/v1/captions.
func (h *CaptionHandler) Suggest(c *gin.Context) {
	var req CaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	caption, err := h.captions.Suggest(ctx, req.Prompt)
	if err != nil {
		logger.CtxDebug(ctx, "Caption suggestion abandoned: error=%v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Caption generation was cancelled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"caption": caption})
}
