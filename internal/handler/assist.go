package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/haatbazar-api/internal/assist"
	"github.com/flicky/haatbazar-api/internal/dto"
)

const maxImageBytes = 5 << 20

// AssistHandler exposes the optional model features. An unavailable model
// yields empty results, never an error status.
type AssistHandler struct {
	assistant *assist.Guarded
}

func NewAssistHandler(assistant *assist.Guarded) *AssistHandler {
	return &AssistHandler{assistant: assistant}
}

// DraftProduct suggests catalog fields from an uploaded photo.
func (h *AssistHandler) DraftProduct(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	if file.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
		return
	}

	draft := h.assistant.AnalyzeImage(c.Request.Context(), data)
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (h *AssistHandler) VoiceGuidance(c *gin.Context) {
	var req dto.VoiceGuidanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": h.assistant.VoiceGuidance(c.Request.Context(), req.Context)})
}
