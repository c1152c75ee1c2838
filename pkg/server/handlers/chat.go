package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	concierge "github.com/happyculture/soco-concierge"
	"github.com/happyculture/soco-concierge/pkg/server/dto"
)

// ChatHandler answers guest questions through the pipeline.
type ChatHandler struct {
	engine concierge.Engine
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(engine concierge.Engine) *ChatHandler {
	return &ChatHandler{
		engine: engine,
	}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	resp := h.engine.Process(c.Request.Context(), req.Question)

	sources := resp.Sources
	if sources == nil {
		sources = []string{}
	}

	c.JSON(http.StatusOK, dto.ChatResponse{
		Answer:         resp.Answer,
		Intent:         string(resp.Intent),
		Sources:        sources,
		RequiresAction: resp.RequiresAction,
	})
}
