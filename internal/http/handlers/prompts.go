package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/journal/internal/config"
	"github.com/geocoder89/journal/internal/domain/prompt"
	"github.com/geocoder89/journal/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type PromptPicker interface {
	Pick(ctx context.Context, userID int64) (prompt.Prompt, error)
}

type PromptsHandler struct {
	picker PromptPicker
}

func NewPromptsHandler(picker PromptPicker) *PromptsHandler {
	return &PromptsHandler{picker: picker}
}

func (h *PromptsHandler) Random(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	p, err := h.picker.Pick(cctx, userID)
	if err != nil {
		RespondServiceError(ctx, err, "Could not load a question")
		return
	}

	ctx.JSON(http.StatusOK, p)
}
