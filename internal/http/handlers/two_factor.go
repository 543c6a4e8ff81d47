package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/journal/internal/config"
	"github.com/geocoder89/journal/internal/http/middlewares"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/gin-gonic/gin"
)

type TwoFactorEnabler interface {
	EnableTwoFactor(ctx context.Context, userID int64) error
}

type TwoFactorHandler struct {
	enabler TwoFactorEnabler
	prom    *observability.Prom
}

func NewTwoFactorHandler(enabler TwoFactorEnabler, prom *observability.Prom) *TwoFactorHandler {
	return &TwoFactorHandler{enabler: enabler, prom: prom}
}

func (h *TwoFactorHandler) Enable(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	// covers the notifier timeout plus both writes
	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.enabler.EnableTwoFactor(cctx, userID)
	h.prom.IncCodeIssued("enable_2fa", codeResult(err))
	if err != nil {
		RespondServiceError(ctx, err, "Could not enable two-factor authentication")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
