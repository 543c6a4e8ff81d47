package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/journal/internal/auth"
	"github.com/geocoder89/journal/internal/domain/entry"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/geocoder89/journal/internal/service"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := observability.RequestIDFrom(ctx.Request.Context()); id != "" {
		return id
	}
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusForbidden, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondServiceError maps a service or domain error onto the API envelope.
// Anything unrecognized is logged and answered with a generic 500 carrying
// fallback as its message.
func RespondServiceError(ctx *gin.Context, err error, fallback string) {
	var ve *service.ValidationError

	switch {
	case errors.As(err, &ve):
		RespondBadRequest(ctx, ve.Msg, nil)
	case errors.Is(err, user.ErrEmailTaken):
		RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use.", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondUnAuthorized(ctx, "invalid_credentials", "Email, password or verification code is incorrect.")
	case errors.Is(err, service.ErrVerificationRequired):
		RespondUnAuthorized(ctx, "verification_required", "A verification code is required.")
	case errors.Is(err, auth.ErrUnauthorized):
		RespondUnAuthorized(ctx, "unauthorized", "Missing access token")
	case errors.Is(err, auth.ErrForbidden):
		RespondForbidden(ctx, "forbidden", "Access denied")
	case errors.Is(err, entry.ErrEditWindowClosed):
		RespondForbidden(ctx, "edit_window_closed", "Entries can only be edited on the day they were written.")
	case errors.Is(err, entry.ErrNotFound):
		RespondNotFound(ctx, "Entry not found")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	default:
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"route", ctx.FullPath(),
			"err", err,
		)
		RespondInternal(ctx, fallback)
	}
}
