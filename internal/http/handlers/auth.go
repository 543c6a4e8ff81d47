package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/journal/internal/config"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/geocoder89/journal/internal/service"
	"github.com/gin-gonic/gin"
)

type Registrar interface {
	Register(ctx context.Context, email, password string) (int64, error)
}

type LoginFlow interface {
	Login(ctx context.Context, email, password, code string) (user.User, error)
	SendLoginCode(ctx context.Context, email, password string) error
}

type SessionIssuer interface {
	IssueSession(u user.User) (string, error)
}

type AuthHandler struct {
	registrar Registrar
	login     LoginFlow
	sessions  SessionIssuer
	prom      *observability.Prom
}

func NewAuthHandler(registrar Registrar, login LoginFlow, sessions SessionIssuer, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		registrar: registrar,
		login:     login,
		sessions:  sessions,
		prom:      prom,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
	VerificationCode string `json:"verificationCode"`
}

type LoginCodeRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.registrar.Register(cctx, req.Email, req.Password); err != nil {
		RespondServiceError(ctx, err, "Could not create user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.login.Login(cctx, req.Email, req.Password, req.VerificationCode)
	if err != nil {
		h.prom.IncLogin(loginResult(err))
		RespondServiceError(ctx, err, "Could not log in")
		return
	}

	token, err := h.sessions.IssueSession(u)
	if err != nil {
		h.prom.IncLogin("error")
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.prom.IncLogin("ok")
	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"role":  u.Role,
	})
}

// SendLoginCode mails a fresh login code to a two-factor user who proves
// their password.
func (h *AuthHandler) SendLoginCode(ctx *gin.Context) {
	var req LoginCodeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.login.SendLoginCode(cctx, req.Email, req.Password)
	h.prom.IncCodeIssued("login", codeResult(err))
	if err != nil {
		RespondServiceError(ctx, err, "Could not send verification code")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, service.ErrVerificationRequired):
		return "verification_required"
	default:
		return "error"
	}
}

func codeResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, service.ErrNotifier):
		return "notifier_error"
	default:
		return "rejected"
	}
}
