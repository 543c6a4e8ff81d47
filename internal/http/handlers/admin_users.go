package handlers

import (
	"context"
	"time"

	"github.com/geocoder89/journal/internal/config"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserLister interface {
	ListUsers(ctx context.Context) ([]user.User, error)
}

type AdminUsersHandler struct {
	users UserLister
}

func NewAdminUsersHandler(users UserLister) *AdminUsersHandler {
	return &AdminUsersHandler{users: users}
}

func (h *AdminUsersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.users.ListUsers(cctx)
	if err != nil {
		RespondServiceError(ctx, err, "Could not list users")
		return
	}

	out := make([]user.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}

	respondWithETag(ctx, usersETag(out), out)
}
