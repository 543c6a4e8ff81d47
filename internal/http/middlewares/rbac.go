package middlewares

import (
	"errors"
	"net/http"

	"github.com/geocoder89/journal/internal/auth"
	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := ClaimsFromContext(c)

		err := auth.RequireRole(claims, required)
		if errors.Is(err, auth.ErrUnauthorized) {
			abort(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if err != nil {
			abort(c, http.StatusForbidden, "forbidden", "Access denied")
			return
		}
		c.Next()
	}
}
