package middlewares

import (
	"errors"
	"net/http"

	"github.com/geocoder89/journal/internal/auth"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Authenticate(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
}

func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth answers 401 when no token is sent and 403 when the token
// does not verify or comes under another scheme.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var claims *auth.Claims
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err == nil {
			claims, err = m.tokens.Authenticate(raw)
		}
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				abort(c, http.StatusUnauthorized, "unauthorized", "Missing access token")
				return
			}
			abort(c, http.StatusForbidden, "forbidden", "Invalid or expired access token")
			return
		}

		c.Set(ctxClaimsKey, claims)
		c.Request = c.Request.WithContext(observability.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

func UserIDFromContext(c *gin.Context) (int64, bool) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func abort(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)
	id, _ := reqID.(string)

	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": id,
		},
	})
}
