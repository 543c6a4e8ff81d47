package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, POST, OPTIONS"
	// If-None-Match lets browsers revalidate /entries and /admin/users.
	corsHeaders = "Authorization, Content-Type, If-None-Match, X-Request-Id"
	corsExpose  = "ETag, X-Request-Id, Retry-After"
)

// CORSMiddleware allows the journal front end's origins. A preflight from
// any other origin gets 403 so misconfigured clients fail loudly.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		ok := origin != "" && allowed[origin]

		if ok {
			h := ctx.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", corsExpose)
		}

		if ctx.Request.Method != http.MethodOptions {
			ctx.Next()
			return
		}

		if origin != "" && !ok {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}
		if ok {
			h := ctx.Writer.Header()
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Max-Age", "600")
		}
		ctx.AbortWithStatus(http.StatusNoContent)
	}
}
