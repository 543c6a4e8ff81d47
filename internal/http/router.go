package http

import (
	"log/slog"

	"github.com/geocoder89/journal/internal/auth"
	"github.com/geocoder89/journal/internal/config"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/geocoder89/journal/internal/http/handlers"
	"github.com/geocoder89/journal/internal/http/middlewares"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/geocoder89/journal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router wires into handlers. Prom, Gatherer and the
// readiness checks are optional.
type Deps struct {
	Config      config.Config
	Log         *slog.Logger
	Tokens      *auth.Manager
	Credentials *service.Credentials
	Auth        *service.Auth
	Prompts     *service.PromptSelector
	Ledger      *service.EntryLedger
	Limiter     middlewares.Limiter
	Prom        *observability.Prom
	Gatherer    prometheus.Gatherer
	Checks      map[string]handlers.Check
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" && d.Config.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware("journal-api"))
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(d.Config.Env))
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	limiter := d.Limiter
	if limiter == nil {
		limiter = middlewares.NewRateLimiter(d.Config.AuthRateLimit, d.Config.AuthRateWindow)
	}
	limit := func(route string) gin.HandlerFunc {
		return middlewares.RateLimit(limiter, route, middlewares.KeyByIP, d.Prom, d.Log)
	}

	authHandler := handlers.NewAuthHandler(d.Credentials, d.Auth, d.Tokens, d.Prom)
	r.POST("/register", limit("register"), authHandler.Register)
	r.POST("/login", limit("login"), authHandler.Login)
	r.POST("/login/verification-code", limit("login_code"), authHandler.SendLoginCode)

	am := middlewares.NewAuthMiddleware(d.Tokens)
	authed := r.Group("/", am.RequireAuth())

	promptsHandler := handlers.NewPromptsHandler(d.Prompts)
	authed.GET("/question", promptsHandler.Random)

	entriesHandler := handlers.NewEntriesHandler(d.Ledger, d.Prom)
	authed.GET("/answer/:id/can-edit", entriesHandler.CanEdit)
	authed.POST("/submit", entriesHandler.Submit)
	authed.GET("/entries", entriesHandler.List)

	twoFactorHandler := handlers.NewTwoFactorHandler(d.Auth, d.Prom)
	authed.POST("/enable-2fa", twoFactorHandler.Enable)

	admin := authed.Group("/admin", am.RequireRole(user.RoleAdmin))
	adminUsers := handlers.NewAdminUsersHandler(d.Credentials)
	admin.GET("/users", adminUsers.List)

	return r
}
