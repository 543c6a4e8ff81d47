package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/journal/internal/auth"
	"github.com/geocoder89/journal/internal/config"
	"github.com/geocoder89/journal/internal/db"
	httpx "github.com/geocoder89/journal/internal/http"
	"github.com/geocoder89/journal/internal/http/handlers"
	"github.com/geocoder89/journal/internal/http/middlewares"
	"github.com/geocoder89/journal/internal/notifications"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/geocoder89/journal/internal/redisclient"
	"github.com/geocoder89/journal/internal/repo/memory"
	"github.com/geocoder89/journal/internal/repo/postgres"
	"github.com/geocoder89/journal/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type promptStore interface {
	service.PromptsRepo
	db.PromptSeeder
}

type stores struct {
	users   service.UsersRepo
	prompts promptStore
	entries service.EntriesRepo
	codes   service.VerificationCodesRepo
	ping    handlers.Check
	close   func()
}

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "journal-api",
			Env:         cfg.Env,
			Endpoint:    cfg.OTLPEndpoint,
			SampleRatio: cfg.OTelSampleRatio,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				sctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(sctx)
			}()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	st, err := openStores(ctx, cfg, prom, log)
	if err != nil {
		log.Error("storage init failed", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer st.close()

	// startup seeding
	seedCtx, cancelSeed := config.WithTimeout(10 * time.Second)
	if err := db.SeedPrompts(seedCtx, st.prompts, log); err != nil {
		cancelSeed()
		log.Error("seeding prompts failed", "err", err)
		os.Exit(1)
	}
	if err := db.EnsureAdminUser(seedCtx, st.users, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		cancelSeed()
		log.Error("admin bootstrap failed", "err", err)
		os.Exit(1)
	}
	cancelSeed()

	checks := map[string]handlers.Check{"store": st.ping}

	var limiter middlewares.Limiter
	if cfg.RedisAddr != "" {
		rctx, cancelRedis := config.WithTimeout(3 * time.Second)
		rc, err := redisclient.Connect(rctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cancelRedis()

		if err != nil {
			// the router falls back to the in-process limiter
			log.Warn("redis unavailable, rate limiting per instance", "err", err)
		} else {
			defer rc.Close()
			limiter = middlewares.NewRedisLimiter(rc.Cmdable(), cfg.AuthRateLimit, cfg.AuthRateWindow)
			checks["redis"] = rc.Ready
			log.Info("rate limiting via redis", "addr", cfg.RedisAddr)
		}
	}

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{Timeout: cfg.NotifierTimeout},
	)

	creds := service.NewCredentials(st.users)
	gate := service.NewVerificationGate(st.codes, notifier)

	router := httpx.NewRouter(httpx.Deps{
		Config:      cfg,
		Log:         log,
		Tokens:      auth.NewManager(cfg.JWTSecret),
		Credentials: creds,
		Auth:        service.NewAuth(creds, gate),
		Prompts:     service.NewPromptSelector(st.prompts),
		Ledger:      service.NewEntryLedger(st.entries, st.prompts),
		Limiter:     limiter,
		Prom:        prom,
		Gatherer:    reg,
		Checks:      checks,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (stores, error) {
	if cfg.Store == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		m := memory.NewStore()
		return stores{
			users:   m.Users(),
			prompts: m.Prompts(),
			entries: m.Entries(),
			codes:   m.VerificationCodes(),
			close:   func() {},
		}, nil
	}

	mctx, cancel := config.WithTimeout(30 * time.Second)
	defer cancel()

	if err := db.Migrate(mctx, cfg.DBURL); err != nil {
		return stores{}, fmt.Errorf("migrate: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return stores{}, fmt.Errorf("connect: %w", err)
	}

	return stores{
		users:   postgres.NewUsersRepo(pool, prom),
		prompts: postgres.NewPromptsRepo(pool, prom),
		entries: postgres.NewEntriesRepo(pool, prom),
		codes:   postgres.NewVerificationCodesRepo(pool, prom),
		ping:    pool.Ping,
		close:   pool.Close,
	}, nil
}
