package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/social-pulse/internal/cache"
	"github.com/vadim/social-pulse/internal/config"
	httpcontroller "github.com/vadim/social-pulse/internal/controller/http"
	"github.com/vadim/social-pulse/internal/database"
	"github.com/vadim/social-pulse/internal/domain/metrics/dao"
	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
	"github.com/vadim/social-pulse/internal/domain/metrics/policy"
	"github.com/vadim/social-pulse/internal/domain/metrics/scheduler"
	"github.com/vadim/social-pulse/internal/domain/metrics/service"
	"github.com/vadim/social-pulse/internal/httpx/response"
	"github.com/vadim/social-pulse/internal/httpx/upstream/apify"
	"github.com/vadim/social-pulse/internal/ratelimit"
	"github.com/vadim/social-pulse/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	pg           *pgxpool.Pool
	metricsCache *cache.MetricsCache
	vendor       *apify.Client

	// Domain policies (interfaces for HTTP handlers)
	metricsPolicy *policy.Policy

	// Scheduler for pruning aged scrape history
	retention *scheduler.Scheduler
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Initialize router with middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(10 * time.Minute))

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	// Initialize infrastructure
	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	// Initialize domain layers
	if err := app.initDomains(ctx); err != nil {
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	// Register routes
	app.registerRoutes()

	// Initialize HTTP server
	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// initInfrastructure initializes infrastructure components (DB, Redis, S3)
func (a *App) initInfrastructure(ctx context.Context) error {
	if dsn := a.cfg.Database.PostgresDSN; dsn != "" {
		pool, err := database.NewPostgresPool(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		a.pg = pool
	}

	if a.cfg.Cache.Enabled {
		c := cache.New(cache.Config{
			Addr:     a.cfg.Cache.Addr,
			Password: a.cfg.Cache.Password,
			DB:       a.cfg.Cache.DB,
		}, a.cfg.Cache.TTL)
		if err := c.Ping(ctx); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.metricsCache = c
	}

	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy)
func (a *App) initDomains(_ context.Context) error {
	// Vendor job runner
	client := apify.New(a.cfg.Apify.Token, apify.WithBaseURL(a.cfg.Apify.BaseURL))
	specs := apify.ActorSpecs(map[entity.Platform]string{
		entity.PlatformInstagram: a.cfg.Apify.InstagramActor,
		entity.PlatformTwitter:   a.cfg.Apify.TwitterActor,
		entity.PlatformFacebook:  a.cfg.Apify.FacebookActor,
		entity.PlatformTikTok:    a.cfg.Apify.TikTokActor,
		entity.PlatformYouTube:   a.cfg.Apify.YouTubeActor,
		entity.PlatformLinkedIn:  a.cfg.Apify.LinkedInActor,
	})
	runner := apify.NewRunner(client, specs, a.logger,
		apify.WithPollInterval(a.cfg.Apify.PollInterval),
		apify.WithMaxPolls(a.cfg.Apify.MaxPolls),
		apify.WithRunBudget(a.cfg.Apify.RunBudget),
	)

	var scraper service.Scraper = runner
	if a.cfg.Apify.Token == "" {
		// No credentials: make every scrape fail fast into the fallback
		scraper = disabledScraper{}
	} else {
		a.vendor = client
	}

	limiter := ratelimit.New(ratelimit.Config{
		Spacing:         a.cfg.RateLimit.Spacing,
		HardWindow:      a.cfg.RateLimit.HardWindow,
		MaxWait:         a.cfg.RateLimit.MaxWait,
		ProfileInterval: a.cfg.RateLimit.ProfileInterval,
	})

	var archiver service.Archiver
	if a.cfg.S3.Enabled {
		archive, err := storage.NewPayloadArchive(storage.S3Config{
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			Bucket:          a.cfg.S3.Bucket,
			Region:          a.cfg.S3.Region,
		})
		if err != nil {
			return fmt.Errorf("initializing payload archive: %w", err)
		}
		archiver = archive
	}

	svc := service.New(scraper, limiter, archiver,
		service.FailurePolicy(a.cfg.Apify.FailurePolicy), a.logger)

	var history dao.ScrapeHistoryRepository
	if a.pg != nil {
		repo := dao.NewScrapeHistoryPostgres(a.pg)
		history = repo

		if a.cfg.Retention.Enabled {
			a.retention = scheduler.New(repo,
				a.cfg.Retention.Interval, a.cfg.Retention.MaxAge, a.logger)
		}
	}

	var metricsCache policy.MetricsCache
	if a.metricsCache != nil {
		metricsCache = a.metricsCache
	}

	a.metricsPolicy = policy.New(svc, metricsCache, history, a.logger)

	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	// Health check
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)
	a.router.Get("/diagnostics/vendor", a.vendorDiagnosticHandler)

	// Swagger UI documentation
	swaggerHandler := httpcontroller.NewSwaggerHandler("Social Pulse API", OpenAPISpec)
	swaggerHandler.RegisterRoutes(a.router)

	// API v1
	a.router.Route("/api/v1", func(r chi.Router) {
		scrapeHandler := httpcontroller.NewScrapeHandler(a.metricsPolicy)
		scrapeHandler.RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler handles readiness check requests
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	if a.pg != nil {
		if err := a.pg.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"database unavailable"}`))
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// vendorDiagnosticHandler reports whether the vendor credentials work by
// fetching the account they belong to
func (a *App) vendorDiagnosticHandler(w http.ResponseWriter, r *http.Request) {
	if a.vendor == nil {
		response.OK(w, map[string]string{"vendor": "disabled"})
		return
	}

	user, err := a.vendor.CheckConnection(r.Context())
	if err != nil {
		a.logger.Warn("vendor connection check failed", "error", err)
		response.Error(w, http.StatusBadGateway, "vendor unreachable")
		return
	}

	response.OK(w, map[string]string{"vendor": "ok", "account": user.Username})
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	// Start retention scheduler if enabled
	if a.retention != nil {
		a.retention.Start(ctx)
	}

	// Channel to receive errors from server
	errCh := make(chan error, 1)

	// Start HTTP server in goroutine
	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	// Stop retention scheduler
	if a.retention != nil {
		a.retention.Stop()
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	if a.metricsCache != nil {
		if err := a.metricsCache.Close(); err != nil {
			a.logger.Warn("closing redis client", "error", err)
		}
	}
	if a.pg != nil {
		a.pg.Close()
	}

	a.logger.Info("shutdown complete")
	return nil
}
