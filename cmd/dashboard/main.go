package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrilens/dashboard/internal/analytics"
	"github.com/agrilens/dashboard/internal/analytics/export"
	analytichttp "github.com/agrilens/dashboard/internal/analytics/http"
	"github.com/agrilens/dashboard/internal/app"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/observability"
	"github.com/agrilens/dashboard/internal/platform/cache"
	"github.com/agrilens/dashboard/internal/platform/db"
	"github.com/agrilens/dashboard/internal/shared"
	"github.com/agrilens/dashboard/internal/view"
	"github.com/agrilens/dashboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	var dbpool *pgxpool.Pool
	if cfg.PGDSN != "" {
		dbpool, err = db.New(ctx, cfg.PGDSN, "dashboard")
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer dbpool.Close()
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	loader := companies.NewLoader(app.NewDataSource(cfg, dbpool), logger, cfg.DataSourceTimeout)
	store := companies.NewStore(loader, logger)
	if err := store.Reload(ctx); err != nil {
		logger.Warn("serving empty dataset until the source recovers", slog.Any("error", err))
	}
	go store.Watch(ctx, cfg.DataRefreshInterval)

	sessionManager := shared.NewSessionManager(redisClient, shared.DefaultCookieName, cfg.SessionTTL, cfg.IsProduction())

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	chartCache := analytics.NewCache(redisClient, cfg.ChartCacheTTL)
	chartService := analytics.NewService(chartCache, analytics.SVGRenderer{}, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	params := analytichttp.Params{
		Logger:    logger,
		Data:      store,
		Charts:    chartService,
		Templates: templates,
		Snapshots: jobClient,
		Metrics:   metrics,
		Paginator: cfg.Paginator(),
		Locale:    cfg.Locale(),
	}
	pdfExporter := &export.PDFExporter{Endpoint: cfg.GotenbergURL, Client: &http.Client{Timeout: 30 * time.Second}}
	if pdfExporter.Enabled() {
		params.PDF = pdfExporter
	}
	dashboardHandler := analytichttp.NewHandler(params)

	health := map[string]app.HealthCheck{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	if dbpool != nil {
		health["postgres"] = dbpool.Ping
	}
	if pdfExporter.Enabled() {
		health["gotenberg"] = pdfExporter.Ping
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
		Health:           health,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
