package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrilens/dashboard/internal/analytics"
	"github.com/agrilens/dashboard/internal/app"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/platform/cache"
	"github.com/agrilens/dashboard/internal/platform/db"
	"github.com/agrilens/dashboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	var pool *pgxpool.Pool
	if cfg.PGDSN != "" {
		pool, err = db.New(ctx, cfg.PGDSN, "dashboard-worker")
		if err != nil {
			logger.Error("connect database", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
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

	loader := companies.NewLoader(app.NewDataSource(cfg, pool), logger, cfg.DataSourceTimeout)
	store := companies.NewStore(loader, logger)
	if err := store.Reload(ctx); err != nil {
		logger.Warn("worker starting with empty dataset", slog.Any("error", err))
	}
	go store.Watch(ctx, cfg.DataRefreshInterval)

	chartService := analytics.NewService(analytics.NewCache(redisClient, cfg.ChartCacheTTL), analytics.SVGRenderer{}, logger)

	snapshotJob := jobs.NewSnapshotJob(store, cfg.SnapshotDir, logger, nil)
	snapshotJob.Paginator = cfg.Paginator()
	snapshotJob.Sorter.Locale = cfg.Locale()
	warmupJob := jobs.NewChartsWarmupJob(store, chartService, logger, nil)

	warmupTask, err := jobs.NewChartsWarmupTask(true)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSnapshotExport, Handler: snapshotJob.Handle},
			{Type: jobs.TaskChartsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ChartsWarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("snapshot_dir", cfg.SnapshotDir))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
