package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/agrilens/dashboard/internal/analytics"
	"github.com/agrilens/dashboard/internal/companies"
	jobmetrics "github.com/agrilens/dashboard/internal/jobs"
)

const jobChartsWarmup = "charts_warmup"

// DatasetReloader refreshes the served dataset.
type DatasetReloader interface {
	DatasetProvider
	Reload(ctx context.Context) error
}

// ChartRenderer renders and caches the dataset charts.
type ChartRenderer interface {
	Charts(ctx context.Context, ds *companies.Dataset) ([]analytics.RenderedChart, error)
}

// ChartsWarmupJob fills the chart cache for the current dataset so the first
// dashboard request after a data change does not pay for rendering.
type ChartsWarmupJob struct {
	Store   DatasetReloader
	Charts  ChartRenderer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewChartsWarmupJob wires dependencies for the warmup handler.
func NewChartsWarmupJob(store DatasetReloader, charts ChartRenderer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ChartsWarmupJob {
	return &ChartsWarmupJob{
		Store:   store,
		Charts:  charts,
		Logger:  logger,
		Metrics: metrics,
		Timeout: 30 * time.Second,
	}
}

// Handle processes chart warmup tasks.
func (j *ChartsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil || j.Charts == nil {
		return errors.New("charts warmup: handler not configured")
	}
	var payload ChartsWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("charts warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.metrics().Track(jobChartsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := time.Now()
	if payload.Reload {
		// A failed reload still leaves a dataset worth warming.
		if err := j.Store.Reload(ctx); err != nil {
			logger.Warn("reload dataset", slog.Any("error", err))
		}
	}

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	ds := j.Store.Current(ctx)
	charts, err := j.Charts.Charts(ctx, ds)
	if err != nil {
		resultErr = err
		logger.Error("render charts", slog.Any("error", err))
		return resultErr
	}
	logger.Info("charts warmed",
		slog.String("fingerprint", ds.Fingerprint),
		slog.Int("charts", len(charts)),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ChartsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskChartsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskChartsWarmup))
}

func (j *ChartsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
