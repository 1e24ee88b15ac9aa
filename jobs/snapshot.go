package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/natefinch/atomic"

	"github.com/agrilens/dashboard/internal/analytics/export"
	"github.com/agrilens/dashboard/internal/companies"
	jobmetrics "github.com/agrilens/dashboard/internal/jobs"
	"github.com/agrilens/dashboard/internal/query"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const jobSnapshot = "snapshot"

// DatasetProvider returns the dataset currently being served.
type DatasetProvider interface {
	Current(ctx context.Context) *companies.Dataset
}

// SnapshotJob writes the full result set of a query state as a CSV file.
type SnapshotJob struct {
	Data      DatasetProvider
	Dir       string
	Paginator query.Paginator
	Sorter    query.Sorter
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewSnapshotJob wires dependencies for the snapshot handler.
func NewSnapshotJob(data DatasetProvider, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotJob {
	return &SnapshotJob{
		Data:      data,
		Dir:       dir,
		Paginator: query.NewPaginator(query.DefaultPageSize, query.DefaultWindow),
		Sorter:    query.DefaultSorter,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes snapshot export tasks.
func (j *SnapshotJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Data == nil {
		return errors.New("snapshot: handler not configured")
	}
	var payload SnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("snapshot: decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(jobSnapshot)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	id, ok := asynq.GetTaskID(ctx)
	if !ok || id == "" {
		id = uuid.NewString()
	}
	logger := j.logger().With(slog.String("task_id", id))

	path, rows, err := j.Export(ctx, payload.State, id)
	if err != nil {
		resultErr = err
		logger.Error("write snapshot", slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddSnapshotRows(rows)
	logger.Info("snapshot written", slog.String("path", path), slog.Int("rows", rows))
	return resultErr
}

// Export writes the snapshot for state and returns the file path and the
// number of company rows written.
func (j *SnapshotJob) Export(ctx context.Context, state query.State, id string) (string, int, error) {
	ds := j.Data.Current(ctx)
	coord := query.NewCoordinator(ds, query.Sinks{},
		query.WithPaginator(j.Paginator),
		query.WithSorter(j.Sorter),
		query.WithState(state),
	)
	results := coord.Results()

	var buf bytes.Buffer
	if err := export.WriteCompaniesCSV(&buf, results); err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(j.Dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(j.Dir, SnapshotFileName(j.now(), id))
	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}
	return path, len(results), nil
}

// SnapshotFileName names the CSV written for a task.
func SnapshotFileName(at time.Time, id string) string {
	return fmt.Sprintf("companies-%s-%s.csv", at.UTC().Format("20060102T150405Z"), id)
}

func (j *SnapshotJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSnapshotExport))
	}
	return slog.Default().With(slog.String("job", TaskSnapshotExport))
}

func (j *SnapshotJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *SnapshotJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
