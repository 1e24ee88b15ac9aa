package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/agrilens/dashboard/internal/query"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSnapshotExport writes the results of a saved query state to disk.
	TaskSnapshotExport = "dashboard:snapshot:export"
	// TaskChartsWarmup reloads the dataset and fills the chart cache.
	TaskChartsWarmup = "dashboard:charts:warmup"
)

// SnapshotPayload carries the query state to export.
type SnapshotPayload struct {
	State       query.State `json:"state"`
	RequestedAt time.Time   `json:"requested_at"`
}

// NewSnapshotTask constructs an Asynq task for a snapshot export.
func NewSnapshotTask(payload SnapshotPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotExport, data, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}

// ChartsWarmupPayload controls the warmup run.
type ChartsWarmupPayload struct {
	Reload bool `json:"reload"`
}

// NewChartsWarmupTask constructs the periodic chart warmup task.
func NewChartsWarmupTask(reload bool) (*asynq.Task, error) {
	data, err := json.Marshal(ChartsWarmupPayload{Reload: reload})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskChartsWarmup, data, asynq.MaxRetry(1)), nil
}
