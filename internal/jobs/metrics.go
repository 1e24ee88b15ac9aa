// Package jobmetrics instruments the dashboard's background tasks.
package jobmetrics

import (
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded on dashboard_jobs_total.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	// StatusRejected marks runs that returned asynq.SkipRetry, usually a
	// payload that can never decode. They are not counted as failures.
	StatusRejected = "rejected"
)

// Metrics holds the job collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs         *prometheus.CounterVec
	failures     *prometheus.CounterVec
	inflight     *prometheus.GaugeVec
	duration     *prometheus.HistogramVec
	snapshotRows prometheus.Counter
}

var (
	sharedOnce sync.Once
	shared     *Metrics
)

// NewMetrics registers the collectors on reg. A nil reg shares one set of
// collectors on the default registerer across callers.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg != nil {
		return register(reg)
	}
	sharedOnce.Do(func() { shared = register(prometheus.DefaultRegisterer) })
	return shared
}

// Tracker times one run of a job.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track marks job as in flight until End is called.
func (m *Metrics) Track(job string) *Tracker {
	t := &Tracker{metrics: m, job: job, start: time.Now()}
	if m != nil && job != "" {
		m.inflight.WithLabelValues(job).Inc()
	}
	return t
}

// End records the outcome of the run and returns err unchanged.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	m := t.metrics
	m.inflight.WithLabelValues(t.job).Dec()

	status := Outcome(err)
	if status == StatusFailure {
		m.failures.WithLabelValues(t.job).Inc()
	}
	m.runs.WithLabelValues(t.job, status).Inc()
	m.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// Outcome classifies a handler result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, asynq.SkipRetry):
		return StatusRejected
	default:
		return StatusFailure
	}
}

// AddSnapshotRows counts company rows written by snapshot exports.
func (m *Metrics) AddSnapshotRows(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.snapshotRows.Add(float64(count))
}

func register(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_jobs_total",
			Help: "Background job runs by job and status.",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_jobs_failures_total",
			Help: "Background job runs that failed and may be retried.",
		}, []string{"job"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dashboard_jobs_inflight",
			Help: "Background jobs currently executing.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_job_duration_seconds",
			Help:    "Background job run time.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"job"}),
		snapshotRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_snapshot_rows_total",
			Help: "Company rows written by snapshot exports.",
		}),
	}
	reg.MustRegister(m.runs, m.failures, m.inflight, m.duration, m.snapshotRows)
	return m
}
