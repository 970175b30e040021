package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Native build outcomes.
const (
	OutcomeBuilt   = "built"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics holds the orchestrator's collectors.
type Metrics struct {
	registry     *prometheus.Registry
	jobs         *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	nativeBuilds *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpvbuild_jobs_total",
				Help: "Matrix jobs executed, by terminal status.",
			},
			[]string{"platform", "crate", "feature", "status"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mpvbuild_job_duration_seconds",
				Help:    "Wall time of matrix jobs.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"platform", "crate"},
		),
		nativeBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpvbuild_native_builds_total",
				Help: "Native dependency graph nodes processed, by outcome.",
			},
			[]string{"node", "arch", "outcome"},
		),
	}
	m.registry.MustRegister(m.jobs, m.jobDuration, m.nativeBuilds)
	return m
}

// Registry exposes the underlying registry, e.g. to add collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveJob records the terminal status and duration of a job.
func (m *Metrics) ObserveJob(job domain.Job, status domain.JobStatus, d time.Duration) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(job.DistPlatform(), job.Crate, job.Feature, string(status)).Inc()
	m.jobDuration.WithLabelValues(job.DistPlatform(), job.Crate).Observe(d.Seconds())
}

// ObserveNativeBuild records one processed graph node.
func (m *Metrics) ObserveNativeBuild(node, arch, outcome string) {
	if m == nil {
		return
	}
	m.nativeBuilds.WithLabelValues(node, arch, outcome).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
