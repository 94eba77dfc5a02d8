package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"

	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-transporter/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const moduleName = "metrics"

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
// A batch process does not live long enough to be scraped, so the registry is
// pushed to a Pushgateway on Flush when one is configured.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	cfg      config.PrometheusConfig

	// Run Metrics
	runDurationSeconds *prometheus.HistogramVec
	runTotal           *prometheus.CounterVec
	runsInProgress     *prometheus.GaugeVec

	// Group Metrics
	groupTotal           *prometheus.CounterVec
	groupDurationSeconds *prometheus.HistogramVec

	operationDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder(cfg config.PrometheusConfig) *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	// Register Go standard metrics and process/OS metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		cfg:      cfg,
		runDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transporter_run_duration_seconds",
			Help:    "Duration of upload runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"uploader", "result"}),
		runTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transporter_run_total",
			Help: "Total number of upload runs by result.",
		}, []string{"uploader", "result"}), // result: completed, aborted
		runsInProgress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "transporter_run_in_progress",
			Help: "Upload runs currently executing.",
		}, []string{"uploader"}),
		groupTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transporter_group_total",
			Help: "Total number of processed entity groups by status.",
		}, []string{"uploader", "status"}),
		groupDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transporter_group_duration_seconds",
			Help:    "Duration of entity group uploads.",
			Buckets: prometheus.DefBuckets,
		}, []string{"uploader", "status"}),
		operationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transporter_operation_duration_seconds",
			Help:    "Duration of named operations within a run.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "uploader"}),
	}

	registry.MustRegister(r.runDurationSeconds)
	registry.MustRegister(r.runTotal)
	registry.MustRegister(r.runsInProgress)
	registry.MustRegister(r.groupTotal)
	registry.MustRegister(r.groupDurationSeconds)
	registry.MustRegister(r.operationDurationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// RecordRunStart records the start of an upload run.
func (r *PrometheusRecorder) RecordRunStart(ctx context.Context, summary *model.RunSummary) {
	r.runsInProgress.WithLabelValues(summary.UploaderType).Inc()
	logger.Debugf("Metrics: Run '%s' (%s) started.", summary.RunID, summary.UploaderName)
}

// RecordRunEnd records the end of an upload run.
func (r *PrometheusRecorder) RecordRunEnd(ctx context.Context, summary *model.RunSummary) {
	r.runsInProgress.WithLabelValues(summary.UploaderType).Dec()
	result := runResult(summary)
	r.runTotal.WithLabelValues(summary.UploaderType, result).Inc()

	if summary.EndTime.IsZero() {
		return
	}
	duration := summary.Duration().Seconds()
	r.runDurationSeconds.WithLabelValues(summary.UploaderType, result).Observe(duration)

	logger.Debugf("Metrics: Run '%s' ended (%s). Duration: %.3fs", summary.RunID, result, duration)
}

// RecordGroup records a finished group outcome.
func (r *PrometheusRecorder) RecordGroup(ctx context.Context, uploaderType string, outcome *model.GroupOutcome) {
	status := outcome.Status.String()
	r.groupTotal.WithLabelValues(uploaderType, status).Inc()
	// Skipped groups never ran.
	if outcome.Status != model.GroupStatusSkipped {
		r.groupDurationSeconds.WithLabelValues(uploaderType, status).Observe(outcome.Duration.Seconds())
	}
}

// RecordDuration records the execution time of a specific operation.
// The "uploader" tag is the only label carried over; other tags are ignored.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.operationDurationSeconds.WithLabelValues(name, tags["uploader"]).Observe(duration.Seconds())
}

// Flush pushes the registry to the configured Pushgateway. It is a no-op
// without a gateway URL.
func (r *PrometheusRecorder) Flush(ctx context.Context) error {
	if r.cfg.PushGatewayURL == "" {
		return nil
	}
	pusher := push.New(r.cfg.PushGatewayURL, r.cfg.JobName).Gatherer(r.registry)
	if err := pusher.PushContext(ctx); err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"failed to push metrics to '%s'", r.cfg.PushGatewayURL, err)
	}
	logger.Debugf("Metrics: pushed to %s (job %s).", r.cfg.PushGatewayURL, r.cfg.JobName)
	return nil
}

func runResult(summary *model.RunSummary) string {
	if summary.Aborted {
		return "aborted"
	}
	return "completed"
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
