package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-transporter/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const instrumentationName = "github.com/tigerroll/surfin-transporter"

// OTelRecorder records run metrics through an OpenTelemetry MeterProvider.
type OTelRecorder struct {
	provider *sdkmetric.MeterProvider

	runDuration       otelmetric.Float64Histogram
	runCounter        otelmetric.Int64Counter
	runsInProgress    otelmetric.Int64UpDownCounter
	groupCounter      otelmetric.Int64Counter
	groupDuration     otelmetric.Float64Histogram
	operationDuration otelmetric.Float64Histogram
}

// NewOTelRecorder creates the instruments on provider's meter.
func NewOTelRecorder(provider *sdkmetric.MeterProvider) (*OTelRecorder, error) {
	meter := provider.Meter(instrumentationName)
	r := &OTelRecorder{provider: provider}

	var err error
	if r.runDuration, err = meter.Float64Histogram("transporter.run.duration",
		otelmetric.WithDescription("Duration of upload runs."), otelmetric.WithUnit("s")); err != nil {
		return nil, instrumentError("transporter.run.duration", err)
	}
	if r.runCounter, err = meter.Int64Counter("transporter.run.count",
		otelmetric.WithDescription("Number of upload runs by result.")); err != nil {
		return nil, instrumentError("transporter.run.count", err)
	}
	if r.runsInProgress, err = meter.Int64UpDownCounter("transporter.run.in_progress",
		otelmetric.WithDescription("Upload runs currently executing.")); err != nil {
		return nil, instrumentError("transporter.run.in_progress", err)
	}
	if r.groupCounter, err = meter.Int64Counter("transporter.group.count",
		otelmetric.WithDescription("Number of processed entity groups by status.")); err != nil {
		return nil, instrumentError("transporter.group.count", err)
	}
	if r.groupDuration, err = meter.Float64Histogram("transporter.group.duration",
		otelmetric.WithDescription("Duration of entity group uploads."), otelmetric.WithUnit("s")); err != nil {
		return nil, instrumentError("transporter.group.duration", err)
	}
	if r.operationDuration, err = meter.Float64Histogram("transporter.operation.duration",
		otelmetric.WithDescription("Duration of named operations within a run."), otelmetric.WithUnit("s")); err != nil {
		return nil, instrumentError("transporter.operation.duration", err)
	}
	return r, nil
}

func instrumentError(name string, err error) error {
	return exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "failed to create instrument '%s'", name, err)
}

// RecordRunStart records the start of an upload run.
func (r *OTelRecorder) RecordRunStart(ctx context.Context, summary *model.RunSummary) {
	r.runsInProgress.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("uploader", summary.UploaderType)))
}

// RecordRunEnd records the end of an upload run.
func (r *OTelRecorder) RecordRunEnd(ctx context.Context, summary *model.RunSummary) {
	uploader := attribute.String("uploader", summary.UploaderType)
	r.runsInProgress.Add(ctx, -1, otelmetric.WithAttributes(uploader))

	attrs := otelmetric.WithAttributes(uploader, attribute.String("result", runResult(summary)))
	r.runCounter.Add(ctx, 1, attrs)
	if !summary.EndTime.IsZero() {
		r.runDuration.Record(ctx, summary.Duration().Seconds(), attrs)
	}
}

// RecordGroup records a finished group outcome.
func (r *OTelRecorder) RecordGroup(ctx context.Context, uploaderType string, outcome *model.GroupOutcome) {
	attrs := otelmetric.WithAttributes(
		attribute.String("uploader", uploaderType),
		attribute.String("status", outcome.Status.String()),
	)
	r.groupCounter.Add(ctx, 1, attrs)
	if outcome.Status != model.GroupStatusSkipped {
		r.groupDuration.Record(ctx, outcome.Duration.Seconds(), attrs)
	}
}

// RecordDuration records the execution time of a specific operation. Every
// tag becomes an attribute.
func (r *OTelRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	attrs := make([]attribute.KeyValue, 0, len(tags)+1)
	attrs = append(attrs, attribute.String("operation", name))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	r.operationDuration.Record(ctx, duration.Seconds(), otelmetric.WithAttributes(attrs...))
}

// Flush forces the provider's readers to export.
func (r *OTelRecorder) Flush(ctx context.Context) error {
	if err := r.provider.ForceFlush(ctx); err != nil {
		logger.Warnf("Metrics: OTel flush failed: %v", err)
		return exception.NewUploadError(moduleName, exception.KindConfiguration, "failed to flush OTel metrics", err)
	}
	return nil
}

// Shutdown flushes and stops the provider.
func (r *OTelRecorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

var _ metrics.MetricRecorder = (*OTelRecorder)(nil)
