package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-transporter/pkg/batch/core/metrics"
	logger "github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

// OpenTelemetryTracer is an implementation of metrics.Tracer using OpenTelemetry.
type OpenTelemetryTracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewOpenTelemetryTracer creates a tracer on top of provider.
func NewOpenTelemetryTracer(provider *sdktrace.TracerProvider) *OpenTelemetryTracer {
	return &OpenTelemetryTracer{
		provider: provider,
		tracer:   provider.Tracer(instrumentationName),
	}
}

// StartRunSpan starts a new span covering an upload run. The span is marked
// as failed when the run aborted or collected errors by the time it ends.
func (t *OpenTelemetryTracer) StartRunSpan(ctx context.Context, summary *model.RunSummary) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "upload "+summary.UploaderName,
		trace.WithAttributes(
			attribute.String("run.id", summary.RunID),
			attribute.Int64("activity.id", summary.ActivityID),
			attribute.String("uploader.name", summary.UploaderName),
			attribute.String("uploader.type", summary.UploaderType),
		))
	logger.Debugf("Tracer: run span started for '%s' (run %s).", summary.UploaderName, summary.RunID)

	return ctx, func() {
		span.SetAttributes(
			attribute.Int("groups.succeeded", summary.Succeeded()),
			attribute.Int("groups.failed", summary.Failed()),
			attribute.Int("groups.skipped", summary.Skipped()),
			attribute.Bool("run.aborted", summary.Aborted),
		)
		switch {
		case summary.Aborted:
			span.SetStatus(codes.Error, "run aborted")
		case summary.Err != nil:
			span.SetStatus(codes.Error, summary.Err.Error())
		default:
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// StartGroupSpan starts a child span for one entity group.
func (t *OpenTelemetryTracer) StartGroupSpan(ctx context.Context, uploaderType, identifier string) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "group "+identifier,
		trace.WithAttributes(
			attribute.String("uploader.type", uploaderType),
			attribute.String("group.identifier", identifier),
		))
	return ctx, func() { span.End() }
}

// RecordError records an error in the current span.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, trace.WithAttributes(attribute.String("module", module)))
	span.SetStatus(codes.Error, err.Error())
}

// RecordEvent records an event in the current span.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

// Shutdown flushes pending spans and stops the provider.
func (t *OpenTelemetryTracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

func toAttributes(values map[string]interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return attrs
}

var _ metrics.Tracer = (*OpenTelemetryTracer)(nil)
