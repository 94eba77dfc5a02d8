package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx/fxtest"

	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-transporter/pkg/batch/core/metrics"
)

func finishedSummary(aborted bool) *model.RunSummary {
	s := model.NewRunSummary(7, "product", "product")
	ok := model.NewGroupOutcome("sku-1")
	_ = ok.MarkAsProcessing()
	_ = ok.MarkAsSucceeded("update", "")
	failed := model.NewGroupOutcome("sku-2")
	_ = failed.MarkAsProcessing()
	_ = failed.MarkAsFailed(errors.New("boom"))
	skipped := model.NewGroupOutcome("sku-3")
	_ = skipped.MarkAsSkipped()
	s.Outcomes = []*model.GroupOutcome{ok, failed, skipped}
	s.Aborted = aborted
	s.EndTime = s.StartTime.Add(2 * time.Second)
	return s
}

func TestPrometheusRecorder_RecordsRunAndGroups(t *testing.T) {
	r := NewPrometheusRecorder(config.PrometheusConfig{JobName: "test"})
	ctx := context.Background()
	summary := finishedSummary(true)

	r.RecordRunStart(ctx, summary)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsInProgress.WithLabelValues("product")))

	for _, o := range summary.Outcomes {
		r.RecordGroup(ctx, "product", o)
	}
	r.RecordDuration(ctx, "fetch_batch", 10*time.Millisecond, map[string]string{"uploader": "product"})
	r.RecordRunEnd(ctx, summary)

	assert.Equal(t, 0.0, testutil.ToFloat64(r.runsInProgress.WithLabelValues("product")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runTotal.WithLabelValues("product", "aborted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.groupTotal.WithLabelValues("product", "SUCCEEDED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.groupTotal.WithLabelValues("product", "FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.groupTotal.WithLabelValues("product", "SKIPPED")))
	// Skipped groups have no duration sample.
	assert.Equal(t, 2, testutil.CollectAndCount(r.groupDurationSeconds))
	assert.Equal(t, 1, testutil.CollectAndCount(r.operationDurationSeconds))

	families, err := r.GetRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestPrometheusRecorder_FlushWithoutGatewayIsNoop(t *testing.T) {
	r := NewPrometheusRecorder(config.PrometheusConfig{JobName: "test"})
	assert.NoError(t, r.Flush(context.Background()))
}

func TestPrometheusRecorder_FlushPushesToGateway(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		method, path = req.Method, req.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := NewPrometheusRecorder(config.PrometheusConfig{PushGatewayURL: server.URL, JobName: "surfin_transporter"})
	r.RecordRunStart(context.Background(), finishedSummary(false))

	require.NoError(t, r.Flush(context.Background()))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/surfin_transporter", path)
}

func TestPrometheusRecorder_FlushReportsGatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := NewPrometheusRecorder(config.PrometheusConfig{PushGatewayURL: server.URL, JobName: "test"})
	assert.Error(t, r.Flush(context.Background()))
}

func TestOTelRecorder_CollectsInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	r, err := NewOTelRecorder(provider)
	require.NoError(t, err)

	ctx := context.Background()
	summary := finishedSummary(false)
	r.RecordRunStart(ctx, summary)
	for _, o := range summary.Outcomes {
		r.RecordGroup(ctx, "product", o)
	}
	r.RecordDuration(ctx, "fetch_batch", time.Millisecond, map[string]string{"uploader": "product"})
	r.RecordRunEnd(ctx, summary)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]metricdata.Aggregation{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = m.Data
	}
	assert.Contains(t, names, "transporter.run.duration")
	assert.Contains(t, names, "transporter.operation.duration")

	groups, ok := names["transporter.group.count"].(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range groups.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)

	assert.NoError(t, r.Flush(ctx))
	assert.NoError(t, r.Shutdown(ctx))
}

func TestOpenTelemetryTracer_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := NewOpenTelemetryTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))

	summary := finishedSummary(true)
	ctx, endRun := tracer.StartRunSpan(context.Background(), summary)
	tracer.RecordEvent(ctx, "batch_loaded", map[string]interface{}{"groups": 3, "note": struct{}{}})

	groupCtx, endGroup := tracer.StartGroupSpan(ctx, "product", "sku-2")
	tracer.RecordError(groupCtx, "mutation", errors.New("boom"))
	tracer.RecordError(groupCtx, "mutation", nil)
	endGroup()
	endRun()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	group, run := spans[0], spans[1]

	assert.Equal(t, "group sku-2", group.Name())
	assert.Equal(t, codes.Error, group.Status().Code)
	assert.Equal(t, run.SpanContext().SpanID(), group.Parent().SpanID())
	require.Len(t, group.Events(), 1)
	assert.Equal(t, "exception", group.Events()[0].Name)

	assert.Equal(t, "upload product", run.Name())
	assert.Equal(t, codes.Error, run.Status().Code)
	require.Len(t, run.Events(), 1)
	assert.Equal(t, "batch_loaded", run.Events()[0].Name)
	assert.Len(t, run.Events()[0].Attributes, 2)

	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestOpenTelemetryTracer_SuccessfulRunIsOk(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := NewOpenTelemetryTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))

	summary := model.NewRunSummary(1, "product", "product")
	_, end := tracer.StartRunSpan(context.Background(), summary)
	end()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, codes.Ok, sr.Ended()[0].Status().Code)
}

func TestModule_DefaultsToNoOp(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := &config.ObservabilityConfig{Metrics: "none", Tracing: "none"}

	recorder, err := NewMetricRecorder(lc, cfg)
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpMetricRecorder{}, recorder)

	tracer, err := NewTracer(lc, cfg)
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpTracer{}, tracer)

	cfg.Metrics = "prometheus"
	recorder, err = NewMetricRecorder(lc, cfg)
	require.NoError(t, err)
	assert.IsType(t, &PrometheusRecorder{}, recorder)
}

func TestNewOTLPProviders_UnknownProtocol(t *testing.T) {
	cfg := config.ObservabilityConfig{ServiceName: "test", OTLP: config.OTLPConfig{Protocol: "carrier-pigeon"}}

	_, err := NewOTLPMeterProvider(context.Background(), cfg)
	assert.ErrorContains(t, err, "carrier-pigeon")
	_, err = NewOTLPTracerProvider(context.Background(), cfg)
	assert.ErrorContains(t, err, "carrier-pigeon")
}
