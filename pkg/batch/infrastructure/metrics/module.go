package metrics

import (
	"context"

	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	metrics "github.com/tigerroll/surfin-transporter/pkg/batch/core/metrics"
	logger "github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

// NewMetricRecorder selects the recorder named by surfin.observability.metrics.
func NewMetricRecorder(lc fx.Lifecycle, cfg *config.ObservabilityConfig) (metrics.MetricRecorder, error) {
	switch cfg.Metrics {
	case "prometheus":
		logger.Infof("Metrics: Prometheus recorder enabled.")
		return NewPrometheusRecorder(cfg.Prometheus), nil
	case "otel":
		provider, err := NewOTLPMeterProvider(context.Background(), *cfg)
		if err != nil {
			return nil, err
		}
		recorder, err := NewOTelRecorder(provider)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: recorder.Shutdown})
		logger.Infof("Metrics: OpenTelemetry recorder enabled (%s).", cfg.OTLP.Protocol)
		return recorder, nil
	default:
		return metrics.NewNoOpMetricRecorder(), nil
	}
}

// NewTracer selects the tracer named by surfin.observability.tracing.
func NewTracer(lc fx.Lifecycle, cfg *config.ObservabilityConfig) (metrics.Tracer, error) {
	if cfg.Tracing != "otel" {
		return metrics.NewNoOpTracer(), nil
	}
	provider, err := NewOTLPTracerProvider(context.Background(), *cfg)
	if err != nil {
		return nil, err
	}
	tracer := NewOpenTelemetryTracer(provider)
	lc.Append(fx.Hook{OnStop: tracer.Shutdown})
	logger.Infof("Tracing: OpenTelemetry tracer enabled (%s).", cfg.OTLP.Protocol)
	return tracer, nil
}

// Module is an Fx module that provides the configured MetricRecorder and Tracer.
var Module = fx.Options(
	fx.Provide(NewMetricRecorder),
	fx.Provide(NewTracer),
)
