package upload

import (
	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/metrics"
)

// RunnerParams defines the dependencies for creating a Runner.
type RunnerParams struct {
	fx.In
	Entities  port.EntityRepository
	Recorder  metrics.MetricRecorder
	Tracer    metrics.Tracer
	Listeners []port.RunListener `group:"run_listeners"`
}

// NewRunnerFromParams creates a Runner from fx-injected parameters.
func NewRunnerFromParams(p RunnerParams) *Runner {
	return NewRunner(p.Entities, p.Recorder, p.Tracer, p.Listeners...)
}

// Module provides the upload Runner.
var Module = fx.Options(
	fx.Provide(NewRunnerFromParams),
)
