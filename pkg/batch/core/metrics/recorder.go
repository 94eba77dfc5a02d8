package metrics

import (
	"context"
	"time"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
)

// MetricRecorder is an abstract interface for recording metrics of upload runs.
// It lets the uploader integrate with different backends (Prometheus, OpenTelemetry Metrics).
type MetricRecorder interface {
	// RecordRunStart records the start of an upload run.
	RecordRunStart(ctx context.Context, summary *model.RunSummary)

	// RecordRunEnd records the end of an upload run, including its final counts.
	RecordRunEnd(ctx context.Context, summary *model.RunSummary)

	// RecordGroup records a finished group outcome.
	//
	// ctx: The context for the operation.
	// uploaderType: The uploader kind that processed the group.
	// outcome: The terminal outcome of the group.
	RecordGroup(ctx context.Context, uploaderType string, outcome *model.GroupOutcome)

	// RecordDuration records the execution time of a specific operation.
	//
	// tags: Additional attributes, e.g. `{"operation": "reindex"}`.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)

	// Flush delivers buffered metrics to a remote backend, if any.
	Flush(ctx context.Context) error
}
