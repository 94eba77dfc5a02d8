package metrics

import (
	"context"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
)

// Tracer is an abstract interface for distributed tracing of upload runs.
type Tracer interface {
	// StartRunSpan starts a span covering a whole run.
	//
	// Returns: A context carrying the span, and a function that ends it.
	//          It is recommended to call the returned function in a defer statement.
	StartRunSpan(ctx context.Context, summary *model.RunSummary) (context.Context, func())

	// StartGroupSpan starts a child span for one entity group.
	StartGroupSpan(ctx context.Context, uploaderType, identifier string) (context.Context, func())

	// RecordError records an error in the current span.
	//
	// module: The component where the error occurred (e.g., "mutation", "urlkey").
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records an event in the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
