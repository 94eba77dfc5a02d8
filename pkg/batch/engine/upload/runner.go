// Package upload runs one upload over the staged entity groups of an activity.
//
// A Runner fetches the batch, walks the groups strictly in order, hands each
// group to a GroupHandler, and applies the continue-on-error policy to failures.
// Every uploader and manipulator plugs into the same loop through GroupHandler.
package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const moduleName = "upload"

// Result describes what a handler applied to a group.
type Result struct {
	// Action names the mutation, e.g. "set_base_price" or "delete_rule".
	Action string
	// Detail is the applied value in human-readable form.
	Detail string
}

// GroupHandler processes one entity group: it extracts fields and performs
// exactly one mutation or deletion.
type GroupHandler interface {
	// Type is the uploader type written to every log line.
	Type() string
	Handle(ctx context.Context, entry model.GroupEntry) (Result, error)
}

// ErrRunAborted matches the terminating error returned when the policy stops a run.
var ErrRunAborted = errors.New("upload run aborted")

// AbortError is the terminating error of an aborted run. It names the group
// whose failure stopped the run and wraps that failure.
type AbortError struct {
	ActivityID int64
	Identifier string
	Cause      error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("upload of activity %d aborted at group '%s': %v", e.ActivityID, e.Identifier, e.Cause)
}

func (e *AbortError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrRunAborted) true for every AbortError.
func (e *AbortError) Is(target error) bool { return target == ErrRunAborted }

// Options parameterize a single run.
type Options struct {
	ActivityID      int64
	UploaderName    string
	ContinueOnError bool
	FailureLimit    int
}

// Runner executes upload runs. It is safe to reuse across runs but runs
// themselves are sequential.
type Runner struct {
	entities      port.EntityRepository
	policyFactory *DefaultFailurePolicyFactory
	recorder      metrics.MetricRecorder
	tracer        metrics.Tracer
	listeners     []port.RunListener
}

// NewRunner creates a Runner. Nil recorder or tracer fall back to no-ops.
func NewRunner(entities port.EntityRepository, recorder metrics.MetricRecorder, tracer metrics.Tracer, listeners ...port.RunListener) *Runner {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	return &Runner{
		entities:      entities,
		policyFactory: NewDefaultFailurePolicyFactory(),
		recorder:      recorder,
		tracer:        tracer,
		listeners:     listeners,
	}
}

// Execute performs one run of handler over the activity's batch.
//
// The returned summary is always non-nil. The error is non-nil only when the
// batch could not be fetched or the policy aborted the run (an *AbortError).
// Failures tolerated by the policy are aggregated in summary.Err.
func (r *Runner) Execute(ctx context.Context, handler GroupHandler, opts Options) (*model.RunSummary, error) {
	summary := model.NewRunSummary(opts.ActivityID, opts.UploaderName, handler.Type())
	ctx, endSpan := r.tracer.StartRunSpan(ctx, summary)
	defer endSpan()

	for _, l := range r.listeners {
		l.BeforeRun(ctx, summary)
	}
	r.recorder.RecordRunStart(ctx, summary)

	runErr := r.run(ctx, handler, opts, summary)

	summary.EndTime = time.Now()
	r.recorder.RecordRunEnd(ctx, summary)
	for _, l := range r.listeners {
		l.AfterRun(ctx, summary)
	}
	return summary, runErr
}

func (r *Runner) run(ctx context.Context, handler GroupHandler, opts Options, summary *model.RunSummary) error {
	fetchStart := time.Now()
	batch, err := r.entities.GetAllByActivityGroupedByIdentifier(ctx, opts.ActivityID)
	r.recorder.RecordDuration(ctx, "fetch_batch", time.Since(fetchStart), map[string]string{"uploader": handler.Type()})
	if err != nil {
		fetchErr := exception.NewUploadErrorf(moduleName, exception.KindPersistence,
			"failed to load entities of activity %d", opts.ActivityID, err)
		summary.Err = fetchErr
		summary.Aborted = true
		r.tracer.RecordError(ctx, moduleName, fetchErr)
		return fetchErr
	}

	summary.Outcomes = make([]*model.GroupOutcome, len(batch))
	for i, entry := range batch {
		summary.Outcomes[i] = model.NewGroupOutcome(entry.Identifier)
	}
	logger.Infof("Upload '%s' (%s) of activity %d: %d group(s) to process.", opts.UploaderName, handler.Type(), opts.ActivityID, len(batch))
	r.tracer.RecordEvent(ctx, "batch_loaded", map[string]interface{}{"groups": len(batch)})

	policy := r.policyFactory.Create(opts.ContinueOnError, opts.FailureLimit)

	for i, entry := range batch {
		outcome := summary.Outcomes[i]
		groupErr := r.processGroup(ctx, handler, opts, entry, outcome)
		r.recorder.RecordGroup(ctx, handler.Type(), outcome)
		if groupErr == nil {
			continue
		}

		summary.Err = exception.Append(summary.Err, fmt.Errorf("group '%s': %w", entry.Identifier, groupErr))
		policy.RecordFailure()
		if policy.ShouldContinue() {
			continue
		}

		groupLog(opts, handler, entry.Identifier).Warnf("%s ~ END ~ Because of continueOnError = %t (failures: %d, limit: %d)",
			logPrefix(opts, handler, entry.Identifier), opts.ContinueOnError, policy.GetFailureCount(), policy.GetFailureLimit())
		for _, rest := range summary.Outcomes[i+1:] {
			if err := rest.MarkAsSkipped(); err != nil {
				logger.Warnf("Could not mark group '%s' as skipped: %v", rest.Identifier, err)
			}
			r.recorder.RecordGroup(ctx, handler.Type(), rest)
		}
		summary.Aborted = true
		r.tracer.RecordEvent(ctx, "run_aborted", map[string]interface{}{"identifier": entry.Identifier, "failures": policy.GetFailureCount()})
		return &AbortError{ActivityID: opts.ActivityID, Identifier: entry.Identifier, Cause: groupErr}
	}

	logger.Infof("Upload '%s' of activity %d finished: %d succeeded, %d failed.",
		opts.UploaderName, opts.ActivityID, summary.Succeeded(), summary.Failed())
	return nil
}

// processGroup runs the handler for one group and records the outcome.
// It returns the handler's error, if any.
func (r *Runner) processGroup(ctx context.Context, handler GroupHandler, opts Options, entry model.GroupEntry, outcome *model.GroupOutcome) error {
	log := groupLog(opts, handler, entry.Identifier)
	prefix := logPrefix(opts, handler, entry.Identifier)

	if err := outcome.MarkAsProcessing(); err != nil {
		return err
	}
	log.Infof("%s ~ START", prefix)

	gctx, endSpan := r.tracer.StartGroupSpan(ctx, handler.Type(), entry.Identifier)
	result, err := handler.Handle(gctx, entry)
	if err != nil {
		r.tracer.RecordError(gctx, handler.Type(), err)
	}
	endSpan()

	if err != nil {
		if markErr := outcome.MarkAsFailed(err); markErr != nil {
			logger.Warnf("Could not mark group '%s' as failed: %v", entry.Identifier, markErr)
		}
		log.Errorf("%s ~ ERROR ~ error:%s", prefix, exception.ExtractErrorMessage(err))
		return err
	}

	if markErr := outcome.MarkAsSucceeded(result.Action, result.Detail); markErr != nil {
		logger.Warnf("Could not mark group '%s' as succeeded: %v", entry.Identifier, markErr)
	}
	log.Infof("%s ~ END ~ %s %s", prefix, result.Action, result.Detail)
	return nil
}

func logPrefix(opts Options, handler GroupHandler, identifier string) string {
	return fmt.Sprintf("activityId:%d ~ Uploader ~ uploaderType:%s ~ entityIdentifier:%s", opts.ActivityID, handler.Type(), identifier)
}

func groupLog(opts Options, handler GroupHandler, identifier string) *logger.Entry {
	return logger.WithFields(logger.Fields{
		"activityId":       opts.ActivityID,
		"uploaderType":     handler.Type(),
		"entityIdentifier": identifier,
	})
}
