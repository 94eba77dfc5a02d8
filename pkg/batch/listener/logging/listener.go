// Package logging provides a RunListener that writes the start and the
// outcome of every upload run to the application log.
package logging

import (
	"context"

	"go.uber.org/fx"

	port "github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	logger "github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

// LoggingRunListener logs run boundaries and failed groups.
type LoggingRunListener struct{}

// NewLoggingRunListener creates a new LoggingRunListener.
func NewLoggingRunListener() *LoggingRunListener {
	return &LoggingRunListener{}
}

func (l *LoggingRunListener) BeforeRun(ctx context.Context, summary *model.RunSummary) {
	logger.WithFields(logger.Fields{
		"runId":        summary.RunID,
		"activityId":   summary.ActivityID,
		"uploaderType": summary.UploaderType,
	}).Infof("RunListener: BeforeRun - Uploader: %s", summary.UploaderName)
}

func (l *LoggingRunListener) AfterRun(ctx context.Context, summary *model.RunSummary) {
	entry := logger.WithFields(logger.Fields{
		"runId":        summary.RunID,
		"activityId":   summary.ActivityID,
		"uploaderType": summary.UploaderType,
	})

	for _, o := range summary.Outcomes {
		if o.Status == model.GroupStatusFailed {
			entry.WithField("entityIdentifier", o.Identifier).Warnf("RunListener: group failed - %v", o.Err)
		}
	}

	msg := "RunListener: AfterRun - Uploader: %s, Succeeded: %d, Failed: %d, Skipped: %d, Duration: %s"
	args := []interface{}{summary.UploaderName, summary.Succeeded(), summary.Failed(), summary.Skipped(), summary.Duration()}
	if summary.Aborted {
		entry.Errorf(msg+" (aborted)", args...)
		return
	}
	if summary.Failed() > 0 {
		entry.Warnf(msg, args...)
		return
	}
	entry.Infof(msg, args...)
}

var _ port.RunListener = (*LoggingRunListener)(nil)

// Module contributes the LoggingRunListener to the run_listeners group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLoggingRunListener,
		fx.As(new(port.RunListener)),
		fx.ResultTags(`group:"run_listeners"`),
	)),
)
