package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GroupStatus is the state of one entity group within a run.
type GroupStatus string

const (
	GroupStatusPending    GroupStatus = "PENDING"
	GroupStatusProcessing GroupStatus = "PROCESSING"
	GroupStatusSucceeded  GroupStatus = "SUCCEEDED"
	GroupStatusFailed     GroupStatus = "FAILED"
	GroupStatusSkipped    GroupStatus = "SKIPPED"
)

// String returns the string representation of the GroupStatus.
func (s GroupStatus) String() string {
	return string(s)
}

// IsFinished reports whether s is terminal.
func (s GroupStatus) IsFinished() bool {
	switch s {
	case GroupStatusSucceeded, GroupStatusFailed, GroupStatusSkipped:
		return true
	default:
		return false
	}
}

// isValidGroupTransition checks the Pending -> Processing -> {Succeeded, Failed} path.
// Pending groups can be Skipped when a run aborts before reaching them.
func isValidGroupTransition(current, next GroupStatus) bool {
	switch current {
	case GroupStatusPending:
		return next == GroupStatusProcessing || next == GroupStatusSkipped
	case GroupStatusProcessing:
		return next == GroupStatusSucceeded || next == GroupStatusFailed
	default:
		return false
	}
}

// GroupOutcome records what happened to one group.
type GroupOutcome struct {
	Identifier string
	Status     GroupStatus
	// Action names the mutation applied ("set_base_price", "delete_rule", ...).
	Action string
	// Detail is a short human-readable description of the applied value.
	Detail    string
	Err       error
	StartTime time.Time
	Duration  time.Duration
}

// NewGroupOutcome returns a pending outcome for identifier.
func NewGroupOutcome(identifier string) *GroupOutcome {
	return &GroupOutcome{Identifier: identifier, Status: GroupStatusPending}
}

// TransitionTo safely transitions the outcome's status.
func (o *GroupOutcome) TransitionTo(next GroupStatus) error {
	if !isValidGroupTransition(o.Status, next) {
		return fmt.Errorf("group '%s': invalid state transition: %s -> %s", o.Identifier, o.Status, next)
	}
	o.Status = next
	return nil
}

// MarkAsProcessing moves the outcome to PROCESSING and stamps the start time.
func (o *GroupOutcome) MarkAsProcessing() error {
	if err := o.TransitionTo(GroupStatusProcessing); err != nil {
		return err
	}
	o.StartTime = time.Now()
	return nil
}

// MarkAsSucceeded moves the outcome to SUCCEEDED.
func (o *GroupOutcome) MarkAsSucceeded(action, detail string) error {
	if err := o.TransitionTo(GroupStatusSucceeded); err != nil {
		return err
	}
	o.Action = action
	o.Detail = detail
	o.Duration = time.Since(o.StartTime)
	return nil
}

// MarkAsFailed moves the outcome to FAILED and keeps the cause.
func (o *GroupOutcome) MarkAsFailed(err error) error {
	if tErr := o.TransitionTo(GroupStatusFailed); tErr != nil {
		return tErr
	}
	o.Err = err
	o.Duration = time.Since(o.StartTime)
	return nil
}

// MarkAsSkipped moves a pending outcome to SKIPPED.
func (o *GroupOutcome) MarkAsSkipped() error {
	return o.TransitionTo(GroupStatusSkipped)
}

// RunSummary aggregates the outcomes of one upload run.
type RunSummary struct {
	RunID        string
	ActivityID   int64
	UploaderName string
	UploaderType string
	StartTime    time.Time
	EndTime      time.Time
	Outcomes     []*GroupOutcome
	// Aborted is true when a failure ended the run early.
	Aborted bool
	// Err aggregates the group failures; nil when every group succeeded.
	Err error
}

// NewRunSummary creates a summary with a fresh run ID.
func NewRunSummary(activityID int64, uploaderName, uploaderType string) *RunSummary {
	return &RunSummary{
		RunID:        uuid.New().String(),
		ActivityID:   activityID,
		UploaderName: uploaderName,
		UploaderType: uploaderType,
		StartTime:    time.Now(),
	}
}

// Count returns the number of outcomes in status s.
func (r *RunSummary) Count(s GroupStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Succeeded returns the number of succeeded groups.
func (r *RunSummary) Succeeded() int { return r.Count(GroupStatusSucceeded) }

// Failed returns the number of failed groups.
func (r *RunSummary) Failed() int { return r.Count(GroupStatusFailed) }

// Skipped returns the number of skipped groups.
func (r *RunSummary) Skipped() int { return r.Count(GroupStatusSkipped) }

// Duration returns the wall time of the run, or zero if it has not ended.
func (r *RunSummary) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
