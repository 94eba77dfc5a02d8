package upload

// FailurePolicy decides whether a run continues after a group fails.
// A policy instance belongs to a single run.
type FailurePolicy interface {
	// RecordFailure counts one failed group.
	RecordFailure()
	// ShouldContinue reports whether the run may move on to the next group
	// after the failures recorded so far.
	ShouldContinue() bool
	// GetFailureCount returns the number of failures recorded.
	GetFailureCount() int
	// GetFailureLimit returns the configured cap; 0 means unlimited.
	GetFailureLimit() int
}

// DefaultFailurePolicyFactory creates continue-on-error policies.
type DefaultFailurePolicyFactory struct{}

// NewDefaultFailurePolicyFactory creates a new DefaultFailurePolicyFactory.
func NewDefaultFailurePolicyFactory() *DefaultFailurePolicyFactory {
	return &DefaultFailurePolicyFactory{}
}

// Create returns a policy for one run.
//
// continueOnError: false aborts on the first failure.
// failureLimit: with continueOnError set, the run aborts once this many groups
// failed. 0 means no cap.
func (f *DefaultFailurePolicyFactory) Create(continueOnError bool, failureLimit int) FailurePolicy {
	if failureLimit < 0 {
		failureLimit = 0
	}
	return &continuePolicy{continueOnError: continueOnError, failureLimit: failureLimit}
}

type continuePolicy struct {
	continueOnError bool
	failureLimit    int
	failures        int
}

func (p *continuePolicy) RecordFailure() {
	p.failures++
}

func (p *continuePolicy) ShouldContinue() bool {
	if p.failures == 0 {
		return true
	}
	if !p.continueOnError {
		return false
	}
	return p.failureLimit == 0 || p.failures < p.failureLimit
}

func (p *continuePolicy) GetFailureCount() int { return p.failures }

func (p *continuePolicy) GetFailureLimit() int { return p.failureLimit }

var _ FailurePolicy = (*continuePolicy)(nil)
