package core

import "strings"

// StepOutcome is the parsed result of one composite call for one step. A step
// succeeded only when its sub-response is present, carries no error, and (for
// identifier-producing steps) the identifier paths resolve to non-empty
// strings. An HTTP 200 envelope wrapping an embedded business error is a
// failed outcome, never a success.
type StepOutcome struct {
	Step        SyncStep
	Succeeded   bool
	Identifiers EntityIdentifiers
	Quote       *QuoteSummary
	Error       string
}

// SyncResult is the normalized result surfaced to whichever collaborator
// triggered the sync: the automatic post-intake trigger or a manual resync.
type SyncResult struct {
	WorkItemRef   WorkItemRef
	Success       bool
	Status        SyncStatus
	AccountNumber string
	JobNumber     string
	FailedStep    SyncStep
	Error         string
}

// ResultFromWorkflow builds the caller-facing result from the persisted
// workflow state. Prior-step identifiers stay visible on failure so an
// operator can see what already exists remotely.
func ResultFromWorkflow(workflow *SubmissionWorkflow) SyncResult {
	if workflow == nil {
		return SyncResult{}
	}
	result := SyncResult{
		WorkItemRef:   workflow.WorkItemRef,
		Status:        workflow.Status,
		AccountNumber: strings.TrimSpace(workflow.Account.Number),
		JobNumber:     strings.TrimSpace(workflow.Submission.Number),
		Success:       workflow.Status == StatusComplete,
	}
	if !result.Success {
		if step, pending := workflow.NextStep(); pending {
			result.FailedStep = step
		}
		result.Error = strings.TrimSpace(workflow.LastError)
	}
	return result
}
