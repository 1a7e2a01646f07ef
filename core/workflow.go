package core

import (
	"fmt"
	"strings"
	"time"
)

// SyncStep identifies one of the ordered remote operations that make up a
// carrier submission workflow.
type SyncStep string

const (
	StepAccount     SyncStep = "account"
	StepSubmission  SyncStep = "submission"
	StepCoverage    SyncStep = "coverage"
	StepLineDetails SyncStep = "line_details"
	StepQuote       SyncStep = "quote"
)

// StepOrder returns the canonical execution order. Later steps depend on
// identifiers produced by earlier ones and are never attempted out of order.
func StepOrder() []SyncStep {
	return []SyncStep{StepAccount, StepSubmission, StepCoverage, StepLineDetails, StepQuote}
}

func (s SyncStep) IsValid() bool {
	switch s {
	case StepAccount, StepSubmission, StepCoverage, StepLineDetails, StepQuote:
		return true
	}
	return false
}

// StepIndex returns the zero-based position of the step in StepOrder, or -1.
func StepIndex(step SyncStep) int {
	for i, candidate := range StepOrder() {
		if candidate == step {
			return i
		}
	}
	return -1
}

// SyncStatus is the derived overall state of a workflow. It is never stored
// independently of the step results; DeriveSyncStatus is the single source.
type SyncStatus string

const (
	StatusPending  SyncStatus = "pending"
	StatusPartial  SyncStatus = "partial"
	StatusComplete SyncStatus = "complete"
	StatusFailed   SyncStatus = "failed"
)

func (s SyncStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusComplete, StatusFailed:
		return true
	}
	return false
}

// WorkItemRef is a non-owning reference to the intake work item a workflow
// synchronizes. The intake subsystem owns the record itself.
type WorkItemRef struct {
	ID string
}

func (r WorkItemRef) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("core: work item ref id is required")
	}
	return nil
}

func (r WorkItemRef) String() string {
	return strings.TrimSpace(r.ID)
}

// EntityIdentifiers pairs the carrier's opaque internal identifier with the
// human-readable number shown in the carrier UI. Later steps require RemoteID;
// operators search by Number. Keeping them in one value type prevents the two
// from being swapped.
type EntityIdentifiers struct {
	RemoteID string `json:"remote_id"`
	Number   string `json:"number"`
}

func (e EntityIdentifiers) IsZero() bool {
	return strings.TrimSpace(e.RemoteID) == "" && strings.TrimSpace(e.Number) == ""
}

// StepResult records a single attempt of a single step. Results are
// append-only; a retry adds a new entry instead of rewriting history.
type StepResult struct {
	Step        SyncStep          `json:"step"`
	Attempted   bool              `json:"attempted"`
	Succeeded   bool              `json:"succeeded"`
	Identifiers EntityIdentifiers `json:"identifiers,omitempty"`
	Error       string            `json:"error,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Money is an amount plus ISO currency as reported by the carrier.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// QuoteSummary captures the priced offer returned by the quote step.
type QuoteSummary struct {
	TotalPremium Money  `json:"total_premium"`
	TotalCost    Money  `json:"total_cost"`
	RateAsOfDate string `json:"rate_as_of_date,omitempty"`
	JobStatus    string `json:"job_status,omitempty"`
}

// SubmissionWorkflow is the durable record of one work-item-to-carrier sync.
// It is created when the work item is first queued, mutated only by the
// orchestrator once per step, and never deleted: it is the permanent record of
// which remote entities exist, used to avoid duplicate creation on retry.
type SubmissionWorkflow struct {
	ID          string
	WorkItemRef WorkItemRef

	StepResults []StepResult

	Account    EntityIdentifiers
	Submission EntityIdentifiers
	Quote      *QuoteSummary

	Status     SyncStatus
	RetryCount int
	LastError  string

	OrganizationName string
	CoverageAmount   float64
	Industry         string
	ContactEmail     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeriveSyncStatus computes the workflow status purely from the recorded step
// results. Complete means every step has a successful result; partial means the
// account step succeeded but the chain did not finish; failed means the latest
// attempt stopped on an error before the account step produced anything beyond
// the last partial snapshot; pending means nothing was attempted yet.
func DeriveSyncStatus(results []StepResult) SyncStatus {
	if len(results) == 0 {
		return StatusPending
	}

	succeeded := map[SyncStep]bool{}
	attempted := false
	for _, result := range results {
		if result.Attempted {
			attempted = true
		}
		if result.Succeeded {
			succeeded[result.Step] = true
		}
	}
	if !attempted {
		return StatusPending
	}

	complete := true
	for _, step := range StepOrder() {
		if !succeeded[step] {
			complete = false
			break
		}
	}
	if complete {
		return StatusComplete
	}
	if succeeded[StepAccount] {
		return StatusPartial
	}
	return StatusFailed
}

// StepSucceeded reports whether the workflow holds a successful result for the
// given step.
func (w *SubmissionWorkflow) StepSucceeded(step SyncStep) bool {
	if w == nil {
		return false
	}
	for _, result := range w.StepResults {
		if result.Step == step && result.Succeeded {
			return true
		}
	}
	return false
}

// NextStep returns the first step in canonical order without a successful
// result, and false when the workflow is complete. Resume policy: retries pick
// up here, reusing identifiers already recorded instead of recreating remote
// entities.
func (w *SubmissionWorkflow) NextStep() (SyncStep, bool) {
	for _, step := range StepOrder() {
		if !w.StepSucceeded(step) {
			return step, true
		}
	}
	return "", false
}

// IsComplete reports whether all five steps have succeeded.
func (w *SubmissionWorkflow) IsComplete() bool {
	_, pending := w.NextStep()
	return !pending
}

// RecordOutcome appends the outcome of one step attempt, sets the identifier
// pairs the first time the producing step succeeds, and re-derives the status.
// Identifier fields are immutable after first success.
func (w *SubmissionWorkflow) RecordOutcome(outcome StepOutcome, now time.Time) {
	if w == nil {
		return
	}
	result := StepResult{
		Step:        outcome.Step,
		Attempted:   true,
		Succeeded:   outcome.Succeeded,
		Identifiers: outcome.Identifiers,
		Error:       strings.TrimSpace(outcome.Error),
		CompletedAt: now,
	}
	w.StepResults = append(w.StepResults, result)

	if outcome.Succeeded {
		switch outcome.Step {
		case StepAccount:
			if w.Account.IsZero() {
				w.Account = outcome.Identifiers
			}
		case StepSubmission:
			if w.Submission.IsZero() {
				w.Submission = outcome.Identifiers
			}
		case StepQuote:
			if outcome.Quote != nil && w.Quote == nil {
				quote := *outcome.Quote
				w.Quote = &quote
			}
		}
	} else {
		w.LastError = strings.TrimSpace(outcome.Error)
	}

	w.Status = DeriveSyncStatus(w.StepResults)
	w.UpdatedAt = now
}

// IdentifiersFor returns the stored identifier pair recorded by a step, if any.
func (w *SubmissionWorkflow) IdentifiersFor(step SyncStep) (EntityIdentifiers, bool) {
	if w == nil {
		return EntityIdentifiers{}, false
	}
	switch step {
	case StepAccount:
		return w.Account, !w.Account.IsZero()
	case StepSubmission:
		return w.Submission, !w.Submission.IsZero()
	}
	return EntityIdentifiers{}, false
}
