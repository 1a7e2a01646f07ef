package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-carrier-sync/core"
)

const defaultLockTTL = 5 * time.Minute
const defaultPersistTimeout = 15 * time.Second

// Orchestrator is the step sequencer: it walks a work item through the five
// carrier steps in order, persisting each outcome before moving on. Exactly
// one run per work item is active at a time.
type Orchestrator struct {
	Workflows core.WorkflowStore
	Steps     core.StepSender
	Locker    core.WorkItemLocker
	Mirror    core.WorkItemMirror
	Logger    core.Logger
	Metrics   core.MetricsRecorder
	LockTTL   time.Duration
	Now       func() time.Time

	// PersistTimeout bounds the detached-context writes that record outcomes
	// after the caller's context has gone away.
	PersistTimeout time.Duration
}

func NewOrchestrator(workflows core.WorkflowStore, steps core.StepSender, locker core.WorkItemLocker) *Orchestrator {
	if locker == nil {
		locker = core.NewMemoryWorkItemLocker()
	}
	return &Orchestrator{
		Workflows:      workflows,
		Steps:          steps,
		Locker:         locker,
		Metrics:        core.NopMetricsRecorder{},
		LockTTL:        defaultLockTTL,
		PersistTimeout: defaultPersistTimeout,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Synchronize drives the work item's workflow as far toward COMPLETE as the
// carrier allows. Re-entry resumes from the first step without a recorded
// success, reusing stored identifiers instead of recreating remote entities.
// A concurrent run for the same work item gets core.ErrSyncInProgress.
//
// Step failures of any kind are recorded on the workflow and reported through
// the returned SyncResult; the error return is reserved for infrastructure
// problems (locking, storage) that prevented the run from proceeding at all.
func (o *Orchestrator) Synchronize(ctx context.Context, ref core.WorkItemRef, fields core.FieldMap) (core.SyncResult, error) {
	if o == nil || o.Workflows == nil || o.Steps == nil {
		return core.SyncResult{}, fmt.Errorf("sync: orchestrator requires workflow store and step sender")
	}
	if err := ref.Validate(); err != nil {
		return core.SyncResult{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	handle, ok := o.Locker.Acquire(ref, o.lockTTL())
	if !ok {
		return core.SyncResult{}, core.ErrSyncInProgress
	}
	defer handle.Unlock()

	workflow, reentry, err := o.loadOrCreate(ctx, ref, fields)
	if err != nil {
		return core.SyncResult{}, err
	}

	if workflow.IsComplete() {
		// Idempotent: no remote calls, stored identifiers come back as-is.
		return core.ResultFromWorkflow(workflow), nil
	}

	if reentry {
		if workflow, err = o.Workflows.MarkAttempt(ctx, workflow.ID, o.now()); err != nil {
			return core.SyncResult{}, err
		}
	}

	for {
		step, pending := workflow.NextStep()
		if !pending {
			break
		}
		if err := ctx.Err(); err != nil {
			// The caller gave up between steps; stop before issuing another
			// remote call. Everything already recorded stays recorded.
			return core.ResultFromWorkflow(workflow), err
		}

		outcome, sendErr := o.Steps.SendStep(ctx, workflow, fields, step)
		if sendErr != nil {
			outcome = core.StepOutcome{Step: step, Error: sendErr.Error()}
		}

		if workflow, err = o.persistOutcome(ctx, workflow, outcome); err != nil {
			return core.SyncResult{}, err
		}
		o.mirrorIdentifiers(ctx, workflow)
		o.observeStep(ctx, workflow, outcome)

		if !outcome.Succeeded {
			break
		}
	}

	result := core.ResultFromWorkflow(workflow)
	core.LogWithLevel(ctx, o.Logger, "info", "work item synchronization finished", map[string]any{
		"work_item":   ref.String(),
		"status":      string(result.Status),
		"success":     result.Success,
		"failed_step": string(result.FailedStep),
	})
	return result, nil
}

func (o *Orchestrator) loadOrCreate(ctx context.Context, ref core.WorkItemRef, fields core.FieldMap) (*core.SubmissionWorkflow, bool, error) {
	workflow, err := o.Workflows.GetByWorkItem(ctx, ref)
	if err == nil {
		return workflow, true, nil
	}
	if !errors.Is(err, core.ErrWorkflowNotFound) {
		return nil, false, err
	}

	now := o.now()
	created, err := o.Workflows.Create(ctx, &core.SubmissionWorkflow{
		WorkItemRef:      ref,
		Status:           core.StatusPending,
		OrganizationName: fields.String("company_name", "organization_name", "named_insured"),
		CoverageAmount:   fields.Money(0, "coverage_amount"),
		Industry:         fields.String("industry"),
		ContactEmail:     fields.String("contact_email", "email"),
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return nil, false, err
	}
	return created, false, nil
}

// persistOutcome records a step outcome on a context detached from the caller.
// The carrier has already applied the operation; losing the record because the
// caller hung up would desynchronize local state from remote reality.
func (o *Orchestrator) persistOutcome(ctx context.Context, workflow *core.SubmissionWorkflow, outcome core.StepOutcome) (*core.SubmissionWorkflow, error) {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.persistTimeout())
	defer cancel()
	return o.Workflows.UpsertStepResult(persistCtx, workflow.ID, outcome, o.now())
}

func (o *Orchestrator) mirrorIdentifiers(ctx context.Context, workflow *core.SubmissionWorkflow) {
	if o.Mirror == nil {
		return
	}
	if workflow.Account.IsZero() && workflow.Submission.IsZero() {
		return
	}
	mirrorCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.persistTimeout())
	defer cancel()

	err := o.Mirror.MirrorIdentifiers(mirrorCtx, workflow.WorkItemRef, workflow.Account, workflow.Submission, workflow.Status)
	if err != nil {
		// The workflow record stays authoritative; the mirror catches up on
		// the next persisted step.
		core.LogWithLevel(ctx, o.Logger, "error", "work item mirror update failed", map[string]any{
			"work_item": workflow.WorkItemRef.String(),
			"error":     err.Error(),
		})
	}
}

func (o *Orchestrator) observeStep(ctx context.Context, workflow *core.SubmissionWorkflow, outcome core.StepOutcome) {
	if o.Metrics == nil {
		return
	}
	status := "success"
	if !outcome.Succeeded {
		status = "failure"
	}
	o.Metrics.IncCounter(ctx, "carriersync.step.total", 1, map[string]string{
		"step":   string(outcome.Step),
		"status": status,
	})
	if !outcome.Succeeded {
		core.LogWithLevel(ctx, o.Logger, "error", "carrier step failed", map[string]any{
			"work_item": workflow.WorkItemRef.String(),
			"step":      string(outcome.Step),
			"error":     outcome.Error,
		})
	}
}

func (o *Orchestrator) now() time.Time {
	if o != nil && o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o *Orchestrator) lockTTL() time.Duration {
	if o != nil && o.LockTTL > 0 {
		return o.LockTTL
	}
	return defaultLockTTL
}

func (o *Orchestrator) persistTimeout() time.Duration {
	if o != nil && o.PersistTimeout > 0 {
		return o.PersistTimeout
	}
	return defaultPersistTimeout
}
