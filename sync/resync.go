package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-carrier-sync/core"
)

const defaultStuckAfter = 30 * time.Minute
const defaultMaxAutoRetries = 3
const defaultPlanLimit = 50

// ReasonStuckResync marks queue messages produced by the planner, as opposed
// to operator-triggered resyncs.
const ReasonStuckResync = "stuck_workflow_resync"

// RequeuePlanner finds workflows that stalled mid-chain and schedules them for
// another run. Only PARTIAL and FAILED workflows qualify; COMPLETE needs
// nothing and PENDING belongs to a run that has not started yet.
type RequeuePlanner struct {
	Workflows      core.WorkflowStore
	Enqueuer       core.JobEnqueuer
	StuckAfter     time.Duration
	MaxAutoRetries int
	Limit          int
	Logger         core.Logger
	Now            func() time.Time
}

func NewRequeuePlanner(workflows core.WorkflowStore, enqueuer core.JobEnqueuer) *RequeuePlanner {
	return &RequeuePlanner{
		Workflows:      workflows,
		Enqueuer:       enqueuer,
		StuckAfter:     defaultStuckAfter,
		MaxAutoRetries: defaultMaxAutoRetries,
		Limit:          defaultPlanLimit,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Plan enqueues one resync message per stuck workflow and returns how many it
// scheduled. The idempotency key folds in the retry count so a workflow that
// has not progressed since the last plan cycle dedupes instead of stacking.
func (p *RequeuePlanner) Plan(ctx context.Context) (int, error) {
	if p == nil || p.Workflows == nil || p.Enqueuer == nil {
		return 0, fmt.Errorf("sync: requeue planner requires workflow store and enqueuer")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cutoff := p.now().Add(-p.stuckAfter())
	stale, err := p.Workflows.ListStale(ctx, cutoff, p.limit())
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for _, workflow := range stale {
		if workflow == nil {
			continue
		}
		if workflow.Status != core.StatusPartial && workflow.Status != core.StatusFailed {
			continue
		}
		if p.MaxAutoRetries > 0 && workflow.RetryCount >= p.MaxAutoRetries {
			core.LogWithLevel(ctx, p.Logger, "info", "workflow exceeded automatic retry limit", map[string]any{
				"work_item":   workflow.WorkItemRef.String(),
				"retry_count": workflow.RetryCount,
			})
			continue
		}

		message := core.JobExecutionMessage{
			JobID:          uuid.NewString(),
			WorkItemID:     workflow.WorkItemRef.ID,
			Reason:         ReasonStuckResync,
			IdempotencyKey: fmt.Sprintf("resync:%s:%d", workflow.WorkItemRef.String(), workflow.RetryCount),
			DedupPolicy:    "drop",
			Parameters: map[string]any{
				"status":      string(workflow.Status),
				"retry_count": workflow.RetryCount,
			},
		}
		if err := p.Enqueuer.Enqueue(ctx, message); err != nil {
			return scheduled, err
		}
		scheduled++
	}

	if scheduled > 0 {
		core.LogWithLevel(ctx, p.Logger, "info", "scheduled stuck workflow resyncs", map[string]any{
			"count": scheduled,
		})
	}
	return scheduled, nil
}

func (p *RequeuePlanner) now() time.Time {
	if p != nil && p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

func (p *RequeuePlanner) stuckAfter() time.Duration {
	if p != nil && p.StuckAfter > 0 {
		return p.StuckAfter
	}
	return defaultStuckAfter
}

func (p *RequeuePlanner) limit() int {
	if p != nil && p.Limit > 0 {
		return p.Limit
	}
	return defaultPlanLimit
}
