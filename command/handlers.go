package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-carrier-sync/core"
)

// Synchronizer runs the ordered carrier sequence for one work item.
type Synchronizer interface {
	Synchronize(ctx context.Context, ref core.WorkItemRef, fields core.FieldMap) (core.SyncResult, error)
}

// ResyncPlanner scans for stalled workflows and enqueues resync jobs.
type ResyncPlanner interface {
	Plan(ctx context.Context) (int, error)
}

type SyncWorkItemCommand struct {
	synchronizer Synchronizer
}

func NewSyncWorkItemCommand(synchronizer Synchronizer) *SyncWorkItemCommand {
	return &SyncWorkItemCommand{synchronizer: synchronizer}
}

func (c *SyncWorkItemCommand) Execute(ctx context.Context, msg SyncWorkItemMessage) error {
	if c == nil || c.synchronizer == nil {
		return commandDependencyError("command: synchronizer is required")
	}
	out, err := c.synchronizer.Synchronize(ctx, msg.WorkItem, msg.Fields)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type PlanStuckResyncCommand struct {
	planner ResyncPlanner
}

func NewPlanStuckResyncCommand(planner ResyncPlanner) *PlanStuckResyncCommand {
	return &PlanStuckResyncCommand{planner: planner}
}

func (c *PlanStuckResyncCommand) Execute(ctx context.Context, msg PlanStuckResyncMessage) error {
	if c == nil || c.planner == nil {
		return commandDependencyError("command: resync planner is required")
	}
	scheduled, err := c.planner.Plan(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, scheduled)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
