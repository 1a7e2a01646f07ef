package command

import (
	"github.com/goliatone/go-carrier-sync/core"
)

const (
	TypeSyncWorkItem    = "carriersync.command.work_item.sync"
	TypePlanStuckResync = "carriersync.command.workflow.plan_resync"
)

// SyncWorkItemMessage carries one work item through the full carrier
// sequence. Fields hold the intake payload the remote calls are built from.
type SyncWorkItemMessage struct {
	WorkItem core.WorkItemRef
	Fields   core.FieldMap
}

func (SyncWorkItemMessage) Type() string { return TypeSyncWorkItem }

func (m SyncWorkItemMessage) Validate() error {
	if err := m.WorkItem.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid work item reference")
	}
	return nil
}

// PlanStuckResyncMessage asks the requeue planner to scan for stalled
// workflows and enqueue resync jobs for them.
type PlanStuckResyncMessage struct{}

func (PlanStuckResyncMessage) Type() string { return TypePlanStuckResync }

func (PlanStuckResyncMessage) Validate() error { return nil }
