package query

import (
	"strings"

	"github.com/goliatone/go-carrier-sync/core"
)

const (
	TypeGetWorkflow           = "carriersync.query.workflow.get"
	TypeGetWorkflowByWorkItem = "carriersync.query.workflow.get_by_work_item"
	TypeListWorkflowsByStatus = "carriersync.query.workflow.list_by_status"
	TypeSearchWorkflows       = "carriersync.query.workflow.search"
	TypeStatusCounts          = "carriersync.query.workflow.status_counts"
	TypePingCarrier           = "carriersync.query.carrier.ping"
)

type GetWorkflowMessage struct {
	WorkflowID string
}

func (GetWorkflowMessage) Type() string { return TypeGetWorkflow }

func (m GetWorkflowMessage) Validate() error {
	if strings.TrimSpace(m.WorkflowID) == "" {
		return queryValidationError("workflow_id", "workflow id is required")
	}
	return nil
}

type GetWorkflowByWorkItemMessage struct {
	WorkItem core.WorkItemRef
}

func (GetWorkflowByWorkItemMessage) Type() string { return TypeGetWorkflowByWorkItem }

func (m GetWorkflowByWorkItemMessage) Validate() error {
	if err := m.WorkItem.Validate(); err != nil {
		return queryWrapValidation(err, "query: invalid work item reference")
	}
	return nil
}

type ListWorkflowsByStatusMessage struct {
	Status core.SyncStatus
	Limit  int
}

func (ListWorkflowsByStatusMessage) Type() string { return TypeListWorkflowsByStatus }

func (m ListWorkflowsByStatusMessage) Validate() error {
	if !m.Status.IsValid() {
		return queryValidationError("status", "unknown sync status")
	}
	if m.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	return nil
}

type SearchWorkflowsMessage struct {
	Search core.WorkflowSearch
}

func (SearchWorkflowsMessage) Type() string { return TypeSearchWorkflows }

func (m SearchWorkflowsMessage) Validate() error {
	if m.Search.Status != "" && !m.Search.Status.IsValid() {
		return queryValidationError("status", "unknown sync status")
	}
	if m.Search.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	return nil
}

type StatusCountsMessage struct{}

func (StatusCountsMessage) Type() string { return TypeStatusCounts }

func (StatusCountsMessage) Validate() error { return nil }

// PingCarrierMessage checks carrier reachability and credentials with a cheap
// read-only call.
type PingCarrierMessage struct{}

func (PingCarrierMessage) Type() string { return TypePingCarrier }

func (PingCarrierMessage) Validate() error { return nil }
