package query

import (
	"context"
	"time"

	"github.com/goliatone/go-carrier-sync/core"
)

// WorkflowReader is the read side of the workflow store.
type WorkflowReader interface {
	GetByID(ctx context.Context, id string) (*core.SubmissionWorkflow, error)
	GetByWorkItem(ctx context.Context, ref core.WorkItemRef) (*core.SubmissionWorkflow, error)
	ListByStatus(ctx context.Context, status core.SyncStatus, limit int) ([]*core.SubmissionWorkflow, error)
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*core.SubmissionWorkflow, error)
	Search(ctx context.Context, query core.WorkflowSearch) ([]*core.SubmissionWorkflow, error)
}

// StatusCounter rolls workflows up per derived status.
type StatusCounter interface {
	StatusCounts(ctx context.Context) (map[core.SyncStatus]int, error)
}

// CarrierPinger verifies carrier reachability without mutating anything.
type CarrierPinger interface {
	Ping(ctx context.Context) error
}

type GetWorkflowQuery struct {
	reader WorkflowReader
}

func NewGetWorkflowQuery(reader WorkflowReader) *GetWorkflowQuery {
	return &GetWorkflowQuery{reader: reader}
}

func (q *GetWorkflowQuery) Query(ctx context.Context, msg GetWorkflowMessage) (*core.SubmissionWorkflow, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: workflow reader is required")
	}
	return q.reader.GetByID(ctx, msg.WorkflowID)
}

type GetWorkflowByWorkItemQuery struct {
	reader WorkflowReader
}

func NewGetWorkflowByWorkItemQuery(reader WorkflowReader) *GetWorkflowByWorkItemQuery {
	return &GetWorkflowByWorkItemQuery{reader: reader}
}

func (q *GetWorkflowByWorkItemQuery) Query(ctx context.Context, msg GetWorkflowByWorkItemMessage) (*core.SubmissionWorkflow, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: workflow reader is required")
	}
	return q.reader.GetByWorkItem(ctx, msg.WorkItem)
}

type ListWorkflowsByStatusQuery struct {
	reader WorkflowReader
}

func NewListWorkflowsByStatusQuery(reader WorkflowReader) *ListWorkflowsByStatusQuery {
	return &ListWorkflowsByStatusQuery{reader: reader}
}

func (q *ListWorkflowsByStatusQuery) Query(
	ctx context.Context,
	msg ListWorkflowsByStatusMessage,
) ([]*core.SubmissionWorkflow, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: workflow reader is required")
	}
	return q.reader.ListByStatus(ctx, msg.Status, msg.Limit)
}

type SearchWorkflowsQuery struct {
	reader WorkflowReader
}

func NewSearchWorkflowsQuery(reader WorkflowReader) *SearchWorkflowsQuery {
	return &SearchWorkflowsQuery{reader: reader}
}

func (q *SearchWorkflowsQuery) Query(
	ctx context.Context,
	msg SearchWorkflowsMessage,
) ([]*core.SubmissionWorkflow, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: workflow reader is required")
	}
	return q.reader.Search(ctx, msg.Search)
}

type StatusCountsQuery struct {
	counter StatusCounter
}

func NewStatusCountsQuery(counter StatusCounter) *StatusCountsQuery {
	return &StatusCountsQuery{counter: counter}
}

func (q *StatusCountsQuery) Query(ctx context.Context, _ StatusCountsMessage) (map[core.SyncStatus]int, error) {
	if q == nil || q.counter == nil {
		return nil, queryDependencyError("query: status counter is required")
	}
	return q.counter.StatusCounts(ctx)
}

type PingCarrierQuery struct {
	pinger CarrierPinger
}

func NewPingCarrierQuery(pinger CarrierPinger) *PingCarrierQuery {
	return &PingCarrierQuery{pinger: pinger}
}

func (q *PingCarrierQuery) Query(ctx context.Context, _ PingCarrierMessage) (bool, error) {
	if q == nil || q.pinger == nil {
		return false, queryDependencyError("query: carrier pinger is required")
	}
	if err := q.pinger.Ping(ctx); err != nil {
		return false, err
	}
	return true, nil
}
