package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-carrier-sync/core"
)

var (
	_ gocmd.Querier[GetWorkflowMessage, *core.SubmissionWorkflow]             = (*GetWorkflowQuery)(nil)
	_ gocmd.Querier[GetWorkflowByWorkItemMessage, *core.SubmissionWorkflow]   = (*GetWorkflowByWorkItemQuery)(nil)
	_ gocmd.Querier[ListWorkflowsByStatusMessage, []*core.SubmissionWorkflow] = (*ListWorkflowsByStatusQuery)(nil)
	_ gocmd.Querier[SearchWorkflowsMessage, []*core.SubmissionWorkflow]       = (*SearchWorkflowsQuery)(nil)
	_ gocmd.Querier[StatusCountsMessage, map[core.SyncStatus]int]             = (*StatusCountsQuery)(nil)
	_ gocmd.Querier[PingCarrierMessage, bool]                                 = (*PingCarrierQuery)(nil)
)
