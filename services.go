package carriersync

import (
	carriercommand "github.com/goliatone/go-carrier-sync/command"
	"github.com/goliatone/go-carrier-sync/core"
	carrierquery "github.com/goliatone/go-carrier-sync/query"
)

type Config = core.Config
type CarrierConfig = core.CarrierConfig
type SyncConfig = core.SyncConfig

type SyncStep = core.SyncStep
type SyncStatus = core.SyncStatus
type WorkItemRef = core.WorkItemRef
type SubmissionWorkflow = core.SubmissionWorkflow
type StepResult = core.StepResult
type QuoteSummary = core.QuoteSummary
type SyncResult = core.SyncResult
type FieldMap = core.FieldMap
type WorkflowSearch = core.WorkflowSearch

type WorkflowStore = core.WorkflowStore
type WorkItemMirror = core.WorkItemMirror
type WorkItemLocker = core.WorkItemLocker
type JobEnqueuer = core.JobEnqueuer
type JobExecutionMessage = core.JobExecutionMessage

type Synchronizer = carriercommand.Synchronizer
type ResyncPlanner = carriercommand.ResyncPlanner
type WorkflowReader = carrierquery.WorkflowReader
type StatusCounter = carrierquery.StatusCounter
type CarrierPinger = carrierquery.CarrierPinger

type SyncWorkItemMessage = carriercommand.SyncWorkItemMessage
type PlanStuckResyncMessage = carriercommand.PlanStuckResyncMessage
type GetWorkflowMessage = carrierquery.GetWorkflowMessage
type GetWorkflowByWorkItemMessage = carrierquery.GetWorkflowByWorkItemMessage
type ListWorkflowsByStatusMessage = carrierquery.ListWorkflowsByStatusMessage
type SearchWorkflowsMessage = carrierquery.SearchWorkflowsMessage
type StatusCountsMessage = carrierquery.StatusCountsMessage
type PingCarrierMessage = carrierquery.PingCarrierMessage

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// Setup composes a Service and returns its facade in one call.
func Setup(cfg Config, opts ...Option) (*Facade, error) {
	service, err := NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewFacade(service)
}
