package carriersync

import (
	"fmt"

	carriercommand "github.com/goliatone/go-carrier-sync/command"
	carrierquery "github.com/goliatone/go-carrier-sync/query"
)

// Commands groups the mutating handlers exposed to dispatchers.
type Commands struct {
	SyncWorkItem    *carriercommand.SyncWorkItemCommand
	PlanStuckResync *carriercommand.PlanStuckResyncCommand
}

// Queries groups the read-only handlers.
type Queries struct {
	GetWorkflow           *carrierquery.GetWorkflowQuery
	GetWorkflowByWorkItem *carrierquery.GetWorkflowByWorkItemQuery
	ListWorkflowsByStatus *carrierquery.ListWorkflowsByStatusQuery
	SearchWorkflows       *carrierquery.SearchWorkflowsQuery
	StatusCounts          *carrierquery.StatusCountsQuery
	PingCarrier           *carrierquery.PingCarrierQuery
}

// Facade binds a composed Service to its command and query handlers.
type Facade struct {
	service  *Service
	commands Commands
	queries  Queries
}

func NewFacade(service *Service) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("carriersync: service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SyncWorkItem:    carriercommand.NewSyncWorkItemCommand(service.orchestrator),
		PlanStuckResync: carriercommand.NewPlanStuckResyncCommand(service.planner),
	}
	facade.queries = Queries{
		GetWorkflow:           carrierquery.NewGetWorkflowQuery(service.workflows),
		GetWorkflowByWorkItem: carrierquery.NewGetWorkflowByWorkItemQuery(service.workflows),
		ListWorkflowsByStatus: carrierquery.NewListWorkflowsByStatusQuery(service.workflows),
		SearchWorkflows:       carrierquery.NewSearchWorkflowsQuery(service.workflows),
		StatusCounts:          carrierquery.NewStatusCountsQuery(service.counter),
		PingCarrier:           carrierquery.NewPingCarrierQuery(service.client),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() *Service {
	if f == nil {
		return nil
	}
	return f.service
}
