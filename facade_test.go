package carriersync

import (
	"context"
	"encoding/json"
	gosync "sync"
	"testing"
	"time"

	"github.com/google/uuid"

	carriercommand "github.com/goliatone/go-carrier-sync/command"
	"github.com/goliatone/go-carrier-sync/core"
	carrierquery "github.com/goliatone/go-carrier-sync/query"
)

func testConfig() core.Config {
	cfg := core.DefaultConfig()
	cfg.Carrier.BaseURL = "https://pc.example.com/rest"
	cfg.Carrier.Username = "su"
	cfg.Carrier.Password = "gw"
	return cfg
}

// compositeAdapter plays back one composite envelope per call, in order.
type compositeAdapter struct {
	mu        gosync.Mutex
	bodies    []map[string]any
	callCount int
}

func (a *compositeAdapter) Kind() string { return "fake" }

func (a *compositeAdapter) Do(_ context.Context, _ core.TransportRequest) (core.TransportResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	index := a.callCount
	a.callCount++

	body := map[string]any{}
	if index < len(a.bodies) {
		body = a.bodies[index]
	}
	payload, err := json.Marshal(map[string]any{
		"responses": []map[string]any{
			{"status": 200, "body": body},
		},
	})
	if err != nil {
		return core.TransportResponse{}, err
	}
	return core.TransportResponse{StatusCode: 200, Body: payload}, nil
}

func fullRunAdapter() *compositeAdapter {
	return &compositeAdapter{bodies: []map[string]any{
		{"data": map[string]any{"attributes": map[string]any{
			"id":            "pc:acc-1",
			"accountNumber": "ACC-100",
		}}},
		{"data": map[string]any{"attributes": map[string]any{
			"id":        "pc:job-1",
			"jobNumber": "JOB-200",
		}}},
		{},
		{},
		{"data": map[string]any{"attributes": map[string]any{
			"totalPremium": map[string]any{"amount": "1520.50", "currency": "usd"},
			"totalCost":    map[string]any{"amount": "1610.75", "currency": "usd"},
			"rateAsOfDate": "2026-02-14T00:00:00Z",
			"jobStatus":    map[string]any{"code": "Quoted"},
		}}},
	}}
}

func TestNewService_ValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Carrier.BaseURL = ""
	if _, err := NewService(cfg, WithWorkflowStore(newFacadeMemoryStore())); err == nil {
		t.Fatalf("expected config validation error")
	}
}

func TestNewService_RequiresStoreOrPersistence(t *testing.T) {
	if _, err := NewService(testConfig()); err == nil {
		t.Fatalf("expected missing store error")
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}

func TestSetup_WiresCommandsAndQueries(t *testing.T) {
	facade, err := Setup(testConfig(),
		WithWorkflowStore(newFacadeMemoryStore()),
		WithTransportAdapter(&compositeAdapter{}),
	)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	commands := facade.Commands()
	if commands.SyncWorkItem == nil || commands.PlanStuckResync == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.GetWorkflow == nil || queries.GetWorkflowByWorkItem == nil ||
		queries.SearchWorkflows == nil || queries.PingCarrier == nil {
		t.Fatalf("expected query handlers to be wired")
	}
}

func TestFacade_FullSyncThroughCommand(t *testing.T) {
	store := newFacadeMemoryStore()
	facade, err := Setup(testConfig(),
		WithWorkflowStore(store),
		WithTransportAdapter(fullRunAdapter()),
		WithClock(func() time.Time { return time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	ref := core.WorkItemRef{ID: "wi-1"}
	msg := carriercommand.SyncWorkItemMessage{
		WorkItem: ref,
		Fields: core.FieldMap{
			"company_name":    "Acme Inc",
			"coverage_amount": "$1,000,000",
			"industry":        "technology",
			"contact_email":   "risk@acme.example",
		},
	}
	if err := facade.Commands().SyncWorkItem.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute sync command: %v", err)
	}

	workflow, err := facade.Queries().GetWorkflowByWorkItem.Query(context.Background(), carrierquery.GetWorkflowByWorkItemMessage{
		WorkItem: ref,
	})
	if err != nil {
		t.Fatalf("query workflow: %v", err)
	}
	if workflow.Status != core.StatusComplete {
		t.Fatalf("expected complete workflow, got %q", workflow.Status)
	}
	if workflow.Account.Number != "ACC-100" || workflow.Submission.Number != "JOB-200" {
		t.Fatalf("unexpected identifiers: %+v %+v", workflow.Account, workflow.Submission)
	}
	if workflow.Quote == nil || workflow.Quote.TotalPremium.Amount != 1520.50 {
		t.Fatalf("expected quote summary, got %+v", workflow.Quote)
	}
}

func TestFacade_PlanResyncWithoutEnqueuerFails(t *testing.T) {
	facade, err := Setup(testConfig(),
		WithWorkflowStore(newFacadeMemoryStore()),
		WithTransportAdapter(&compositeAdapter{}),
	)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	err = facade.Commands().PlanStuckResync.Execute(context.Background(), carriercommand.PlanStuckResyncMessage{})
	if err == nil {
		t.Fatalf("expected planner error without enqueuer")
	}
}

func TestFacade_PingCarrier(t *testing.T) {
	facade, err := Setup(testConfig(),
		WithWorkflowStore(newFacadeMemoryStore()),
		WithTransportAdapter(&compositeAdapter{}),
	)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	healthy, err := facade.Queries().PingCarrier.Query(context.Background(), carrierquery.PingCarrierMessage{})
	if err != nil {
		t.Fatalf("ping query: %v", err)
	}
	if !healthy {
		t.Fatalf("expected healthy carrier")
	}
}

type facadeMemoryStore struct {
	mu    gosync.Mutex
	byID  map[string]*core.SubmissionWorkflow
	byRef map[string]string
}

func newFacadeMemoryStore() *facadeMemoryStore {
	return &facadeMemoryStore{
		byID:  map[string]*core.SubmissionWorkflow{},
		byRef: map[string]string{},
	}
}

func (s *facadeMemoryStore) clone(workflow *core.SubmissionWorkflow) *core.SubmissionWorkflow {
	copied := *workflow
	copied.StepResults = append([]core.StepResult(nil), workflow.StepResults...)
	if workflow.Quote != nil {
		quote := *workflow.Quote
		copied.Quote = &quote
	}
	return &copied
}

func (s *facadeMemoryStore) Create(_ context.Context, workflow *core.SubmissionWorkflow) (*core.SubmissionWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.clone(workflow)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.byID[stored.ID] = stored
	s.byRef[stored.WorkItemRef.String()] = stored.ID
	return s.clone(stored), nil
}

func (s *facadeMemoryStore) GetByID(_ context.Context, id string) (*core.SubmissionWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[id]
	if !ok {
		return nil, core.ErrWorkflowNotFound
	}
	return s.clone(stored), nil
}

func (s *facadeMemoryStore) GetByWorkItem(_ context.Context, ref core.WorkItemRef) (*core.SubmissionWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byRef[ref.String()]
	if !ok {
		return nil, core.ErrWorkflowNotFound
	}
	return s.clone(s.byID[id]), nil
}

func (s *facadeMemoryStore) UpsertStepResult(ctx context.Context, workflowID string, outcome core.StepOutcome, at time.Time) (*core.SubmissionWorkflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[workflowID]
	if !ok {
		return nil, core.ErrWorkflowNotFound
	}
	stored.RecordOutcome(outcome, at)
	return s.clone(stored), nil
}

func (s *facadeMemoryStore) MarkAttempt(_ context.Context, workflowID string, at time.Time) (*core.SubmissionWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[workflowID]
	if !ok {
		return nil, core.ErrWorkflowNotFound
	}
	stored.RetryCount++
	stored.UpdatedAt = at
	return s.clone(stored), nil
}

func (s *facadeMemoryStore) ListByStatus(_ context.Context, status core.SyncStatus, _ int) ([]*core.SubmissionWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.SubmissionWorkflow
	for _, stored := range s.byID {
		if stored.Status == status {
			out = append(out, s.clone(stored))
		}
	}
	return out, nil
}

func (s *facadeMemoryStore) ListStale(_ context.Context, olderThan time.Time, _ int) ([]*core.SubmissionWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.SubmissionWorkflow
	for _, stored := range s.byID {
		if stored.Status == core.StatusComplete {
			continue
		}
		if stored.UpdatedAt.Before(olderThan) {
			out = append(out, s.clone(stored))
		}
	}
	return out, nil
}

func (s *facadeMemoryStore) Search(_ context.Context, _ core.WorkflowSearch) ([]*core.SubmissionWorkflow, error) {
	return nil, nil
}
