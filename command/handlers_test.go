package command

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-carrier-sync/core"
)

type stubSynchronizer struct {
	result core.SyncResult
	err    error
	calls  int
	ref    core.WorkItemRef
	fields core.FieldMap
}

func (s *stubSynchronizer) Synchronize(_ context.Context, ref core.WorkItemRef, fields core.FieldMap) (core.SyncResult, error) {
	s.calls++
	s.ref = ref
	s.fields = fields
	if s.err != nil {
		return core.SyncResult{}, s.err
	}
	return s.result, nil
}

type stubPlanner struct {
	scheduled int
	err       error
	calls     int
}

func (s *stubPlanner) Plan(_ context.Context) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.scheduled, nil
}

func TestSyncWorkItemMessage_ValidateReturnsRichError(t *testing.T) {
	err := (SyncWorkItemMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorCodeBadInput {
		t.Fatalf("expected %q text code, got %q", core.ErrorCodeBadInput, rich.TextCode)
	}
}

func TestSyncWorkItemMessage_ValidWorkItemPasses(t *testing.T) {
	msg := SyncWorkItemMessage{WorkItem: core.WorkItemRef{ID: "wi-1"}}
	if err := msg.Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if msg.Type() != TypeSyncWorkItem {
		t.Fatalf("unexpected message type %q", msg.Type())
	}
}

func TestSyncWorkItemCommand_NilSynchronizerReturnsRichError(t *testing.T) {
	var cmd *SyncWorkItemCommand
	err := cmd.Execute(context.Background(), SyncWorkItemMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}

func TestSyncWorkItemCommand_DelegatesToSynchronizer(t *testing.T) {
	synchronizer := &stubSynchronizer{
		result: core.SyncResult{
			WorkItemRef:   core.WorkItemRef{ID: "wi-1"},
			Success:       true,
			Status:        core.StatusComplete,
			AccountNumber: "ACC-1",
		},
	}
	cmd := NewSyncWorkItemCommand(synchronizer)

	msg := SyncWorkItemMessage{
		WorkItem: core.WorkItemRef{ID: "wi-1"},
		Fields:   core.FieldMap{"company_name": "Acme"},
	}
	if err := cmd.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if synchronizer.calls != 1 {
		t.Fatalf("expected one synchronize call, got %d", synchronizer.calls)
	}
	if synchronizer.ref.ID != "wi-1" {
		t.Fatalf("expected work item ref forwarded, got %q", synchronizer.ref.ID)
	}
	if synchronizer.fields.String("company_name") != "Acme" {
		t.Fatalf("expected fields forwarded")
	}
}

func TestSyncWorkItemCommand_PropagatesErrors(t *testing.T) {
	boom := errors.New("store offline")
	cmd := NewSyncWorkItemCommand(&stubSynchronizer{err: boom})

	err := cmd.Execute(context.Background(), SyncWorkItemMessage{WorkItem: core.WorkItemRef{ID: "wi-1"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected synchronizer error, got %v", err)
	}
}

func TestPlanStuckResyncCommand_DelegatesToPlanner(t *testing.T) {
	planner := &stubPlanner{scheduled: 3}
	cmd := NewPlanStuckResyncCommand(planner)

	if err := cmd.Execute(context.Background(), PlanStuckResyncMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if planner.calls != 1 {
		t.Fatalf("expected one plan call, got %d", planner.calls)
	}
}

func TestPlanStuckResyncCommand_NilPlannerReturnsRichError(t *testing.T) {
	var cmd *PlanStuckResyncCommand
	err := cmd.Execute(context.Background(), PlanStuckResyncMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != core.ErrorCodeInternal {
		t.Fatalf("expected %q text code, got %q", core.ErrorCodeInternal, rich.TextCode)
	}
}
