package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the structured logger used across the module.
type Logger = glog.Logger

// LoggerProvider yields named child loggers for subsystems.
type LoggerProvider = glog.LoggerProvider

// FieldsLogger is satisfied by loggers that support field chaining.
type FieldsLogger = glog.FieldsLogger

// BasicAuth carries the carrier API credentials attached per request.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) IsZero() bool {
	return a.Username == "" && a.Password == ""
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
	Auth                 BasicAuth
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter executes a single outbound request against the carrier.
// Implementations classify failures with the module's error taxonomy so the
// retry layer can distinguish transient transport faults from terminal ones.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// StepSender executes one workflow step against the carrier and returns the
// parsed outcome. The outcome's Succeeded flag already accounts for embedded
// business errors and missing identifiers. Transport-level failures come back
// as errors; everything the carrier actually answered is an outcome.
type StepSender interface {
	SendStep(ctx context.Context, workflow *SubmissionWorkflow, fields FieldMap, step SyncStep) (StepOutcome, error)
}

// WorkflowStore persists submission workflows. UpsertStepResult must apply the
// step result and the recomputed status atomically; a crash between the two
// would let the stored status drift from the results it is derived from.
type WorkflowStore interface {
	Create(ctx context.Context, workflow *SubmissionWorkflow) (*SubmissionWorkflow, error)
	GetByID(ctx context.Context, id string) (*SubmissionWorkflow, error)
	GetByWorkItem(ctx context.Context, ref WorkItemRef) (*SubmissionWorkflow, error)
	UpsertStepResult(ctx context.Context, workflowID string, outcome StepOutcome, at time.Time) (*SubmissionWorkflow, error)
	MarkAttempt(ctx context.Context, workflowID string, at time.Time) (*SubmissionWorkflow, error)
	ListByStatus(ctx context.Context, status SyncStatus, limit int) ([]*SubmissionWorkflow, error)
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*SubmissionWorkflow, error)
	Search(ctx context.Context, query WorkflowSearch) ([]*SubmissionWorkflow, error)
}

// WorkflowSearch selects workflows by carrier identifier or organization. Empty
// fields are ignored; OrganizationName matches case-insensitively on a
// substring.
type WorkflowSearch struct {
	AccountNumber    string
	JobNumber        string
	OrganizationName string
	Status           SyncStatus
	Limit            int
}

// WorkItemMirror copies carrier identifiers back onto the intake work item so
// the intake subsystem can display them without joining workflow state.
type WorkItemMirror interface {
	MirrorIdentifiers(ctx context.Context, ref WorkItemRef, account EntityIdentifiers, submission EntityIdentifiers, status SyncStatus) error
}

// LockHandle releases a held work item lock. Unlock is idempotent.
type LockHandle interface {
	Unlock()
}

// WorkItemLocker serializes sync runs per work item. Acquire returns false when
// another run already holds the lock; callers surface ErrSyncInProgress instead
// of queueing behind the holder.
type WorkItemLocker interface {
	Acquire(ref WorkItemRef, ttl time.Duration) (LockHandle, bool)
}

// JobExecutionMessage is the queue payload for background sync runs. The
// idempotency key collapses duplicate enqueues of the same work item while one
// is in flight.
type JobExecutionMessage struct {
	JobID          string
	WorkItemID     string
	Reason         string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

// JobEnqueuer schedules a background sync run.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg JobExecutionMessage) error
}

// JobDelivery is one dequeued message plus its settlement callbacks.
type JobDelivery interface {
	Message() JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

// JobDequeuer blocks until a delivery is available or the context ends.
type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}
