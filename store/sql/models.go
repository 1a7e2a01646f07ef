package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-carrier-sync/core"
)

type workflowRecord struct {
	bun.BaseModel `bun:"table:carrier_sync_workflows,alias:csw"`

	ID          string `bun:"id,pk"`
	WorkItemRef string `bun:"work_item_ref,notnull,unique"`

	StepResults []core.StepResult `bun:"step_results,type:jsonb,notnull"`

	AccountID     string `bun:"account_id"`
	AccountNumber string `bun:"account_number"`
	JobID         string `bun:"job_id"`
	JobNumber     string `bun:"job_number"`

	QuoteSummary *core.QuoteSummary `bun:"quote_summary,type:jsonb"`

	SyncStatus string `bun:"sync_status,notnull"`
	RetryCount int    `bun:"retry_count,notnull"`
	LastError  string `bun:"last_error"`

	OrganizationName string  `bun:"organization_name"`
	CoverageAmount   float64 `bun:"coverage_amount"`
	Industry         string  `bun:"industry"`
	ContactEmail     string  `bun:"contact_email"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newWorkflowRecord(workflow *core.SubmissionWorkflow) *workflowRecord {
	record := &workflowRecord{
		ID:               workflow.ID,
		WorkItemRef:      workflow.WorkItemRef.String(),
		StepResults:      append([]core.StepResult(nil), workflow.StepResults...),
		AccountID:        workflow.Account.RemoteID,
		AccountNumber:    workflow.Account.Number,
		JobID:            workflow.Submission.RemoteID,
		JobNumber:        workflow.Submission.Number,
		SyncStatus:       string(workflow.Status),
		RetryCount:       workflow.RetryCount,
		LastError:        workflow.LastError,
		OrganizationName: workflow.OrganizationName,
		CoverageAmount:   workflow.CoverageAmount,
		Industry:         workflow.Industry,
		ContactEmail:     workflow.ContactEmail,
		CreatedAt:        workflow.CreatedAt,
		UpdatedAt:        workflow.UpdatedAt,
	}
	if record.StepResults == nil {
		record.StepResults = []core.StepResult{}
	}
	if workflow.Quote != nil {
		quote := *workflow.Quote
		record.QuoteSummary = &quote
	}
	return record
}

func (r *workflowRecord) toDomain() *core.SubmissionWorkflow {
	workflow := &core.SubmissionWorkflow{
		ID:               r.ID,
		WorkItemRef:      core.WorkItemRef{ID: r.WorkItemRef},
		StepResults:      append([]core.StepResult(nil), r.StepResults...),
		Account:          core.EntityIdentifiers{RemoteID: r.AccountID, Number: r.AccountNumber},
		Submission:       core.EntityIdentifiers{RemoteID: r.JobID, Number: r.JobNumber},
		Status:           core.SyncStatus(r.SyncStatus),
		RetryCount:       r.RetryCount,
		LastError:        r.LastError,
		OrganizationName: r.OrganizationName,
		CoverageAmount:   r.CoverageAmount,
		Industry:         r.Industry,
		ContactEmail:     r.ContactEmail,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.QuoteSummary != nil {
		quote := *r.QuoteSummary
		workflow.Quote = &quote
	}
	return workflow
}

// workItemRecord maps only the carrier identifier columns of the work_items
// table. The intake subsystem owns the rest of the row; this store never
// touches anything else.
type workItemRecord struct {
	bun.BaseModel `bun:"table:work_items,alias:wi"`

	ID                     string    `bun:"id,pk"`
	GuidewireAccountID     string    `bun:"guidewire_account_id"`
	GuidewireAccountNumber string    `bun:"guidewire_account_number"`
	GuidewireJobID         string    `bun:"guidewire_job_id"`
	GuidewireJobNumber     string    `bun:"guidewire_job_number"`
	GuidewireSyncStatus    string    `bun:"guidewire_sync_status"`
	UpdatedAt              time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
