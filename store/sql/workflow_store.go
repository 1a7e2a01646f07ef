package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-carrier-sync/core"
)

const defaultListLimit = 100

// WorkflowStore is the durable record of submission workflows. Step results
// are an append-only jsonb log; the status column is always recomputed from
// them inside the same transaction that appends.
type WorkflowStore struct {
	db   *bun.DB
	repo repository.Repository[*workflowRecord]
}

func NewWorkflowStore(db *bun.DB) (*WorkflowStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*workflowRecord](db, workflowHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid workflow repository wiring: %w", err)
		}
	}
	return &WorkflowStore{db: db, repo: repo}, nil
}

func (s *WorkflowStore) Create(ctx context.Context, workflow *core.SubmissionWorkflow) (*core.SubmissionWorkflow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: workflow store is not configured")
	}
	if workflow == nil {
		return nil, fmt.Errorf("sqlstore: workflow is required")
	}
	if err := workflow.WorkItemRef.Validate(); err != nil {
		return nil, err
	}

	record := newWorkflowRecord(workflow)
	if strings.TrimSpace(record.ID) == "" {
		record.ID = uuid.NewString()
	}
	if record.SyncStatus == "" {
		record.SyncStatus = string(core.DeriveSyncStatus(record.StepResults))
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (s *WorkflowStore) GetByID(ctx context.Context, id string) (*core.SubmissionWorkflow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: workflow store is not configured")
	}
	record := &workflowRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: id %q", core.ErrWorkflowNotFound, id)
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (s *WorkflowStore) GetByWorkItem(ctx context.Context, ref core.WorkItemRef) (*core.SubmissionWorkflow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: workflow store is not configured")
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	record := &workflowRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.work_item_ref = ?", ref.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: work item %q", core.ErrWorkflowNotFound, ref.String())
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// UpsertStepResult appends one step outcome and recomputes every derived
// column in a single transaction. A crash can lose the whole write or none of
// it; the status column can never drift from the results it derives from.
func (s *WorkflowStore) UpsertStepResult(ctx context.Context, workflowID string, outcome core.StepOutcome, at time.Time) (*core.SubmissionWorkflow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: workflow store is not configured")
	}
	workflowID = strings.TrimSpace(workflowID)
	if workflowID == "" {
		return nil, fmt.Errorf("sqlstore: workflow id is required")
	}
	if !outcome.Step.IsValid() {
		return nil, fmt.Errorf("sqlstore: unknown step %q", outcome.Step)
	}

	var updated *core.SubmissionWorkflow
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &workflowRecord{}
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.id = ?", workflowID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("%w: id %q", core.ErrWorkflowNotFound, workflowID)
			}
			return err
		}

		workflow := record.toDomain()
		workflow.RecordOutcome(outcome, at.UTC())

		next := newWorkflowRecord(workflow)
		next.CreatedAt = record.CreatedAt
		if _, err := tx.NewUpdate().
			Model(next).
			Where("id = ?", next.ID).
			Exec(ctx); err != nil {
			return err
		}
		updated = next.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkAttempt bumps the retry counter on workflow re-entry.
func (s *WorkflowStore) MarkAttempt(ctx context.Context, workflowID string, at time.Time) (*core.SubmissionWorkflow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: workflow store is not configured")
	}
	workflowID = strings.TrimSpace(workflowID)
	if workflowID == "" {
		return nil, fmt.Errorf("sqlstore: workflow id is required")
	}

	var updated *core.SubmissionWorkflow
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &workflowRecord{}
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.id = ?", workflowID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("%w: id %q", core.ErrWorkflowNotFound, workflowID)
			}
			return err
		}
		record.RetryCount++
		record.UpdatedAt = at.UTC()
		if _, err := tx.NewUpdate().
			Model(record).
			Column("retry_count", "updated_at").
			Where("id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}
		updated = record.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *WorkflowStore) ListByStatus(ctx context.Context, status core.SyncStatus, limit int) ([]*core.SubmissionWorkflow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: workflow store is not configured")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("sqlstore: unknown status %q", status)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	var records []*workflowRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.sync_status = ?", string(status)).
		Order("updated_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return recordsToDomain(records), nil
}

// ListStale returns non-complete workflows that have not moved since the
// cutoff, oldest first.
func (s *WorkflowStore) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*core.SubmissionWorkflow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: workflow store is not configured")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	var records []*workflowRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.sync_status != ?", string(core.StatusComplete)).
		Where("?TableAlias.updated_at < ?", olderThan.UTC()).
		Order("updated_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return recordsToDomain(records), nil
}

// Search matches on carrier identifiers exactly and on organization name as a
// case-insensitive substring. Empty criteria are skipped; LOWER/LIKE keeps the
// query portable across postgres and sqlite.
func (s *WorkflowStore) Search(ctx context.Context, query core.WorkflowSearch) ([]*core.SubmissionWorkflow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: workflow store is not configured")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := s.db.NewSelect().Model((*workflowRecord)(nil))
	if value := strings.TrimSpace(query.AccountNumber); value != "" {
		q = q.Where("?TableAlias.account_number = ?", value)
	}
	if value := strings.TrimSpace(query.JobNumber); value != "" {
		q = q.Where("?TableAlias.job_number = ?", value)
	}
	if value := strings.TrimSpace(query.OrganizationName); value != "" {
		q = q.Where("LOWER(?TableAlias.organization_name) LIKE ?", "%"+strings.ToLower(value)+"%")
	}
	if query.Status != "" {
		if !query.Status.IsValid() {
			return nil, fmt.Errorf("sqlstore: unknown status %q", query.Status)
		}
		q = q.Where("?TableAlias.sync_status = ?", string(query.Status))
	}

	var records []*workflowRecord
	if err := q.Order("updated_at DESC").Limit(limit).Scan(ctx, &records); err != nil {
		return nil, err
	}
	return recordsToDomain(records), nil
}

// StatusCounts returns a rollup of workflows per derived status.
func (s *WorkflowStore) StatusCounts(ctx context.Context) (map[core.SyncStatus]int, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: workflow store is not configured")
	}
	var rows []struct {
		SyncStatus string `bun:"sync_status"`
		Count      int    `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*workflowRecord)(nil)).
		ColumnExpr("?TableAlias.sync_status AS sync_status").
		ColumnExpr("COUNT(*) AS count").
		Group("sync_status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	counts := make(map[core.SyncStatus]int, len(rows))
	for _, row := range rows {
		counts[core.SyncStatus(row.SyncStatus)] = row.Count
	}
	return counts, nil
}

func recordsToDomain(records []*workflowRecord) []*core.SubmissionWorkflow {
	out := make([]*core.SubmissionWorkflow, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out
}
