package sqlstore

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-carrier-sync/core"
)

// WorkItemStore mirrors carrier identifiers onto the intake-owned work_items
// table so its consumers can show account and job numbers without joining the
// workflow table. Updates touch only the carrier columns.
type WorkItemStore struct {
	db   *bun.DB
	repo repository.Repository[*workItemRecord]
}

func NewWorkItemStore(db *bun.DB) (*WorkItemStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*workItemRecord](db, workItemHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid work item repository wiring: %w", err)
		}
	}
	return &WorkItemStore{db: db, repo: repo}, nil
}

func (s *WorkItemStore) MirrorIdentifiers(
	ctx context.Context,
	ref core.WorkItemRef,
	account core.EntityIdentifiers,
	submission core.EntityIdentifiers,
	status core.SyncStatus,
) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: work item store is not configured")
	}
	if err := ref.Validate(); err != nil {
		return err
	}

	record := &workItemRecord{
		ID:                     ref.String(),
		GuidewireAccountID:     account.RemoteID,
		GuidewireAccountNumber: account.Number,
		GuidewireJobID:         submission.RemoteID,
		GuidewireJobNumber:     submission.Number,
		GuidewireSyncStatus:    string(status),
		UpdatedAt:              time.Now().UTC(),
	}

	result, err := s.db.NewUpdate().
		Model(record).
		Column(
			"guidewire_account_id",
			"guidewire_account_number",
			"guidewire_job_id",
			"guidewire_job_number",
			"guidewire_sync_status",
			"updated_at",
		).
		Where("id = ?", record.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %q", core.ErrWorkItemNotFound, ref.String())
	}
	return nil
}
