package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-carrier-sync/core"
)

const workflowCacheKeyPrefix = "go-carrier-sync::workflow::v1"

// CachedWorkflowStore caches single-workflow reads in front of a base store.
// Lookup-by-work-item is the hot path: every sync run and every status poll
// starts there. Writes pass through and invalidate both keys; list and search
// queries always hit the base store.
type CachedWorkflowStore struct {
	base  core.WorkflowStore
	cache repositorycache.CacheService
}

func NewCachedWorkflowStore(base core.WorkflowStore, cacheService repositorycache.CacheService) (*CachedWorkflowStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base workflow store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: workflow cache service is required")
	}
	return &CachedWorkflowStore{base: base, cache: cacheService}, nil
}

// WorkflowCacheKey returns the deterministic cache key for one workflow read:
// go-carrier-sync::workflow::v1::<kind>::<value> with the value path-escaped.
func WorkflowCacheKey(kind, value string) string {
	return strings.Join([]string{workflowCacheKeyPrefix, kind, url.PathEscape(strings.TrimSpace(value))}, "::")
}

func (s *CachedWorkflowStore) Create(ctx context.Context, workflow *core.SubmissionWorkflow) (*core.SubmissionWorkflow, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached workflow store is not configured")
	}
	created, err := s.base.Create(ctx, workflow)
	if err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CachedWorkflowStore) GetByID(ctx context.Context, id string) (*core.SubmissionWorkflow, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached workflow store is not configured")
	}
	return repositorycache.GetOrFetch(ctx, s.cache, WorkflowCacheKey("id", id),
		func(ctx context.Context) (*core.SubmissionWorkflow, error) {
			return s.base.GetByID(ctx, id)
		})
}

func (s *CachedWorkflowStore) GetByWorkItem(ctx context.Context, ref core.WorkItemRef) (*core.SubmissionWorkflow, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached workflow store is not configured")
	}
	return repositorycache.GetOrFetch(ctx, s.cache, WorkflowCacheKey("work_item", ref.String()),
		func(ctx context.Context) (*core.SubmissionWorkflow, error) {
			return s.base.GetByWorkItem(ctx, ref)
		})
}

func (s *CachedWorkflowStore) UpsertStepResult(ctx context.Context, workflowID string, outcome core.StepOutcome, at time.Time) (*core.SubmissionWorkflow, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached workflow store is not configured")
	}
	updated, err := s.base.UpsertStepResult(ctx, workflowID, outcome, at)
	if err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CachedWorkflowStore) MarkAttempt(ctx context.Context, workflowID string, at time.Time) (*core.SubmissionWorkflow, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached workflow store is not configured")
	}
	updated, err := s.base.MarkAttempt(ctx, workflowID, at)
	if err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CachedWorkflowStore) ListByStatus(ctx context.Context, status core.SyncStatus, limit int) ([]*core.SubmissionWorkflow, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached workflow store is not configured")
	}
	return s.base.ListByStatus(ctx, status, limit)
}

func (s *CachedWorkflowStore) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*core.SubmissionWorkflow, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached workflow store is not configured")
	}
	return s.base.ListStale(ctx, olderThan, limit)
}

func (s *CachedWorkflowStore) Search(ctx context.Context, query core.WorkflowSearch) ([]*core.SubmissionWorkflow, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached workflow store is not configured")
	}
	return s.base.Search(ctx, query)
}

func (s *CachedWorkflowStore) invalidate(ctx context.Context, workflow *core.SubmissionWorkflow) error {
	if workflow == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, WorkflowCacheKey("id", workflow.ID)); err != nil {
		return err
	}
	return s.cache.Delete(ctx, WorkflowCacheKey("work_item", workflow.WorkItemRef.String()))
}
