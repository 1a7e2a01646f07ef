package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds the module's stores from a shared bun handle. It
// accepts either a raw *bun.DB or anything exposing one, the go-persistence-bun
// client included.
type RepositoryFactory struct {
	db *bun.DB

	workflowStore *WorkflowStore
	workItemStore *WorkItemStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.workflowStore != nil && f.workItemStore != nil {
		return nil
	}

	workflowStore, err := NewWorkflowStore(f.db)
	if err != nil {
		return err
	}
	workItemStore, err := NewWorkItemStore(f.db)
	if err != nil {
		return err
	}
	f.workflowStore = workflowStore
	f.workItemStore = workItemStore
	return nil
}

func (f *RepositoryFactory) WorkflowStore() *WorkflowStore {
	if f == nil {
		return nil
	}
	return f.workflowStore
}

func (f *RepositoryFactory) WorkItemStore() *WorkItemStore {
	if f == nil {
		return nil
	}
	return f.workItemStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client %T", candidate)
	}
}
