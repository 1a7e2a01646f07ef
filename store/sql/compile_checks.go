package sqlstore

import "github.com/goliatone/go-carrier-sync/core"

var (
	_ core.WorkflowStore  = (*WorkflowStore)(nil)
	_ core.WorkflowStore  = (*CachedWorkflowStore)(nil)
	_ core.WorkItemMirror = (*WorkItemStore)(nil)
)
