package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SyncWorkItemMessage]    = (*SyncWorkItemCommand)(nil)
	_ gocmd.Commander[PlanStuckResyncMessage] = (*PlanStuckResyncCommand)(nil)
)
