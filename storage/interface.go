package storage

import (
	"context"
	"errors"

	"github.com/agentq/agentq/types"
)

var (
	ErrTaskNotFound = errors.New("task not found in storage")
)

// Storage is the write-through persistence contract consumed by the
// scheduler. Writes are best-effort from the caller's point of view: the
// scheduling core logs failures and never reads the store back.
// ListTasks exists for external inspection and cleanup tooling.
type Storage interface {
	Init(ctx context.Context) error
	SaveTask(ctx context.Context, task *types.Task) error
	UpdateTaskStatus(ctx context.Context, taskID string, status types.TaskStatus, errorMessage string) error
	ListTasks(ctx context.Context, status types.TaskStatus, limit int) ([]*types.Task, error)
	Close() error
}
