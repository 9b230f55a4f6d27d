package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentq/agentq/types"
)

func sampleTask(id string, status types.TaskStatus) *types.Task {
	return &types.Task{
		ID:        id,
		AgentID:   "agent_001",
		Payload:   map[string]any{"target": "signal_strength"},
		Status:    status,
		Priority:  1,
		Timeout:   120 * time.Second,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	task := sampleTask("t1", types.TaskPending)
	if err := s.SaveTask(ctx, task); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The stored record must not alias the caller's task.
	task.Status = types.TaskRunning
	listed, err := s.ListTasks(ctx, types.TaskPending, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "t1" {
		t.Fatalf("listed = %+v", listed)
	}

	if err := s.UpdateTaskStatus(ctx, "t1", types.TaskError, "boom"); err != nil {
		t.Fatalf("update: %v", err)
	}
	failed, err := s.ListTasks(ctx, types.TaskError, 0)
	if err != nil {
		t.Fatalf("list after update: %v", err)
	}
	if len(failed) != 1 || failed[0].ErrorMessage != "boom" {
		t.Fatalf("failed = %+v", failed)
	}
}

func TestMemoryStorageUpdateUnknown(t *testing.T) {
	s := NewMemoryStorage()
	err := s.UpdateTaskStatus(context.Background(), "missing", types.TaskError, "")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
