package storage

import (
	"context"
	"sync"

	"github.com/agentq/agentq/types"
)

// MemoryStorage keeps task records in a mutex-guarded map. Useful for
// tests and for running the engine without durable persistence.
type MemoryStorage struct {
	tasks map[string]*types.Task
	mu    sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks: make(map[string]*types.Task),
	}
}

func (s *MemoryStorage) Init(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) SaveTask(ctx context.Context, task *types.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy so later scheduler mutations don't alias the record.
	rec := *task
	s.tasks[rec.ID] = &rec
	return nil
}

func (s *MemoryStorage) UpdateTaskStatus(ctx context.Context, taskID string, status types.TaskStatus, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return ErrTaskNotFound
	}
	task.Status = status
	task.ErrorMessage = errorMessage
	return nil
}

func (s *MemoryStorage) ListTasks(ctx context.Context, status types.TaskStatus, limit int) ([]*types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Task
	for _, t := range s.tasks {
		if t.Status == status {
			rec := *t
			result = append(result, &rec)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
