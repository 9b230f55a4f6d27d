package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentq/agentq/retry"
	"github.com/agentq/agentq/storage"
	"github.com/agentq/agentq/types"
)

// DefaultTaskTimeout is the advisory per-task timeout recorded when the
// caller passes zero. The core stores and persists it but never enforces
// it; see middleware.Deadline for opt-in enforcement.
const DefaultTaskTimeout = 120 * time.Second

// Scheduler owns the ordered pending list and the results cache. Every
// method is a single critical section; this is the second boundary that
// needs to stay serialized if dispatch is ever parallelized.
//
// State machine: pending -> running -> completed | error, with a bounded
// error -> pending loop for retryable failures.
type Scheduler struct {
	pending []*types.Task
	results map[string]*types.Result
	store   storage.Storage
	policy  retry.Policy
	logger  zerolog.Logger
	mu      sync.Mutex
}

// QueueSnapshot is a read-only diagnostic view of the scheduler.
type QueueSnapshot struct {
	PendingCount int                      `json:"total_queued"`
	ResultCount  int                      `json:"total_results_cached"`
	StatusCounts map[types.TaskStatus]int `json:"status_breakdown"`
	NextTaskID   string                   `json:"next_task_id,omitempty"`
}

// NewScheduler builds a scheduler. store may be nil (no persistence);
// policy may be nil (retry.Default applies).
func NewScheduler(store storage.Storage, policy retry.Policy, logger zerolog.Logger) *Scheduler {
	if policy == nil {
		policy = retry.Default()
	}
	return &Scheduler{
		results: make(map[string]*types.Result),
		store:   store,
		policy:  policy,
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}
}

// Enqueue creates a pending task and inserts it into the queue. The queue
// is re-sorted by priority descending, stable on ties, so submission
// order is preserved within a priority. The new id is returned.
func (s *Scheduler) Enqueue(ctx context.Context, agentID string, payload map[string]any, priority int, timeout time.Duration) (string, error) {
	if agentID == "" {
		return "", fmt.Errorf("agent id must be non-empty")
	}
	if payload == nil {
		return "", fmt.Errorf("payload must not be nil")
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}

	task := &types.Task{
		ID:        uuid.New().String(),
		AgentID:   agentID,
		Payload:   payload,
		Status:    types.TaskPending,
		Priority:  priority,
		Timeout:   timeout,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.pending = append(s.pending, task)
	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].Priority > s.pending[j].Priority
	})
	s.mu.Unlock()

	s.logger.Info().
		Str("task_id", task.ID).
		Str("agent_id", agentID).
		Int("priority", priority).
		Msg("queued task")

	s.persistSave(ctx, task)
	return task.ID, nil
}

// PeekNext returns a snapshot of the queue head without mutating it.
func (s *Scheduler) PeekNext() (types.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return types.Task{}, false
	}
	return *s.pending[0], true
}

// MarkRunning transitions a pending task to running. Returns false if the
// task is not in the pending list.
func (s *Scheduler) MarkRunning(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.find(taskID)
	if task == nil {
		s.logger.Warn().Str("task_id", taskID).Msg("mark running: task not found")
		return false
	}
	now := time.Now().UTC()
	task.Status = types.TaskRunning
	task.StartedAt = &now
	return true
}

// Complete removes the task from the pending list and stores its result
// in the results cache, where it is retained indefinitely (cleanup is an
// external collaborator's job).
func (s *Scheduler) Complete(ctx context.Context, taskID string, result *types.Result) bool {
	s.mu.Lock()
	idx := s.findIndex(taskID)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Warn().Str("task_id", taskID).Msg("complete: task not found")
		return false
	}
	task := s.pending[idx]
	now := time.Now().UTC()
	task.Status = types.TaskCompleted
	task.CompletedAt = &now
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
	s.results[taskID] = result
	s.mu.Unlock()

	s.logger.Info().Str("task_id", taskID).Msg("completed task")
	s.persistStatus(ctx, taskID, types.TaskCompleted, "")
	return true
}

// Fail records a task failure. A retryable failure within the policy's
// budget bounces the task back to pending in place: it keeps its current
// queue position and is only re-sorted by a future Enqueue. Otherwise the
// task is terminal: removed from the queue with a synthetic error result
// cached under its id.
func (s *Scheduler) Fail(ctx context.Context, taskID string, errorMessage string, retryable bool) bool {
	s.mu.Lock()
	idx := s.findIndex(taskID)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Warn().Str("task_id", taskID).Msg("fail: task not found")
		return false
	}
	task := s.pending[idx]

	if retryable && s.policy.ShouldRetry(task.RetryCount) {
		task.RetryCount++
		task.Status = types.TaskPending
		task.StartedAt = nil
		attempt := task.RetryCount
		s.mu.Unlock()

		s.logger.Warn().
			Str("task_id", taskID).
			Int("attempt", attempt).
			Str("error", errorMessage).
			Msg("retrying task")
		return true
	}

	now := time.Now().UTC()
	task.Status = types.TaskError
	task.CompletedAt = &now
	task.ErrorMessage = errorMessage
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
	s.results[taskID] = &types.Result{
		Status:       types.ResultError,
		Output:       nil,
		ErrorMessage: errorMessage,
	}
	s.mu.Unlock()

	s.logger.Error().Str("task_id", taskID).Str("error", errorMessage).Msg("failed task")
	s.persistStatus(ctx, taskID, types.TaskError, errorMessage)
	return true
}

// Status reports a task's current state, checking the pending list first
// and the results cache second.
func (s *Scheduler) Status(taskID string) (types.TaskStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task := s.find(taskID); task != nil {
		return task.Status, true
	}
	if result, ok := s.results[taskID]; ok {
		return types.TaskStatus(result.Status), true
	}
	return "", false
}

// Result returns the stored result of a terminal task. Tasks still
// pending or running have no result yet.
func (s *Scheduler) Result(taskID string) (*types.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[taskID]
	return result, ok
}

// Snapshot returns queue diagnostics.
func (s *Scheduler) Snapshot() QueueSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := QueueSnapshot{
		PendingCount: len(s.pending),
		ResultCount:  len(s.results),
		StatusCounts: make(map[types.TaskStatus]int),
	}
	for _, task := range s.pending {
		snap.StatusCounts[task.Status]++
	}
	if len(s.pending) > 0 {
		snap.NextTaskID = s.pending[0].ID
	}
	return snap
}

// find and findIndex assume s.mu is held.
func (s *Scheduler) find(taskID string) *types.Task {
	if idx := s.findIndex(taskID); idx >= 0 {
		return s.pending[idx]
	}
	return nil
}

func (s *Scheduler) findIndex(taskID string) int {
	for i, task := range s.pending {
		if task.ID == taskID {
			return i
		}
	}
	return -1
}

// persistSave and persistStatus are best-effort: write-through failures
// are logged, never propagated.
func (s *Scheduler) persistSave(ctx context.Context, task *types.Task) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		s.logger.Error().Err(err).Str("task_id", task.ID).Msg("failed to persist task")
	}
}

func (s *Scheduler) persistStatus(ctx context.Context, taskID string, status types.TaskStatus, errorMessage string) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateTaskStatus(ctx, taskID, status, errorMessage); err != nil {
		s.logger.Error().Err(err).Str("task_id", taskID).Msg("failed to persist task status")
	}
}
