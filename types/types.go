package types

import (
	"encoding/json"
	"time"
)

// TaskStatus tracks a task through the scheduler state machine.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskError     TaskStatus = "error"
)

// AgentStatus is the lifecycle state of a registered agent.
type AgentStatus string

const (
	AgentIdle      AgentStatus = "idle"
	AgentRunning   AgentStatus = "running"
	AgentCompleted AgentStatus = "completed"
	AgentError     AgentStatus = "error"
)

// Result status values. Executors may leave Result.Status empty; the
// lifecycle runner fills in ResultCompleted.
const (
	ResultCompleted = "completed"
	ResultError     = "error"
)

// Task is one unit of work submitted against an agent. Owned by the
// scheduler: it lives in the pending list while pending or running and is
// copied into the results cache on a terminal transition.
type Task struct {
	ID           string         `json:"id"`
	AgentID      string         `json:"agent_id"`
	Payload      map[string]any `json:"payload"`
	Status       TaskStatus     `json:"status"`
	Priority     int            `json:"priority"`
	Timeout      time.Duration  `json:"timeout"`
	RetryCount   int            `json:"retry_count"`
	CreatedAt    time.Time      `json:"created_at"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Result is the standardized output of one agent execution.
type Result struct {
	Status       string         `json:"status"`
	Output       any            `json:"output"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (t *Task) Serialize() ([]byte, error) {
	return json.Marshal(t)
}

func DeserializeTask(data []byte) (*Task, error) {
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
