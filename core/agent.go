package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentq/agentq/types"
)

// Executor is the sole behavioral contract a pluggable analysis strategy
// must satisfy to be schedulable. Everything else (status bookkeeping,
// timing, error normalization) is fixed by the lifecycle runner.
type Executor interface {
	Execute(ctx context.Context, input map[string]any) (*types.Result, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, input map[string]any) (*types.Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, input map[string]any) (*types.Result, error) {
	return f(ctx, input)
}

// Agent pairs a registered identity with its executor. Lifecycle state is
// mutated only by the runner during Run.
type Agent struct {
	id   string
	name string
	kind string
	exec Executor

	mu           sync.Mutex
	status       types.AgentStatus
	createdAt    time.Time
	lastExecuted *time.Time
}

// AgentInfo is a point-in-time snapshot of an agent's public state.
type AgentInfo struct {
	ID           string            `json:"agent_id"`
	Name         string            `json:"name"`
	Kind         string            `json:"kind"`
	Status       types.AgentStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	LastExecuted *time.Time        `json:"last_executed,omitempty"`
}

// NewAgent builds an idle agent. The kind is a free-form classification
// tag ("correlation", "forecasting", ...) used for registry scans.
func NewAgent(id, name, kind string, exec Executor) (*Agent, error) {
	if id == "" {
		return nil, fmt.Errorf("agent id must be non-empty")
	}
	if name == "" {
		return nil, fmt.Errorf("agent name must be non-empty")
	}
	if exec == nil {
		return nil, fmt.Errorf("agent %s: executor must not be nil", id)
	}
	return &Agent{
		id:        id,
		name:      name,
		kind:      kind,
		exec:      exec,
		status:    types.AgentIdle,
		createdAt: time.Now().UTC(),
	}, nil
}

func (a *Agent) ID() string   { return a.id }
func (a *Agent) Name() string { return a.name }
func (a *Agent) Kind() string { return a.kind }

func (a *Agent) Status() types.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// ResetStatus returns the agent to idle.
func (a *Agent) ResetStatus() {
	a.setStatus(types.AgentIdle)
}

// Snapshot copies the agent's public state.
func (a *Agent) Snapshot() AgentInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	info := AgentInfo{
		ID:        a.id,
		Name:      a.name,
		Kind:      a.kind,
		Status:    a.status,
		CreatedAt: a.createdAt,
	}
	if a.lastExecuted != nil {
		t := *a.lastExecuted
		info.LastExecuted = &t
	}
	return info
}

func (a *Agent) setStatus(s types.AgentStatus) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

func (a *Agent) markExecuted(t time.Time) {
	a.mu.Lock()
	a.lastExecuted = &t
	a.mu.Unlock()
}
