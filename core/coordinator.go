package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentq/agentq/memory"
	"github.com/agentq/agentq/storage"
	"github.com/agentq/agentq/types"
)

// Validator is the injected payload-validation capability. Any non-nil
// error counts as a validation failure.
type Validator interface {
	Validate(payload map[string]any) error
}

// Initializer is implemented by collaborators that need a startup step.
type Initializer interface {
	Init(ctx context.Context) error
}

// Coordinator wires the registry, scheduler, lifecycle runner, validator
// and persistence together. It is the engine's public entry point; the
// transport layer sits on top of it.
type Coordinator struct {
	registry  *Registry
	scheduler *Scheduler
	runner    *Runner
	store     storage.Storage
	validator Validator
	cache     *memory.Cache
	logger    zerolog.Logger

	initialized bool
}

// Health is the aggregate produced by HealthCheck.
type Health struct {
	Initialized bool              `json:"initialized"`
	Components  map[string]string `json:"components"`
	Agents      RegistryHealth    `json:"agents"`
	Queue       QueueSnapshot     `json:"queue"`
}

// CoordinatorConfig carries the coordinator's collaborators. Registry,
// Scheduler and Runner are required; Store, Validator and Cache may be
// nil, disabling persistence, validation and result mirroring.
type CoordinatorConfig struct {
	Registry  *Registry
	Scheduler *Scheduler
	Runner    *Runner
	Store     storage.Storage
	Validator Validator
	Cache     *memory.Cache
	Logger    zerolog.Logger
}

func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("coordinator requires a registry")
	}
	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("coordinator requires a scheduler")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("coordinator requires a lifecycle runner")
	}
	return &Coordinator{
		registry:  cfg.Registry,
		scheduler: cfg.Scheduler,
		runner:    cfg.Runner,
		store:     cfg.Store,
		validator: cfg.Validator,
		cache:     cfg.Cache,
		logger:    cfg.Logger.With().Str("component", "coordinator").Logger(),
	}, nil
}

// Initialize starts the injected collaborators: store first, then the
// validator (when it implements Initializer). The registry is ready at
// construction and needs no step. Idempotent; the first failure is
// wrapped in types.ErrInitialization and halts the sequence.
func (c *Coordinator) Initialize(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	c.logger.Info().Msg("initializing")

	if c.store != nil {
		if err := c.store.Init(ctx); err != nil {
			return fmt.Errorf("%w: storage: %v", types.ErrInitialization, err)
		}
		c.logger.Info().Msg("storage initialized")
	}

	if init, ok := c.validator.(Initializer); ok && init != nil {
		if err := init.Init(ctx); err != nil {
			return fmt.Errorf("%w: validator: %v", types.ErrInitialization, err)
		}
		c.logger.Info().Msg("validator initialized")
	}

	c.initialized = true
	c.logger.Info().Msg("initialization complete")
	return nil
}

// Initialized reports whether Initialize has succeeded.
func (c *Coordinator) Initialized() bool {
	return c.initialized
}

// RegisterAgent adds an agent to the registry.
func (c *Coordinator) RegisterAgent(agent *Agent) error {
	return c.registry.Register(agent)
}

// Submit validates and enqueues a task, then performs exactly one
// dispatch step. The caller blocks for the duration of whichever task is
// at the head of the queue, which is not necessarily the one just
// submitted; the returned id is always the submitted task's.
func (c *Coordinator) Submit(ctx context.Context, agentID string, payload map[string]any, priority int) (string, error) {
	if !c.initialized {
		return "", types.ErrNotInitialized
	}

	if _, ok := c.registry.Get(agentID); !ok {
		return "", fmt.Errorf("%w: %s", types.ErrAgentNotFound, agentID)
	}

	if c.validator != nil {
		if err := c.validator.Validate(payload); err != nil {
			c.logger.Warn().Err(err).Str("agent_id", agentID).Msg("payload rejected")
			return "", fmt.Errorf("%w: %v", types.ErrValidationFailed, err)
		}
	}

	taskID, err := c.scheduler.Enqueue(ctx, agentID, payload, priority, 0)
	if err != nil {
		return "", err
	}
	c.logger.Info().Str("task_id", taskID).Str("agent_id", agentID).Msg("task submitted")

	c.DispatchNext(ctx)
	return taskID, nil
}

// DispatchNext synchronously runs the head of the queue through its
// agent's lifecycle. Execution failures never reach the caller: they are
// converted into the task's retry or terminal state. Reports whether a
// task ran to successful completion; false means the queue was empty or
// the dispatched task failed.
func (c *Coordinator) DispatchNext(ctx context.Context) bool {
	task, ok := c.scheduler.PeekNext()
	if !ok {
		c.logger.Debug().Msg("queue empty")
		return false
	}

	agent, ok := c.registry.Get(task.AgentID)
	if !ok {
		// No agent to run against; terminal, never retried.
		c.scheduler.Fail(ctx, task.ID, fmt.Sprintf("agent not found: %s", task.AgentID), false)
		return false
	}

	c.scheduler.MarkRunning(task.ID)
	c.logger.Info().Str("task_id", task.ID).Str("agent_id", task.AgentID).Msg("dispatching task")

	result := c.runner.Run(ctx, agent, task.Payload)
	if result.Status == types.ResultError {
		c.scheduler.Fail(ctx, task.ID, result.ErrorMessage, true)
		return false
	}

	c.scheduler.Complete(ctx, task.ID, result)
	c.mirrorResult(task.ID, result)
	return true
}

// Status reports a task's state. Unknown ids return ok=false, distinct
// from any still-processing state.
func (c *Coordinator) Status(taskID string) (types.TaskStatus, bool) {
	return c.scheduler.Status(taskID)
}

// Result returns the stored result of a terminal task.
func (c *Coordinator) Result(taskID string) (*types.Result, bool) {
	return c.scheduler.Result(taskID)
}

// HealthCheck aggregates component, registry and queue health.
func (c *Coordinator) HealthCheck() Health {
	health := Health{
		Initialized: c.initialized,
		Components:  make(map[string]string),
		Agents:      c.registry.Health(),
		Queue:       c.scheduler.Snapshot(),
	}
	if c.store != nil {
		health.Components["storage"] = "ok"
	}
	if c.validator != nil {
		health.Components["validator"] = "ok"
	}
	if c.cache != nil {
		stats := c.cache.GetStats()
		health.Components["memory"] = fmt.Sprintf("ok (%d/%d cached)", stats.Size, stats.MaxSize)
	}
	return health
}

// mirrorResult copies a terminal result into the memory cache for cheap
// operational lookups. Best-effort.
func (c *Coordinator) mirrorResult(taskID string, result *types.Result) {
	if c.cache == nil {
		return
	}
	if !c.cache.Set("task:"+taskID, result, 0) {
		c.logger.Debug().Str("task_id", taskID).Msg("result cache full")
	}
}
