package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentq/agentq/middleware"
	"github.com/agentq/agentq/types"
)

// Runner standardizes agent execution: status transitions, timing, panic
// and error normalization. The executor is the only behavior an agent
// supplies; a failure never propagates past Run.
type Runner struct {
	logger zerolog.Logger
	chain  middleware.Middleware
}

// NewRunner builds a lifecycle runner. Middlewares, if any, wrap every
// execution innermost-last, in the order given.
func NewRunner(logger zerolog.Logger, middlewares ...middleware.Middleware) *Runner {
	r := &Runner{logger: logger.With().Str("component", "lifecycle").Logger()}
	if len(middlewares) > 0 {
		r.chain = middleware.Chain(middlewares...)
	}
	return r
}

// Run executes the agent against input and returns a normalized result.
// The returned result always carries a status and execution metadata
// {execution_id, agent_id, agent_name, execution_time_ms}.
func (r *Runner) Run(ctx context.Context, agent *Agent, input map[string]any) *types.Result {
	executionID := uuid.New().String()
	start := time.Now().UTC()
	logger := r.logger.With().
		Str("agent_id", agent.ID()).
		Str("execution_id", executionID).
		Logger()

	agent.setStatus(types.AgentRunning)
	logger.Info().Msg("starting execution")

	handler := middleware.Handler(agent.exec.Execute)
	if r.chain != nil {
		handler = r.chain(handler)
	}

	result, err := r.invoke(ctx, handler, input)
	if err != nil {
		agent.setStatus(types.AgentError)
		logger.Error().Err(err).Msg("execution failed")
		return &types.Result{
			Status:       types.ResultError,
			Output:       nil,
			ErrorMessage: err.Error(),
			Metadata:     r.metadata(agent, executionID, start),
		}
	}

	if result == nil {
		result = &types.Result{}
	}
	if result.Status == "" {
		result.Status = types.ResultCompleted
	}
	if result.Metadata == nil {
		result.Metadata = make(map[string]any)
	}
	for k, v := range r.metadata(agent, executionID, start) {
		result.Metadata[k] = v
	}

	agent.setStatus(types.AgentCompleted)
	agent.markExecuted(time.Now().UTC())
	logger.Info().Msg("completed execution")
	return result
}

// invoke calls the handler, converting a panic inside the executor into
// an ordinary error.
func (r *Runner) invoke(ctx context.Context, handler middleware.Handler, input map[string]any) (result *types.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Msg("executor panicked")
			result = nil
			err = fmt.Errorf("%w: panic: %v", types.ErrExecutionFailed, rec)
		}
	}()
	return handler(ctx, input)
}

func (r *Runner) metadata(agent *Agent, executionID string, start time.Time) map[string]any {
	return map[string]any{
		"execution_id":      executionID,
		"agent_id":          agent.ID(),
		"agent_name":        agent.Name(),
		"execution_time_ms": float64(time.Since(start)) / float64(time.Millisecond),
	}
}
