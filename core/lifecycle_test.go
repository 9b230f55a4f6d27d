package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentq/agentq/middleware"
	"github.com/agentq/agentq/types"
)

func TestRunInjectsMetadataAndDefaults(t *testing.T) {
	agent := testAgent(t, "a1", "Echo", "demo")
	runner := NewRunner(zerolog.Nop())

	result := runner.Run(context.Background(), agent, map[string]any{"k": "v"})
	if result.Status != types.ResultCompleted {
		t.Fatalf("status = %q, want completed", result.Status)
	}
	for _, key := range []string{"execution_id", "agent_id", "agent_name", "execution_time_ms"} {
		if _, ok := result.Metadata[key]; !ok {
			t.Fatalf("metadata missing %q: %v", key, result.Metadata)
		}
	}
	if result.Metadata["agent_id"] != "a1" || result.Metadata["agent_name"] != "Echo" {
		t.Fatalf("wrong identity metadata: %v", result.Metadata)
	}
	if agent.Status() != types.AgentCompleted {
		t.Fatalf("agent status = %q, want completed", agent.Status())
	}
	if agent.Snapshot().LastExecuted == nil {
		t.Fatal("last executed not stamped")
	}
}

func TestRunNormalizesExecutorError(t *testing.T) {
	agent, err := NewAgent("a1", "Boom", "demo", ExecutorFunc(
		func(ctx context.Context, input map[string]any) (*types.Result, error) {
			return nil, errors.New("model diverged")
		}))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	runner := NewRunner(zerolog.Nop())

	result := runner.Run(context.Background(), agent, map[string]any{"k": "v"})
	if result.Status != types.ResultError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if result.Output != nil {
		t.Fatalf("output = %v, want nil", result.Output)
	}
	if result.ErrorMessage != "model diverged" {
		t.Fatalf("error message = %q", result.ErrorMessage)
	}
	if _, ok := result.Metadata["execution_id"]; !ok {
		t.Fatal("error result missing execution metadata")
	}
	if agent.Status() != types.AgentError {
		t.Fatalf("agent status = %q, want error", agent.Status())
	}
}

func TestRunRecoversPanic(t *testing.T) {
	agent, err := NewAgent("a1", "Panic", "demo", ExecutorFunc(
		func(ctx context.Context, input map[string]any) (*types.Result, error) {
			panic("index out of range")
		}))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	runner := NewRunner(zerolog.Nop())

	result := runner.Run(context.Background(), agent, nil)
	if result.Status != types.ResultError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if agent.Status() != types.AgentError {
		t.Fatalf("agent status = %q, want error", agent.Status())
	}
}

func TestRunKeepsExplicitErrorResult(t *testing.T) {
	// An executor may report a domain failure through the result without
	// returning a Go error; the runner passes it through and the agent
	// itself still completes normally.
	agent, err := NewAgent("a1", "Soft", "demo", ExecutorFunc(
		func(ctx context.Context, input map[string]any) (*types.Result, error) {
			return &types.Result{Status: types.ResultError, ErrorMessage: "no signal in data"}, nil
		}))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	runner := NewRunner(zerolog.Nop())

	result := runner.Run(context.Background(), agent, map[string]any{"k": 1})
	if result.Status != types.ResultError || result.ErrorMessage != "no signal in data" {
		t.Fatalf("result altered: %+v", result)
	}
	if agent.Status() != types.AgentCompleted {
		t.Fatalf("agent status = %q, want completed", agent.Status())
	}
}

func TestRunAppliesMiddlewareChain(t *testing.T) {
	var order []string
	record := func(name string) middleware.Middleware {
		return func(next middleware.Handler) middleware.Handler {
			return func(ctx context.Context, input map[string]any) (*types.Result, error) {
				order = append(order, name)
				return next(ctx, input)
			}
		}
	}

	agent := testAgent(t, "a1", "Echo", "demo")
	runner := NewRunner(zerolog.Nop(), record("outer"), record("inner"))

	result := runner.Run(context.Background(), agent, map[string]any{"k": "v"})
	if result.Status != types.ResultCompleted {
		t.Fatalf("status = %q", result.Status)
	}
	if fmt.Sprint(order) != "[outer inner]" {
		t.Fatalf("middleware order = %v", order)
	}
}
