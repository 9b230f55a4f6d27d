package core

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentq/agentq/types"
)

func testAgent(t *testing.T, id, name, kind string) *Agent {
	t.Helper()
	agent, err := NewAgent(id, name, kind, ExecutorFunc(
		func(ctx context.Context, input map[string]any) (*types.Result, error) {
			return &types.Result{Output: input}, nil
		}))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	return agent
}

func TestRegisterDuplicateID(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	if err := reg.Register(testAgent(t, "a1", "First", "stats")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	err := reg.Register(testAgent(t, "a1", "Second", "stats"))
	if !errors.Is(err, types.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if got := reg.Health().Total; got != 1 {
		t.Fatalf("registry size changed on duplicate: %d", got)
	}
	// Original registration untouched.
	agent, ok := reg.Get("a1")
	if !ok || agent.Name() != "First" {
		t.Fatalf("original agent replaced: %+v", agent)
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	if err := reg.Register(testAgent(t, "a1", "First", "stats")); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !reg.Unregister("a1") {
		t.Fatal("expected removal on first unregister")
	}
	if reg.Unregister("a1") {
		t.Fatal("expected false on second unregister")
	}
	if _, ok := reg.Get("a1"); ok {
		t.Fatal("agent still resolvable after unregister")
	}
}

func TestRegistryScans(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	for _, a := range []*Agent{
		testAgent(t, "c1", "Correlate", "correlation"),
		testAgent(t, "c2", "CorrelateV2", "correlation"),
		testAgent(t, "f1", "Forecast", "forecasting"),
	} {
		if err := reg.Register(a); err != nil {
			t.Fatalf("register %s: %v", a.ID(), err)
		}
	}

	if got := len(reg.ByKind("correlation")); got != 2 {
		t.Fatalf("ByKind(correlation) = %d, want 2", got)
	}
	if got := len(reg.ByKind("anomaly")); got != 0 {
		t.Fatalf("ByKind(anomaly) = %d, want 0", got)
	}
	if got := len(reg.ByStatus(types.AgentIdle)); got != 3 {
		t.Fatalf("ByStatus(idle) = %d, want 3", got)
	}
	if got := len(reg.ByStatus(types.AgentError)); got != 0 {
		t.Fatalf("ByStatus(error) = %d, want 0", got)
	}
}

func TestRegistryHealth(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	if err := reg.Register(testAgent(t, "c1", "Correlate", "correlation")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(testAgent(t, "f1", "Forecast", "forecasting")); err != nil {
		t.Fatalf("register: %v", err)
	}

	health := reg.Health()
	if health.Total != 2 {
		t.Fatalf("total = %d, want 2", health.Total)
	}
	if health.ByStatus[types.AgentIdle] != 2 {
		t.Fatalf("idle count = %d, want 2", health.ByStatus[types.AgentIdle])
	}
	if health.ByKind["correlation"] != 1 || health.ByKind["forecasting"] != 1 {
		t.Fatalf("kind counts = %v", health.ByKind)
	}
}
