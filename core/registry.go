package core

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentq/agentq/types"
)

// Registry owns the set of registered agents keyed by id. All map access
// goes through the mutex; this is one of the two critical sections that
// must stay intact if dispatch is ever parallelized.
type Registry struct {
	agents map[string]*Agent
	mu     sync.RWMutex
	logger zerolog.Logger
}

// RegistryHealth is an aggregate snapshot of the registry.
type RegistryHealth struct {
	Total    int                       `json:"total_agents"`
	ByStatus map[types.AgentStatus]int `json:"agents_by_status"`
	ByKind   map[string]int            `json:"agents_by_kind"`
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		agents: make(map[string]*Agent),
		logger: logger.With().Str("component", "registry").Logger(),
	}
}

// Register inserts an agent, visible to subsequent lookups immediately.
// Fails with types.ErrDuplicateID when the id is already taken.
func (r *Registry) Register(agent *Agent) error {
	if agent == nil {
		return fmt.Errorf("cannot register nil agent")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[agent.ID()]; exists {
		return fmt.Errorf("%w: %s", types.ErrDuplicateID, agent.ID())
	}
	r.agents[agent.ID()] = agent
	r.logger.Info().Str("agent_id", agent.ID()).Str("name", agent.Name()).Msg("registered agent")
	return nil
}

// Unregister removes an agent, reporting whether one was removed.
// Idempotent.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[id]; !exists {
		r.logger.Warn().Str("agent_id", id).Msg("unregister of unknown agent")
		return false
	}
	delete(r.agents, id)
	r.logger.Info().Str("agent_id", id).Msg("unregistered agent")
	return true
}

// Get looks up an agent by id.
func (r *Registry) Get(id string) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[id]
	return agent, ok
}

// ByKind returns snapshots of every agent carrying the given kind tag.
func (r *Registry) ByKind(kind string) []AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []AgentInfo
	for _, agent := range r.agents {
		if agent.Kind() == kind {
			out = append(out, agent.Snapshot())
		}
	}
	return out
}

// ByStatus returns snapshots of every agent in the given lifecycle state.
func (r *Registry) ByStatus(status types.AgentStatus) []AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []AgentInfo
	for _, agent := range r.agents {
		if agent.Status() == status {
			out = append(out, agent.Snapshot())
		}
	}
	return out
}

// All returns snapshots of every registered agent.
func (r *Registry) All() []AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]AgentInfo, 0, len(r.agents))
	for _, agent := range r.agents {
		out = append(out, agent.Snapshot())
	}
	return out
}

// Health counts agents by status and kind.
func (r *Registry) Health() RegistryHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := RegistryHealth{
		Total:    len(r.agents),
		ByStatus: make(map[types.AgentStatus]int),
		ByKind:   make(map[string]int),
	}
	for _, agent := range r.agents {
		health.ByStatus[agent.Status()]++
		health.ByKind[agent.Kind()]++
	}
	return health
}
