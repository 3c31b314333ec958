// Package agent defines the capability the scheduler drives every cycle.
// Concrete agents (banks, markets, factories, people) live outside the
// scheduler and call back into the bank and ledger services.
package agent

import (
	"context"
	"sort"
	"sync"
)

type Kind string

const (
	KindMarket     Kind = "market"
	KindFactory    Kind = "factory"
	KindPerson     Kind = "person"
	KindBank       Kind = "bank"
	KindGovernment Kind = "government"
)

// Phases is the fixed order populations are evaluated in within one cycle.
var Phases = []Kind{KindMarket, KindFactory, KindPerson, KindBank}

type Agent interface {
	Name() string
	Kind() Kind
	Evaluate(ctx context.Context, cycle int64) error
	// RecordStats runs after the cycle counter advanced; cycle is the new value.
	RecordStats(ctx context.Context, cycle int64) error
	ResetInternals(ctx context.Context) error
}

// Base carries the fields every agent shares. Embed it and override what
// the agent needs.
type Base struct {
	AgentName string
	AgentKind Kind
	WorldID   uint64
}

func (b *Base) Name() string { return b.AgentName }
func (b *Base) Kind() Kind { return b.AgentKind }
func (b *Base) RecordStats(context.Context, int64) error { return nil }
func (b *Base) ResetInternals(context.Context) error { return nil }

// Populations resolves the agents of one kind living in a world.
type Populations interface {
	Population(worldID uint64, kind Kind) []Agent
}

// Registry is an in-memory Populations keyed by world.
type Registry struct {
	mu     sync.RWMutex
	worlds map[uint64]map[Kind][]Agent
}

func NewRegistry() *Registry {
	return &Registry{worlds: make(map[uint64]map[Kind][]Agent)}
}

func (r *Registry) Register(worldID uint64, agents ...Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pop, ok := r.worlds[worldID]
	if !ok {
		pop = make(map[Kind][]Agent)
		r.worlds[worldID] = pop
	}
	for _, a := range agents {
		pop[a.Kind()] = append(pop[a.Kind()], a)
	}
}

// Population returns a copy so callers may shuffle it freely.
func (r *Registry) Population(worldID uint64, kind Kind) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.worlds[worldID][kind]
	return append([]Agent(nil), src...)
}

func (r *Registry) Worlds() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uint64, 0, len(r.worlds))
	for id := range r.worlds {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
