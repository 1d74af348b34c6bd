// Package agent provides agents registered under the "agent" family. Agents
// are the deepest consumers of the registry: their networks, optimizers,
// exploration schedules and loggers are all resolved from nested fragments.
package agent

import (
	"context"
	"math/rand"

	"github.com/kilianp07/hive/core/registry"
)

// Transition is one environment step as seen by the agent.
type Transition struct {
	Obs     []float64
	Action  int
	Reward  float64
	NextObs []float64
	Done    bool
}

// Agent picks actions and learns from transitions.
type Agent interface {
	ID() string
	Act(obs []float64) (int, error)
	Update(tr Transition) error
}

// Family is the "agent" family.
var Family = registry.NewFamily[Agent]("agent")

// Get resolves an agent fragment.
func Get(ctx context.Context, r *registry.Registry, fragment any, prefix string) (Agent, error) {
	return Family.Get(ctx, r, fragment, prefix)
}

// Random acts uniformly at random and never learns.
type Random struct {
	id     string
	actDim int
	rng    *rand.Rand
}

func NewRandom(id string, actDim int, seed int64) *Random {
	return &Random{id: id, actDim: actDim, rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) ID() string { return r.id }

func (r *Random) Act([]float64) (int, error) { return r.rng.Intn(r.actDim), nil }

func (r *Random) Update(Transition) error { return nil }
