// Package env holds small reference environments registered under the "env"
// family. Adapters to external simulators register their own variants.
package env

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/kilianp07/hive/core/registry"
)

// ErrEpisodeOver is returned by Step once an episode has terminated.
var ErrEpisodeOver = errors.New("episode is over, call Reset")

// Env is a discrete-action environment with vector observations.
type Env interface {
	Reset() []float64
	Step(action int) (obs []float64, reward float64, done bool, err error)
	ObsDim() int
	NumActions() int
	Close() error
}

// Family is the "env" family.
var Family = registry.NewFamily[Env]("env")

// Get resolves an environment fragment.
func Get(ctx context.Context, r *registry.Registry, fragment any, prefix string) (Env, error) {
	return Family.Get(ctx, r, fragment, prefix)
}

// Chain is the n-chain task: action 1 moves right with probability 1-slip,
// action 0 returns to the start for a small reward. Reaching the last state
// pays a large reward.
type Chain struct {
	length   int
	slip     float64
	maxSteps int
	rng      *rand.Rand
	state    int
	steps    int
	done     bool
}

// NewChain returns a chain of length states. length must be at least 2.
func NewChain(length int, slip float64, maxSteps int, seed int64) (*Chain, error) {
	if length < 2 {
		return nil, fmt.Errorf("chain length must be at least 2, got %d", length)
	}
	if slip < 0 || slip > 1 {
		return nil, fmt.Errorf("slip must be in [0, 1], got %v", slip)
	}
	if maxSteps <= 0 {
		return nil, fmt.Errorf("max_steps must be positive, got %d", maxSteps)
	}
	return &Chain{length: length, slip: slip, maxSteps: maxSteps, rng: rand.New(rand.NewSource(seed))}, nil
}

func (c *Chain) ObsDim() int     { return c.length }
func (c *Chain) NumActions() int { return 2 }
func (c *Chain) Close() error    { return nil }

func (c *Chain) Reset() []float64 {
	c.state, c.steps, c.done = 0, 0, false
	return c.obs()
}

func (c *Chain) Step(action int) ([]float64, float64, bool, error) {
	if c.done {
		return nil, 0, true, ErrEpisodeOver
	}
	if action < 0 || action >= c.NumActions() {
		return nil, 0, false, fmt.Errorf("invalid action %d", action)
	}
	if c.rng.Float64() < c.slip {
		action = 1 - action
	}
	c.steps++
	var reward float64
	if action == 0 {
		c.state = 0
		reward = 0.2
	} else if c.state < c.length-1 {
		c.state++
	}
	if c.state == c.length-1 {
		reward = 10
		c.done = true
	}
	if c.steps >= c.maxSteps {
		c.done = true
	}
	return c.obs(), reward, c.done, nil
}

func (c *Chain) obs() []float64 {
	o := make([]float64, c.length)
	o[c.state] = 1
	return o
}

// Bandit is a single-step multi-armed bandit with Gaussian payouts.
type Bandit struct {
	means []float64
	rng   *rand.Rand
	done  bool
}

// NewBandit draws arms means from a standard normal distribution.
func NewBandit(arms int, seed int64) (*Bandit, error) {
	if arms <= 0 {
		return nil, fmt.Errorf("arms must be positive, got %d", arms)
	}
	rng := rand.New(rand.NewSource(seed))
	means := make([]float64, arms)
	for i := range means {
		means[i] = rng.NormFloat64()
	}
	return &Bandit{means: means, rng: rng}, nil
}

func (b *Bandit) ObsDim() int     { return 1 }
func (b *Bandit) NumActions() int { return len(b.means) }
func (b *Bandit) Close() error    { return nil }

// Means returns the expected payout of every arm.
func (b *Bandit) Means() []float64 { return append([]float64(nil), b.means...) }

func (b *Bandit) Reset() []float64 {
	b.done = false
	return []float64{1}
}

func (b *Bandit) Step(action int) ([]float64, float64, bool, error) {
	if b.done {
		return nil, 0, true, ErrEpisodeOver
	}
	if action < 0 || action >= len(b.means) {
		return nil, 0, false, fmt.Errorf("invalid action %d", action)
	}
	b.done = true
	return []float64{1}, b.means[action] + b.rng.NormFloat64(), true, nil
}

// Register adds ChainEnv and BanditEnv to r.
func Register(r *registry.Registry) error {
	if err := Family.Register(r, "ChainEnv",
		registry.Schema{registry.Int("length"), registry.Float("slip"), registry.Int("max_steps"), registry.Int("seed")},
		func(_ context.Context, kw registry.Kwargs) (Env, error) {
			c := struct {
				Length   int     `json:"length"`
				Slip     float64 `json:"slip"`
				MaxSteps int     `json:"max_steps"`
				Seed     int64   `json:"seed"`
			}{Length: 5, Slip: 0.2, MaxSteps: 100}
			if err := kw.Decode(&c); err != nil {
				return nil, err
			}
			return NewChain(c.Length, c.Slip, c.MaxSteps, c.Seed)
		}); err != nil {
		return err
	}
	return Family.Register(r, "BanditEnv",
		registry.Schema{registry.Int("arms"), registry.Int("seed")},
		func(_ context.Context, kw registry.Kwargs) (Env, error) {
			c := struct {
				Arms int   `json:"arms"`
				Seed int64 `json:"seed"`
			}{Arms: 10}
			if err := kw.Decode(&c); err != nil {
				return nil, err
			}
			return NewBandit(c.Arms, c.Seed)
		})
}
