package qnet

import (
	"context"
	"fmt"

	"github.com/kilianp07/hive/core/registry"
)

// Family is the "function_approximator" family. Its instances are partially
// applied callables producing a *Network once in_dim and out_dim are known.
var Family = registry.NewFamily[*registry.Callable]("function_approximator")

// Get resolves a function approximator fragment.
func Get(ctx context.Context, r *registry.Registry, fragment any, prefix string) (*registry.Callable, error) {
	return Family.Get(ctx, r, fragment, prefix)
}

// Build completes fn with the network dimensions.
func Build(ctx context.Context, fn *registry.Callable, inDim, outDim int) (*Network, error) {
	return registry.CallAs[*Network](ctx, fn, registry.Kwargs{"in_dim": inDim, "out_dim": outDim})
}

type networkConfig struct {
	InDim       int    `json:"in_dim"`
	OutDim      int    `json:"out_dim"`
	HiddenUnits []int  `json:"hidden_units"`
	Activation  string `json:"activation"`
	Seed        int64  `json:"seed"`
}

func mlp(_ context.Context, kw registry.Kwargs) (any, error) {
	c := networkConfig{HiddenUnits: []int{64, 64}}
	if err := kw.Decode(&c); err != nil {
		return nil, fmt.Errorf("MLPNetwork: %w", err)
	}
	act, err := LookupActivation(c.Activation)
	if err != nil {
		return nil, err
	}
	return NewNetwork(c.InDim, c.OutDim, c.HiddenUnits, act, c.Seed)
}

func linear(_ context.Context, kw registry.Kwargs) (any, error) {
	var c networkConfig
	if err := kw.Decode(&c); err != nil {
		return nil, fmt.Errorf("LinearNetwork: %w", err)
	}
	return NewNetwork(c.InDim, c.OutDim, nil, nil, c.Seed)
}

// Register adds MLPNetwork and LinearNetwork to r.
func Register(r *registry.Registry) error {
	return r.RegisterAll(Family, map[string]registry.Constructor{
		"MLPNetwork": registry.WrapCallable("MLPNetwork", registry.Schema{
			registry.Int("in_dim"), registry.Int("out_dim"), registry.Structured("hidden_units"),
			registry.String("activation"), registry.Int("seed"),
		}, mlp),
		"LinearNetwork": registry.WrapCallable("LinearNetwork", registry.Schema{
			registry.Int("in_dim"), registry.Int("out_dim"), registry.Int("seed"),
		}, linear),
	})
}
