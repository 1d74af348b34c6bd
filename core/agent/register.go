package agent

import (
	"context"
	"fmt"

	"github.com/kilianp07/hive/core/optimizer"
	"github.com/kilianp07/hive/core/qnet"
	"github.com/kilianp07/hive/core/registry"
	"github.com/kilianp07/hive/core/runlog"
	"github.com/kilianp07/hive/core/schedule"
)

// Register adds DQNAgent and RandomAgent to r.
func Register(r *registry.Registry) error {
	if err := Family.Register(r, "DQNAgent", registry.Schema{
		registry.Int("obs_dim"),
		registry.Int("act_dim"),
		registry.Ref("representation_net", qnet.Family),
		registry.Ref("optimizer_fn", optimizer.Family),
		registry.Ref("epsilon_schedule", schedule.Family),
		registry.Ref("logger", runlog.Family),
		registry.Float("discount_rate"),
		registry.Int("seed"),
		registry.String("id"),
	}, newDQN); err != nil {
		return err
	}
	return Family.Register(r, "RandomAgent",
		registry.Schema{registry.Int("obs_dim"), registry.Int("act_dim"), registry.Int("seed"), registry.String("id")},
		func(_ context.Context, kw registry.Kwargs) (Agent, error) {
			c := struct {
				ActDim int    `json:"act_dim"`
				Seed   int64  `json:"seed"`
				ID     string `json:"id"`
			}{ID: "random"}
			if err := kw.Decode(&c); err != nil {
				return nil, err
			}
			if c.ActDim <= 0 {
				return nil, fmt.Errorf("random agent: act_dim must be positive, got %d", c.ActDim)
			}
			return NewRandom(c.ID, c.ActDim, c.Seed), nil
		})
}

func newDQN(ctx context.Context, kw registry.Kwargs) (Agent, error) {
	c := struct {
		ObsDim       int     `json:"obs_dim"`
		ActDim       int     `json:"act_dim"`
		DiscountRate float64 `json:"discount_rate"`
		Seed         int64   `json:"seed"`
		ID           string  `json:"id"`
	}{DiscountRate: 0.99, ID: "agent"}
	if err := kw.Decode(&c); err != nil {
		return nil, err
	}
	netFn, err := registry.Value[*registry.Callable](kw, "representation_net")
	if err != nil {
		return nil, err
	}
	if netFn == nil {
		return nil, fmt.Errorf("dqn %s: representation_net is required", c.ID)
	}
	net, err := qnet.Build(ctx, netFn, c.ObsDim, c.ActDim)
	if err != nil {
		return nil, fmt.Errorf("dqn %s: %w", c.ID, err)
	}
	opt, err := registry.Value[optimizer.Optimizer](kw, "optimizer_fn")
	if err != nil {
		return nil, err
	}
	eps, err := registry.Value[schedule.Schedule](kw, "epsilon_schedule")
	if err != nil {
		return nil, err
	}
	log, err := registry.Value[runlog.Logger](kw, "logger")
	if err != nil {
		return nil, err
	}
	return NewDQN(DQNConfig{
		ID:           c.ID,
		Network:      net,
		Optimizer:    opt,
		Epsilon:      eps,
		DiscountRate: c.DiscountRate,
		Logger:       log,
		Seed:         c.Seed,
	})
}
