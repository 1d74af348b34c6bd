package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/hive/core/agent"
)

// Summary reports what a rollout did.
type Summary struct {
	Steps    int       `json:"steps"`
	Episodes int       `json:"episodes"`
	Returns  []float64 `json:"returns"`
}

// Run interacts with the environment for the configured number of steps, or
// until the configured number of episodes completes. Each finished episode
// logs episode_return and episode_length under the "run" prefix.
func (s *Service) Run(ctx context.Context, exp *Experiment) (*Summary, error) {
	sum := &Summary{}
	obs := exp.Env.Reset()
	var ret float64
	var length int
	for sum.Steps < s.cfg.Run.Steps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		action, err := exp.Agent.Act(obs)
		if err != nil {
			return sum, fmt.Errorf("step %d: act: %w", sum.Steps, err)
		}
		next, reward, done, err := exp.Env.Step(action)
		if err != nil {
			return sum, fmt.Errorf("step %d: env: %w", sum.Steps, err)
		}
		tr := agent.Transition{Obs: obs, Action: action, Reward: reward, NextObs: next, Done: done}
		if err := exp.Agent.Update(tr); err != nil {
			return sum, fmt.Errorf("step %d: update: %w", sum.Steps, err)
		}
		sum.Steps++
		ret += reward
		length++
		obs = next
		if !done {
			continue
		}
		sum.Episodes++
		sum.Returns = append(sum.Returns, ret)
		if err := exp.Logger.LogMetrics(map[string]float64{
			"episode_return": ret,
			"episode_length": float64(length),
		}, "run"); err != nil {
			s.log.Warnf("log episode %d: %v", sum.Episodes, err)
		}
		ret, length = 0, 0
		if n := s.cfg.Run.Episodes; n > 0 && sum.Episodes >= n {
			break
		}
		obs = exp.Env.Reset()
	}
	s.log.Infof("run %s finished: %d steps, %d episodes", exp.RunID, sum.Steps, sum.Episodes)
	return sum, nil
}

// BuildAndRun builds an experiment, runs it and closes it.
func (s *Service) BuildAndRun(ctx context.Context) (*Experiment, *Summary, error) {
	exp, err := s.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	sum, runErr := s.Run(ctx, exp)
	return exp, sum, errors.Join(runErr, exp.Close())
}
