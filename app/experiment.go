package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/hive/core/agent"
	"github.com/kilianp07/hive/core/env"
	"github.com/kilianp07/hive/core/registry"
	"github.com/kilianp07/hive/core/runlog"
)

// Experiment is a fully constructed object graph.
type Experiment struct {
	RunID  string
	Name   string
	Env    env.Env
	Agent  agent.Agent
	Logger runlog.Logger
}

// Description is the JSON-friendly summary printed by "hive build".
type Description struct {
	RunID       string            `json:"run_id"`
	Name        string            `json:"name"`
	Env         string            `json:"env"`
	ObsDim      int               `json:"obs_dim"`
	NumActions  int               `json:"num_actions"`
	Agent       string            `json:"agent"`
	AgentID     string            `json:"agent_id"`
	Logger      string            `json:"logger"`
	Resolutions []ResolutionEntry `json:"resolutions,omitempty"`
}

// ResolutionEntry is one construction in a Description.
type ResolutionEntry struct {
	Family   string `json:"family"`
	Variant  string `json:"variant"`
	Prefix   string `json:"prefix"`
	Duration string `json:"duration"`
}

// Describe summarises the experiment and the resolutions that built it.
func (e *Experiment) Describe(trace []registry.Event) Description {
	d := Description{
		RunID:      e.RunID,
		Name:       e.Name,
		Env:        fmt.Sprintf("%T", e.Env),
		ObsDim:     e.Env.ObsDim(),
		NumActions: e.Env.NumActions(),
		Agent:      fmt.Sprintf("%T", e.Agent),
		AgentID:    e.Agent.ID(),
		Logger:     fmt.Sprintf("%T", e.Logger),
	}
	for _, ev := range trace {
		if ev.Err != nil {
			continue
		}
		d.Resolutions = append(d.Resolutions, ResolutionEntry{
			Family:   ev.Family,
			Variant:  ev.Variant,
			Prefix:   ev.Prefix,
			Duration: ev.Duration.Round(time.Microsecond).String(),
		})
	}
	return d
}

// Close releases the environment and the run logger.
func (e *Experiment) Close() error {
	return errors.Join(e.Env.Close(), e.Logger.Close())
}

// Build resolves the environment, the run loggers and the agent. The agent
// fragment receives the environment dimensions and the run logger before it
// is resolved; command-line overrides still take precedence.
func (s *Service) Build(ctx context.Context) (*Experiment, error) {
	e, err := env.Get(ctx, s.reg, s.cfg.Environment, "environment")
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("environment: fragment is required")
	}

	log, err := runlog.Get(ctx, s.reg, loggerFragment(s.cfg.Loggers), "loggers")
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("loggers: %w", err)
	}
	if log == nil {
		log = runlog.Null{}
	}

	frag, err := s.agentFragment(e, log)
	if err != nil {
		_ = errors.Join(e.Close(), log.Close())
		return nil, fmt.Errorf("agent: %w", err)
	}
	a, err := agent.Get(ctx, s.reg, frag, "agent")
	if err == nil && a == nil {
		err = fmt.Errorf("fragment is required")
	}
	if err != nil {
		_ = errors.Join(e.Close(), log.Close())
		return nil, fmt.Errorf("agent: %w", err)
	}

	exp := &Experiment{RunID: uuid.NewString(), Name: s.cfg.Run.Name, Env: e, Agent: a, Logger: log}
	s.log.Infof("built experiment %s (%s): env=%T agent=%s", exp.Name, exp.RunID, e, a.ID())
	return exp, nil
}

// loggerFragment turns the loggers section into a single fragment. A list is
// wrapped in a CompositeLogger.
func loggerFragment(v any) any {
	switch l := v.(type) {
	case nil:
		return nil
	case []any:
		return map[string]any{"name": "CompositeLogger", "kwargs": map[string]any{"logger_list": l}}
	case []map[string]any:
		return map[string]any{"name": "CompositeLogger", "kwargs": map[string]any{"logger_list": l}}
	default:
		return v
	}
}

func (s *Service) agentFragment(e env.Env, log runlog.Logger) (registry.Fragment, error) {
	frag, err := registry.ParseFragment(s.cfg.Agent)
	if err != nil {
		return registry.Fragment{}, err
	}
	ctor, ok := s.reg.Lookup(agent.Family.TypeName(), frag.Name)
	if !ok {
		// Resolve reports the unknown variant with the full context.
		return frag, nil
	}
	kw := frag.Kwargs.Clone()
	if kw == nil {
		kw = registry.Kwargs{}
	}
	inject := func(name string, v any, overwrite bool) {
		if _, declared := ctor.Params.Lookup(name); !declared {
			return
		}
		if _, present := kw[name]; present && !overwrite {
			return
		}
		kw[name] = v
	}
	inject("obs_dim", e.ObsDim(), true)
	inject("act_dim", e.NumActions(), true)
	inject("logger", log, false)
	frag.Kwargs = kw
	return frag, nil
}
