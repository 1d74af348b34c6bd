package agent

import (
	"fmt"
	"math/rand"

	"github.com/kilianp07/hive/core/optimizer"
	"github.com/kilianp07/hive/core/qnet"
	"github.com/kilianp07/hive/core/runlog"
	"github.com/kilianp07/hive/core/schedule"
)

// DQN is an epsilon-greedy value-based agent. Updates follow the
// semi-gradient TD(0) rule on the output layer of its network.
type DQN struct {
	id       string
	net      *qnet.Network
	opt      optimizer.Optimizer
	epsilon  schedule.Schedule
	discount float64
	log      runlog.Logger
	rng      *rand.Rand
	steps    int
}

// DQNConfig groups the resolved collaborators of a DQN agent.
type DQNConfig struct {
	ID           string
	Network      *qnet.Network
	Optimizer    optimizer.Optimizer
	Epsilon      schedule.Schedule
	DiscountRate float64
	Logger       runlog.Logger
	Seed         int64
}

// NewDQN builds the agent. Missing optimizer, schedule and logger fall back
// to SGD(0.01), a constant 0.1 exploration rate and a null logger.
func NewDQN(cfg DQNConfig) (*DQN, error) {
	if cfg.Network == nil {
		return nil, fmt.Errorf("dqn %s: representation_net is required", cfg.ID)
	}
	if cfg.DiscountRate < 0 || cfg.DiscountRate > 1 {
		return nil, fmt.Errorf("dqn %s: discount_rate must be in [0, 1], got %v", cfg.ID, cfg.DiscountRate)
	}
	if cfg.Optimizer == nil {
		cfg.Optimizer = optimizer.NewSGD(0.01, 0, nil)
	}
	if cfg.Epsilon == nil {
		cfg.Epsilon = schedule.NewConstant(0.1)
	}
	if cfg.Logger == nil {
		cfg.Logger = runlog.Null{}
	}
	return &DQN{
		id:       cfg.ID,
		net:      cfg.Network,
		opt:      cfg.Optimizer,
		epsilon:  cfg.Epsilon,
		discount: cfg.DiscountRate,
		log:      cfg.Logger,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (d *DQN) ID() string { return d.id }

// Network returns the value network.
func (d *DQN) Network() *qnet.Network { return d.net }

func (d *DQN) Act(obs []float64) (int, error) {
	eps := d.epsilon.Update()
	if d.rng.Float64() < eps {
		return d.rng.Intn(d.net.OutDim()), nil
	}
	q, err := d.net.Forward(obs)
	if err != nil {
		return 0, err
	}
	return argmax(q), nil
}

func (d *DQN) Update(tr Transition) error {
	if tr.Action < 0 || tr.Action >= d.net.OutDim() {
		return fmt.Errorf("dqn %s: action %d out of range [0, %d)", d.id, tr.Action, d.net.OutDim())
	}
	features, err := d.net.Features(tr.Obs)
	if err != nil {
		return err
	}
	q, err := d.net.Forward(tr.Obs)
	if err != nil {
		return err
	}
	target := tr.Reward
	if !tr.Done {
		next, err := d.net.Forward(tr.NextObs)
		if err != nil {
			return err
		}
		target += d.discount * next[argmax(next)]
	}
	tdErr := q[tr.Action] - target
	grad := d.net.OutputGradient(features, tr.Action, tdErr)
	if err := d.opt.Step(d.net.OutputParams(), grad); err != nil {
		return err
	}
	d.steps++
	return d.log.LogMetrics(map[string]float64{
		"td_error": tdErr,
		"epsilon":  d.epsilon.Value(),
		"lr":       d.opt.LearningRate(),
	}, d.id)
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
