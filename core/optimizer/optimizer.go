// Package optimizer implements first-order parameter updates registered
// under the "optimizer_fn" family. The learning rate of each optimizer may
// itself be driven by a schedule resolved from configuration.
package optimizer

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/hive/core/registry"
	"github.com/kilianp07/hive/core/schedule"
)

// Optimizer updates params in place from their gradients.
type Optimizer interface {
	Step(params, grads []float64) error
	LearningRate() float64
}

// Family is the "optimizer_fn" family.
var Family = registry.NewFamily[Optimizer]("optimizer_fn")

// Get resolves an optimizer fragment.
func Get(ctx context.Context, r *registry.Registry, fragment any, prefix string) (Optimizer, error) {
	return Family.Get(ctx, r, fragment, prefix)
}

type rate struct {
	lr    float64
	sched schedule.Schedule
}

// next returns the learning rate of the coming step.
func (r *rate) next() float64 {
	if r.sched != nil {
		r.lr = r.sched.Update()
	}
	return r.lr
}

func checkShapes(params, grads []float64) error {
	if len(params) != len(grads) {
		return fmt.Errorf("params and grads differ in length: %d != %d", len(params), len(grads))
	}
	return nil
}

// SGD is stochastic gradient descent with optional momentum.
type SGD struct {
	rate
	momentum float64
	velocity []float64
}

// NewSGD returns an SGD optimizer. A non-nil sched overrides lr at every step.
func NewSGD(lr, momentum float64, sched schedule.Schedule) *SGD {
	if sched != nil {
		lr = sched.Value()
	}
	return &SGD{rate: rate{lr: lr, sched: sched}, momentum: momentum}
}

func (s *SGD) LearningRate() float64 { return s.lr }

func (s *SGD) Step(params, grads []float64) error {
	if err := checkShapes(params, grads); err != nil {
		return err
	}
	lr := s.next()
	if s.momentum == 0 {
		floats.AddScaled(params, -lr, grads)
		return nil
	}
	if len(s.velocity) != len(params) {
		s.velocity = make([]float64, len(params))
	}
	floats.Scale(s.momentum, s.velocity)
	floats.AddScaled(s.velocity, -lr, grads)
	floats.Add(params, s.velocity)
	return nil
}

// Adam implements the Adam update with bias correction.
type Adam struct {
	rate
	beta1, beta2, eps float64
	m, v              []float64
	t                 int
}

// NewAdam returns an Adam optimizer. A non-nil sched overrides lr at every step.
func NewAdam(lr, beta1, beta2, eps float64, sched schedule.Schedule) *Adam {
	if sched != nil {
		lr = sched.Value()
	}
	return &Adam{rate: rate{lr: lr, sched: sched}, beta1: beta1, beta2: beta2, eps: eps}
}

func (a *Adam) LearningRate() float64 { return a.lr }

func (a *Adam) Step(params, grads []float64) error {
	if err := checkShapes(params, grads); err != nil {
		return err
	}
	if len(a.m) != len(params) {
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
		a.t = 0
	}
	lr := a.next()
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))
	for i, g := range grads {
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g
		mHat := a.m[i] / c1
		vHat := a.v[i] / c2
		params[i] -= lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
	return nil
}
