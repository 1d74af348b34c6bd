// Package schedule provides scalar schedules such as exploration rates or
// learning rates, registered under the "schedule" family.
package schedule

import (
	"context"
	"fmt"

	"github.com/kilianp07/hive/core/registry"
)

// Schedule produces a value that evolves with every Update.
type Schedule interface {
	// Value returns the current value without advancing.
	Value() float64
	// Update advances by one step and returns the new value.
	Update() float64
}

// Family is the "schedule" family.
var Family = registry.NewFamily[Schedule]("schedule")

// Get resolves a schedule fragment.
func Get(ctx context.Context, r *registry.Registry, fragment any, prefix string) (Schedule, error) {
	return Family.Get(ctx, r, fragment, prefix)
}

// Constant always returns the same value.
type Constant struct {
	value float64
}

func NewConstant(value float64) *Constant { return &Constant{value: value} }

func (c *Constant) Value() float64  { return c.value }
func (c *Constant) Update() float64 { return c.value }

// Linear moves from an initial to a final value over a number of steps and
// stays there afterwards.
type Linear struct {
	value float64
	end   float64
	delta float64
}

// NewLinear returns a linear schedule. steps must be positive.
func NewLinear(initValue, endValue float64, steps int) (*Linear, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("linear schedule: steps must be positive, got %d", steps)
	}
	return &Linear{value: initValue, end: endValue, delta: (endValue - initValue) / float64(steps)}, nil
}

func (l *Linear) Value() float64 { return l.value }

func (l *Linear) Update() float64 {
	if l.value == l.end {
		return l.value
	}
	l.value += l.delta
	if (l.delta > 0 && l.value > l.end) || (l.delta < 0 && l.value < l.end) {
		l.value = l.end
	}
	return l.value
}

// Switch returns offValue for the first steps updates and onValue afterwards.
type Switch struct {
	off, on float64
	flip    int
	steps   int
}

func NewSwitch(offValue, onValue float64, steps int) *Switch {
	return &Switch{off: offValue, on: onValue, flip: steps}
}

func (s *Switch) Value() float64 {
	if s.steps < s.flip {
		return s.off
	}
	return s.on
}

func (s *Switch) Update() float64 {
	s.steps++
	return s.Value()
}

// Periodic returns onValue once every period steps and offValue otherwise.
type Periodic struct {
	off, on float64
	period  int
	steps   int
}

// NewPeriodic returns a periodic schedule. period must be positive.
func NewPeriodic(offValue, onValue float64, period int) (*Periodic, error) {
	if period <= 0 {
		return nil, fmt.Errorf("periodic schedule: period must be positive, got %d", period)
	}
	return &Periodic{off: offValue, on: onValue, period: period}, nil
}

func (p *Periodic) Value() float64 {
	if p.steps%p.period == 0 {
		return p.on
	}
	return p.off
}

func (p *Periodic) Update() float64 {
	p.steps++
	return p.Value()
}

// DoublePeriodic alternates offPeriod steps of offValue with onPeriod steps
// of onValue.
type DoublePeriodic struct {
	off, on          float64
	offPeriod, cycle int
	steps            int
}

// NewDoublePeriodic returns a two-phase schedule. Both periods must be positive.
func NewDoublePeriodic(offValue, onValue float64, offPeriod, onPeriod int) (*DoublePeriodic, error) {
	if offPeriod <= 0 || onPeriod <= 0 {
		return nil, fmt.Errorf("double periodic schedule: periods must be positive, got %d and %d", offPeriod, onPeriod)
	}
	return &DoublePeriodic{off: offValue, on: onValue, offPeriod: offPeriod, cycle: offPeriod + onPeriod}, nil
}

func (d *DoublePeriodic) Value() float64 {
	if d.steps%d.cycle < d.offPeriod {
		return d.off
	}
	return d.on
}

func (d *DoublePeriodic) Update() float64 {
	d.steps++
	return d.Value()
}
