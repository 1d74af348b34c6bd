package optimizer

import (
	"context"

	"github.com/kilianp07/hive/core/registry"
	"github.com/kilianp07/hive/core/schedule"
)

// Register adds SGD and Adam to r.
func Register(r *registry.Registry) error {
	if err := Family.Register(r, "SGD",
		registry.Schema{registry.Float("lr"), registry.Float("momentum"), registry.Ref("lr_schedule", schedule.Family)},
		func(_ context.Context, kw registry.Kwargs) (Optimizer, error) {
			c := struct {
				LR       float64 `json:"lr"`
				Momentum float64 `json:"momentum"`
			}{LR: 0.01}
			if err := kw.Decode(&c); err != nil {
				return nil, err
			}
			sched, err := registry.Value[schedule.Schedule](kw, "lr_schedule")
			if err != nil {
				return nil, err
			}
			return NewSGD(c.LR, c.Momentum, sched), nil
		}); err != nil {
		return err
	}
	return Family.Register(r, "Adam",
		registry.Schema{
			registry.Float("lr"), registry.Float("beta1"), registry.Float("beta2"), registry.Float("eps"),
			registry.Ref("lr_schedule", schedule.Family),
		},
		func(_ context.Context, kw registry.Kwargs) (Optimizer, error) {
			c := struct {
				LR    float64 `json:"lr"`
				Beta1 float64 `json:"beta1"`
				Beta2 float64 `json:"beta2"`
				Eps   float64 `json:"eps"`
			}{LR: 0.001, Beta1: 0.9, Beta2: 0.999, Eps: 1e-8}
			if err := kw.Decode(&c); err != nil {
				return nil, err
			}
			sched, err := registry.Value[schedule.Schedule](kw, "lr_schedule")
			if err != nil {
				return nil, err
			}
			return NewAdam(c.LR, c.Beta1, c.Beta2, c.Eps, sched), nil
		})
}
