package schedule

import (
	"context"

	"github.com/kilianp07/hive/core/registry"
)

// Register adds the built-in schedules to r.
func Register(r *registry.Registry) error {
	return r.RegisterAll(Family, map[string]registry.Constructor{
		"ConstantSchedule": registry.Func(registry.Schema{registry.Float("value")},
			func(_ context.Context, kw registry.Kwargs) (Schedule, error) {
				var c struct {
					Value float64 `json:"value"`
				}
				if err := kw.Decode(&c); err != nil {
					return nil, err
				}
				return NewConstant(c.Value), nil
			}),
		"LinearSchedule": registry.Func(registry.Schema{registry.Float("init_value"), registry.Float("end_value"), registry.Int("steps")},
			func(_ context.Context, kw registry.Kwargs) (Schedule, error) {
				var c struct {
					Init  float64 `json:"init_value"`
					End   float64 `json:"end_value"`
					Steps int     `json:"steps"`
				}
				if err := kw.Decode(&c); err != nil {
					return nil, err
				}
				return NewLinear(c.Init, c.End, c.Steps)
			}),
		"SwitchSchedule": registry.Func(registry.Schema{registry.Float("off_value"), registry.Float("on_value"), registry.Int("steps")},
			func(_ context.Context, kw registry.Kwargs) (Schedule, error) {
				var c struct {
					Off   float64 `json:"off_value"`
					On    float64 `json:"on_value"`
					Steps int     `json:"steps"`
				}
				if err := kw.Decode(&c); err != nil {
					return nil, err
				}
				return NewSwitch(c.Off, c.On, c.Steps), nil
			}),
		"PeriodicSchedule": registry.Func(registry.Schema{registry.Float("off_value"), registry.Float("on_value"), registry.Int("period")},
			func(_ context.Context, kw registry.Kwargs) (Schedule, error) {
				var c struct {
					Off    float64 `json:"off_value"`
					On     float64 `json:"on_value"`
					Period int     `json:"period"`
				}
				if err := kw.Decode(&c); err != nil {
					return nil, err
				}
				return NewPeriodic(c.Off, c.On, c.Period)
			}),
		"DoublePeriodicSchedule": registry.Func(registry.Schema{
			registry.Float("off_value"), registry.Float("on_value"), registry.Int("off_period"), registry.Int("on_period"),
		}, func(_ context.Context, kw registry.Kwargs) (Schedule, error) {
			var c struct {
				Off       float64 `json:"off_value"`
				On        float64 `json:"on_value"`
				OffPeriod int     `json:"off_period"`
				OnPeriod  int     `json:"on_period"`
			}
			if err := kw.Decode(&c); err != nil {
				return nil, err
			}
			return NewDoublePeriodic(c.Off, c.On, c.OffPeriod, c.OnPeriod)
		}),
	})
}
