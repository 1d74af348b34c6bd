// Package registry builds object graphs from declarative configuration.
//
// Components are grouped in families (for example "schedule" or
// "function_approximator"). Each family holds named variants, and every
// variant is a Constructor that declares its parameters up front. A
// configuration fragment of the shape
//
//	{name: LinearSchedule, kwargs: {init_value: 1.0, end_value: 0.1, steps: 1000}}
//
// selects a variant and supplies its keyword arguments. Command-line style
// overrides such as --agent.epsilon_schedule.steps 500 take precedence over
// the fragment, scoped by the dotted prefix of the fragment in the graph.
// Parameters declared as references to another family are resolved
// recursively before the outer constructor runs.
//
// Example usage:
//
//	var Schedules = registry.NewFamily[Schedule]("schedule")
//
//	reg := registry.New(registry.WithOverrides(os.Args[1:]))
//	_ = Schedules.Register(reg, "ConstantSchedule",
//	    registry.Schema{registry.Float("value")},
//	    func(_ context.Context, kw registry.Kwargs) (Schedule, error) {
//	        var c struct{ Value float64 `json:"value"` }
//	        if err := kw.Decode(&c); err != nil {
//	            return nil, err
//	        }
//	        return constant(c.Value), nil
//	    })
//	s, err := Schedules.Get(ctx, reg, fragment, "agent.epsilon_schedule")
package registry
