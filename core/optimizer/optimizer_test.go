package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/hive/core/registry"
	"github.com/kilianp07/hive/core/schedule"
)

func TestSGD_Step(t *testing.T) {
	s := NewSGD(0.5, 0, nil)
	params := []float64{1, 2}
	require.NoError(t, s.Step(params, []float64{1, -2}))
	assert.InDeltaSlice(t, []float64{0.5, 3}, params, 1e-12)
	assert.Error(t, s.Step(params, []float64{1}))
}

func TestSGD_Momentum(t *testing.T) {
	s := NewSGD(1, 0.5, nil)
	params := []float64{0}
	require.NoError(t, s.Step(params, []float64{1}))
	require.NoError(t, s.Step(params, []float64{1}))
	// v1 = -1, v2 = -0.5 - 1
	assert.InDelta(t, -2.5, params[0], 1e-12)
}

func TestSGD_Schedule(t *testing.T) {
	sched, err := schedule.NewLinear(1, 0, 2)
	require.NoError(t, err)
	s := NewSGD(123, 0, sched)
	assert.Equal(t, 1.0, s.LearningRate())
	params := []float64{0}
	require.NoError(t, s.Step(params, []float64{1}))
	assert.Equal(t, 0.5, s.LearningRate())
	assert.InDelta(t, -0.5, params[0], 1e-12)
}

func TestAdam_FirstStepMovesByLearningRate(t *testing.T) {
	a := NewAdam(0.1, 0.9, 0.999, 1e-8, nil)
	params := []float64{1, 1}
	require.NoError(t, a.Step(params, []float64{3, -0.01}))
	assert.InDeltaSlice(t, []float64{0.9, 1.1}, params, 1e-6)
}

func TestRegister_NestedSchedule(t *testing.T) {
	reg := registry.New(registry.WithOverrides([]string{"--opt.lr_schedule.value", "0.2"}))
	require.NoError(t, schedule.Register(reg))
	require.NoError(t, Register(reg))

	o, err := Get(context.Background(), reg, map[string]any{
		"name": "SGD",
		"kwargs": map[string]any{
			"lr":          0.9,
			"lr_schedule": map[string]any{"name": "ConstantSchedule", "kwargs": map[string]any{"value": 0.1}},
		},
	}, "opt")
	require.NoError(t, err)
	assert.Equal(t, 0.2, o.LearningRate())

	a, err := Get(context.Background(), reg, map[string]any{"name": "Adam", "kwargs": map[string]any{}}, "")
	require.NoError(t, err)
	assert.Equal(t, 0.001, a.LearningRate())
}
