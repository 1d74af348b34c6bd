package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/hive/core/registry"
)

func updates(s Schedule, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Update()
	}
	return out
}

func TestLinear(t *testing.T) {
	l, err := NewLinear(1, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, l.Value())
	assert.InDeltaSlice(t, []float64{0.75, 0.5, 0.25, 0, 0, 0}, updates(l, 6), 1e-9)

	up, err := NewLinear(0, 1, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 1, 1}, updates(up, 3), 1e-9)

	_, err = NewLinear(0, 1, 0)
	assert.Error(t, err)
}

func TestSwitch(t *testing.T) {
	s := NewSwitch(0, 1, 2)
	assert.Equal(t, 0.0, s.Value())
	assert.Equal(t, []float64{0, 1, 1}, updates(s, 3))
}

func TestPeriodic(t *testing.T) {
	p, err := NewPeriodic(0, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Value())
	assert.Equal(t, []float64{0, 0, 1, 0, 0, 1}, updates(p, 6))
}

func TestDoublePeriodic(t *testing.T) {
	d, err := NewDoublePeriodic(0, 1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, updates(d, 5))
	_, err = NewDoublePeriodic(0, 1, 0, 1)
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	reg := registry.New(registry.WithOverrides([]string{"--eps.steps", "2"}))
	require.NoError(t, Register(reg))

	names, err := reg.Variants(Family.TypeName())
	require.NoError(t, err)
	assert.Equal(t, []string{"ConstantSchedule", "DoublePeriodicSchedule", "LinearSchedule", "PeriodicSchedule", "SwitchSchedule"}, names)

	s, err := Get(context.Background(), reg, map[string]any{
		"name":   "LinearSchedule",
		"kwargs": map[string]any{"init_value": 1.0, "end_value": 0.0, "steps": 10},
	}, "eps")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s.Update(), 1e-9)

	_, err = Get(context.Background(), reg, map[string]any{
		"name":   "PeriodicSchedule",
		"kwargs": map[string]any{"off_value": 0, "on_value": 1, "period": 0},
	}, "")
	assert.Error(t, err)
}
