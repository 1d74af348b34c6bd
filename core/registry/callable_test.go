package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dims struct{ in, out, hidden int }

var shapes = NewFamily[*Callable]("shape_fn")

func shapeFn(_ context.Context, kw Kwargs) (any, error) {
	var c struct {
		In     int `json:"in_dim"`
		Out    int `json:"out_dim"`
		Hidden int `json:"hidden"`
	}
	if err := kw.Decode(&c); err != nil {
		return nil, err
	}
	return dims{in: c.In, out: c.Out, hidden: c.Hidden}, nil
}

func TestCallable_PartialThenCall(t *testing.T) {
	c := NewCallable("shape", Schema{Int("in_dim"), Int("out_dim"), Int("hidden")}, shapeFn)
	assert.Equal(t, "callable", c.TypeName())

	p := c.Partial(Kwargs{"hidden": 32})
	assert.Empty(t, c.Bound())
	assert.Equal(t, Kwargs{"hidden": 32}, p.Bound())

	d, err := CallAs[dims](context.Background(), p, Kwargs{"in_dim": 4, "out_dim": 2})
	require.NoError(t, err)
	assert.Equal(t, dims{in: 4, out: 2, hidden: 32}, d)

	d, err = CallAs[dims](context.Background(), p, Kwargs{"hidden": 8})
	require.NoError(t, err)
	assert.Equal(t, 8, d.hidden)
}

func TestCallable_RejectsUndeclared(t *testing.T) {
	c := NewCallable("shape", Schema{Int("in_dim")}, shapeFn)
	_, err := c.Call(context.Background(), Kwargs{"depth": 3})
	require.ErrorIs(t, err, ErrUnexpectedArgument)
}

func TestWrapCallable_ResolvesToPartial(t *testing.T) {
	reg := New(WithOverrides([]string{"--net.hidden", "16"}))
	require.NoError(t, reg.Register(shapes, "Shape", WrapCallable("Shape", Schema{Int("in_dim"), Int("out_dim"), Int("hidden")}, shapeFn)))

	fn, err := shapes.Get(context.Background(), reg, map[string]any{"name": "Shape", "kwargs": map[string]any{"hidden": 64}}, "net")
	require.NoError(t, err)
	assert.Equal(t, Kwargs{"hidden": 16}, fn.Bound())

	d, err := CallAs[dims](context.Background(), fn, Kwargs{"in_dim": 3, "out_dim": 5})
	require.NoError(t, err)
	assert.Equal(t, dims{in: 3, out: 5, hidden: 16}, d)

	same, err := shapes.Get(context.Background(), reg, fn, "net")
	require.NoError(t, err)
	assert.Same(t, fn, same)
}

func TestCallableFamily(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(CallableFamily, "shape", WrapCallable("shape", Schema{Int("in_dim")}, shapeFn)))
	fn, err := CallableFamily.Get(context.Background(), reg, Fragment{Name: "shape"}, "")
	require.NoError(t, err)
	_, err = CallAs[string](context.Background(), fn, nil)
	assert.Error(t, err)
}
