package registry

import (
	"context"
	"fmt"
)

// CallableFamily groups free-standing parametrised functions.
var CallableFamily = NewFamily[*Callable]("callable")

// Callable wraps a function so it can be applied in several steps. Partial
// captures arguments and returns a new Callable; Call supplies the rest and
// invokes the function.
type Callable struct {
	name   string
	params Schema
	fn     func(context.Context, Kwargs) (any, error)
	bound  Kwargs
}

// NewCallable wraps fn, declaring its parameters.
func NewCallable(name string, params Schema, fn func(context.Context, Kwargs) (any, error)) *Callable {
	return &Callable{name: name, params: params, fn: fn, bound: Kwargs{}}
}

// TypeName is "callable" for every wrapped function.
func (c *Callable) TypeName() string { return CallableFamily.TypeName() }

// Name returns the name of the wrapped function.
func (c *Callable) Name() string { return c.name }

// Params returns the declared parameters of the wrapped function.
func (c *Callable) Params() Schema { return c.params }

// Bound returns a copy of the arguments captured so far.
func (c *Callable) Bound() Kwargs { return c.bound.Clone() }

// Partial returns a Callable with kw captured on top of the already bound
// arguments. c is left unchanged.
func (c *Callable) Partial(kw Kwargs) *Callable {
	bound := c.bound.Clone()
	for k, v := range kw {
		bound[k] = v
	}
	return &Callable{name: c.name, params: c.params, fn: c.fn, bound: bound}
}

// Call invokes the function with the bound arguments overlaid by kw.
func (c *Callable) Call(ctx context.Context, kw Kwargs) (any, error) {
	args := c.bound.Clone()
	for k, v := range kw {
		args[k] = v
	}
	if err := checkDeclared(c.params, args); err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	return c.fn(ctx, args)
}

// CallAs invokes c and asserts the result to T.
func CallAs[T any](ctx context.Context, c *Callable, kw Kwargs) (T, error) {
	var zero T
	if c == nil {
		return zero, fmt.Errorf("nil callable")
	}
	v, err := c.Call(ctx, kw)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s: returned %T, want %T", c.name, v, zero)
	}
	return t, nil
}

// WrapCallable returns a Constructor whose product is fn partially applied
// to the resolved kwargs. The remaining arguments are supplied later through
// Call, typically by the component that owns the result.
func WrapCallable(name string, params Schema, fn func(context.Context, Kwargs) (any, error)) Constructor {
	base := NewCallable(name, params, fn)
	return Constructor{
		Params: params,
		Build: func(_ context.Context, kw Kwargs) (any, error) {
			return base.Partial(kw), nil
		},
	}
}
