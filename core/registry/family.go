package registry

import (
	"context"
	"fmt"
)

// Registrable marks a family of interchangeable implementations. TypeName is
// the stable identifier of the family and the only requirement to take part
// in a Registry.
type Registrable interface {
	TypeName() string
}

// owner is implemented by markers that can recognise already built
// instances of their family.
type owner interface {
	Owns(v any) bool
}

// Family is a typed family marker. Instances of the family are values of T,
// usually an interface implemented by every variant.
type Family[T any] struct {
	name string
}

// NewFamily declares a family named name whose instances are of type T.
func NewFamily[T any](name string) Family[T] {
	return Family[T]{name: name}
}

// TypeName returns the family name.
func (f Family[T]) TypeName() string { return f.name }

// Owns reports whether v is already an instance of the family.
func (f Family[T]) Owns(v any) bool {
	_, ok := v.(T)
	return ok
}

// Register adds a typed variant to the family.
func (f Family[T]) Register(r *Registry, name string, params Schema, fn func(context.Context, Kwargs) (T, error)) error {
	return r.Register(f, name, Func(params, fn))
}

// Get resolves fragment into an instance of the family. A nil fragment
// yields the zero value of T and no error.
func (f Family[T]) Get(ctx context.Context, r *Registry, fragment any, prefix string) (T, error) {
	var zero T
	v, err := r.Resolve(ctx, f.name, fragment, prefix)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s: constructor returned %T", f.name, v)
	}
	return t, nil
}
