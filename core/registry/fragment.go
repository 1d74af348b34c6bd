package registry

import (
	"fmt"
	"reflect"
)

// Fragment selects a variant by name and carries its keyword arguments.
type Fragment struct {
	Name   string `json:"name" yaml:"name"`
	Kwargs Kwargs `json:"kwargs" yaml:"kwargs"`
}

// ParseFragment converts v into a Fragment. Maps must carry both a string
// name and a kwargs mapping; a null kwargs value counts as empty.
func ParseFragment(v any) (Fragment, error) {
	switch f := v.(type) {
	case Fragment:
		return Fragment{Name: f.Name, Kwargs: f.Kwargs.Clone()}, f.validate()
	case *Fragment:
		if f == nil {
			return Fragment{}, fmt.Errorf("%w: nil fragment", ErrMalformedFragment)
		}
		return ParseFragment(*f)
	case Kwargs:
		return fragmentFromMap(f)
	case map[string]any:
		return fragmentFromMap(f)
	case map[any]any:
		m := make(map[string]any, len(f))
		for k, val := range f {
			ks, ok := k.(string)
			if !ok {
				return Fragment{}, fmt.Errorf("%w: non-string key %v", ErrMalformedFragment, k)
			}
			m[ks] = val
		}
		return fragmentFromMap(m)
	default:
		return Fragment{}, fmt.Errorf("%w: expected a {name, kwargs} mapping, got %T", ErrMalformedFragment, v)
	}
}

func fragmentFromMap(m map[string]any) (Fragment, error) {
	rawName, ok := m["name"]
	if !ok {
		return Fragment{}, fmt.Errorf("%w: missing name", ErrMalformedFragment)
	}
	name, ok := rawName.(string)
	if !ok {
		return Fragment{}, fmt.Errorf("%w: name must be a string, got %T", ErrMalformedFragment, rawName)
	}
	rawKwargs, ok := m["kwargs"]
	if !ok {
		return Fragment{}, fmt.Errorf("%w: missing kwargs for %q", ErrMalformedFragment, name)
	}
	frag := Fragment{Name: name}
	switch kw := rawKwargs.(type) {
	case nil:
		frag.Kwargs = Kwargs{}
	case Kwargs:
		frag.Kwargs = kw.Clone()
	case map[string]any:
		frag.Kwargs = Kwargs(kw).Clone()
	case map[any]any:
		frag.Kwargs = make(Kwargs, len(kw))
		for k, val := range kw {
			ks, ok := k.(string)
			if !ok {
				return Fragment{}, fmt.Errorf("%w: non-string kwarg key %v", ErrMalformedFragment, k)
			}
			frag.Kwargs[ks] = val
		}
	default:
		return Fragment{}, fmt.Errorf("%w: kwargs for %q must be a mapping, got %T", ErrMalformedFragment, name, rawKwargs)
	}
	return frag, frag.validate()
}

func (f Fragment) validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: empty name", ErrMalformedFragment)
	}
	return nil
}

// isAbsent reports whether v stands for "no object requested".
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}
