package registry

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Kwargs holds the keyword arguments passed to a constructor.
type Kwargs map[string]any

// Clone returns a shallow copy of kw. A nil receiver yields an empty map.
func (kw Kwargs) Clone() Kwargs {
	out := make(Kwargs, len(kw))
	maps.Copy(out, kw)
	return out
}

// Decode fills out using json tags. Keys without a matching field are
// ignored so resolved references can stay in kw.
func (kw Kwargs) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(kw))
}

// Value returns kw[name] as T. Absent and nil values yield the zero value.
func Value[T any](kw Kwargs, name string) (T, error) {
	var zero T
	v, ok := kw[name]
	if !ok || v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("argument %s: expected %T, got %T", name, zero, v)
	}
	return t, nil
}

// Slice returns kw[name] as a []T, converting element by element.
func Slice[T any](kw Kwargs, name string) ([]T, error) {
	v, ok := kw[name]
	if !ok || v == nil {
		return nil, nil
	}
	items, err := toSlice(v)
	if err != nil {
		return nil, fmt.Errorf("argument %s: %w", name, err)
	}
	out := make([]T, 0, len(items))
	for i, it := range items {
		if it == nil {
			var zero T
			out = append(out, zero)
			continue
		}
		t, ok := it.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("argument %s[%d]: expected %T, got %T", name, i, zero, it)
		}
		out = append(out, t)
	}
	return out, nil
}

func toSlice(v any) ([]any, error) {
	if s, ok := v.([]any); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a sequence, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
