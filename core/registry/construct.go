package registry

import (
	"context"
	"errors"
	"strconv"
)

// nestedError marks an error raised while resolving a sub-object. It reads
// and unwraps exactly like the error it carries.
type nestedError struct{ err error }

func (e *nestedError) Error() string { return e.err.Error() }
func (e *nestedError) Unwrap() error { return e.err }

func markNested(err error) error {
	if isNested(err) {
		return err
	}
	return &nestedError{err: err}
}

func isNested(err error) bool {
	var n *nestedError
	return errors.As(err, &n)
}

// construct replaces every reference parameter present in kw by the instance
// it resolves to. Each nested fragment is resolved under prefix.param, so
// overrides for sibling objects stay apart. Absent parameters stay absent and
// other values pass through untouched.
func (r *Registry) construct(ctx context.Context, params Schema, kw Kwargs, prefix string) (Kwargs, error) {
	for _, p := range params {
		v, ok := kw[p.Name]
		if !ok {
			continue
		}
		switch p.Kind {
		case KindRef:
			obj, err := r.Resolve(ctx, p.Family, v, joinPrefix(prefix, p.Name))
			if err != nil {
				return nil, markNested(err)
			}
			kw[p.Name] = obj
		case KindRefList:
			if isAbsent(v) {
				continue
			}
			items, err := toSlice(v)
			if err != nil {
				return nil, err
			}
			out := make([]any, len(items))
			for i, item := range items {
				obj, err := r.Resolve(ctx, p.Family, item, joinPrefix(prefix, p.Name+"."+strconv.Itoa(i)))
				if err != nil {
					return nil, markNested(err)
				}
				out[i] = obj
			}
			kw[p.Name] = out
		}
	}
	return kw, nil
}
