package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/hive/core/logger"
)

// Constructor builds a variant from resolved keyword arguments. Params is
// the complete list of arguments Build accepts.
type Constructor struct {
	Params Schema
	Build  func(ctx context.Context, kw Kwargs) (any, error)
}

// Func adapts a typed constructor function.
func Func[T any](params Schema, fn func(context.Context, Kwargs) (T, error)) Constructor {
	return Constructor{
		Params: params,
		Build: func(ctx context.Context, kw Kwargs) (any, error) {
			v, err := fn(ctx, kw)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Event describes one construction performed by the registry. Nested is set
// when Err was raised by a sub-object; the failing sub-object reports its own
// event with Nested unset.
type Event struct {
	Family   string
	Variant  string
	Prefix   string
	Duration time.Duration
	Err      error
	Nested   bool
}

// Failed reports whether the construction described by ev failed on its own
// rather than because of a sub-object.
func (ev Event) Failed() bool { return ev.Err != nil && !ev.Nested }

type table struct {
	marker   Registrable
	variants map[string]Constructor
}

// Registry maps family names to their variants. Registration is expected to
// complete before the first Resolve.
type Registry struct {
	mu        sync.RWMutex
	families  map[string]*table
	overrides *Overrides
	strict    bool
	log       logger.Logger
	observers []func(Event)
}

// Option configures a Registry.
type Option func(*Registry)

// WithOverrides sets the command-line style overrides applied on resolution.
func WithOverrides(args []string) Option {
	return func(r *Registry) { r.overrides = NewOverrides(args) }
}

// WithLogger sets the logger used for registration and resolution messages.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithStrictRegistration makes duplicate variant names an error instead of
// replacing the previous constructor.
func WithStrictRegistration() Option {
	return func(r *Registry) { r.strict = true }
}

// WithObserver adds a callback invoked after every construction attempt.
func WithObserver(fn func(Event)) Option {
	return func(r *Registry) {
		if fn != nil {
			r.observers = append(r.observers, fn)
		}
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{families: make(map[string]*table), log: logger.Nop{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores c as variant name of family f. The first registration of a
// family creates its table. Re-registering a name replaces the previous
// constructor unless the registry is strict.
func (r *Registry) Register(f Registrable, name string, c Constructor) error {
	if f == nil {
		return fmt.Errorf("register %s: nil family", name)
	}
	family := f.TypeName()
	if family == "" {
		return fmt.Errorf("register %s: empty family name", name)
	}
	if name == "" {
		return fmt.Errorf("register %s: empty variant name", family)
	}
	if c.Build == nil {
		return fmt.Errorf("register %s/%s: nil constructor", family, name)
	}
	if err := validateSchema(c.Params); err != nil {
		return fmt.Errorf("register %s/%s: %w", family, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.families[family]
	if !ok {
		t = &table{marker: f, variants: make(map[string]Constructor)}
		r.families[family] = t
		r.log.Debugf("registered family %s", family)
	} else if reflect.TypeOf(t.marker) != reflect.TypeOf(f) {
		return fmt.Errorf("%w: %s is %T, not %T", ErrFamilyConflict, family, t.marker, f)
	}
	if _, dup := t.variants[name]; dup {
		if r.strict {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateVariant, family, name)
		}
		r.log.Warnf("variant %s/%s registered twice, keeping the latest", family, name)
	}
	t.variants[name] = c
	return nil
}

// RegisterAll registers every constructor in variants under family f.
func (r *Registry) RegisterAll(f Registrable, variants map[string]Constructor) error {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.Register(f, name, variants[name]); err != nil {
			return err
		}
	}
	return nil
}

// Families lists the registered family names in order.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.families))
	for name := range r.families {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Variants lists the variant names of family in order.
func (r *Registry) Variants(family string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.families[family]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, family)
	}
	out := make([]string, 0, len(t.variants))
	for name := range t.variants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Lookup returns the constructor registered as family/variant.
func (r *Registry) Lookup(family, variant string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.families[family]
	if !ok {
		return Constructor{}, false
	}
	c, ok := t.variants[variant]
	return c, ok
}

// Resolve turns fragment into an instance of family. A nil fragment yields
// nil, and an instance the family already owns is returned unchanged.
// Otherwise the fragment's variant is looked up, overrides scoped by prefix
// are merged over its kwargs, nested references are resolved and the
// constructor is invoked.
func (r *Registry) Resolve(ctx context.Context, family string, fragment any, prefix string) (any, error) {
	r.mu.RLock()
	t, ok := r.families[family]
	r.mu.RUnlock()
	if !ok {
		err := fmt.Errorf("%w: %s at %s", ErrUnknownFamily, family, describePrefix(prefix))
		r.notify(Event{Family: family, Prefix: prefix, Err: err})
		return nil, err
	}
	if isAbsent(fragment) {
		return nil, nil
	}
	if o, ok := t.marker.(owner); ok && o.Owns(fragment) {
		return fragment, nil
	}

	frag, err := ParseFragment(fragment)
	if err != nil {
		err = fmt.Errorf("%s at %s: %w", family, describePrefix(prefix), err)
		r.notify(Event{Family: family, Prefix: prefix, Err: err})
		return nil, err
	}
	r.mu.RLock()
	ctor, ok := t.variants[frag.Name]
	r.mu.RUnlock()
	if !ok {
		err := fmt.Errorf("%w %q in family %s at %s", ErrUnknownVariant, frag.Name, family, describePrefix(prefix))
		r.notify(Event{Family: family, Variant: frag.Name, Prefix: prefix, Err: err})
		return nil, err
	}

	start := time.Now()
	v, err := r.build(ctx, ctor, frag, prefix)
	r.notify(Event{Family: family, Variant: frag.Name, Prefix: prefix, Duration: time.Since(start), Err: err, Nested: isNested(err)})
	if err != nil {
		return nil, err
	}
	r.log.Debugw("resolved", map[string]any{"family": family, "variant": frag.Name, "prefix": prefix})
	return v, nil
}

func (r *Registry) build(ctx context.Context, ctor Constructor, frag Fragment, prefix string) (any, error) {
	kw := frag.Kwargs
	parsed, err := r.overrides.Parse(ctor.Params, prefix)
	if err != nil {
		return nil, err
	}
	for k, v := range parsed {
		kw[k] = v
	}
	if err := checkDeclared(ctor.Params, kw); err != nil {
		return nil, fmt.Errorf("%s at %s: %w", frag.Name, describePrefix(prefix), err)
	}
	kw, err = r.construct(ctx, ctor.Params, kw, prefix)
	if err != nil {
		return nil, err
	}
	v, err := ctor.Build(ctx, kw)
	if err != nil {
		return nil, fmt.Errorf("build %s at %s: %w", frag.Name, describePrefix(prefix), err)
	}
	return v, nil
}

func (r *Registry) notify(ev Event) {
	for _, fn := range r.observers {
		fn(ev)
	}
}

func validateSchema(params Schema) error {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if p.Name == "" {
			return fmt.Errorf("parameter with empty name")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("parameter %s declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
		if (p.Kind == KindRef || p.Kind == KindRefList) && p.Family == "" {
			return fmt.Errorf("parameter %s references no family", p.Name)
		}
	}
	return nil
}

func checkDeclared(params Schema, kw Kwargs) error {
	for k := range kw {
		if _, ok := params.Lookup(k); !ok {
			return fmt.Errorf("%w %s", ErrUnexpectedArgument, k)
		}
	}
	return nil
}

func describePrefix(prefix string) string {
	if prefix == "" {
		return "<root>"
	}
	return prefix
}
