// Package runlog records scalar metrics produced during a run. Loggers are
// registered under the "logger" family; backends talking to external
// services live in infra/runlog.
package runlog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/hive/core/registry"
)

// Logger records named scalars. prefix scopes the name, usually with the id
// of the component emitting it.
type Logger interface {
	LogScalar(name string, value float64, prefix string) error
	LogMetrics(metrics map[string]float64, prefix string) error
	Close() error
}

// Family is the "logger" family.
var Family = registry.NewFamily[Logger]("logger")

// Get resolves a logger fragment.
func Get(ctx context.Context, r *registry.Registry, fragment any, prefix string) (Logger, error) {
	return Family.Get(ctx, r, fragment, prefix)
}

// Record is one logged scalar.
type Record struct {
	Name   string    `json:"name"`
	Prefix string    `json:"prefix"`
	Value  float64   `json:"value"`
	Time   time.Time `json:"time"`
}

// Key joins prefix and name with a slash.
func (r Record) Key() string {
	if r.Prefix == "" {
		return r.Name
	}
	return r.Prefix + "/" + r.Name
}

// LogEach calls logScalar for every metric in name order.
func LogEach(metrics map[string]float64, prefix string, logScalar func(string, float64, string) error) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	var errs []error
	for _, name := range names {
		if err := logScalar(name, metrics[name], prefix); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Null discards everything.
type Null struct{}

func (Null) LogScalar(string, float64, string) error     { return nil }
func (Null) LogMetrics(map[string]float64, string) error { return nil }
func (Null) Close() error                                { return nil }

// Chomp keeps every record in memory.
type Chomp struct {
	mu      sync.Mutex
	records []Record
	now     func() time.Time
}

func NewChomp() *Chomp { return &Chomp{now: time.Now} }

func (c *Chomp) LogScalar(name string, value float64, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, Record{Name: name, Prefix: prefix, Value: value, Time: c.now()})
	return nil
}

func (c *Chomp) LogMetrics(metrics map[string]float64, prefix string) error {
	return LogEach(metrics, prefix, c.LogScalar)
}

// Records returns a copy of everything logged so far.
func (c *Chomp) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Record(nil), c.records...)
}

// Series returns the values logged under prefix/name in order.
func (c *Chomp) Series(name, prefix string) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []float64
	for _, r := range c.records {
		if r.Name == name && r.Prefix == prefix {
			out = append(out, r.Value)
		}
	}
	return out
}

func (c *Chomp) Close() error { return nil }

// Composite forwards to several loggers and joins their errors.
type Composite struct {
	loggers []Logger
}

func NewComposite(loggers ...Logger) *Composite {
	out := make([]Logger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	return &Composite{loggers: out}
}

func (c *Composite) LogScalar(name string, value float64, prefix string) error {
	var errs []error
	for _, l := range c.loggers {
		errs = append(errs, l.LogScalar(name, value, prefix))
	}
	return errors.Join(errs...)
}

func (c *Composite) LogMetrics(metrics map[string]float64, prefix string) error {
	var errs []error
	for _, l := range c.loggers {
		errs = append(errs, l.LogMetrics(metrics, prefix))
	}
	return errors.Join(errs...)
}

func (c *Composite) Close() error {
	var errs []error
	for _, l := range c.loggers {
		errs = append(errs, l.Close())
	}
	return errors.Join(errs...)
}

// Loggers returns the wrapped loggers.
func (c *Composite) Loggers() []Logger { return append([]Logger(nil), c.loggers...) }

// Register adds NullLogger, ChompLogger and CompositeLogger to r.
func Register(r *registry.Registry) error {
	if err := Family.Register(r, "NullLogger", nil, func(context.Context, registry.Kwargs) (Logger, error) {
		return Null{}, nil
	}); err != nil {
		return err
	}
	if err := Family.Register(r, "ChompLogger", nil, func(context.Context, registry.Kwargs) (Logger, error) {
		return NewChomp(), nil
	}); err != nil {
		return err
	}
	return Family.Register(r, "CompositeLogger", registry.Schema{registry.RefList("logger_list", Family)},
		func(_ context.Context, kw registry.Kwargs) (Logger, error) {
			loggers, err := registry.Slice[Logger](kw, "logger_list")
			if err != nil {
				return nil, err
			}
			return NewComposite(loggers...), nil
		})
}
