// Package metrics defines recorders observing registry activity. Every
// construction the registry attempts is reported as a registry.Event; the
// recorder turns it into counters and latency observations.
package metrics

import (
	"errors"

	"github.com/kilianp07/hive/core/registry"
)

// Recorder records registry activity.
type Recorder interface {
	RecordResolution(ev registry.Event) error
	RecordVariants(family string, n int) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordResolution(registry.Event) error { return nil }
func (NopRecorder) RecordVariants(string, int) error      { return nil }

// MultiRecorder fans out to several recorders, returning the first error.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder drops nil entries.
func NewMultiRecorder(recs ...Recorder) *MultiRecorder {
	m := &MultiRecorder{}
	for _, r := range recs {
		if r != nil {
			m.Recorders = append(m.Recorders, r)
		}
	}
	return m
}

func (m *MultiRecorder) RecordResolution(ev registry.Event) error {
	for _, r := range m.Recorders {
		if err := r.RecordResolution(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiRecorder) RecordVariants(family string, n int) error {
	for _, r := range m.Recorders {
		if err := r.RecordVariants(family, n); err != nil {
			return err
		}
	}
	return nil
}

// EventOutcome labels ev. A construction that failed only because one of its
// sub-objects failed is "nested_error"; the sub-object carries the cause.
func EventOutcome(ev registry.Event) string {
	if ev.Err != nil && ev.Nested {
		return "nested_error"
	}
	return Outcome(ev.Err)
}

// Outcome classifies a resolution error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, registry.ErrUnknownFamily):
		return "unknown_family"
	case errors.Is(err, registry.ErrUnknownVariant):
		return "unknown_variant"
	case errors.Is(err, registry.ErrMalformedFragment):
		return "malformed"
	case errors.Is(err, registry.ErrInvalidOverride):
		return "invalid_override"
	case errors.Is(err, registry.ErrUnexpectedArgument):
		return "unexpected_argument"
	default:
		return "constructor_error"
	}
}
