// Package monitoring reports failed constructions to an error tracker.
package monitoring

import (
	"time"

	"github.com/kilianp07/hive/core/metrics"
	"github.com/kilianp07/hive/core/registry"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the monitor used by recorders created without one.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// Recorder forwards failed resolutions to a Monitor. It implements
// metrics.Recorder so it can sit next to the Prometheus recorder.
type Recorder struct {
	m Monitor
}

// NewRecorder falls back to the global monitor when m is nil.
func NewRecorder(m Monitor) *Recorder {
	if m == nil {
		m = current
	}
	return &Recorder{m: m}
}

func (r *Recorder) RecordResolution(ev registry.Event) error {
	if !ev.Failed() {
		return nil
	}
	r.m.CaptureException(ev.Err, map[string]string{
		"family":  ev.Family,
		"variant": ev.Variant,
		"prefix":  ev.Prefix,
		"outcome": metrics.Outcome(ev.Err),
	})
	return nil
}

func (r *Recorder) RecordVariants(string, int) error { return nil }

var _ metrics.Recorder = (*Recorder)(nil)
