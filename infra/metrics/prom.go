package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/hive/core/metrics"
	"github.com/kilianp07/hive/core/registry"
)

// PromRecorder exposes registry activity as Prometheus metrics.
type PromRecorder struct {
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	variants    *prometheus.GaugeVec
}

// NewPromRecorder registers the metrics on reg. A nil registerer defaults to
// the global Prometheus registerer. Metrics already registered by a previous
// recorder are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hive_resolutions_total",
		Help: "Total number of fragment resolutions by family, variant and outcome",
	}, []string{"family", "variant", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hive_resolution_duration_seconds",
		Help:    "Time spent constructing an object, nested resolutions included",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"family", "variant"})
	variants := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hive_registered_variants",
		Help: "Number of variants registered per family",
	}, []string{"family"})

	var err error
	if resolutions, err = register(reg, resolutions); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if variants, err = register(reg, variants); err != nil {
		return nil, err
	}
	return &PromRecorder{resolutions: resolutions, duration: duration, variants: variants}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordResolution counts the event and, for successful constructions,
// observes its duration.
func (p *PromRecorder) RecordResolution(ev registry.Event) error {
	p.resolutions.WithLabelValues(ev.Family, ev.Variant, coremetrics.EventOutcome(ev)).Inc()
	if ev.Err == nil {
		p.duration.WithLabelValues(ev.Family, ev.Variant).Observe(ev.Duration.Seconds())
	}
	return nil
}

// RecordVariants sets the registered variant gauge for family.
func (p *PromRecorder) RecordVariants(family string, n int) error {
	p.variants.WithLabelValues(family).Set(float64(n))
	return nil
}

// RegisterDroppedEvents exposes dropped as hive_dropped_events_total, the
// number of registry events a slow subscriber missed.
func RegisterDroppedEvents(reg prometheus.Registerer, dropped func() uint64) error {
	c := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "hive_dropped_events_total",
		Help: "Registry events not delivered to a subscriber because its buffer was full",
	}, func() float64 { return float64(dropped()) })
	_, err := register(reg, c)
	return err
}
