// Package app wires the registry, the built-in families and the ambient
// services into experiments that the CLI builds and runs.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/hive/app/plugins"
	"github.com/kilianp07/hive/config"
	coremetrics "github.com/kilianp07/hive/core/metrics"
	coremon "github.com/kilianp07/hive/core/monitoring"
	"github.com/kilianp07/hive/core/registry"
	"github.com/kilianp07/hive/infra/logger"
	"github.com/kilianp07/hive/infra/metrics"
	"github.com/kilianp07/hive/infra/monitoring"
	"github.com/kilianp07/hive/internal/eventbus"
)

// Service owns the registry of one process along with the metrics pipeline
// observing it.
type Service struct {
	cfg      *config.Config
	reg      *registry.Registry
	bus      *eventbus.Bus[registry.Event]
	prom     *prometheus.Registry
	recorder *metrics.PromRecorder
	monitor  coremon.Monitor
	log      logger.Logger

	stopCollector context.CancelFunc
	collectorDone <-chan struct{}

	mu    sync.Mutex
	trace []registry.Event
}

// New creates a Service. args is the override set forwarded to every
// resolution, typically the unparsed tail of the command line.
func New(cfg *config.Config, args []string) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	s := &Service{
		cfg:  cfg,
		bus:  eventbus.New[registry.Event](eventbus.WithBuffer(256)),
		prom: prometheus.NewRegistry(),
		log:  logger.New("service"),
	}
	rec, err := metrics.NewPromRecorder(s.prom)
	if err != nil {
		return nil, fmt.Errorf("prom recorder: %w", err)
	}
	s.recorder = rec
	if err := metrics.RegisterDroppedEvents(s.prom, s.bus.Dropped); err != nil {
		return nil, fmt.Errorf("prom dropped events: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	s.monitor = mon

	s.reg = registry.New(
		registry.WithOverrides(args),
		registry.WithLogger(logger.New("registry")),
		registry.WithObserver(s.observe),
	)
	if err := plugins.Builtin(s.reg); err != nil {
		return nil, err
	}
	for _, fam := range s.reg.Families() {
		variants, err := s.reg.Variants(fam)
		if err != nil {
			return nil, err
		}
		_ = rec.RecordVariants(fam, len(variants))
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopCollector = cancel
	s.collectorDone = metrics.StartEventCollector(ctx, s.bus,
		coremetrics.NewMultiRecorder(rec, coremon.NewRecorder(mon)))
	return s, nil
}

func (s *Service) observe(ev registry.Event) {
	s.mu.Lock()
	s.trace = append(s.trace, ev)
	s.mu.Unlock()
	s.bus.Publish(ev)
}

// Registry exposes the service registry.
func (s *Service) Registry() *registry.Registry { return s.reg }

// Gatherer exposes the service metrics.
func (s *Service) Gatherer() prometheus.Gatherer { return s.prom }

// Trace returns the constructions attempted so far, innermost first.
func (s *Service) Trace() []registry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]registry.Event(nil), s.trace...)
}

// ServeMetrics runs the Prometheus endpoint until ctx is canceled when it is
// enabled in the configuration.
func (s *Service) ServeMetrics(ctx context.Context) {
	if !s.cfg.Metrics.PrometheusEnabled {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.prom); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Monitor returns the error reporter failed constructions are sent to.
func (s *Service) Monitor() coremon.Monitor { return s.monitor }

// Close stops the metrics pipeline, flushes pending error reports and writes
// the textfile dump if one is configured.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.collectorDone
	s.stopCollector()
	s.monitor.Flush(2 * time.Second)
	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path, s.prom); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
	}
	return nil
}
