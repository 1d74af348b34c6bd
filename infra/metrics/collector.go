package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/hive/core/metrics"
	"github.com/kilianp07/hive/core/registry"
	"github.com/kilianp07/hive/infra/logger"
	"github.com/kilianp07/hive/internal/eventbus"
)

// StartEventCollector subscribes to bus and forwards every registry event to
// rec. It stops when ctx is canceled or the bus is closed; the returned
// channel is closed once the collector has drained its subscription.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[registry.Event], rec coremetrics.Recorder) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || rec == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	log := logger.New("metrics-collector")
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordResolution(ev); err != nil {
					log.Warnf("record resolution %s/%s: %v", ev.Family, ev.Variant, err)
				}
			}
		}
	}()
	return done
}
