package runlog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	corerunlog "github.com/kilianp07/hive/core/runlog"
	"github.com/kilianp07/hive/infra/logger"
)

// InfluxConfig configures an InfluxDB run logger.
type InfluxConfig struct {
	URL         string            `json:"url"`
	Token       string            `json:"token"`
	Org         string            `json:"org"`
	Bucket      string            `json:"bucket"`
	Measurement string            `json:"measurement"`
	Tags        map[string]string `json:"tags"`
	Fallback    bool              `json:"fallback"`
}

// Influx writes scalars as points of a single measurement. The prefix
// becomes the "prefix" tag and each metric name a field.
type Influx struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
	tags        map[string]string
	now         func() time.Time
	log         logger.Logger
}

// NewInflux creates a logger for the given endpoint without contacting it.
func NewInflux(cfg InfluxConfig) *Influx {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	measurement := cfg.Measurement
	if measurement == "" {
		measurement = "hive_scalars"
	}
	return &Influx{
		client:      client,
		writeAPI:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: measurement,
		tags:        cfg.Tags,
		now:         time.Now,
		log:         logger.New("influx-runlog"),
	}
}

// NewInfluxChecked pings the instance before returning the logger. When the
// check fails and cfg.Fallback is set, a Null logger is returned instead of
// an error.
func NewInfluxChecked(ctx context.Context, cfg InfluxConfig) (corerunlog.Logger, error) {
	l := NewInflux(cfg)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	health, err := l.client.Health(ctx)
	if err == nil && health.Status != "pass" {
		err = fmt.Errorf("influx health status: %s", health.Status)
	}
	if err == nil {
		return l, nil
	}
	l.client.Close()
	if cfg.Fallback {
		l.log.Errorf("influx health check failed, falling back to null logger: %v", err)
		return corerunlog.Null{}, nil
	}
	return nil, fmt.Errorf("influx %s: %w", cfg.URL, err)
}

func (l *Influx) point(prefix string) *write.Point {
	p := write.NewPointWithMeasurement(l.measurement)
	for k, v := range l.tags {
		p = p.AddTag(k, v)
	}
	if prefix != "" {
		p = p.AddTag("prefix", prefix)
	}
	return p.SetTime(l.now())
}

func (l *Influx) LogScalar(name string, value float64, prefix string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return l.writeAPI.WritePoint(ctx, l.point(prefix).AddField(name, value))
}

func (l *Influx) LogMetrics(metrics map[string]float64, prefix string) error {
	if len(metrics) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := l.point(prefix)
	for k, v := range metrics {
		p = p.AddField(k, v)
	}
	return l.writeAPI.WritePoint(ctx, p)
}

func (l *Influx) Close() error {
	l.client.Close()
	return nil
}
