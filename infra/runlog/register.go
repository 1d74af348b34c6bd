package runlog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kilianp07/hive/core/registry"
	corerunlog "github.com/kilianp07/hive/core/runlog"
)

// Register adds the ConsoleLogger, InfluxLogger, MQTTLogger, SQLiteLogger and
// JSONLLogger variants to the "logger" family.
func Register(r *registry.Registry) error {
	f := corerunlog.Family
	if err := f.Register(r, "ConsoleLogger", registry.Schema{registry.String("level")}, newConsole); err != nil {
		return err
	}
	if err := f.Register(r, "InfluxLogger", registry.Schema{
		registry.String("url"), registry.String("token"), registry.String("org"),
		registry.String("bucket"), registry.String("measurement"),
		registry.Structured("tags"), registry.Bool("fallback"),
	}, newInflux); err != nil {
		return err
	}
	if err := f.Register(r, "MQTTLogger", registry.Schema{
		registry.String("broker"), registry.String("topic"), registry.String("client_id"),
		registry.String("username"), registry.String("password"), registry.Int("qos"),
		registry.Bool("retained"), registry.Int("max_retries"), registry.Int("backoff_ms"),
	}, newMQTT); err != nil {
		return err
	}
	if err := f.Register(r, "SQLiteLogger", registry.Schema{registry.String("path")}, newSQLite); err != nil {
		return err
	}
	return f.Register(r, "JSONLLogger", registry.Schema{
		registry.String("path"), registry.Int("max_size_mb"), registry.Int("max_backups"),
		registry.Int("max_age_days"), registry.Bool("compress"),
	}, newJSONL)
}

func newConsole(_ context.Context, kw registry.Kwargs) (corerunlog.Logger, error) {
	c := struct {
		Level string `json:"level"`
	}{Level: "info"}
	if err := kw.Decode(&c); err != nil {
		return nil, err
	}
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("console logger: %w", err)
	}
	return NewConsole(nil, lvl), nil
}

func newInflux(ctx context.Context, kw registry.Kwargs) (corerunlog.Logger, error) {
	var c InfluxConfig
	if err := kw.Decode(&c); err != nil {
		return nil, err
	}
	if c.URL == "" {
		return nil, fmt.Errorf("influx logger: url is required")
	}
	return NewInfluxChecked(ctx, c)
}

func newMQTT(_ context.Context, kw registry.Kwargs) (corerunlog.Logger, error) {
	var c MQTTConfig
	if err := kw.Decode(&c); err != nil {
		return nil, err
	}
	return NewMQTT(c)
}

func newSQLite(_ context.Context, kw registry.Kwargs) (corerunlog.Logger, error) {
	c := struct {
		Path string `json:"path"`
	}{}
	if err := kw.Decode(&c); err != nil {
		return nil, err
	}
	return NewSQLite(c.Path)
}

func newJSONL(_ context.Context, kw registry.Kwargs) (corerunlog.Logger, error) {
	var c JSONLConfig
	if err := kw.Decode(&c); err != nil {
		return nil, err
	}
	return NewJSONL(c)
}
