package config

import (
	"fmt"
	"path/filepath"
)

// MetricsConfig controls the Prometheus export of registry metrics.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	// Textfile, when set, receives a metrics dump at the end of every command.
	Textfile string `json:"textfile"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusEnabled && c.PrometheusPort == "" {
		c.PrometheusPort = ":9102"
	}
}

func (c MetricsConfig) Validate() error {
	if c.Textfile != "" && filepath.Ext(c.Textfile) != ".prom" {
		return fmt.Errorf("textfile must end in .prom, got %s", c.Textfile)
	}
	return nil
}
